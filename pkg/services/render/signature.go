package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // signature decoders
	_ "image/png"

	"github.com/boombuler/barcode/qr"
)

// signature draws the signature box with the image aspect fitted inside it,
// or an empty dashed placeholder when no decodable image is supplied. The
// dashed baseline and signer name are always drawn.
func (l *layouter) signature(opts RenderOptions, x, y, w float64) ([]Op, float64, bool) {
	label := opts.SignatureLabel
	if label == "" {
		label = "Signature"
	}
	ops, h := l.paragraph(label, x, y, w, l.t.HeadingSize, Bold, l.t.Ink)
	boxY := y + h + l.t.Gap/2
	box := Rect{X: x, Y: boxY, W: l.t.SignatureWidth, H: l.t.SignatureHeight}

	placed := false
	if img, ok := decodeSignature(opts.Signature); ok {
		ops = append(ops,
			StrokeRect{Rect: box, Color: l.t.Border, Width: 1},
			ImageOp{Rect: fit(img.Bounds(), box, 6), Image: img, Smooth: true},
		)
		placed = true
	} else {
		ops = append(ops, StrokeRect{Rect: box, Color: l.t.Border, Width: 1, Dash: l.t.Dash})
	}

	lineY := boxY + box.H + 8
	ops = append(ops, Line{X0: x, Y0: lineY, X1: x + box.W, Y1: lineY, Color: l.t.Muted, Width: 1, Dash: l.t.Dash})
	bottom := lineY + 4
	if opts.SignerName != "" {
		nops, nh := l.paragraph(opts.SignerName, x, bottom, box.W, l.t.BodySize, Bold, l.t.Ink)
		ops = append(ops, nops...)
		bottom += nh
	}

	if opts.Verification != "" {
		code, err := qr.Encode(opts.Verification, qr.M, qr.Auto)
		if err != nil {
			l.fail(fmt.Errorf("failed to encode verification code: %w", err))
		} else {
			q := Rect{X: x + w - l.t.QRSize, Y: boxY, W: l.t.QRSize, H: l.t.QRSize}
			ops = append(ops, ImageOp{Rect: q, Image: code, Smooth: false})
			cops, ch := l.paragraph("Scan to verify", q.X, q.Y+q.H+4, q.W, l.t.SmallSize, Regular, l.t.Muted)
			ops = append(ops, cops...)
			bottom = max(bottom, q.Y+q.H+4+ch)
		}
	}
	return ops, bottom - y, placed
}

func decodeSignature(data []byte) (image.Image, bool) {
	if len(data) == 0 {
		return nil, false
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil || img.Bounds().Empty() {
		return nil, false
	}
	return img, true
}

// fit returns the largest rect with the aspect ratio of src centered inside
// box shrunk by inset on every side.
func fit(src image.Rectangle, box Rect, inset float64) Rect {
	bw, bh := box.W-2*inset, box.H-2*inset
	sw, sh := float64(src.Dx()), float64(src.Dy())
	scale := min(bw/sw, bh/sh)
	w, h := sw*scale, sh*scale
	return Rect{
		X: box.X + inset + (bw-w)/2,
		Y: box.Y + inset + (bh-h)/2,
		W: w,
		H: h,
	}
}

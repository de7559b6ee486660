// Package raster paints a sealed render.Surface into an RGBA bitmap at a
// resolution multiplier of at least 2.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/de-tools/daily-report/pkg/services/render"
)

// MinScale is the lowest accepted resolution multiplier.
const MinScale = 2.0

// ErrEmptyRaster is returned when the captured bitmap has no pixels.
var ErrEmptyRaster = errors.New("raster: captured image is empty")

type Image struct {
	*image.RGBA
	Scale float64
}

// Rasterize seals the surface and paints it at scale. Scales below MinScale
// are raised to MinScale.
func Rasterize(surface *render.Surface, scale float64) (*Image, error) {
	if surface == nil {
		return nil, ErrEmptyRaster
	}
	if scale < MinScale || math.IsNaN(scale) {
		scale = MinScale
	}
	surface.Seal()

	w := int(math.Ceil(surface.Width() * scale))
	h := int(math.Ceil(surface.Height() * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(surface.Background()), image.Point{}, draw.Src)

	p := &painter{dst: img, scale: scale, fonts: surface.Fonts(), faces: map[faceKey]font.Face{}}
	defer p.close()
	for _, op := range surface.Ops() {
		if err := p.paint(op); err != nil {
			return nil, err
		}
	}
	return &Image{RGBA: img, Scale: scale}, nil
}

type faceKey struct {
	size  float64
	style render.FontStyle
}

type painter struct {
	dst   *image.RGBA
	scale float64
	fonts *render.Fonts
	faces map[faceKey]font.Face
}

func (p *painter) close() {
	for _, f := range p.faces {
		_ = f.Close()
	}
}

func (p *painter) px(v float64) int {
	return int(math.Round(v * p.scale))
}

func (p *painter) rect(r render.Rect) image.Rectangle {
	return image.Rect(p.px(r.X), p.px(r.Y), p.px(r.X+r.W), p.px(r.Y+r.H))
}

func (p *painter) fill(r image.Rectangle, c color.RGBA) {
	draw.Draw(p.dst, r.Intersect(p.dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func (p *painter) paint(op render.Op) error {
	switch o := op.(type) {
	case render.FillRect:
		p.fill(p.rect(o.Rect), o.Color)
	case render.StrokeRect:
		r := o.Rect
		p.line(r.X, r.Y, r.X+r.W, r.Y, o.Width, o.Dash, o.Color)
		p.line(r.X, r.Y+r.H, r.X+r.W, r.Y+r.H, o.Width, o.Dash, o.Color)
		p.line(r.X, r.Y, r.X, r.Y+r.H, o.Width, o.Dash, o.Color)
		p.line(r.X+r.W, r.Y, r.X+r.W, r.Y+r.H, o.Width, o.Dash, o.Color)
	case render.Line:
		p.line(o.X0, o.Y0, o.X1, o.Y1, o.Width, o.Dash, o.Color)
	case render.TextOp:
		return p.text(o)
	case render.ImageOp:
		p.image(o)
	}
	return nil
}

// line draws an axis aligned segment, dashed when dash > 0.
func (p *painter) line(x0, y0, x1, y1, width, dash float64, c color.RGBA) {
	thick := max(1, p.px(width))
	horizontal := y0 == y1
	from, to, at := min(x0, x1), max(x0, x1), y0
	if !horizontal {
		from, to, at = min(y0, y1), max(y0, y1), x0
	}
	seg := to - from
	if dash > 0 {
		seg = dash
	}
	for pos := from; ; pos += 2 * seg {
		a, b := p.px(pos), max(p.px(min(pos+seg, to)), p.px(pos)+1)
		band := p.px(at) - thick/2
		if horizontal {
			p.fill(image.Rect(a, band, b, band+thick), c)
		} else {
			p.fill(image.Rect(band, a, band+thick, b), c)
		}
		if seg <= 0 || pos+2*seg >= to {
			return
		}
	}
}

func (p *painter) face(size float64, style render.FontStyle) (font.Face, error) {
	key := faceKey{size: size, style: style}
	if f, ok := p.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(p.fonts.Font(style), &opentype.FaceOptions{
		Size:    size * p.scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	p.faces[key] = f
	return f, nil
}

func (p *painter) text(o render.TextOp) error {
	f, err := p.face(o.Size, o.Style)
	if err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(o.Color),
		Face: f,
		Dot:  fixed.P(p.px(o.X), p.px(o.Baseline)),
	}
	d.DrawString(o.Content)
	return nil
}

// image scales smooth images with Catmull-Rom and everything else, such as
// QR codes, with nearest neighbour so module edges stay sharp.
func (p *painter) image(o render.ImageOp) {
	if o.Image == nil {
		return
	}
	var scaler draw.Scaler = draw.NearestNeighbor
	if o.Smooth {
		scaler = draw.CatmullRom
	}
	scaler.Scale(p.dst, p.rect(o.Rect), o.Image, o.Image.Bounds(), draw.Over, nil)
}

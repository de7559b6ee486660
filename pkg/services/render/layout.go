package render

import (
	"image/color"

	"github.com/de-tools/daily-report/pkg/models/layout"
)

// layouter converts blocks into ops. Each method returns the ops it produced
// and the vertical space consumed starting at y. The first measurement error
// is kept in err and stops nothing; Render checks it once at the end.
type layouter struct {
	sb  *Sandbox
	t   Theme
	err error
}

func (l *layouter) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

func (l *layouter) lines(text string, size float64, style FontStyle, maxW float64) []string {
	lines, err := l.sb.wrap(text, size, style, maxW)
	if err != nil {
		l.fail(err)
		return nil
	}
	return lines
}

func (l *layouter) width(text string, size float64, style FontStyle) float64 {
	w, err := l.sb.measure(text, size, style)
	if err != nil {
		l.fail(err)
	}
	return w
}

// baseline places text vertically centered in a line box starting at y.
func (l *layouter) baseline(y, size float64) float64 {
	return y + (l.t.lineHeight(size)-size)/2 + size*0.8
}

func (l *layouter) textLines(lines []string, x, y, size float64, style FontStyle, c color.RGBA) []Op {
	var ops []Op
	lh := l.t.lineHeight(size)
	for i, line := range lines {
		if line == "" {
			continue
		}
		ops = append(ops, TextOp{
			X:        x,
			Baseline: l.baseline(y+float64(i)*lh, size),
			Size:     size,
			Style:    style,
			Color:    c,
			Content:  line,
		})
	}
	return ops
}

func (l *layouter) paragraph(text string, x, y, w, size float64, style FontStyle, c color.RGBA) ([]Op, float64) {
	lines := l.lines(text, size, style, w)
	return l.textLines(lines, x, y, size, style, c), float64(len(lines)) * l.t.lineHeight(size)
}

func (l *layouter) header(opts RenderOptions, x, y, w float64) ([]Op, float64) {
	ops, h := l.paragraph(opts.Title, x, y, w, l.t.TitleSize, Bold, l.t.Ink)
	if opts.Subtitle != "" {
		sops, sh := l.paragraph(opts.Subtitle, x, y+h, w, l.t.BodySize, Regular, l.t.Muted)
		ops = append(ops, sops...)
		h += sh
	}
	h += l.t.Gap / 2
	ops = append(ops, Line{X0: x, Y0: y + h, X1: x + w, Y1: y + h, Color: l.t.Accent, Width: 2})
	return ops, h + 2
}

func (l *layouter) block(b layout.Block, x, y, w float64) ([]Op, float64) {
	switch v := b.(type) {
	case layout.Card:
		return l.card(v, x, y, w)
	case layout.Table:
		return l.table(v, x, y, w)
	case layout.KeyValueList:
		return l.keyValues(v, x, y, w)
	case layout.Text:
		return l.paragraph(v.Content, x, y, w, l.t.BodySize, Regular, l.t.Ink)
	}
	return nil, 0
}

func (l *layouter) card(c layout.Card, x, y, w float64) ([]Op, float64) {
	pad := l.t.CardPadding
	innerW := w - 2*pad

	var pill []Op
	pillW, pillH := 0.0, 0.0
	if c.Badge != "" {
		tw := l.width(c.Badge, l.t.SmallSize, Bold)
		pillW, pillH = tw+12, l.t.SmallSize*1.8
		px := x + w - pad - pillW
		pill = []Op{
			FillRect{Rect: Rect{X: px, Y: y + pad, W: pillW, H: pillH}, Color: l.t.badgeColor(c.Badge)},
			TextOp{
				X:        px + 6,
				Baseline: y + pad + (pillH-l.t.SmallSize)/2 + l.t.SmallSize*0.8,
				Size:     l.t.SmallSize,
				Style:    Bold,
				Color:    l.t.Background,
				Content:  c.Badge,
			},
		}
	}

	titleW := innerW
	if pillW > 0 {
		titleW -= pillW + 8
	}
	titleOps, titleH := l.paragraph(c.Title, x+pad, y+pad, titleW, l.t.HeadingSize, Bold, l.t.Ink)

	cy := y + pad + max(titleH, pillH)
	var body []Op
	for _, child := range c.Body {
		cy += l.t.Gap / 2
		ops, h := l.block(child, x+pad, cy, innerW)
		body = append(body, ops...)
		cy += h
	}
	h := cy + pad - y

	ops := []Op{
		FillRect{Rect: Rect{X: x, Y: y, W: w, H: h}, Color: l.t.CardFill},
		StrokeRect{Rect: Rect{X: x, Y: y, W: w, H: h}, Color: l.t.Border, Width: 1},
	}
	ops = append(ops, titleOps...)
	ops = append(ops, pill...)
	ops = append(ops, body...)
	return ops, h
}

// columnWidths shares w between columns. Columns whose content fits keep their
// natural width; the remainder goes to the wider ones in proportion.
func columnWidths(natural []float64, w float64) []float64 {
	n := float64(len(natural))
	total := 0.0
	for _, nw := range natural {
		total += nw
	}
	out := make([]float64, len(natural))
	if total <= 0 {
		for i := range out {
			out[i] = w / n
		}
		return out
	}
	if total <= w {
		for i, nw := range natural {
			out[i] = nw * w / total
		}
		return out
	}
	base, excess := 0.0, 0.0
	for i, nw := range natural {
		out[i] = min(nw, w/n)
		base += out[i]
		excess += nw - out[i]
	}
	for i, nw := range natural {
		out[i] += (w - base) * (nw - out[i]) / excess
	}
	return out
}

func (l *layouter) table(tb layout.Table, x, y, w float64) ([]Op, float64) {
	var ops []Op
	cy := y
	if tb.Caption != "" {
		cops, ch := l.paragraph(tb.Caption, x, cy, w, l.t.BodySize, Bold, l.t.Ink)
		ops = append(ops, cops...)
		cy += ch + 4
	}

	n := len(tb.Columns)
	for _, row := range tb.Rows {
		n = max(n, len(row))
	}
	if n == 0 {
		return ops, cy - y
	}

	pad := l.t.CellPadding
	natural := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < len(tb.Columns) {
			natural[i] = l.width(tb.Columns[i], l.t.BodySize, Bold)
		}
		for _, row := range tb.Rows {
			if i < len(row) {
				natural[i] = max(natural[i], l.width(row[i], l.t.BodySize, Regular))
			}
		}
		natural[i] = min(natural[i]+2*pad, w)
	}
	widths := columnWidths(natural, w)

	if len(tb.Columns) > 0 {
		header := make([]string, n)
		copy(header, tb.Columns)
		rops, rh := l.row(header, widths, x, cy, Bold, l.t.HeaderFill)
		ops = append(ops, rops...)
		cy += rh
	}
	for _, row := range tb.Rows {
		cells := make([]string, n)
		copy(cells, row)
		rops, rh := l.row(cells, widths, x, cy, Regular, l.t.Background)
		ops = append(ops, rops...)
		cy += rh
	}
	return ops, cy - y
}

func (l *layouter) row(cells []string, widths []float64, x, y float64, style FontStyle, fill color.RGBA) ([]Op, float64) {
	pad := l.t.CellPadding
	wrapped := make([][]string, len(cells))
	maxLines := 1
	for i, cell := range cells {
		wrapped[i] = l.lines(cell, l.t.BodySize, style, widths[i]-2*pad)
		maxLines = max(maxLines, len(wrapped[i]))
	}
	h := float64(maxLines)*l.t.lineHeight(l.t.BodySize) + 2*pad

	var ops []Op
	cx := x
	for i := range cells {
		r := Rect{X: cx, Y: y, W: widths[i], H: h}
		ops = append(ops,
			FillRect{Rect: r, Color: fill},
			StrokeRect{Rect: r, Color: l.t.Border, Width: 1},
		)
		ops = append(ops, l.textLines(wrapped[i], cx+pad, y+pad, l.t.BodySize, style, l.t.Ink)...)
		cx += widths[i]
	}
	return ops, h
}

func (l *layouter) keyValues(kv layout.KeyValueList, x, y, w float64) ([]Op, float64) {
	keyW := 0.0
	for _, e := range kv.Entries {
		keyW = max(keyW, l.width(e.Key, l.t.BodySize, Bold))
	}
	keyW = min(keyW+16, w*0.35)
	valW := w - keyW
	lh := l.t.lineHeight(l.t.BodySize)

	var ops []Op
	cy := y
	for _, e := range kv.Entries {
		keys := l.lines(e.Key, l.t.BodySize, Bold, keyW-8)
		vals := l.lines(e.Value, l.t.BodySize, Regular, valW)
		ops = append(ops, l.textLines(keys, x, cy+2, l.t.BodySize, Bold, l.t.Muted)...)
		ops = append(ops, l.textLines(vals, x+keyW, cy+2, l.t.BodySize, Regular, l.t.Ink)...)
		cy += float64(max(len(keys), len(vals), 1))*lh + 4
		ops = append(ops, Line{X0: x, Y0: cy, X1: x + w, Y1: cy, Color: l.t.Border, Width: 1})
	}
	return ops, cy - y
}

package render

import "image/color"

// Theme is the complete document style. A Sandbox keeps its own copy, so
// nothing outside the sandbox can change how a document looks.
type Theme struct {
	Width       float64 // logical content width in px
	Padding     float64
	Gap         float64 // vertical space between sibling blocks
	CardPadding float64
	CellPadding float64
	LineHeight  float64 // multiple of the font size

	TitleSize   float64
	HeadingSize float64
	BodySize    float64
	SmallSize   float64

	Background color.RGBA
	Ink        color.RGBA
	Muted      color.RGBA
	Border     color.RGBA
	CardFill   color.RGBA
	HeaderFill color.RGBA
	Accent     color.RGBA
	Badges     map[string]color.RGBA

	SignatureWidth  float64
	SignatureHeight float64
	QRSize          float64
	Dash            float64
}

// DefaultTheme is proportioned for A4 portrait at 794 logical px.
func DefaultTheme() Theme {
	return Theme{
		Width:       794,
		Padding:     32,
		Gap:         12,
		CardPadding: 12,
		CellPadding: 6,
		LineHeight:  1.35,

		TitleSize:   20,
		HeadingSize: 14,
		BodySize:    11,
		SmallSize:   9,

		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Ink:        color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff},
		Muted:      color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff},
		Border:     color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff},
		CardFill:   color.RGBA{R: 0xf9, G: 0xfa, B: 0xfb, A: 0xff},
		HeaderFill: color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff},
		Accent:     color.RGBA{R: 0x1d, G: 0x4e, B: 0xd8, A: 0xff},
		Badges: map[string]color.RGBA{
			"over":  {R: 0xdc, G: 0x26, B: 0x26, A: 0xff},
			"warn":  {R: 0xd9, G: 0x77, B: 0x06, A: 0xff},
			"ok":    {R: 0x16, G: 0xa3, B: 0x4a, A: 0xff},
			"none":  {R: 0x6b, G: 0x72, B: 0x80, A: 0xff},
			"empty": {R: 0x6b, G: 0x72, B: 0x80, A: 0xff},
		},

		SignatureWidth:  240,
		SignatureHeight: 110,
		QRSize:          96,
		Dash:            6,
	}
}

func (t Theme) clone() Theme {
	out := t
	out.Badges = make(map[string]color.RGBA, len(t.Badges))
	for k, v := range t.Badges {
		out.Badges[k] = v
	}
	return out
}

func (t Theme) badgeColor(badge string) color.RGBA {
	if c, ok := t.Badges[badge]; ok {
		return c
	}
	return t.Accent
}

func (t Theme) lineHeight(size float64) float64 {
	return size * t.LineHeight
}

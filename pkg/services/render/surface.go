package render

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrSealed is returned when a sealed Surface is mutated.
var ErrSealed = errors.New("render: surface is sealed")

type FontStyle int

const (
	Regular FontStyle = iota
	Bold
)

// Fonts holds parsed font programs. They are immutable once parsed and may be
// shared by a Surface and the rasterizer.
type Fonts struct {
	regular *opentype.Font
	bold    *opentype.Font
}

func parseFonts() (*Fonts, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	return &Fonts{regular: regular, bold: bold}, nil
}

func (f *Fonts) Font(style FontStyle) *opentype.Font {
	if style == Bold {
		return f.bold
	}
	return f.regular
}

type Rect struct {
	X, Y, W, H float64
}

// Op is one draw operation in logical px. It is one of FillRect, StrokeRect,
// Line, TextOp or ImageOp.
type Op interface {
	isOp()
}

type FillRect struct {
	Rect  Rect
	Color color.RGBA
}

type StrokeRect struct {
	Rect  Rect
	Color color.RGBA
	Width float64
	Dash  float64 // 0 draws a solid outline
}

// Line is axis aligned.
type Line struct {
	X0, Y0, X1, Y1 float64
	Color          color.RGBA
	Width          float64
	Dash           float64
}

type TextOp struct {
	X, Baseline float64
	Size        float64
	Style       FontStyle
	Color       color.RGBA
	Content     string
}

type ImageOp struct {
	Rect  Rect
	Image image.Image
	// Smooth selects interpolated scaling; false keeps hard pixel edges.
	Smooth bool
}

func (FillRect) isOp()   {}
func (StrokeRect) isOp() {}
func (Line) isOp()       {}
func (TextOp) isOp()     {}
func (ImageOp) isOp()    {}

// Surface is the rendered document: a display list with a fixed width and a
// natural height. It is sealed before rasterization and rejects changes after.
type Surface struct {
	mu         sync.RWMutex
	width      float64
	height     float64
	background color.RGBA
	fonts      *Fonts
	ops        []Op
	sealed     bool

	signaturePlaced bool
}

func newSurface(width float64, background color.RGBA, fonts *Fonts) *Surface {
	return &Surface{width: width, background: background, fonts: fonts}
}

func (s *Surface) Width() float64 {
	return s.width
}

func (s *Surface) Height() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

func (s *Surface) Background() color.RGBA {
	return s.background
}

func (s *Surface) Fonts() *Fonts {
	return s.fonts
}

// SignaturePlaced reports whether a signature image was drawn, as opposed to
// the empty placeholder box.
func (s *Surface) SignaturePlaced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signaturePlaced
}

// Ops returns a copy of the display list.
func (s *Surface) Ops() []Op {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Op(nil), s.ops...)
}

func (s *Surface) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

func (s *Surface) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// Append adds ops to the display list.
func (s *Surface) Append(ops ...Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return ErrSealed
	}
	s.ops = append(s.ops, ops...)
	return nil
}

// SetHeight sets the natural height of the document.
func (s *Surface) SetHeight(h float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return ErrSealed
	}
	s.height = h
	return nil
}

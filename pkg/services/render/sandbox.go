// Package render lays out normalized report blocks on a fixed-width surface.
// All layout happens inside a Sandbox that owns its fonts and theme, so the
// document never inherits styling from the running application.
package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/de-tools/daily-report/pkg/models/layout"
)

// ErrSandboxClosed is returned by Render after Close.
var ErrSandboxClosed = errors.New("render: sandbox is closed")

type faceKey struct {
	size  float64
	style FontStyle
}

// Sandbox is an isolated rendering context. It is safe for sequential use;
// callers must Close it once the surface has been rasterized.
type Sandbox struct {
	mu     sync.Mutex
	theme  Theme
	fonts  *Fonts
	faces  map[faceKey]font.Face
	closed bool
}

// RenderOptions carries the document level content drawn around the blocks.
type RenderOptions struct {
	Title    string
	Subtitle string
	// Signature is an encoded PNG or JPEG image; empty draws a placeholder box.
	Signature      []byte
	SignatureLabel string
	SignerName     string
	// Verification, when set, is encoded as a QR code next to the signature.
	Verification string
	Footer       string
}

func NewSandbox(theme Theme) (*Sandbox, error) {
	fonts, err := parseFonts()
	if err != nil {
		return nil, fmt.Errorf("failed to parse fonts: %w", err)
	}
	return &Sandbox{
		theme: theme.clone(),
		fonts: fonts,
		faces: make(map[faceKey]font.Face),
	}, nil
}

// Render lays out blocks in input order between the title header and the
// signature block. Identical input yields an identical display list.
func (s *Sandbox) Render(blocks []layout.Block, opts RenderOptions) (*Surface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSandboxClosed
	}

	l := &layouter{sb: s, t: s.theme}
	x := s.theme.Padding
	w := s.theme.Width - 2*s.theme.Padding
	y := s.theme.Padding

	ops, h := l.header(opts, x, y, w)
	y += h + s.theme.Gap
	for _, b := range blocks {
		bops, bh := l.block(b, x, y, w)
		ops = append(ops, bops...)
		y += bh + s.theme.Gap
	}
	sops, sh, placed := l.signature(opts, x, y, w)
	ops = append(ops, sops...)
	y += sh
	if opts.Footer != "" {
		fops, fh := l.paragraph(opts.Footer, x, y+s.theme.Gap, w, s.theme.SmallSize, Regular, s.theme.Muted)
		ops = append(ops, fops...)
		y += s.theme.Gap + fh
	}
	if l.err != nil {
		return nil, l.err
	}

	surface := newSurface(s.theme.Width, s.theme.Background, s.fonts)
	surface.signaturePlaced = placed
	if err := surface.Append(ops...); err != nil {
		return nil, err
	}
	if err := surface.SetHeight(y + s.theme.Padding); err != nil {
		return nil, err
	}
	return surface, nil
}

// Close releases every font face. Calling Close more than once is a no-op.
func (s *Sandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for k, f := range s.faces {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.faces, k)
	}
	return errors.Join(errs...)
}

func (s *Sandbox) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sandbox) face(size float64, style FontStyle) (font.Face, error) {
	key := faceKey{size: size, style: style}
	if f, ok := s.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(s.fonts.Font(style), &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %.1fpx face: %w", size, err)
	}
	s.faces[key] = f
	return f, nil
}

// measure returns the advance width of text in logical px.
func (s *Sandbox) measure(text string, size float64, style FontStyle) (float64, error) {
	f, err := s.face(size, style)
	if err != nil {
		return 0, err
	}
	return float64(font.MeasureString(f, text)) / 64, nil
}

// wrap breaks text into lines no wider than maxW. Newlines force breaks and
// words longer than a line are split between runes.
func (s *Sandbox) wrap(text string, size float64, style FontStyle, maxW float64) ([]string, error) {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			cw, err := s.measure(candidate, size, style)
			if err != nil {
				return nil, err
			}
			if cw <= maxW {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			pieces, err := s.splitWord(word, size, style, maxW)
			if err != nil {
				return nil, err
			}
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
		lines = append(lines, current)
	}
	return lines, nil
}

func (s *Sandbox) splitWord(word string, size float64, style FontStyle, maxW float64) ([]string, error) {
	var out []string
	for word != "" {
		n := len(word)
		for n > 0 {
			w, err := s.measure(word[:n], size, style)
			if err != nil {
				return nil, err
			}
			if w <= maxW {
				break
			}
			_, sz := utf8.DecodeLastRuneInString(word[:n])
			n -= sz
		}
		if n == 0 {
			_, n = utf8.DecodeRuneInString(word)
		}
		out = append(out, word[:n])
		word = word[n:]
	}
	return out, nil
}

// Package paginate cuts a tall report bitmap into page sized slices and
// assembles them into a PDF.
package paginate

import (
	"fmt"
	"math"
	"strings"
)

type PageFormat struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var (
	A4     = PageFormat{Name: "A4", WidthMM: 210, HeightMM: 297}
	Letter = PageFormat{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
)

// FormatByName resolves a configured page size, case-insensitively.
func FormatByName(name string) (PageFormat, error) {
	for _, f := range []PageFormat{A4, Letter} {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return PageFormat{}, fmt.Errorf("unsupported page size %q", name)
}

type Margins struct {
	Top, Right, Bottom, Left float64
}

func UniformMargins(mm float64) Margins {
	return Margins{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// Usable returns the printable width and height inside the margins.
func (f PageFormat) Usable(m Margins) (w, h float64) {
	return f.WidthMM - m.Left - m.Right, f.HeightMM - m.Top - m.Bottom
}

// Slice is a horizontal band of the source image, in pixels.
type Slice struct {
	Offset int
	Height int
}

// SliceHeight returns how many image rows fill the usable page height when
// the image width is scaled to the usable page width. It is never below 1.
func SliceHeight(imageWidth int, format PageFormat, margins Margins) int {
	usableW, usableH := format.Usable(margins)
	if imageWidth <= 0 || usableW <= 0 || usableH <= 0 {
		return 1
	}
	return max(1, int(math.Floor(usableH*float64(imageWidth)/usableW)))
}

// PlanSlices tiles [0, imageHeight) with consecutive slices of sliceHeight
// rows; the last slice takes the remainder. An empty image still yields one
// zero height slice so the document always has a page. A sliceHeight below 1
// is treated as 1, matching the SliceHeight minimum.
func PlanSlices(imageHeight, sliceHeight int) []Slice {
	if imageHeight <= 0 {
		return []Slice{{Offset: 0, Height: 0}}
	}
	sliceHeight = max(1, sliceHeight)
	out := make([]Slice, 0, (imageHeight+sliceHeight-1)/sliceHeight)
	for offset := 0; offset < imageHeight; offset += sliceHeight {
		out = append(out, Slice{Offset: offset, Height: min(sliceHeight, imageHeight-offset)})
	}
	return out
}

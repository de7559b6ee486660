package paginate

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/daily-report/pkg/services/raster"
)

func TestSliceHeight(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		format  PageFormat
		margins Margins
		want    int
	}{
		{name: "a4 at 2x", width: 1588, format: A4, margins: UniformMargins(10), want: 2315},
		{name: "a4 no margins", width: 210, format: A4, margins: Margins{}, want: 297},
		{name: "tiny width", width: 1, format: A4, margins: UniformMargins(10), want: 1},
		{name: "zero width", width: 0, format: A4, margins: UniformMargins(10), want: 1},
		{name: "margins consume page", width: 100, format: A4, margins: UniformMargins(150), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SliceHeight(tt.width, tt.format, tt.margins))
		})
	}
}

func TestPlanSlices_TilesExactly(t *testing.T) {
	for height := 0; height <= 300; height += 7 {
		for sliceHeight := 1; sliceHeight <= 120; sliceHeight += 13 {
			slices := PlanSlices(height, sliceHeight)

			require.NotEmpty(t, slices)
			covered := 0
			for i, s := range slices {
				assert.Equal(t, covered, s.Offset, "slices are contiguous")
				assert.LessOrEqual(t, s.Height, sliceHeight)
				if i < len(slices)-1 {
					assert.Equal(t, sliceHeight, s.Height, "only the last slice is short")
				}
				covered += s.Height
			}
			assert.Equal(t, height, covered)
			if height > 0 {
				assert.Len(t, slices, (height+sliceHeight-1)/sliceHeight)
			}
		}
	}
}

func TestPlanSlices_EmptyImage(t *testing.T) {
	assert.Equal(t, []Slice{{Offset: 0, Height: 0}}, PlanSlices(0, 50))
}

func TestPlanSlices_ClampsSliceHeight(t *testing.T) {
	for _, sliceHeight := range []int{0, -5} {
		slices := PlanSlices(3, sliceHeight)
		assert.Equal(t, []Slice{{Offset: 0, Height: 1}, {Offset: 1, Height: 1}, {Offset: 2, Height: 1}}, slices)
	}
	assert.Len(t, PlanSlices(10, 0), 10)
}

func TestFormatByName(t *testing.T) {
	f, err := FormatByName("a4")
	require.NoError(t, err)
	assert.Equal(t, A4, f)

	_, err = FormatByName("A3")
	assert.Error(t, err)
}

func testImage(w, h int) *raster.Image {
	return &raster.Image{RGBA: image.NewRGBA(image.Rect(0, 0, w, h)), Scale: 2}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name   string
		height int
		pages  int
	}{
		{name: "single page", height: 500, pages: 1},
		{name: "exact fit", height: 2315, pages: 1},
		{name: "multi page", height: 5000, pages: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Paginate(testImage(1588, tt.height), A4, UniformMargins(10), Metadata{Title: "Daily Report"})

			require.NoError(t, err)
			assert.Equal(t, tt.pages, doc.Pages)
			assert.Len(t, doc.Slices, tt.pages)
			assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF-")))
		})
	}
}

func TestPaginate_Errors(t *testing.T) {
	_, err := Paginate(nil, A4, UniformMargins(10), Metadata{})
	assert.Error(t, err)

	_, err = Paginate(testImage(10, 10), A4, UniformMargins(200), Metadata{})
	assert.Error(t, err)
}

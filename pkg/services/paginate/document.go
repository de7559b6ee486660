package paginate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/de-tools/daily-report/pkg/services/raster"
)

// creationDate is stamped into every document so identical input produces
// identical bytes.
var creationDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type Document struct {
	Bytes  []byte
	Slices []Slice
	Pages  int
}

type Metadata struct {
	Title  string
	Author string
}

// Paginate places each slice of img on its own page inside the margin box,
// scaled to the usable width.
func Paginate(img *raster.Image, format PageFormat, margins Margins, meta Metadata) (*Document, error) {
	if img == nil || img.RGBA == nil {
		return nil, errors.New("paginate: no image")
	}
	usableW, usableH := format.Usable(margins)
	if usableW <= 0 || usableH <= 0 {
		return nil, fmt.Errorf("paginate: margins leave no printable area on %s", format.Name)
	}

	bounds := img.Bounds()
	slices := PlanSlices(bounds.Dy(), SliceHeight(bounds.Dx(), format, margins))

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: format.WidthMM, Ht: format.HeightMM},
	})
	pdf.SetMargins(margins.Left, margins.Top, margins.Right)
	pdf.SetAutoPageBreak(false, margins.Bottom)
	pdf.SetCreationDate(creationDate)
	pdf.SetModificationDate(creationDate)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(true)
	pdf.SetCreator("daily-report", true)
	if meta.Title != "" {
		pdf.SetTitle(meta.Title, true)
	}
	if meta.Author != "" {
		pdf.SetAuthor(meta.Author, true)
	}

	for i, sl := range slices {
		pdf.AddPage()
		if sl.Height == 0 {
			continue
		}
		name := fmt.Sprintf("slice-%d", i)
		part := img.SubImage(image.Rect(bounds.Min.X, bounds.Min.Y+sl.Offset, bounds.Max.X, bounds.Min.Y+sl.Offset+sl.Height))
		var buf bytes.Buffer
		if err := png.Encode(&buf, part); err != nil {
			return nil, fmt.Errorf("failed to encode slice %d: %w", i, err)
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		h := usableW * float64(sl.Height) / float64(bounds.Dx())
		pdf.ImageOptions(name, margins.Left, margins.Top, usableW, h, false, opts, 0, "")
		if pdf.Err() {
			return nil, fmt.Errorf("failed to place slice %d: %w", i, pdf.Error())
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return &Document{Bytes: out.Bytes(), Slices: slices, Pages: pdf.PageNo()}, nil
}

// Package export runs the report pipeline: normalize, render in a sandbox,
// rasterize, paginate and archive.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/archive"
	"github.com/de-tools/daily-report/pkg/services/config"
	"github.com/de-tools/daily-report/pkg/services/normalize"
	"github.com/de-tools/daily-report/pkg/services/paginate"
	"github.com/de-tools/daily-report/pkg/services/raster"
	"github.com/de-tools/daily-report/pkg/services/render"
	"github.com/de-tools/daily-report/pkg/services/sheet"
)

// ErrSignatureRequired is returned before any work when a signature is
// mandatory and the snapshot has none.
var ErrSignatureRequired = errors.New("export: signature is required")

type Options struct {
	Scale            float64
	Format           paginate.PageFormat
	Margins          paginate.Margins
	RequireSignature bool
	VerificationCode bool
	Theme            render.Theme
}

func OptionsFromConfig(cfg config.ExportConfig) (Options, error) {
	format, err := paginate.FormatByName(cfg.PageSize)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Scale:            cfg.Scale,
		Format:           format,
		Margins:          paginate.UniformMargins(cfg.MarginMM),
		RequireSignature: cfg.RequireSignature,
		VerificationCode: cfg.VerificationCode,
		Theme:            render.DefaultTheme(),
	}, nil
}

// Archiver persists finished documents.
type Archiver interface {
	Archive(ctx context.Context, doc []byte, owner, role, date string) (domain.ArchiveEntry, error)
}

type Result struct {
	Filename string
	Document []byte
	Pages    int
	Slices   []paginate.Slice
	Entry    domain.ArchiveEntry
	Blocks   []layout.Block
}

type Exporter struct {
	settings   config.Settings
	opts       Options
	archiver   Archiver
	now        func() time.Time
	newSandbox func(render.Theme) (*render.Sandbox, error)
}

// NewExporter builds the pipeline. archiver may be nil, in which case
// documents are produced but not archived.
func NewExporter(settings config.Settings, opts Options, archiver Archiver) *Exporter {
	return &Exporter{
		settings:   settings,
		opts:       opts,
		archiver:   archiver,
		now:        time.Now,
		newSandbox: render.NewSandbox,
	}
}

// Export produces the PDF for snapshot and archives it. A failed remote upload
// degrades to a local copy, reported through Result.Entry.StorageKind. Errors
// before archiving leave no archive entry behind. When archiving fails
// entirely the finished document is still returned alongside the error.
func (e *Exporter) Export(ctx context.Context, snapshot domain.ReportSnapshot) (*Result, error) {
	if e.opts.RequireSignature && len(snapshot.Signature) == 0 {
		return nil, ErrSignatureRequired
	}
	if strings.TrimSpace(snapshot.Date) == "" {
		snapshot.Date = e.now().Format("2006-01-02")
	}
	if !archive.ValidDate(snapshot.Date) {
		return nil, fmt.Errorf("%w: %q", archive.ErrInvalidDate, snapshot.Date)
	}
	id := snapshot.Identity
	logger := zerolog.Ctx(ctx).With().
		Str("owner", id.Owner).
		Str("role", id.Role).
		Str("date", snapshot.Date).
		Logger()

	settings := e.settings.ForRole(id.Role)
	blocks := normalize.Normalize(snapshot, settings, e.now())

	doc, err := e.document(logger.WithContext(ctx), snapshot, settings, blocks)
	if err != nil {
		logger.Error().Err(err).Msg("report export failed")
		return nil, err
	}

	res := &Result{
		Filename: archive.Filename(snapshot.Date),
		Document: doc.Bytes,
		Pages:    doc.Pages,
		Slices:   doc.Slices,
		Blocks:   blocks,
	}
	if e.archiver == nil {
		return res, nil
	}

	entry, err := e.archiver.Archive(logger.WithContext(ctx), doc.Bytes, id.Owner, id.Role, snapshot.Date)
	if err != nil {
		logger.Error().Err(err).Msg("report could not be archived")
		return res, fmt.Errorf("failed to archive report: %w", err)
	}
	if entry.StorageKind == domain.StorageLocal {
		logger.Warn().Str("ref", entry.LocationRef).Msg("report kept locally only")
	}
	res.Entry = entry
	return res, nil
}

func (e *Exporter) document(
	ctx context.Context,
	snapshot domain.ReportSnapshot,
	settings config.Settings,
	blocks []layout.Block,
) (*paginate.Document, error) {
	logger := zerolog.Ctx(ctx)
	id := snapshot.Identity

	sb, err := e.newSandbox(e.opts.Theme)
	if err != nil {
		return nil, fmt.Errorf("failed to create render sandbox: %w", err)
	}
	defer func() {
		if err := sb.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release render sandbox")
		}
	}()

	opts := render.RenderOptions{
		Title:          settings.Title,
		Subtitle:       subtitle(id, snapshot.Date),
		Signature:      snapshot.Signature,
		SignatureLabel: settings.Label("signature"),
		SignerName:     id.Name,
	}
	if e.opts.VerificationCode {
		opts.Verification = archive.Key(id.Owner, id.Role, snapshot.Date)
	}
	surface, err := sb.Render(blocks, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	if len(snapshot.Signature) > 0 && !surface.SignaturePlaced() {
		logger.Warn().Msg("signature image could not be decoded, drawing placeholder")
	}

	img, err := raster.Rasterize(surface, e.opts.Scale)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize report: %w", err)
	}
	doc, err := paginate.Paginate(img, e.opts.Format, e.opts.Margins, paginate.Metadata{
		Title:  settings.Title + " " + snapshot.Date,
		Author: id.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to paginate report: %w", err)
	}
	logger.Debug().Int("pages", doc.Pages).Int("height", img.Bounds().Dy()).Msg("report document assembled")
	return doc, nil
}

// Workbook exports the normalized report as a spreadsheet. It neither
// renders nor archives.
func (e *Exporter) Workbook(snapshot domain.ReportSnapshot) (*excelize.File, string, error) {
	if strings.TrimSpace(snapshot.Date) == "" {
		snapshot.Date = e.now().Format("2006-01-02")
	}
	if !archive.ValidDate(snapshot.Date) {
		return nil, "", fmt.Errorf("%w: %q", archive.ErrInvalidDate, snapshot.Date)
	}
	settings := e.settings.ForRole(snapshot.Identity.Role)
	f, err := sheet.Workbook(normalize.Normalize(snapshot, settings, e.now()))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build workbook: %w", err)
	}
	return f, snapshot.Date + ".xlsx", nil
}

func subtitle(id domain.Identity, date string) string {
	var parts []string
	for _, p := range []string{id.Name, id.Role, id.Depot, date} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

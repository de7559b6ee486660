package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/archive"
	"github.com/de-tools/daily-report/pkg/services/config"
	"github.com/de-tools/daily-report/pkg/services/paginate"
	"github.com/de-tools/daily-report/pkg/services/raster"
	"github.com/de-tools/daily-report/pkg/services/render"
	"github.com/de-tools/daily-report/pkg/store/duckdb"
	archivestore "github.com/de-tools/daily-report/pkg/store/duckdb/archive"
	"github.com/de-tools/daily-report/pkg/store/objectstore"
)

// unreachableStore fails every call like a remote store behind a dead network.
type unreachableStore struct {
	puts int
}

var errUnreachable = errors.New("dial tcp: connection refused")

func (s *unreachableStore) Put(context.Context, string, []byte, string) error {
	s.puts++
	return errUnreachable
}

func (s *unreachableStore) Get(context.Context, string) ([]byte, error) {
	return nil, errUnreachable
}

func (s *unreachableStore) List(context.Context, string) ([]objectstore.Object, error) {
	return nil, errUnreachable
}

func (s *unreachableStore) Delete(context.Context, string) error {
	return errUnreachable
}

func (s *unreachableStore) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", errUnreachable
}

type fixture struct {
	bridge   *archive.Bridge
	remote   *unreachableStore
	exporter *Exporter
}

func setupFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	history, err := archivestore.NewStore(db, 0)
	require.NoError(t, err)
	remote := &unreachableStore{}
	bridge, err := archive.NewBridge(remote, history)
	require.NoError(t, err)

	e := NewExporter(config.DefaultSettings(), opts, bridge)
	e.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return &fixture{bridge: bridge, remote: remote, exporter: e}
}

func defaultOptions() Options {
	return Options{
		Scale:            2,
		Format:           paginate.A4,
		Margins:          paginate.UniformMargins(10),
		RequireSignature: true,
		VerificationCode: true,
		Theme:            render.DefaultTheme(),
	}
}

func signature(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for x := 10; x < 110; x++ {
		img.Set(x, 20+x%7, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func salesSnapshot(t *testing.T) domain.ReportSnapshot {
	return domain.ReportSnapshot{
		Identity:   domain.Identity{Owner: "u-1", Name: "Budi", Role: "sales", Depot: "Jakarta"},
		Date:       "2026-10-18",
		Evaluation: domain.Evaluation{Theme: domain.ThemeAttitude},
		Projects: []domain.ProjectView{{
			ID:       "store-revamp",
			Name:     "Store revamp",
			Deadline: "2026-10-20",
			Steps:    []domain.ProjectStep{{Label: "Survey", Done: true}, {Label: "Deal"}},
		}},
		Schedule: []domain.ScheduleEntry{{
			ID:   "s1",
			Date: "2026-10-18",
			Plan: []string{"Visit 5 outlets"},
		}},
		Signature: signature(t),
	}
}

func findCard(blocks []layout.Block, title string) (layout.Card, bool) {
	for _, b := range blocks {
		if c, ok := b.(layout.Card); ok && c.Title == title {
			return c, true
		}
	}
	return layout.Card{}, false
}

func TestExport_DegradesToLocalArchive(t *testing.T) {
	f := setupFixture(t, defaultOptions())
	ctx := context.Background()

	res, err := f.exporter.Export(ctx, salesSnapshot(t))

	require.NoError(t, err)
	assert.Equal(t, 1, f.remote.puts)
	assert.Equal(t, "2026-10-18.pdf", res.Filename)
	assert.True(t, bytes.HasPrefix(res.Document, []byte("%PDF-")))
	assert.GreaterOrEqual(t, res.Pages, 1)
	assert.Len(t, res.Slices, res.Pages)

	assert.Equal(t, domain.StorageLocal, res.Entry.StorageKind)
	assert.Equal(t, "u-1", res.Entry.Owner)

	entries, err := f.bridge.List(ctx, "u-1", "sales")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.Entry.LocationRef, entries[0].LocationRef)

	data, name, err := f.bridge.Download(ctx, "u-1", "sales", res.Entry.LocationRef)
	require.NoError(t, err)
	assert.Equal(t, res.Document, data)
	assert.Equal(t, "2026-10-18.pdf", name)

	evaluation, ok := findCard(res.Blocks, "Evaluation")
	require.True(t, ok)
	table := evaluation.Body[0].(layout.Table)
	assert.Len(t, table.Rows, 5)
	assert.Equal(t, "Budi · average 3.0", table.Caption)

	projects, ok := findCard(res.Blocks, "Project Tracking")
	require.True(t, ok)
	project := projects.Body[0].(layout.Card)
	assert.Equal(t, "warn", project.Badge)
	assert.Contains(t, project.Body[0].(layout.KeyValueList).Entries[0].Value, "50%")

	schedule, ok := findCard(res.Blocks, "Schedule")
	require.True(t, ok)
	day := schedule.Body[0].(layout.Card)
	assert.Contains(t, day.Body, layout.Text{Content: "Plan\n• Visit 5 outlets"})
	assert.Contains(t, day.Body, layout.KeyValueList{Entries: []layout.KeyValue{
		{Key: "Plan", Value: "Open"},
		{Key: "Realization", Value: "Open"},
	}})
}

func TestExport_DailyReportScenario(t *testing.T) {
	f := setupFixture(t, defaultOptions())
	settings := config.DefaultSettings()
	settings.Checklist = []config.ChecklistSection{{
		Key:   "opening",
		Title: "Opening",
		Rows: []config.ChecklistRow{
			{Key: "a", Label: "A", Kind: config.RowOption},
			{Key: "b", Label: "B", Kind: config.RowOption},
		},
	}}
	f.exporter.settings = settings

	now := f.exporter.now()
	attitude := map[string]int{}
	for _, item := range settings.Evaluation[string(domain.ThemeAttitude)] {
		attitude[item] = 3
	}
	snap := domain.ReportSnapshot{
		Identity: domain.Identity{Owner: "u-1", Name: "Budi", Role: "sales", Depot: "Jakarta"},
		Date:     "2026-10-18",
		Checklist: map[string]map[string]domain.ChecklistEntry{
			"opening": {"a": {Value: "Cocok", Note: "ok"}},
		},
		Evaluation: domain.Evaluation{
			Theme:  domain.ThemeAttitude,
			Scores: map[string]map[string]int{"Budi": attitude},
		},
		Projects: []domain.ProjectView{{
			ID:       "store-revamp",
			Name:     "Store revamp",
			Deadline: now.AddDate(0, 0, 2).Format("2006-01-02"),
			Steps: []domain.ProjectStep{
				{Label: "Survey", Done: true},
				{Label: "Quote", Done: true},
				{Label: "Deal"},
				{Label: "Install"},
			},
		}},
		Schedule: []domain.ScheduleEntry{{
			ID:         "s1",
			Date:       "2026-10-18",
			Plan:       []string{"Visit 5 outlets"},
			PlanLocked: true,
		}},
		Signature: signature(t),
	}

	res, err := f.exporter.Export(context.Background(), snap)
	require.NoError(t, err)

	checklist, ok := findCard(res.Blocks, "Checklist")
	require.True(t, ok)
	require.Len(t, checklist.Body, 1)
	assert.Equal(t, [][]string{{"A", "Cocok", "ok"}, {"B", "", ""}}, checklist.Body[0].(layout.Table).Rows)

	evaluation, ok := findCard(res.Blocks, "Evaluation")
	require.True(t, ok)
	assert.Equal(t, "attitude", evaluation.Badge)
	scores := evaluation.Body[0].(layout.Table)
	require.Len(t, scores.Rows, 5)
	for _, row := range scores.Rows {
		assert.Equal(t, "3", row[2])
	}
	assert.Equal(t, "Budi · average 3.0", scores.Caption)

	target, ok := findCard(res.Blocks, "Target & Achievement")
	require.True(t, ok)
	assert.Equal(t, "empty", target.Badge)
	assert.Contains(t, target.Body, layout.KeyValueList{Entries: []layout.KeyValue{{Key: "Status", Value: "Not filled"}}})

	projects, ok := findCard(res.Blocks, "Project Tracking")
	require.True(t, ok)
	project := projects.Body[0].(layout.Card)
	assert.Equal(t, "warn", project.Badge)
	assert.Equal(t, layout.KeyValue{Key: "Completion", Value: "50% (2/4)"}, project.Body[0].(layout.KeyValueList).Entries[0])

	schedule, ok := findCard(res.Blocks, "Schedule")
	require.True(t, ok)
	day := schedule.Body[0].(layout.Card)
	assert.Equal(t, "2026-10-18", day.Title)
	assert.Contains(t, day.Body, layout.Text{Content: "Plan\n• Visit 5 outlets"})
	assert.Contains(t, day.Body, layout.KeyValueList{Entries: []layout.KeyValue{
		{Key: "Plan", Value: "Locked"},
		{Key: "Realization", Value: "Open"},
	}})

	require.NotEmpty(t, res.Slices)
	assert.Len(t, res.Slices, res.Pages)
	full := res.Slices[0].Height
	next := 0
	for i, s := range res.Slices {
		assert.Equal(t, next, s.Offset, "slice %d starts where the previous one ended", i)
		assert.Positive(t, s.Height)
		if i < len(res.Slices)-1 {
			assert.Equal(t, full, s.Height, "only the last slice may be short")
		} else {
			assert.LessOrEqual(t, s.Height, full)
		}
		next = s.Offset + s.Height
	}
}

func TestExport_RejectsMalformedDateBeforeRendering(t *testing.T) {
	f := setupFixture(t, defaultOptions())
	sandboxes := 0
	f.exporter.newSandbox = func(theme render.Theme) (*render.Sandbox, error) {
		sandboxes++
		return render.NewSandbox(theme)
	}
	snap := salesSnapshot(t)
	snap.Date = "18/10/2026"

	res, err := f.exporter.Export(context.Background(), snap)

	assert.ErrorIs(t, err, archive.ErrInvalidDate)
	assert.Nil(t, res)
	assert.Zero(t, sandboxes)
	assert.Zero(t, f.remote.puts)

	_, _, err = f.exporter.Workbook(snap)
	assert.ErrorIs(t, err, archive.ErrInvalidDate)
}

type failingArchiver struct{}

var errDiskFull = errors.New("disk full")

func (failingArchiver) Archive(context.Context, []byte, string, string, string) (domain.ArchiveEntry, error) {
	return domain.ArchiveEntry{}, errDiskFull
}

func TestExport_ArchiveFailureKeepsDocument(t *testing.T) {
	f := setupFixture(t, defaultOptions())
	f.exporter.archiver = failingArchiver{}

	res, err := f.exporter.Export(context.Background(), salesSnapshot(t))

	assert.ErrorIs(t, err, errDiskFull)
	require.NotNil(t, res)
	assert.True(t, bytes.HasPrefix(res.Document, []byte("%PDF-")))
	assert.Equal(t, "2026-10-18.pdf", res.Filename)
	assert.Empty(t, res.Entry.LocationRef)
}

func TestExport_RequiresSignature(t *testing.T) {
	f := setupFixture(t, defaultOptions())
	ctx := context.Background()
	snap := salesSnapshot(t)
	snap.Signature = nil

	res, err := f.exporter.Export(ctx, snap)

	assert.ErrorIs(t, err, ErrSignatureRequired)
	assert.Nil(t, res)
	assert.Zero(t, f.remote.puts)
	entries, err := f.bridge.List(ctx, "u-1", "sales")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_SignatureOptional(t *testing.T) {
	opts := defaultOptions()
	opts.RequireSignature = false
	f := setupFixture(t, opts)
	snap := salesSnapshot(t)
	snap.Signature = nil

	res, err := f.exporter.Export(context.Background(), snap)

	require.NoError(t, err)
	assert.NotEmpty(t, res.Document)
}

func TestExport_RenderFailureClosesSandboxAndArchivesNothing(t *testing.T) {
	opts := defaultOptions()
	opts.Theme.Width = 0
	opts.Theme.Padding = 0
	f := setupFixture(t, opts)

	var sandboxes []*render.Sandbox
	f.exporter.newSandbox = func(theme render.Theme) (*render.Sandbox, error) {
		sb, err := render.NewSandbox(theme)
		sandboxes = append(sandboxes, sb)
		return sb, err
	}

	_, err := f.exporter.Export(context.Background(), salesSnapshot(t))

	assert.ErrorIs(t, err, raster.ErrEmptyRaster)
	require.Len(t, sandboxes, 1)
	assert.True(t, sandboxes[0].Closed())
	assert.Zero(t, f.remote.puts)
}

func TestExport_SandboxClosedAfterSuccess(t *testing.T) {
	opts := defaultOptions()
	opts.VerificationCode = false
	f := setupFixture(t, opts)
	var sb *render.Sandbox
	f.exporter.newSandbox = func(theme render.Theme) (*render.Sandbox, error) {
		var err error
		sb, err = render.NewSandbox(theme)
		return sb, err
	}

	_, err := f.exporter.Export(context.Background(), salesSnapshot(t))

	require.NoError(t, err)
	assert.True(t, sb.Closed())
}

func TestExport_DefaultsDate(t *testing.T) {
	f := setupFixture(t, defaultOptions())
	snap := salesSnapshot(t)
	snap.Date = ""

	res, err := f.exporter.Export(context.Background(), snap)

	require.NoError(t, err)
	assert.Equal(t, "2026-10-18.pdf", res.Filename)
}

func TestExporter_Workbook(t *testing.T) {
	f := setupFixture(t, defaultOptions())

	wb, name, err := f.exporter.Workbook(salesSnapshot(t))

	require.NoError(t, err)
	assert.Equal(t, "2026-10-18.xlsx", name)
	assert.Contains(t, wb.GetSheetList(), "Checklist")
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.ExportConfig{Scale: 3, PageSize: "letter", MarginMM: 12, RequireSignature: true})
	require.NoError(t, err)
	assert.Equal(t, paginate.Letter, opts.Format)
	assert.Equal(t, paginate.UniformMargins(12), opts.Margins)

	_, err = OptionsFromConfig(config.ExportConfig{PageSize: "B5"})
	assert.Error(t, err)
}

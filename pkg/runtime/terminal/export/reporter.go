package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/daily-report/pkg/models/domain"
	pipeline "github.com/de-tools/daily-report/pkg/services/export"
)

type TableConfig struct {
	DateWidth      int
	StorageWidth   int
	SubmittedWidth int
	RefWidth       int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		DateWidth:      10,
		StorageWidth:   7,
		SubmittedWidth: 20,
		RefWidth:       56,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

const exportTmpl = `Report {{.Result.Filename}} written to {{.Path}}
Pages: {{.Result.Pages}}
{{if .Result.Entry.LocationRef}}Archive: {{.Result.Entry.StorageKind}} {{.Result.Entry.LocationRef}}
{{if eq (print .Result.Entry.StorageKind) "local"}}Warning: remote upload unavailable, kept a local copy
{{end}}{{else}}Archive: skipped
{{end}}`

// HandleExport prints the outcome of one export written to path.
func (c *Reporter) HandleExport(res *pipeline.Result, path string) error {
	t, err := template.New("export").Parse(exportTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, struct {
		Result *pipeline.Result
		Path   string
	}{res, path})
}

const entriesTmpl = `
{{separator}}
{{formatRow "Date" "Storage" "Submitted" "Ref"}}
{{separator}}
{{range .}}{{formatRow .DateISO (print .StorageKind) (submitted .SubmittedAt) .LocationRef}}
{{else}}{{empty}}
{{end}}{{separator}}
`

// HandleEntries prints archive entries as a table.
func (c *Reporter) HandleEntries(entries []domain.ArchiveEntry) error {
	width := c.config.DateWidth + c.config.StorageWidth + c.config.SubmittedWidth + c.config.RefWidth + 9
	funcMap := template.FuncMap{
		"formatRow": func(date, storage, submitted, ref string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s |",
				c.config.DateWidth, date,
				c.config.StorageWidth, storage,
				c.config.SubmittedWidth, submitted,
				c.config.RefWidth, ref)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.DateWidth+2),
				strings.Repeat("-", c.config.StorageWidth+2),
				strings.Repeat("-", c.config.SubmittedWidth+2),
				strings.Repeat("-", c.config.RefWidth+2))
		},
		"submitted": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.UTC().Format("2006-01-02 15:04 UTC")
		},
		"empty": func() string {
			return fmt.Sprintf("| %-*s |", width, "no archived reports")
		},
	}

	t, err := template.New("entries").Funcs(funcMap).Parse(entriesTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, entries)
}

// HandleLine prints a single value such as a token or URL.
func (c *Reporter) HandleLine(format string, args ...any) error {
	_, err := fmt.Fprintf(c.writer, format+"\n", args...)
	return err
}

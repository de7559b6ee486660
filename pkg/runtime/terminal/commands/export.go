package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/daily-report/pkg/adapters"
	"github.com/de-tools/daily-report/pkg/models/domain"
	pipeline "github.com/de-tools/daily-report/pkg/services/export"
)

type ExportCmd struct {
	env       Env
	snapshot  string
	out       string
	owner     string
	role      string
	sheet     bool
	noArchive bool
}

func NewExportCmd(env Env) *cobra.Command {
	ec := &ExportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a report snapshot to PDF and archive it",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.snapshot, "snapshot", "", "Path to the snapshot file (JSON or YAML)")
	cmd.Flags().StringVarP(&ec.out, "out", "o", "", "Output file or directory (default is the report filename)")
	cmd.Flags().StringVar(&ec.owner, "owner", "", "Override the owner key of the snapshot")
	cmd.Flags().StringVar(&ec.role, "role", "", "Override the role of the snapshot")
	cmd.Flags().BoolVar(&ec.sheet, "sheet", false, "Write a spreadsheet instead of a PDF")
	cmd.Flags().BoolVar(&ec.noArchive, "no-archive", false, "Do not archive the generated PDF")

	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	req, err := LoadSnapshot(ec.snapshot)
	if err != nil {
		return err
	}
	snapshot, err := adapters.MapExportRequestToSnapshot(req, domain.Identity{Owner: ec.owner, Role: ec.role})
	if err != nil {
		return err
	}
	if snapshot.Identity.Owner == "" || snapshot.Identity.Role == "" {
		return fmt.Errorf("snapshot needs an owner and a role (set them in the file or with --owner/--role)")
	}

	a, err := ec.env.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close archive database")
		}
	}()

	exporter := a.Exporter
	if ec.noArchive {
		exporter = pipeline.NewExporter(a.Config.Report, a.Options, nil)
	}

	if ec.sheet {
		f, name, err := exporter.Workbook(snapshot)
		if err != nil {
			return err
		}
		defer f.Close()
		path := outputPath(ec.out, name)
		if err := f.SaveAs(path); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return ec.env.Reporter.HandleLine("Spreadsheet written to %s", path)
	}

	res, err := exporter.Export(ctx, snapshot)
	if err != nil && (res == nil || len(res.Document) == 0) {
		return err
	}
	path := outputPath(ec.out, res.Filename)
	if werr := os.WriteFile(path, res.Document, 0o644); werr != nil {
		return errors.Join(err, fmt.Errorf("failed to write %s: %w", path, werr))
	}
	if err != nil {
		return fmt.Errorf("report written to %s but not archived: %w", path, err)
	}
	return ec.env.Reporter.HandleExport(res, path)
}

// outputPath resolves out against the generated filename. A directory (or an
// empty value) receives the generated name.
func outputPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

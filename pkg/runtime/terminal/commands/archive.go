package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/daily-report/pkg/runtime/app"
)

type ArchiveCmd struct {
	env    Env
	owner  string
	role   string
	ref    string
	out    string
	expiry time.Duration
}

func NewArchiveCmd(env Env) *cobra.Command {
	ac := &ArchiveCmd{env: env}
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse and manage archived reports",
	}
	cmd.PersistentFlags().StringVar(&ac.owner, "owner", "", "Owner key of the archive")
	cmd.PersistentFlags().StringVar(&ac.role, "role", "", "Role of the archive")
	_ = cmd.MarkPersistentFlagRequired("owner")
	_ = cmd.MarkPersistentFlagRequired("role")

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		RunE:  ac.withApp(ac.list),
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Download an archived report",
		RunE:  ac.withApp(ac.get),
	}
	get.Flags().StringVar(&ac.ref, "ref", "", "Archive reference")
	get.Flags().StringVarP(&ac.out, "out", "o", "", "Output file or directory")
	_ = get.MarkFlagRequired("ref")

	link := &cobra.Command{
		Use:   "link",
		Short: "Print a time limited download link for a remote report",
		RunE:  ac.withApp(ac.link),
	}
	link.Flags().StringVar(&ac.ref, "ref", "", "Archive reference")
	link.Flags().DurationVar(&ac.expiry, "expiry", 0, "Link lifetime (default is storage.presign_expiry)")
	_ = link.MarkFlagRequired("ref")

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete an archived report",
		RunE:  ac.withApp(ac.delete),
	}
	del.Flags().StringVar(&ac.ref, "ref", "", "Archive reference")
	_ = del.MarkFlagRequired("ref")

	cmd.AddCommand(list, get, link, del)
	return cmd
}

func (ac *ArchiveCmd) withApp(fn func(*cobra.Command, *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := ac.env.Open(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				zerolog.Ctx(cmd.Context()).Warn().Err(err).Msg("failed to close archive database")
			}
		}()
		return fn(cmd, a)
	}
}

func (ac *ArchiveCmd) list(cmd *cobra.Command, a *app.App) error {
	entries, err := a.Bridge.List(cmd.Context(), ac.owner, ac.role)
	if err != nil {
		return err
	}
	return ac.env.Reporter.HandleEntries(entries)
}

func (ac *ArchiveCmd) get(cmd *cobra.Command, a *app.App) error {
	data, filename, err := a.Bridge.Download(cmd.Context(), ac.owner, ac.role, ac.ref)
	if err != nil {
		return err
	}
	path := outputPath(ac.out, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return ac.env.Reporter.HandleLine("Report written to %s", path)
}

func (ac *ArchiveCmd) link(cmd *cobra.Command, a *app.App) error {
	expiry := ac.expiry
	if expiry <= 0 {
		expiry = a.Config.Storage.PresignExpiry
	}
	url, err := a.Bridge.Link(cmd.Context(), ac.owner, ac.role, ac.ref, expiry)
	if err != nil {
		return err
	}
	return ac.env.Reporter.HandleLine("%s", url)
}

func (ac *ArchiveCmd) delete(cmd *cobra.Command, a *app.App) error {
	if err := a.Bridge.Delete(cmd.Context(), ac.owner, ac.role, ac.ref); err != nil {
		return err
	}
	return ac.env.Reporter.HandleLine("Deleted %s", ac.ref)
}

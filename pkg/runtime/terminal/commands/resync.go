package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ResyncCmd struct {
	env   Env
	batch int
}

func NewResyncCmd(env Env) *cobra.Command {
	rc := &ResyncCmd{env: env}
	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Upload local fallback copies to the remote archive",
		RunE:  rc.run,
	}
	cmd.Flags().IntVar(&rc.batch, "batch", 0, "Maximum copies to upload (default is storage.resync_batch)")
	return cmd
}

func (rc *ResyncCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := rc.env.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close archive database")
		}
	}()

	batch := rc.batch
	if batch <= 0 {
		batch = a.Config.Storage.ResyncBatch
	}
	moved, remaining, err := a.Bridge.Resync(ctx, batch)
	if err != nil {
		return err
	}
	return rc.env.Reporter.HandleLine("Moved %d local copies, %d left local", moved, remaining)
}

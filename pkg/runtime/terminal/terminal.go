package terminal

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/daily-report/pkg/runtime/app"
	"github.com/de-tools/daily-report/pkg/runtime/terminal/commands"
	"github.com/de-tools/daily-report/pkg/runtime/terminal/export"
	"github.com/de-tools/daily-report/pkg/services/config"
)

// CLI represents the command-line interface
type CLI struct {
	opts     Options
	reporter *export.Reporter
	rootCmd  *cobra.Command

	configPath string
	profile    string
	dbPath     string
	verbose    bool
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// Logs receives diagnostics; defaults to stderr.
	Logs io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logs == nil {
		opts.Logs = os.Stderr
	}

	cli := &CLI{
		opts:     opts,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "report",
		Short:         "Daily report generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.InfoLevel
			if cli.verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.opts.Logs}).
				Level(level).
				With().Timestamp().Logger()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithContext(ctx))
		},
	}

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&cli.profile, "storage", "", "Storage profile overriding storage.profile")
	cmd.PersistentFlags().StringVar(&cli.dbPath, "db", "", "History database overriding storage.db_path")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Enable debug logging")

	env := commands.Env{
		Config: func() (*config.Config, error) {
			return config.LoadConfig(cli.configPath)
		},
		Open: func(ctx context.Context) (*app.App, error) {
			return app.Open(ctx, app.Options{
				ConfigPath: cli.configPath,
				Profile:    cli.profile,
				DBPath:     cli.dbPath,
			})
		},
		Reporter: cli.reporter,
	}

	cmd.AddCommand(commands.NewExportCmd(env))
	cmd.AddCommand(commands.NewArchiveCmd(env))
	cmd.AddCommand(commands.NewTokenCmd(env))
	cmd.AddCommand(commands.NewResyncCmd(env))

	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/daily-report/pkg/runtime/app"
	"github.com/de-tools/daily-report/pkg/server"
	"github.com/de-tools/daily-report/pkg/services/resync"
)

var (
	cfgPath string
	profile string
	dbPath  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the daily report API",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the YAML config file")
	rootCmd.Flags().StringVar(&profile, "storage", "", "Storage profile overriding storage.profile")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "History database overriding storage.db_path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	a, err := app.Open(ctx, app.Options{ConfigPath: cfgPath, Profile: profile, DBPath: dbPath})
	if err != nil {
		return fmt.Errorf("failed to initialize report pipeline: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close archive database")
		}
	}()

	cfg := a.Config
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be set (DAILYREPORT_AUTH_JWT_SECRET)")
	}

	logger.Info().
		Str("page_size", a.Options.Format.Name).
		Float64("scale", a.Options.Scale).
		Bool("remote_archive", a.Bridge.HasRemote()).
		Msg("report pipeline ready")

	if a.Bridge.HasRemote() && cfg.Storage.ResyncInterval > 0 {
		runner := resync.NewRunner(a.Bridge, resync.Config{
			Interval:  cfg.Storage.ResyncInterval,
			BatchSize: cfg.Storage.ResyncBatch,
		})
		resyncCtx, stopResync := context.WithCancel(ctx)
		go runner.Run(resyncCtx)
		defer func() {
			stopResync()
			<-runner.Done()
		}()
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Exporter:   a.Exporter,
			Archive:    a.Bridge,
			JWTSecret:  cfg.Auth.JWTSecret,
			LinkExpiry: cfg.Storage.PresignExpiry,
		},
	})

	if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

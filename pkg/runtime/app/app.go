// Package app assembles the report pipeline from configuration. It is shared
// by the web server and the command line tool.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/daily-report/pkg/services/archive"
	"github.com/de-tools/daily-report/pkg/services/config"
	"github.com/de-tools/daily-report/pkg/services/export"
	"github.com/de-tools/daily-report/pkg/store/duckdb"
	duckdbarchive "github.com/de-tools/daily-report/pkg/store/duckdb/archive"
	"github.com/de-tools/daily-report/pkg/store/objectstore"
)

type Options struct {
	ConfigPath string
	// Profile overrides storage.profile from the config when set.
	Profile string
	// DBPath overrides storage.db_path from the config when set.
	DBPath string
}

type App struct {
	Config   *config.Config
	Bridge   *archive.Bridge
	Exporter *export.Exporter
	Options  export.Options
	db       *sql.DB
}

// Open loads the config, opens the local history database and connects the
// remote archive when a storage profile is selected.
func Open(ctx context.Context, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Profile != "" {
		cfg.Storage.Profile = opts.Profile
	}
	if opts.DBPath != "" {
		cfg.Storage.DBPath = opts.DBPath
	}

	exportOpts, err := export.OptionsFromConfig(cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("invalid export config: %w", err)
	}

	remote, err := openRemote(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Storage.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	history, err := duckdbarchive.NewStore(db, cfg.Storage.LocalRetention)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create archive store: %w", err), db.Close())
	}

	bridge, err := archive.NewBridge(remote, history)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	if remote == nil {
		logger.Info().Str("db", cfg.Storage.DBPath).Msg("no storage profile selected, archiving locally")
	} else {
		logger.Info().Str("profile", cfg.Storage.Profile).Msg("remote archive connected")
	}

	return &App{
		Config:   cfg,
		Bridge:   bridge,
		Exporter: export.NewExporter(cfg.Report, exportOpts, bridge),
		Options:  exportOpts,
		db:       db,
	}, nil
}

func openRemote(ctx context.Context, cfg config.StorageConfig) (objectstore.Store, error) {
	if cfg.Profile == "" {
		return nil, nil
	}
	if cfg.ProfilesPath == "" {
		return nil, fmt.Errorf("storage profile %q selected but storage.profiles_path is empty", cfg.Profile)
	}

	registry, err := config.NewRegistry(cfg.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage registry: %w", err)
	}
	profile, err := registry.GetStorage(ctx, cfg.Profile)
	if err != nil {
		return nil, err
	}
	remote, err := objectstore.New(ctx, *profile)
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s: %w", profile, err)
	}
	return remote, nil
}

// Close releases the history database.
func (a *App) Close() error {
	return a.db.Close()
}

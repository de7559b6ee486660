package commands

import (
	"context"

	"github.com/de-tools/daily-report/pkg/runtime/app"
	"github.com/de-tools/daily-report/pkg/runtime/terminal/export"
	"github.com/de-tools/daily-report/pkg/services/config"
)

// Env gives commands lazy access to the configured runtime.
type Env struct {
	Config   func() (*config.Config, error)
	Open     func(ctx context.Context) (*app.App, error)
	Reporter *export.Reporter
}

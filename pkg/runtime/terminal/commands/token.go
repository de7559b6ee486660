package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/server/middleware"
)

type TokenCmd struct {
	env      Env
	identity domain.Identity
	ttl      time.Duration
}

func NewTokenCmd(env Env) *cobra.Command {
	tc := &TokenCmd{env: env}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the web API",
		RunE:  tc.run,
	}

	cmd.Flags().StringVar(&tc.identity.Owner, "owner", "", "Owner key")
	cmd.Flags().StringVar(&tc.identity.Role, "role", "", "Role")
	cmd.Flags().StringVar(&tc.identity.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&tc.identity.Depot, "depot", "", "Depot")
	cmd.Flags().DurationVar(&tc.ttl, "ttl", 24*time.Hour, "Token lifetime")

	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func (tc *TokenCmd) run(_ *cobra.Command, _ []string) error {
	cfg, err := tc.env.Config()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}
	token, expires, err := middleware.GenerateToken(cfg.Auth.JWTSecret, tc.identity, tc.ttl)
	if err != nil {
		return err
	}
	return tc.env.Reporter.HandleLine("%s\n# expires %s", token, expires.UTC().Format(time.RFC3339))
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Export  ExportConfig  `mapstructure:"export"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Report  Settings      `mapstructure:"report"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ExportConfig struct {
	Scale            float64 `mapstructure:"scale"`
	PageSize         string  `mapstructure:"page_size"`
	MarginMM         float64 `mapstructure:"margin_mm"`
	RequireSignature bool    `mapstructure:"require_signature"`
	// VerificationCode prints a QR code of the archive key next to the
	// signature.
	VerificationCode bool `mapstructure:"verification_code"`
}

type StorageConfig struct {
	// Profile names a section of the ini storage registry; empty keeps
	// archives local only.
	Profile       string        `mapstructure:"profile"`
	ProfilesPath  string        `mapstructure:"profiles_path"`
	DBPath        string        `mapstructure:"db_path"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	// LocalRetention caps the local archive per owner and role; zero keeps
	// everything.
	LocalRetention int `mapstructure:"local_retention"`
	// ResyncInterval paces the background upload of local copies in the web
	// server; zero disables it.
	ResyncInterval time.Duration `mapstructure:"resync_interval"`
	ResyncBatch    int           `mapstructure:"resync_batch"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("export.scale", 2.0)
	v.SetDefault("export.page_size", "A4")
	v.SetDefault("export.margin_mm", 10.0)
	v.SetDefault("export.require_signature", true)
	v.SetDefault("export.verification_code", true)
	v.SetDefault("storage.db_path", "daily-report.db")
	v.SetDefault("storage.presign_expiry", "24h")
	v.SetDefault("storage.local_retention", 60)
	v.SetDefault("storage.resync_interval", "5m")
	v.SetDefault("storage.resync_batch", 20)
}

// LoadConfig reads the YAML config at path (optional) and overlays
// DAILYREPORT_* environment variables. Report settings not present in the file
// keep their built-in defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DAILYREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{Report: DefaultSettings()}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Export.Scale < 2 {
		cfg.Export.Scale = 2
	}
	return &cfg, nil
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

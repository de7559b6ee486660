package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Registry resolves named remote archive destinations from an ini file laid out
// like ~/.databrickscfg:
//
//	[default]
//	backend = s3
//	bucket  = daily-reports
//	region  = ap-southeast-1
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetStorage(ctx context.Context, profile string) (*domain.StorageProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetStorage(_ context.Context, profile string) (*domain.StorageProfile, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	backend := domain.BackendType(strings.ToLower(section.Key("backend").MustString(string(domain.BackendS3))))
	switch backend {
	case domain.BackendS3, domain.BackendMinio:
	default:
		return nil, fmt.Errorf("profile %s: unsupported backend %q", profile, backend)
	}

	bucket := section.Key("bucket").String()
	if bucket == "" {
		return nil, fmt.Errorf("profile %s: bucket is required", profile)
	}

	return &domain.StorageProfile{
		Name:       profile,
		Backend:    backend,
		Bucket:     bucket,
		Region:     section.Key("region").String(),
		Endpoint:   section.Key("endpoint").String(),
		AccessKey:  section.Key("access_key").String(),
		SecretKey:  section.Key("secret_key").String(),
		UseSSL:     section.Key("use_ssl").MustBool(true),
		AWSProfile: section.Key("aws_profile").String(),
	}, nil
}

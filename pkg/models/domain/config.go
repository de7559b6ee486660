package domain

import "fmt"

type BackendType string

const (
	BackendS3    BackendType = "s3"
	BackendMinio BackendType = "minio"
)

// StorageProfile is a named remote archive destination.
type StorageProfile struct {
	Name      string
	Backend   BackendType
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// AWSProfile selects a shared AWS config profile for the s3 backend.
	AWSProfile string
}

func (p StorageProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Backend, p.Name)
}

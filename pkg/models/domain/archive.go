package domain

import "time"

type StorageKind string

const (
	StorageLocal  StorageKind = "local"
	StorageRemote StorageKind = "remote"
)

// ArchiveEntry describes one archived report document.
type ArchiveEntry struct {
	ID          string
	Filename    string
	DateISO     string
	SubmittedAt time.Time
	Owner       string
	Role        string
	LocationRef string
	StorageKind StorageKind
}

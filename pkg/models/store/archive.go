package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// ArchiveRecord is a locally kept report document. Content is only populated
// by single record reads.
type ArchiveRecord struct {
	ID          string
	Owner       string
	Role        string
	DateISO     string
	Filename    string
	Size        int64
	Content     []byte
	SubmittedAt time.Time
}

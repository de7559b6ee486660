package adapters

import (
	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/store"
)

const LocalRefPrefix = "local:"

func MapStoreArchiveRecordToDomain(r store.ArchiveRecord) domain.ArchiveEntry {
	return domain.ArchiveEntry{
		ID:          r.ID,
		Filename:    r.Filename,
		DateISO:     r.DateISO,
		SubmittedAt: r.SubmittedAt,
		Owner:       r.Owner,
		Role:        r.Role,
		LocationRef: LocalRefPrefix + r.ID,
		StorageKind: domain.StorageLocal,
	}
}

func MapStoreArchiveRecordsToDomain(records []store.ArchiveRecord) []domain.ArchiveEntry {
	res := make([]domain.ArchiveEntry, 0, len(records))
	for _, r := range records {
		res = append(res, MapStoreArchiveRecordToDomain(r))
	}
	return res
}

// MapDomainArchiveEntryToStore builds the local record for entry holding doc.
func MapDomainArchiveEntryToStore(entry domain.ArchiveEntry, doc []byte) store.ArchiveRecord {
	return store.ArchiveRecord{
		ID:          entry.ID,
		Owner:       entry.Owner,
		Role:        entry.Role,
		DateISO:     entry.DateISO,
		Filename:    entry.Filename,
		Size:        int64(len(doc)),
		Content:     doc,
		SubmittedAt: entry.SubmittedAt,
	}
}

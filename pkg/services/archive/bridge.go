// Package archive persists generated report documents. Documents go to the
// remote object store when one is configured; if the upload fails a local copy
// is kept in the history store instead.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/daily-report/pkg/adapters"
	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/store"
	"github.com/de-tools/daily-report/pkg/store/objectstore"
)

var (
	ErrForeignReference = errors.New("archive: reference outside the caller's namespace")
	ErrNotFound         = errors.New("archive: entry not found")
	ErrNoRemote         = errors.New("archive: no remote store configured")
	ErrInvalidDate      = errors.New("archive: date must be YYYY-MM-DD")
)

const contentType = "application/pdf"

// History is the local store of fallback copies.
type History interface {
	Save(ctx context.Context, record store.ArchiveRecord) error
	List(ctx context.Context, owner, role string) ([]store.ArchiveRecord, error)
	Get(ctx context.Context, owner, role, id string) (*store.ArchiveRecord, error)
	Delete(ctx context.Context, owner, role, id string) error
	DeleteDate(ctx context.Context, owner, role, date string) error
	Pending(ctx context.Context, limit int) ([]store.ArchiveRecord, error)
}

type Bridge struct {
	remote  objectstore.Store
	history History
	now     func() time.Time
}

// NewBridge wires the stores. remote may be nil, in which case every document
// is archived locally.
func NewBridge(remote objectstore.Store, history History) (*Bridge, error) {
	if history == nil {
		return nil, fmt.Errorf("history store is nil")
	}
	return &Bridge{remote: remote, history: history, now: time.Now}, nil
}

func (b *Bridge) HasRemote() bool {
	return b.remote != nil
}

// Upload stores doc at the deterministic key for owner, role and date and
// returns the key. An existing document for the same date is overwritten.
func (b *Bridge) Upload(ctx context.Context, doc []byte, owner, role, date string) (string, error) {
	if !ValidDate(date) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if b.remote == nil {
		return "", ErrNoRemote
	}
	key := Key(owner, role, date)
	if err := b.remote.Put(ctx, key, doc, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Archive uploads doc and falls back to a local copy when the upload fails.
// It only returns an error when neither destination accepted the document.
func (b *Bridge) Archive(ctx context.Context, doc []byte, owner, role, date string) (domain.ArchiveEntry, error) {
	logger := zerolog.Ctx(ctx).With().Str("owner", owner).Str("role", role).Str("date", date).Logger()
	entry := domain.ArchiveEntry{
		Filename:    Filename(date),
		DateISO:     date,
		SubmittedAt: b.now().UTC(),
		Owner:       owner,
		Role:        role,
	}

	ref, err := b.Upload(ctx, doc, owner, role, date)
	if err == nil {
		entry.ID = ref
		entry.LocationRef = ref
		entry.StorageKind = domain.StorageRemote
		if derr := b.history.DeleteDate(ctx, owner, role, date); derr != nil {
			logger.Warn().Err(derr).Msg("failed to drop superseded local copy")
		}
		logger.Info().Str("ref", ref).Msg("report archived remotely")
		return entry, nil
	}
	if errors.Is(err, ErrInvalidDate) {
		return domain.ArchiveEntry{}, err
	}
	if !errors.Is(err, ErrNoRemote) {
		logger.Warn().Err(err).Msg("remote upload failed, keeping local copy")
	}

	entry.ID = uuid.NewString()
	entry.StorageKind = domain.StorageLocal
	entry.LocationRef = localRef(entry.ID)
	if lerr := b.history.Save(ctx, adapters.MapDomainArchiveEntryToStore(entry, doc)); lerr != nil {
		return domain.ArchiveEntry{}, fmt.Errorf("failed to archive report: %w", errors.Join(err, lerr))
	}
	logger.Info().Str("ref", entry.LocationRef).Msg("report archived locally")
	return entry, nil
}

// List returns remote and local entries of the owner, newest date first. A
// failing remote listing is logged and only local entries are returned.
func (b *Bridge) List(ctx context.Context, owner, role string) ([]domain.ArchiveEntry, error) {
	records, err := b.history.List(ctx, owner, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list local archive: %w", err)
	}
	entries := adapters.MapStoreArchiveRecordsToDomain(records)

	if b.remote != nil {
		objects, err := b.remote.List(ctx, Prefix(owner, role))
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("owner", owner).Msg("remote listing failed, showing local entries only")
		}
		for _, o := range objects {
			if !ownsKey(owner, role, o.Key) {
				continue
			}
			name := path.Base(o.Key)
			entries = append(entries, domain.ArchiveEntry{
				ID:          o.Key,
				Filename:    name,
				DateISO:     name[:len(name)-len(path.Ext(name))],
				SubmittedAt: o.LastModified,
				Owner:       owner,
				Role:        role,
				LocationRef: o.Key,
				StorageKind: domain.StorageRemote,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DateISO != entries[j].DateISO {
			return entries[i].DateISO > entries[j].DateISO
		}
		return entries[i].SubmittedAt.After(entries[j].SubmittedAt)
	})
	return entries, nil
}

// Delete removes the document behind ref. Remote refs outside the caller's
// namespace are refused with ErrForeignReference.
func (b *Bridge) Delete(ctx context.Context, owner, role, ref string) error {
	if id, ok := parseLocalRef(ref); ok {
		err := b.history.Delete(ctx, owner, role, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return err
	}
	if !ownsKey(owner, role, ref) {
		return fmt.Errorf("%w: %s", ErrForeignReference, ref)
	}
	if b.remote == nil {
		return ErrNoRemote
	}
	if err := b.remote.Delete(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}

// Download returns the document behind ref and its filename.
func (b *Bridge) Download(ctx context.Context, owner, role, ref string) ([]byte, string, error) {
	if id, ok := parseLocalRef(ref); ok {
		rec, err := b.history.Get(ctx, owner, role, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		if err != nil {
			return nil, "", err
		}
		return rec.Content, rec.Filename, nil
	}
	if !ownsKey(owner, role, ref) {
		return nil, "", fmt.Errorf("%w: %s", ErrForeignReference, ref)
	}
	if b.remote == nil {
		return nil, "", ErrNoRemote
	}
	data, err := b.remote.Get(ctx, ref)
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, "", err
	}
	return data, path.Base(ref), nil
}

// Link returns a time limited download URL for a remote ref.
func (b *Bridge) Link(ctx context.Context, owner, role, ref string, expiry time.Duration) (string, error) {
	if _, ok := parseLocalRef(ref); ok {
		return "", fmt.Errorf("%w: local copies have no link", ErrNoRemote)
	}
	if !ownsKey(owner, role, ref) {
		return "", fmt.Errorf("%w: %s", ErrForeignReference, ref)
	}
	if b.remote == nil {
		return "", ErrNoRemote
	}
	return b.remote.PresignGet(ctx, ref, expiry)
}

// Resync uploads up to limit local copies to the remote store and drops each
// one once its upload succeeded. It reports how many copies were moved and
// how many are still local among the ones it looked at. The first upload
// error stops the pass, since the remote is most likely unreachable.
func (b *Bridge) Resync(ctx context.Context, limit int) (moved, remaining int, err error) {
	if b.remote == nil {
		return 0, 0, ErrNoRemote
	}
	records, err := b.history.Pending(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list local copies: %w", err)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return moved, len(records) - i, err
		}
		logger := zerolog.Ctx(ctx).With().Str("owner", rec.Owner).Str("role", rec.Role).Str("date", rec.DateISO).Logger()

		key, err := b.Upload(ctx, rec.Content, rec.Owner, rec.Role, rec.DateISO)
		if errors.Is(err, ErrInvalidDate) {
			logger.Warn().Err(err).Msg("local copy cannot be uploaded, skipping")
			continue
		}
		if err != nil {
			return moved, len(records) - i, fmt.Errorf("failed to upload local copy %s: %w", rec.ID, err)
		}
		if err := b.history.Delete(ctx, rec.Owner, rec.Role, rec.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Warn().Err(err).Msg("uploaded local copy could not be removed")
		}
		logger.Info().Str("ref", key).Msg("local copy moved to remote archive")
		moved++
	}
	return moved, len(records) - moved, nil
}

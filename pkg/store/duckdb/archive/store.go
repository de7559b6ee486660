package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/daily-report/pkg/models/store"
	"github.com/de-tools/daily-report/pkg/store/duckdb"
)

// Store keeps local report copies scoped by owner and role. Saving a record
// for an existing owner, role and date replaces it.
type Store interface {
	Save(ctx context.Context, record store.ArchiveRecord) error
	List(ctx context.Context, owner, role string) ([]store.ArchiveRecord, error)
	Get(ctx context.Context, owner, role, id string) (*store.ArchiveRecord, error)
	Delete(ctx context.Context, owner, role, id string) error
	DeleteDate(ctx context.Context, owner, role, date string) error
	// Pending returns up to limit local copies of every owner, oldest
	// submission first, content included.
	Pending(ctx context.Context, limit int) ([]store.ArchiveRecord, error)
}

type archiveStore struct {
	db *sql.DB
	// retention is the number of newest copies kept per owner and role; 0
	// keeps everything.
	retention int
}

func NewStore(db *sql.DB, retention int) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if retention < 0 {
		return nil, fmt.Errorf("retention must not be negative")
	}
	return &archiveStore{
		db:        db,
		retention: retention,
	}, nil
}

func (s *archiveStore) Save(ctx context.Context, record store.ArchiveRecord) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		_, err := duckdb.Exec(ctx, s.db, `
			INSERT INTO archive_entries (
				id, owner, role, date_iso, filename, size, content, submitted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (owner, role, date_iso) DO UPDATE SET
				id = EXCLUDED.id,
				filename = EXCLUDED.filename,
				size = EXCLUDED.size,
				content = EXCLUDED.content,
				submitted_at = EXCLUDED.submitted_at`,
			record.ID,
			record.Owner,
			record.Role,
			record.DateISO,
			record.Filename,
			int64(len(record.Content)),
			record.Content,
			record.SubmittedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert archive entry: %w", err)
		}
		if s.retention == 0 {
			return nil
		}

		_, err = duckdb.Exec(ctx, s.db, `
			DELETE FROM archive_entries
			WHERE owner = ? AND role = ? AND date_iso NOT IN (
				SELECT date_iso FROM archive_entries
				WHERE owner = ? AND role = ?
				ORDER BY date_iso DESC
				LIMIT ?
			)`,
			record.Owner, record.Role, record.Owner, record.Role, s.retention,
		)
		if err != nil {
			return fmt.Errorf("prune archive entries: %w", err)
		}
		return nil
	})
}

func (s *archiveStore) List(ctx context.Context, owner, role string) ([]store.ArchiveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, role, date_iso, filename, size, submitted_at
		FROM archive_entries
		WHERE owner = ? AND role = ?
		ORDER BY date_iso DESC, submitted_at DESC`,
		owner, role,
	)
	if err != nil {
		return nil, fmt.Errorf("query archive entries: %w", err)
	}
	defer rows.Close()

	records := []store.ArchiveRecord{}
	for rows.Next() {
		var r store.ArchiveRecord
		if err := rows.Scan(&r.ID, &r.Owner, &r.Role, &r.DateISO, &r.Filename, &r.Size, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan archive entry: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive entries: %w", err)
	}
	return records, nil
}

func (s *archiveStore) Get(ctx context.Context, owner, role, id string) (*store.ArchiveRecord, error) {
	var r store.ArchiveRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner, role, date_iso, filename, size, content, submitted_at
		FROM archive_entries
		WHERE owner = ? AND role = ? AND id = ?`,
		owner, role, id,
	).Scan(&r.ID, &r.Owner, &r.Role, &r.DateISO, &r.Filename, &r.Size, &r.Content, &r.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query archive entry: %w", err)
	}
	return &r, nil
}

func (s *archiveStore) Delete(ctx context.Context, owner, role, id string) error {
	res, err := duckdb.Exec(ctx, s.db,
		`DELETE FROM archive_entries WHERE owner = ? AND role = ? AND id = ?`,
		owner, role, id,
	)
	if err != nil {
		return fmt.Errorf("delete archive entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete archive entry: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *archiveStore) DeleteDate(ctx context.Context, owner, role, date string) error {
	_, err := duckdb.Exec(ctx, s.db,
		`DELETE FROM archive_entries WHERE owner = ? AND role = ? AND date_iso = ?`,
		owner, role, date,
	)
	if err != nil {
		return fmt.Errorf("delete archive entries for %s: %w", date, err)
	}
	return nil
}

func (s *archiveStore) Pending(ctx context.Context, limit int) ([]store.ArchiveRecord, error) {
	if limit <= 0 {
		return []store.ArchiveRecord{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, role, date_iso, filename, size, content, submitted_at
		FROM archive_entries
		ORDER BY submitted_at ASC, id ASC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending archive entries: %w", err)
	}
	defer rows.Close()

	records := []store.ArchiveRecord{}
	for rows.Next() {
		var r store.ArchiveRecord
		if err := rows.Scan(&r.ID, &r.Owner, &r.Role, &r.DateISO, &r.Filename, &r.Size, &r.Content, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan pending archive entry: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending archive entries: %w", err)
	}
	return records, nil
}

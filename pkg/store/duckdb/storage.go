package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

// ArchiveTableSchema keeps one local report copy per owner, role and date.
const ArchiveTableSchema = `
	CREATE TABLE IF NOT EXISTS archive_entries (
		id VARCHAR NOT NULL,
		owner VARCHAR NOT NULL,
		role VARCHAR NOT NULL,
		date_iso VARCHAR NOT NULL,
		filename VARCHAR NOT NULL,
		size BIGINT NOT NULL,
		content BLOB NOT NULL,
		submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner, role, date_iso)
	);
`

var bootQueries = []string{
	ArchiveTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}

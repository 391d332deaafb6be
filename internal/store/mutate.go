package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/moosedb/dbopen"
)

const insertMooseSQL = `INSERT INTO moose (name, created, image, shade, hd, shaded, extended)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

// isUniqueViolation reports whether err is a UNIQUE/PRIMARY KEY constraint
// failure. modernc exposes no typed constraint error, so match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// Insert stores a new record. The FTS trigger adds the matching index entry
// in the same implicit transaction. Returns ErrDuplicateName when the name
// is already taken.
func (s *Store) Insert(ctx context.Context, m *Moose) error {
	_, err := s.DB.ExecContext(ctx, insertMooseSQL,
		m.Name, m.Created, m.Image, m.Shade,
		boolToInt(m.HD), boolToInt(m.Shaded), boolToInt(m.Extended))
	if isUniqueViolation(err) {
		return fmt.Errorf("insert moose %q: %w", m.Name, ErrDuplicateName)
	}
	if err != nil {
		return fmt.Errorf("insert moose %q: %w", m.Name, err)
	}
	return nil
}

// BulkInsert stores many records inside one transaction. Records whose name
// collides with an existing row are skipped and reported through warn (if
// non-nil); the batch continues. Any other failure rolls the whole batch
// back: duplicates during import are expected, everything else is a real
// storage problem that must not be swallowed. Returns the number inserted.
func (s *Store) BulkInsert(ctx context.Context, meese []*Moose, warn func(name string)) (int, error) {
	inserted := 0
	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertMooseSQL)
		if err != nil {
			return fmt.Errorf("prepare bulk insert: %w", err)
		}
		defer stmt.Close()

		inserted = 0
		for _, m := range meese {
			_, err := stmt.ExecContext(ctx,
				m.Name, m.Created, m.Image, m.Shade,
				boolToInt(m.HD), boolToInt(m.Shaded), boolToInt(m.Extended))
			if isUniqueViolation(err) {
				if warn != nil {
					warn(m.Name)
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("bulk insert moose %q: %w", m.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Delete removes the record by name. The FTS trigger purges the index entry
// in the same implicit transaction. Deleting an absent name is a no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM moose WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete moose %q: %w", name, err)
	}
	return nil
}

// GetPNG returns the cached raster for name, or nil when the record does not
// exist or no PNG has been attached.
func (s *Store) GetPNG(ctx context.Context, name string) ([]byte, error) {
	var png []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT png FROM moose WHERE name = ?`, name).Scan(&png)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get png %q: %w", name, err)
	}
	return png, nil
}

// SetPNG attaches (or replaces) the cached raster for name without touching
// any other column. It reports whether a row was actually updated, so
// callers can tell "stored" from "no such moose".
func (s *Store) SetPNG(ctx context.Context, name string, png []byte) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE moose SET png = ? WHERE name = ?`, png, name)
	if err != nil {
		return false, fmt.Errorf("set png %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set png %q: %w", name, err)
	}
	return n > 0, nil
}

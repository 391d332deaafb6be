package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Moose is one stored pixel-art record. The image payload is an opaque
// encoded pixel grid owned by the caller; the store never interprets it.
// The cached PNG raster lives in the same row but is read and written
// through its own accessors, never as part of the record.
type Moose struct {
	Name     string `json:"name"`
	Created  int64  `json:"created"` // epoch milliseconds
	Image    string `json:"image"`
	Shade    string `json:"shade"`
	HD       bool   `json:"hd"`
	Shaded   bool   `json:"shaded"`
	Extended bool   `json:"extended"`
}

const mooseColumns = `name, created, image, shade, hd, shaded, extended`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanMoose decodes one row, coercing the stored 0/1 flags to booleans.
// An absent row decodes to (nil, nil).
func scanMoose(row scanner) (*Moose, error) {
	var m Moose
	var hd, shaded, extended int
	err := row.Scan(&m.Name, &m.Created, &m.Image, &m.Shade, &hd, &shaded, &extended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.HD = hd != 0
	m.Shaded = shaded != 0
	m.Extended = extended != 0
	return &m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetByName returns the record with the exact name, or nil if none exists.
func (s *Store) GetByName(ctx context.Context, name string) (*Moose, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+mooseColumns+` FROM moose WHERE name = ?`, name)
	m, err := scanMoose(row)
	if err != nil {
		return nil, fmt.Errorf("get moose %q: %w", name, err)
	}
	return m, nil
}

// GetNewest returns a record whose created equals the global maximum, or nil
// when the store is empty. When several records share the extremal timestamp
// the choice between them is arbitrary.
func (s *Store) GetNewest(ctx context.Context) (*Moose, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+mooseColumns+` FROM moose ORDER BY created DESC LIMIT 1`)
	m, err := scanMoose(row)
	if err != nil {
		return nil, fmt.Errorf("get newest moose: %w", err)
	}
	return m, nil
}

// GetOldest is the mirror of GetNewest; the same tie-break caveat applies.
func (s *Store) GetOldest(ctx context.Context) (*Moose, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+mooseColumns+` FROM moose ORDER BY created ASC LIMIT 1`)
	m, err := scanMoose(row)
	if err != nil {
		return nil, fmt.Errorf("get oldest moose: %w", err)
	}
	return m, nil
}

// GetRandom returns one record chosen by a uniform draw over [1, max(rowid)],
// taking the first row at or above the draw. The draw is modulo-biased: rows
// that follow rowid gaps (left by deletions) are selected more often than a
// perfectly uniform sample would. That bias is an accepted limitation, not
// a defect. Returns nil when the store is empty.
func (s *Store) GetRandom(ctx context.Context) (*Moose, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+mooseColumns+` FROM moose
		WHERE rowid >= (SELECT abs(random() % max(rowid)) + 1 FROM moose)
		ORDER BY rowid LIMIT 1`)
	m, err := scanMoose(row)
	if err != nil {
		return nil, fmt.Errorf("get random moose: %w", err)
	}
	return m, nil
}

// Count returns the number of stored records and how many carry a cached PNG.
func (s *Store) Count(ctx context.Context) (total, withPNG int, err error) {
	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(png) FROM moose`).Scan(&total, &withPNG)
	if err != nil {
		return 0, 0, fmt.Errorf("count moose: %w", err)
	}
	return total, withPNG, nil
}

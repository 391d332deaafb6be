package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ExportCursor is a pull-based iterator over the full record set. It owns
// the underlying rows handle for its lifetime: callers must Close it on
// every exit path, or the read transaction it may hold stays open.
type ExportCursor struct {
	rows rowScanner
}

// rowScanner is the slice of *sql.Rows the cursor needs; narrowed so tests
// can fail individual steps.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Export opens a cursor over every stored record in insertion (rowid) order.
func (s *Store) Export(ctx context.Context) (*ExportCursor, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+mooseColumns+` FROM moose ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return &ExportCursor{rows: rows}, nil
}

// Next pulls and decodes one record. It returns (nil, nil) once the set is
// exhausted. A non-nil error means the cursor is in a failed state and only
// Close remains valid.
func (c *ExportCursor) Next() (*Moose, error) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return nil, fmt.Errorf("export cursor: %w", err)
		}
		return nil, nil
	}
	m, err := scanMoose(c.rows)
	if err != nil {
		return nil, fmt.Errorf("export scan: %w", err)
	}
	return m, nil
}

// Close releases the cursor. Safe to call more than once.
func (c *ExportCursor) Close() error {
	return c.rows.Close()
}

// WriteJSON streams the remaining records to w as one JSON array. Rows are
// pulled one at a time, only after the previous element has been written,
// so a slow writer applies backpressure to the cursor instead of the whole
// result set being buffered. On any error the stream stops where it is
// (output already written stands, possibly as truncated JSON) and the
// cursor is closed regardless of how the call exits.
func (c *ExportCursor) WriteJSON(w io.Writer) error {
	defer c.Close()

	if _, err := io.WriteString(w, "["); err != nil {
		return fmt.Errorf("export write: %w", err)
	}
	first := true
	for {
		m, err := c.Next()
		if err != nil {
			return err
		}
		if m == nil {
			break
		}
		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("export write: %w", err)
			}
		}
		first = false

		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("export encode %q: %w", m.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("export write: %w", err)
		}
	}
	if _, err := io.WriteString(w, "]"); err != nil {
		return fmt.Errorf("export write: %w", err)
	}
	return nil
}

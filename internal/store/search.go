package store

import (
	"context"
	"fmt"
	"strings"
)

// Order selects the created-timestamp direction for gallery pages.
type Order string

const (
	OrderNewest Order = "newest" // created descending
	OrderOldest Order = "oldest" // created ascending
)

// escapeFTSQuery sanitises a free-text query into an FTS5 MATCH expression.
// Each whitespace-separated token becomes a quoted phrase with embedded
// quotes doubled, so user input can never inject FTS operators or
// column/prefix syntax. The literal connectors AND and OR pass through
// unescaped, except as the final token where FTS5 would reject a dangling
// operator. The result is only valid as a MATCH argument.
func escapeFTSQuery(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		if (tok == "AND" || tok == "OR") && i < len(tokens)-1 {
			continue
		}
		tokens[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
	}
	return strings.Join(tokens, " ")
}

// GalleryPage returns one ordered slice of the collection. With an empty
// or whitespace-only query it pages straight over the moose table;
// otherwise it matches the
// escaped query against the name index, joins back to the full rows, and
// re-sorts by created in the requested direction. FTS relevance only
// selects candidates, it never orders the output.
//
// Pagination is best-effort under concurrent writes: there is no snapshot
// isolation across calls, so a record inserted between two fetches may
// shift later pages.
func (s *Store) GalleryPage(ctx context.Context, query string, offset, limit int, order Order) ([]*Moose, error) {
	dir := "DESC"
	if order == OrderOldest {
		dir = "ASC"
	}

	var (
		sqlText string
		args    []any
	)
	// A whitespace-only query escapes to "" and MATCH '' is an FTS5
	// syntax error, so anything that tokenizes to nothing pages plain.
	match := escapeFTSQuery(query)
	if match == "" {
		sqlText = `SELECT ` + mooseColumns + ` FROM moose
			ORDER BY created ` + dir + ` LIMIT ? OFFSET ?`
		args = []any{limit, offset}
	} else {
		sqlText = `SELECT m.name, m.created, m.image, m.shade, m.hd, m.shaded, m.extended
			FROM moose_fts f
			JOIN moose m ON m.rowid = f.rowid
			WHERE moose_fts MATCH ?
			ORDER BY m.created ` + dir + ` LIMIT ? OFFSET ?`
		args = []any{match, limit, offset}
	}

	rows, err := s.DB.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("gallery page: %w", err)
	}
	defer rows.Close()

	var meese []*Moose
	for rows.Next() {
		m, err := scanMoose(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery row: %w", err)
		}
		meese = append(meese, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gallery page: %w", err)
	}
	return meese, nil
}

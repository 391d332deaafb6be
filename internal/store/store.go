// Package store provides the SQLite persistence layer for the moose gallery.
package store

import (
	"database/sql"
	"errors"

	"github.com/hazyhaar/moosedb/dbopen"
)

// ErrDuplicateName is returned when an insert collides with an existing name.
var ErrDuplicateName = errors.New("moosedb: moose with this name already exists")

// Store is the moose gallery database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the gallery SQLite database at path, applies the
// production pragmas and the moose schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Package moosedb is an embedded gallery store for small pixel-art "moose"
// records: SQLite persistence with full-text search over names, ordered
// pagination, random/newest/oldest lookups, duplicate-tolerant bulk import,
// and a streaming JSON export of the whole collection.
//
// The store never interprets image payloads; encoding pixel grids into the
// stored text representation (and rendering them back) belongs to callers.
//
// Usage:
//
//	svc, err := moosedb.New(&moosedb.Config{DBPath: "moose.db"}, logger)
//	defer svc.Close()
//	err = svc.SaveMoose(ctx, &moosedb.Moose{Name: "bullwinkle", Image: grid})
package moosedb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/moosedb/dbopen"
	"github.com/hazyhaar/moosedb/internal/store"
)

// Moose is one stored pixel-art record.
type Moose = store.Moose

// Order selects the created-timestamp direction for gallery pages.
type Order = store.Order

const (
	OrderNewest = store.OrderNewest
	OrderOldest = store.OrderOldest
)

// Stats summarises the collection.
type Stats struct {
	Moose   int `json:"moose"`
	WithPNG int `json:"with_png"`
}

// Service is the moose gallery store.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	config *Config
}

// New opens (or creates) the gallery database described by cfg.
// A nil logger falls back to slog.Default().
func New(cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath,
		dbopen.WithBusyTimeout(cfg.BusyTimeoutMs),
		dbopen.WithCacheSize(cfg.CacheSize),
	)
	if err != nil {
		return nil, fmt.Errorf("moosedb: open store: %w", err)
	}

	return &Service{store: s, logger: logger, config: cfg}, nil
}

// Close releases the database.
func (s *Service) Close() error {
	return s.store.Close()
}

// GetMooseByName returns the record with the exact name, or nil if none.
func (s *Service) GetMooseByName(ctx context.Context, name string) (*Moose, error) {
	return s.store.GetByName(ctx, name)
}

// GetRandomMoose returns one record chosen by a modulo-biased uniform draw
// over the internal row identifiers (see store.GetRandom for the bias
// caveat), or nil when the store is empty.
func (s *Service) GetRandomMoose(ctx context.Context) (*Moose, error) {
	return s.store.GetRandom(ctx)
}

// GetLatestMoose returns a record with the maximal created timestamp, or
// nil when the store is empty. Ties are broken arbitrarily.
func (s *Service) GetLatestMoose(ctx context.Context) (*Moose, error) {
	return s.store.GetNewest(ctx)
}

// GetOldestMoose is the mirror of GetLatestMoose.
func (s *Service) GetOldestMoose(ctx context.Context) (*Moose, error) {
	return s.store.GetOldest(ctx)
}

// GetGalleryPage returns one ordered, bounded slice of the collection,
// optionally filtered by a full-text search over names. Anything but
// "oldest" orders newest-first. Offset and limit must be non-negative;
// violations fail with ErrInvalidArgument before any storage access.
func (s *Service) GetGalleryPage(ctx context.Context, query string, offset, limit int, order string) ([]*Moose, error) {
	if offset < 0 {
		return nil, fmt.Errorf("gallery page: offset %d: %w", offset, ErrInvalidArgument)
	}
	if limit < 0 {
		return nil, fmt.Errorf("gallery page: limit %d: %w", limit, ErrInvalidArgument)
	}
	ord := OrderNewest
	if order == string(OrderOldest) {
		ord = OrderOldest
	}
	return s.store.GalleryPage(ctx, query, offset, limit, ord)
}

// SaveMoose inserts a new record. The name is the immutable identity: a
// taken name fails with ErrDuplicateName. An unset created timestamp is
// stamped with the current time; it never changes afterwards.
func (s *Service) SaveMoose(ctx context.Context, m *Moose) error {
	if m == nil || m.Name == "" {
		return fmt.Errorf("save moose: missing name: %w", ErrInvalidArgument)
	}
	if m.Image == "" {
		return fmt.Errorf("save moose %q: missing image: %w", m.Name, ErrInvalidArgument)
	}
	if m.Created == 0 {
		m.Created = time.Now().UnixMilli()
	}
	return s.store.Insert(ctx, m)
}

// BulkSaveMoose imports many records in one atomic transaction. Every
// record needs a name and an image; a batch containing an invalid record
// fails whole with ErrInvalidArgument before any storage access. Records
// whose name is already taken are skipped with a warning (duplicates
// during import are expected and non-fatal), while any other storage error
// aborts and rolls back the whole batch. Returns the number inserted.
func (s *Service) BulkSaveMoose(ctx context.Context, meese []*Moose) (int, error) {
	// Validate the whole batch before stamping, so a rejected batch
	// leaves the caller's records untouched.
	for _, m := range meese {
		if m == nil || m.Name == "" {
			return 0, fmt.Errorf("bulk save: missing name: %w", ErrInvalidArgument)
		}
		if m.Image == "" {
			return 0, fmt.Errorf("bulk save %q: missing image: %w", m.Name, ErrInvalidArgument)
		}
	}
	now := time.Now().UnixMilli()
	for _, m := range meese {
		if m.Created == 0 {
			m.Created = now
		}
	}

	n, err := s.store.BulkInsert(ctx, meese, func(name string) {
		s.logger.Warn("bulk import: skipping duplicate moose", "name", name)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("bulk import finished", "inserted", n, "offered", len(meese))
	return n, nil
}

// DeleteMoose removes the record and its search-index entry as one atomic
// unit. Deleting an absent name is a no-op.
func (s *Service) DeleteMoose(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

// GetMoosePNG returns the cached raster for name, or nil when the record
// does not exist or no PNG was attached.
func (s *Service) GetMoosePNG(ctx context.Context, name string) ([]byte, error) {
	return s.store.GetPNG(ctx, name)
}

// SaveMoosePNG attaches (or replaces) the cached raster without touching
// the vector record. It reports whether the named record existed.
func (s *Service) SaveMoosePNG(ctx context.Context, name string, png []byte) (bool, error) {
	return s.store.SetPNG(ctx, name, png)
}

// ExportJSON streams the whole collection to w as one JSON array, pulling
// rows one at a time so a slow consumer applies backpressure instead of the
// result set being buffered. On error the stream stops where it is; output
// already written may be truncated JSON. The underlying cursor is released
// on every exit path.
func (s *Service) ExportJSON(ctx context.Context, w io.Writer) error {
	cur, err := s.store.Export(ctx)
	if err != nil {
		return err
	}
	return cur.WriteJSON(w)
}

// Stats reports the collection size and how many records carry a PNG.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, withPNG, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Moose: total, WithPNG: withPNG}, nil
}

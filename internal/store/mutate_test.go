package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestInsertDuplicate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("twin", 100)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := s.Insert(ctx, mkMoose("twin", 200))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("second insert: got %v, want ErrDuplicateName", err)
	}

	// The original record must be untouched.
	got, err := s.GetByName(ctx, "twin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Created != 100 {
		t.Errorf("Created: got %d, want 100", got.Created)
	}
}

func TestBulkInsertSkipsDuplicates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var warned []string
	warn := func(name string) { warned = append(warned, name) }

	meese := []*Moose{
		mkMoose("alpha", 100),
		mkMoose("alpha", 150), // same name twice in one batch
		mkMoose("beta", 200),
	}
	n, err := s.BulkInsert(ctx, meese, warn)
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted: got %d, want 2", n)
	}
	if len(warned) != 1 || warned[0] != "alpha" {
		t.Errorf("warned: got %v, want [alpha]", warned)
	}

	// Exactly one alpha persisted, the first one.
	got, err := s.GetByName(ctx, "alpha")
	if err != nil {
		t.Fatalf("get alpha: %v", err)
	}
	if got == nil || got.Created != 100 {
		t.Fatalf("alpha: got %+v, want Created=100", got)
	}

	total, _, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Errorf("total: got %d, want 2", total)
	}
}

func TestBulkInsertSkipsExisting(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("existing", 50)); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	n, err := s.BulkInsert(ctx, []*Moose{
		mkMoose("existing", 999),
		mkMoose("fresh", 100),
	}, nil) // nil warn must be tolerated
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}
	if n != 1 {
		t.Errorf("inserted: got %d, want 1", n)
	}

	got, _ := s.GetByName(ctx, "existing")
	if got.Created != 50 {
		t.Errorf("existing Created: got %d, want 50", got.Created)
	}
}

// A non-duplicate failure mid-batch must roll back everything, including
// records that had already been inserted in the same batch.
func TestBulkInsertAbortsOnOtherError(t *testing.T) {
	s := testStore(t)
	if err := s.Insert(context.Background(), mkMoose("dup", 10)); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the context when the duplicate is hit, so the next statement
	// fails with something that is not a UNIQUE violation.
	warn := func(string) { cancel() }

	_, err := s.BulkInsert(ctx, []*Moose{
		mkMoose("first", 100),
		mkMoose("dup", 200),
		mkMoose("second", 300),
	}, warn)
	if err == nil {
		t.Fatal("bulk insert: expected error, got nil")
	}
	if errors.Is(err, ErrDuplicateName) {
		t.Fatalf("bulk insert: duplicate must not abort the batch: %v", err)
	}

	// The whole batch rolled back: "first" must not exist.
	got, gerr := s.GetByName(context.Background(), "first")
	if gerr != nil {
		t.Fatalf("get first: %v", gerr)
	}
	if got != nil {
		t.Fatalf("first persisted despite aborted batch: %+v", got)
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s := testStore(t)

	if err := s.Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestPNGRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("pixel", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// No PNG attached yet.
	png, err := s.GetPNG(ctx, "pixel")
	if err != nil {
		t.Fatalf("get png before set: %v", err)
	}
	if png != nil {
		t.Fatalf("png before set: got %d bytes, want nil", len(png))
	}

	blob := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	updated, err := s.SetPNG(ctx, "pixel", blob)
	if err != nil {
		t.Fatalf("set png: %v", err)
	}
	if !updated {
		t.Fatal("set png: got updated=false, want true")
	}

	got, err := s.GetPNG(ctx, "pixel")
	if err != nil {
		t.Fatalf("get png: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Fatalf("png: got %v, want %v", got, blob)
	}

	// Attaching a PNG must not touch the vector record.
	m, err := s.GetByName(ctx, "pixel")
	if err != nil {
		t.Fatalf("get after set png: %v", err)
	}
	if m.Created != 100 || m.Image != "grid:pixel" {
		t.Fatalf("record changed by SetPNG: %+v", m)
	}
}

func TestSetPNGAbsent(t *testing.T) {
	s := testStore(t)

	updated, err := s.SetPNG(context.Background(), "ghost", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("set png absent: %v", err)
	}
	if updated {
		t.Fatal("set png absent: got updated=true, want false")
	}
}

func TestGetPNGAbsent(t *testing.T) {
	s := testStore(t)

	png, err := s.GetPNG(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("get png absent: %v", err)
	}
	if png != nil {
		t.Fatalf("get png absent: got %d bytes, want nil", len(png))
	}
}

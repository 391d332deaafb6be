package store

import (
	"context"
	"testing"
)

func TestEscapeFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"bull", `"bull"`},
		{"bull winkle", `"bull" "winkle"`},
		{"  spaced   out  ", `"spaced" "out"`},
		{"bull AND winkle", `"bull" AND "winkle"`},
		{"bull OR winkle", `"bull" OR "winkle"`},
		// a trailing connector is a literal, not an operator
		{"bull AND", `"bull" "AND"`},
		{"OR", `"OR"`},
		// lowercase connectors are literals
		{"bull and winkle", `"bull" "and" "winkle"`},
		// embedded quotes are doubled
		{`say "moo"`, `"say" """moo"""`},
		// FTS syntax is neutralised
		{"name:evil", `"name:evil"`},
		{"pre*", `"pre*"`},
		{"NOT gentle", `"NOT" "gentle"`},
		{"(group)", `"(group)"`},
	}
	for _, tt := range tests {
		if got := escapeFTSQuery(tt.in); got != tt.want {
			t.Errorf("escapeFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGalleryPagePlain(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("A", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, mkMoose("B", 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, mkMoose("C", 150)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	page, err := s.GalleryPage(ctx, "", 0, 10, OrderNewest)
	if err != nil {
		t.Fatalf("gallery: %v", err)
	}
	wantOrder := []string{"B", "C", "A"}
	if len(page) != len(wantOrder) {
		t.Fatalf("page length: got %d, want %d", len(page), len(wantOrder))
	}
	for i, w := range wantOrder {
		if page[i].Name != w {
			t.Errorf("page[%d]: got %q, want %q", i, page[i].Name, w)
		}
	}

	// created must be non-increasing for newest, non-decreasing for oldest.
	for i := 1; i < len(page); i++ {
		if page[i].Created > page[i-1].Created {
			t.Errorf("newest order violated at %d: %d > %d", i, page[i].Created, page[i-1].Created)
		}
	}

	asc, err := s.GalleryPage(ctx, "", 0, 10, OrderOldest)
	if err != nil {
		t.Fatalf("gallery asc: %v", err)
	}
	for i := 1; i < len(asc); i++ {
		if asc[i].Created < asc[i-1].Created {
			t.Errorf("oldest order violated at %d: %d < %d", i, asc[i].Created, asc[i-1].Created)
		}
	}
}

func TestGalleryPageOffsetLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("A", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, mkMoose("B", 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	first, err := s.GalleryPage(ctx, "", 0, 1, OrderNewest)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if len(first) != 1 || first[0].Name != "B" {
		t.Fatalf("page 0: got %+v, want [B]", first)
	}

	second, err := s.GalleryPage(ctx, "", 1, 1, OrderNewest)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(second) != 1 || second[0].Name != "A" {
		t.Fatalf("page 1: got %+v, want [A]", second)
	}

	empty, err := s.GalleryPage(ctx, "", 2, 1, OrderNewest)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("page 2: got %d rows, want 0", len(empty))
	}
}

func TestGalleryPageSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("gentle giant", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, mkMoose("gentle breeze", 300)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, mkMoose("angry squirrel", 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	page, err := s.GalleryPage(ctx, "gentle", 0, 10, OrderNewest)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("search: got %d rows, want 2", len(page))
	}
	// matches are re-sorted by created, not by FTS rank
	if page[0].Name != "gentle breeze" || page[1].Name != "gentle giant" {
		t.Fatalf("search order: got [%s, %s], want [gentle breeze, gentle giant]",
			page[0].Name, page[1].Name)
	}

	both, err := s.GalleryPage(ctx, "gentle AND giant", 0, 10, OrderNewest)
	if err != nil {
		t.Fatalf("AND search: %v", err)
	}
	if len(both) != 1 || both[0].Name != "gentle giant" {
		t.Fatalf("AND search: got %+v, want [gentle giant]", both)
	}

	either, err := s.GalleryPage(ctx, "squirrel OR breeze", 0, 10, OrderOldest)
	if err != nil {
		t.Fatalf("OR search: %v", err)
	}
	if len(either) != 2 {
		t.Fatalf("OR search: got %d rows, want 2", len(either))
	}
	if either[0].Name != "angry squirrel" {
		t.Fatalf("OR search order: got %q first, want angry squirrel", either[0].Name)
	}
}

// Hostile queries must neither error nor match unrelated records.
func TestGalleryPageSearchInjection(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("innocent", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	hostile := []string{
		`"`,
		`""`,
		`innocent" OR name:"`,
		`name:innocent`,
		`inno*`,
		`NOT innocent`,
		`innocent AND`,
		`(innocent)`,
		`{innocent}`,
		`^innocent`,
	}
	for _, q := range hostile {
		page, err := s.GalleryPage(ctx, q, 0, 10, OrderNewest)
		if err != nil {
			t.Errorf("query %q: unexpected error: %v", q, err)
			continue
		}
		for _, m := range page {
			if m.Name != "innocent" {
				t.Errorf("query %q: matched unrelated record %q", q, m.Name)
			}
		}
	}
}

// A query of nothing but whitespace tokenizes to the empty expression and
// must page plain instead of reaching MATCH.
func TestGalleryPageWhitespaceQuery(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("A", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, mkMoose("B", 200)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	for _, q := range []string{" ", "   ", "\t", " \n "} {
		page, err := s.GalleryPage(ctx, q, 0, 10, OrderNewest)
		if err != nil {
			t.Errorf("query %q: unexpected error: %v", q, err)
			continue
		}
		if len(page) != 2 || page[0].Name != "B" || page[1].Name != "A" {
			t.Errorf("query %q: got %+v, want plain newest page [B A]", q, page)
		}
	}
}

func TestDeleteRemovesFromSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, mkMoose("vanishing moose", 100)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	page, err := s.GalleryPage(ctx, "vanishing", 0, 10, OrderNewest)
	if err != nil {
		t.Fatalf("search before delete: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("search before delete: got %d rows, want 1", len(page))
	}

	if err := s.Delete(ctx, "vanishing moose"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	page, err = s.GalleryPage(ctx, "vanishing", 0, 10, OrderNewest)
	if err != nil {
		t.Fatalf("search after delete: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("search after delete: got %d rows, want 0", len(page))
	}
}

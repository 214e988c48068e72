package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := Entry{Provider: "youtube", ID: "a", Title: "A", URL: "https://youtu.be/a", Bytes: 100, FetchMS: 1200}
	second := Entry{Provider: "direct", ID: "b", Title: "B", URL: "https://example.com/b.mp3", Bytes: 200, FetchMS: 300}
	if err := s.Record(ctx, first); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, second); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("order = [%s, %s], want [b, a]", got[0].ID, got[1].ID)
	}
	if got[0].Bytes != 200 || got[0].Provider != "direct" {
		t.Errorf("entry fields lost: %+v", got[0])
	}
	if got[0].FetchedAt.IsZero() {
		t.Error("FetchedAt should be filled on Record")
	}
}

func TestRecent_limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		e := Entry{Provider: "youtube", ID: string(rune('a' + i)), Title: "t", URL: "u", FetchedAt: time.Now()}
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestRecent_empty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

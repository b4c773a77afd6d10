package ticket

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var ticketIDPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

func TestCreateReturnsHexIDAndOpenRecord(t *testing.T) {
	s := newTestStore(t)
	id := s.Create(Origin{
		Address:    "aiocqhttp:group:42",
		SenderID:   "10001",
		SenderName: "alice",
		GroupID:    "42",
		Platform:   "aiocqhttp",
	})
	if !ticketIDPattern.MatchString(id) {
		t.Fatalf("Create() id = %q, want 8 lowercase hex chars", id)
	}
	rec, ok := s.Lookup(id)
	if !ok {
		t.Fatalf("Lookup(%q) not found right after Create", id)
	}
	if rec.Status != StatusOpen {
		t.Fatalf("status = %q, want %q", rec.Status, StatusOpen)
	}
	if rec.OriginAddress != "aiocqhttp:group:42" {
		t.Fatalf("origin = %q", rec.OriginAddress)
	}
	if rec.CreatedAt == 0 {
		t.Fatalf("created_at not set")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewStore(dir, logger)
	id1 := s.Create(Origin{Address: "aiocqhttp:friend:1", SenderID: "1"})
	id2 := s.Create(Origin{Address: "aiocqhttp:group:2", SenderID: "2", GroupID: "2"})
	s.Close(id2, "done")

	fresh := NewStore(dir, logger)
	fresh.Load()
	if fresh.Len() != 2 {
		t.Fatalf("Len() after reload = %d, want 2", fresh.Len())
	}
	rec1, ok := fresh.Lookup(id1)
	if !ok || rec1.Status != StatusOpen {
		t.Fatalf("reloaded %q = %+v, ok=%v, want open", id1, rec1, ok)
	}
	rec2, ok := fresh.Lookup(id2)
	if !ok || rec2.Status != StatusClosed || rec2.LastReply != "done" {
		t.Fatalf("reloaded %q = %+v, ok=%v, want closed with last_reply", id2, rec2, ok)
	}
	if rec2.ClosedAt == 0 {
		t.Fatalf("closed_at not persisted")
	}
}

func TestLoadToleratesMissingAndCorruptFile(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewStore(dir, logger)
	s.Load()
	if s.Len() != 0 {
		t.Fatalf("Len() with no file = %d, want 0", s.Len())
	}

	if err := os.WriteFile(filepath.Join(dir, mappingFilename), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	s2 := NewStore(dir, logger)
	s2.Load()
	if s2.Len() != 0 {
		t.Fatalf("Len() with corrupt file = %d, want 0", s2.Len())
	}
}

func TestCloseUnknownTicketIsNoOp(t *testing.T) {
	s := newTestStore(t)
	id := s.Create(Origin{Address: "aiocqhttp:friend:1"})
	s.Close("deadbeef", "ignored")
	rec, ok := s.Lookup(id)
	if !ok || rec.Status != StatusOpen {
		t.Fatalf("existing ticket mutated by Close on unknown id: %+v", rec)
	}
	if _, ok := s.Lookup("deadbeef"); ok {
		t.Fatalf("Close created a record for an unknown id")
	}
}

func TestCloseOnClosedTicketOverwritesReply(t *testing.T) {
	s := newTestStore(t)
	id := s.Create(Origin{Address: "aiocqhttp:friend:1"})
	s.Close(id, "first")
	s.Close(id, "second")
	rec, _ := s.Lookup(id)
	if rec.LastReply != "second" {
		t.Fatalf("last_reply = %q, want %q", rec.LastReply, "second")
	}
	if rec.Status != StatusClosed {
		t.Fatalf("status = %q, want closed", rec.Status)
	}
}

func TestListOpenNewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	base := time.Unix(1700000000, 0)
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return tick }
		ids = append(ids, s.Create(Origin{Address: "aiocqhttp:friend:1"}))
	}
	s.Close(ids[4], "bye")

	open := s.ListOpen(3)
	if len(open) != 3 {
		t.Fatalf("ListOpen(3) len = %d, want 3", len(open))
	}
	for i := 1; i < len(open); i++ {
		if open[i-1].CreatedAt < open[i].CreatedAt {
			t.Fatalf("ListOpen not sorted newest first: %v", open)
		}
	}
	if open[0].ID != ids[3] {
		t.Fatalf("newest open ticket = %q, want %q", open[0].ID, ids[3])
	}
	for _, rec := range open {
		if rec.ID == ids[4] {
			t.Fatalf("closed ticket listed as open")
		}
	}
}

// Package ticket owns the mapping from short ticket identifiers to the
// conversations that opened them. The mapping is held in memory behind
// one mutex and mirrored to a single JSON file after every mutation.
package ticket

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bvzrays/astrbot-plugin-liuyan/internal/fsstore"
)

const mappingFilename = "mappings.json"

// idLength is the number of hex characters kept from a fresh UUID.
// Collisions are not checked; at the volumes this store sees the
// probability is treated as negligible, and a collision overwrites the
// older record.
const idLength = 8

type Store struct {
	mu      sync.Mutex
	tickets map[string]Ticket
	path    string
	logger  *slog.Logger

	now func() time.Time
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		tickets: make(map[string]Ticket),
		path:    filepath.Join(strings.TrimSpace(dir), mappingFilename),
		logger:  logger,
		now:     time.Now,
	}
}

// Load reads the mapping file if present. A missing or malformed file
// is tolerated: the store starts empty and the failure is logged, so a
// bad file never blocks startup.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := make(map[string]Ticket)
	ok, err := fsstore.ReadJSON(s.path, &table)
	if err != nil {
		s.logger.Error("ticket_store_load_failed", "path", s.path, "error", err.Error())
		return
	}
	if !ok {
		return
	}
	for id, rec := range table {
		rec.ID = id
		if rec.Status != StatusClosed {
			rec.Status = StatusOpen
		}
		table[id] = rec
	}
	s.tickets = table
}

// Save persists the full table. Failures are logged and not returned:
// the user-facing command must not fail because the disk did (the most
// recent mutation may be lost on crash, an accepted tradeoff).
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *Store) saveLocked() {
	if err := fsstore.WriteJSONAtomic(s.path, s.tickets, fsstore.FileOptions{}); err != nil {
		s.logger.Error("ticket_store_save_failed", "path", s.path, "error", err.Error())
	}
}

// Create inserts an open record under a fresh 8-hex identifier and
// persists the table.
func (s *Store) Create(origin Origin) string {
	id := newTicketID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[id] = Ticket{
		ID:            id,
		OriginAddress: origin.Address,
		SenderID:      origin.SenderID,
		SenderName:    origin.SenderName,
		GroupID:       origin.GroupID,
		Platform:      origin.Platform,
		GroupName:     origin.GroupName,
		Status:        StatusOpen,
		CreatedAt:     s.now().Unix(),
	}
	s.saveLocked()
	return id
}

func (s *Store) Lookup(id string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tickets[strings.TrimSpace(id)]
	return rec, ok
}

// Close marks the ticket closed and records the reply that closed it.
// An unknown id is a no-op for the table but still persists; callers
// are expected to have checked existence first. Closing an
// already-closed ticket overwrites closed_at and last_reply.
func (s *Store) Close(id, replyText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.tickets[strings.TrimSpace(id)]; ok {
		rec.Status = StatusClosed
		rec.ClosedAt = s.now().Unix()
		rec.LastReply = replyText
		s.tickets[rec.ID] = rec
	}
	s.saveLocked()
}

// ListOpen returns open tickets newest first, at most limit entries
// (limit <= 0 means all).
func (s *Store) ListOpen(limit int) []Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Ticket, 0, len(s.tickets))
	for _, rec := range s.tickets {
		if rec.Status == StatusOpen {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt == out[j].CreatedAt {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

func newTicketID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex[:idLength]
}

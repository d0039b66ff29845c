package game

import (
	"sync"

	"github.com/torcida/torcida/internal/domain"
)

// History is the fixed-size ring of completed matches, newest first.
// Draws are not recorded.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []domain.HistoryEntry
}

// NewHistory creates a history keeping at most capacity entries.
func NewHistory(capacity int) *History {
	return &History{capacity: capacity}
}

// Record prepends a snapshot of a finished, non-drawn match, evicting
// the oldest entry past capacity. Anything else is a no-op.
func (h *History) Record(m domain.Match) {
	if m.Status != domain.StatusFinished || m.Draw() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	entries := make([]domain.HistoryEntry, 0, len(h.entries)+1)
	entries = append(entries, domain.HistoryEntryFromMatch(m))
	entries = append(entries, h.entries...)
	if len(entries) > h.capacity {
		entries = entries[:h.capacity]
	}
	h.entries = entries
}

// All returns the recorded entries, newest first.
func (h *History) All() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

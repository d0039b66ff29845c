package game

import (
	"fmt"
	"testing"

	"github.com/torcida/torcida/internal/domain"
)

func finishedMatch(id string, home, away int64) domain.Match {
	return domain.Match{
		ID:        id,
		Status:    domain.StatusFinished,
		HomeName:  "Liverpool",
		AwayName:  "Chelsea",
		HomeVotes: home,
		AwayVotes: away,
	}
}

func TestHistoryRecord(t *testing.T) {
	t.Run("records decided matches newest first", func(t *testing.T) {
		h := NewHistory(10)
		h.Record(finishedMatch("first", 3, 1))
		h.Record(finishedMatch("second", 0, 2))

		entries := h.All()
		if len(entries) != 2 {
			t.Fatalf("len(All()) = %d, want 2", len(entries))
		}
		if entries[0].ID != "second" || entries[1].ID != "first" {
			t.Errorf("order = [%s, %s], want [second, first]", entries[0].ID, entries[1].ID)
		}
	})

	t.Run("skips draws", func(t *testing.T) {
		h := NewHistory(10)
		h.Record(finishedMatch("draw", 2, 2))
		if len(h.All()) != 0 {
			t.Errorf("len(All()) = %d, want 0", len(h.All()))
		}
	})

	t.Run("skips unfinished matches", func(t *testing.T) {
		h := NewHistory(10)
		m := finishedMatch("running", 3, 1)
		m.Status = domain.StatusRunning
		h.Record(m)
		if len(h.All()) != 0 {
			t.Errorf("len(All()) = %d, want 0", len(h.All()))
		}
	})

	t.Run("evicts the oldest past capacity", func(t *testing.T) {
		h := NewHistory(3)
		for i := 0; i < 5; i++ {
			h.Record(finishedMatch(fmt.Sprintf("m%d", i), 1, 0))
		}
		entries := h.All()
		if len(entries) != 3 {
			t.Fatalf("len(All()) = %d, want 3", len(entries))
		}
		for i, want := range []string{"m4", "m3", "m2"} {
			if entries[i].ID != want {
				t.Errorf("entries[%d].ID = %s, want %s", i, entries[i].ID, want)
			}
		}
	})
}

func TestHistoryAllCopies(t *testing.T) {
	h := NewHistory(10)
	h.Record(finishedMatch("only", 1, 0))

	entries := h.All()
	entries[0].ID = "mutated"

	if h.All()[0].ID != "only" {
		t.Error("All() must return a copy, not the backing slice")
	}
}

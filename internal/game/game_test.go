package game

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/torcida/torcida/internal/config"
	"github.com/torcida/torcida/internal/domain"
)

// fakeFanout records published messages instead of relaying them.
type fakeFanout struct {
	mu     sync.Mutex
	states int
	events []string
	votes  []fakeVote
}

type fakeVote struct {
	origin   string
	voterFD  int64
	team     string
	features []string
}

func (f *fakeFanout) PublishState() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states++
}

func (f *fakeFanout) PublishEvent(eventType, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

func (f *fakeFanout) PublishVote(origin string, voterFD int64, team string, features []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, fakeVote{origin, voterFD, team, features})
}

func (f *fakeFanout) stateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		WaitingSeconds:  1,
		RunningSeconds:  1,
		FinishedSeconds: 1,
		CooldownSeconds: 1,
		PrizePoints:     3,
		MaxPlayers:      16,
		HistorySize:     10,
		ShopCapacity:    64,
	}
}

func newTestGame(t *testing.T) (*Game, *fakeFanout) {
	t.Helper()
	fanout := &fakeFanout{}
	g := New(testGameConfig(), testTeams(), fanout, "origin-1", log.New(io.Discard, "", 0))
	return g, fanout
}

func TestConnectAnnounces(t *testing.T) {
	g, fanout := newTestGame(t)
	if _, err := g.Connect(1, "alice"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	g.Disconnect(1)

	if len(fanout.events) != 2 || fanout.events[0] != domain.EventConnected || fanout.events[1] != domain.EventDisconnected {
		t.Errorf("events = %v, want [connected disconnected]", fanout.events)
	}
}

func TestCastVote(t *testing.T) {
	t.Run("rejected outside the running phase", func(t *testing.T) {
		g, _ := newTestGame(t)
		g.Connect(1, "alice")

		if err := g.CastVote(1, domain.SideHome); !errors.Is(err, ErrPhase) {
			t.Errorf("CastVote() before any match error = %v, want ErrPhase", err)
		}

		g.match.Start(testTeams()[0], testTeams()[1], 15)
		if err := g.CastVote(1, domain.SideHome); !errors.Is(err, ErrPhase) {
			t.Errorf("CastVote() while waiting error = %v, want ErrPhase", err)
		}
	})

	t.Run("accepted vote increments exactly one counter and fans out", func(t *testing.T) {
		g, fanout := newTestGame(t)
		g.Connect(7, "alice")
		g.match.Start(testTeams()[0], testTeams()[1], 15)
		g.match.Advance(domain.StatusRunning, 30)

		if err := g.CastVote(7, domain.SideHome); err != nil {
			t.Fatalf("CastVote() error = %v", err)
		}

		current, _ := g.match.Current()
		if current.HomeVotes != 1 || current.AwayVotes != 0 {
			t.Errorf("votes = %d-%d, want 1-0", current.HomeVotes, current.AwayVotes)
		}
		if len(fanout.votes) != 1 {
			t.Fatalf("len(votes) = %d, want 1", len(fanout.votes))
		}
		v := fanout.votes[0]
		if v.origin != "origin-1" || v.voterFD != 7 || v.team != domain.SideHome {
			t.Errorf("vote = %+v", v)
		}
	})

	t.Run("cooldown rejection leaves counters alone", func(t *testing.T) {
		g, fanout := newTestGame(t)
		g.Connect(1, "alice")
		g.match.Start(testTeams()[0], testTeams()[1], 15)
		g.match.Advance(domain.StatusRunning, 30)

		if err := g.CastVote(1, domain.SideAway); err != nil {
			t.Fatalf("first CastVote() error = %v", err)
		}
		if err := g.CastVote(1, domain.SideAway); !errors.Is(err, ErrCooldown) {
			t.Fatalf("second CastVote() error = %v, want ErrCooldown", err)
		}

		current, _ := g.match.Current()
		if current.AwayVotes != 1 {
			t.Errorf("AwayVotes = %d, want 1", current.AwayVotes)
		}
		if len(fanout.votes) != 1 {
			t.Errorf("len(votes) = %d, want 1", len(fanout.votes))
		}
	})

	t.Run("unknown side", func(t *testing.T) {
		g, _ := newTestGame(t)
		g.Connect(1, "alice")
		g.match.Start(testTeams()[0], testTeams()[1], 15)
		g.match.Advance(domain.StatusRunning, 30)

		if err := g.CastVote(1, "midfield"); !errors.Is(err, ErrUnknownTeam) {
			t.Errorf("CastVote() error = %v, want ErrUnknownTeam", err)
		}
	})
}

func TestSelectTeam(t *testing.T) {
	g, _ := newTestGame(t)
	g.Connect(1, "alice")
	g.match.Start(testTeams()[0], testTeams()[1], 15)

	if err := g.SelectTeam(1, domain.SideAway); err != nil {
		t.Fatalf("SelectTeam() error = %v", err)
	}
	p, _ := g.registry.FindByID("alice")
	if p.CurrentTeam != "Chelsea" {
		t.Errorf("CurrentTeam = %q, want %q", p.CurrentTeam, "Chelsea")
	}

	g.match.Advance(domain.StatusRunning, 30)
	if err := g.SelectTeam(1, domain.SideHome); !errors.Is(err, ErrPhase) {
		t.Errorf("SelectTeam() while running error = %v, want ErrPhase", err)
	}
}

func TestSnapshot(t *testing.T) {
	g, _ := newTestGame(t)
	g.Connect(1, "alice")
	g.match.Start(testTeams()[0], testTeams()[1], 15)

	t.Run("registered connection gets its player view", func(t *testing.T) {
		snap := g.Snapshot(1)
		if snap.Player == nil {
			t.Fatal("Player = nil for a registered connection")
		}
		if snap.Player.ID != "alice" {
			t.Errorf("Player.ID = %q, want alice", snap.Player.ID)
		}
		if snap.Count != 1 {
			t.Errorf("Count = %d, want 1", snap.Count)
		}
		if snap.Game.HomeName != "Liverpool" {
			t.Errorf("Game.HomeName = %q", snap.Game.HomeName)
		}
	})

	t.Run("unknown connection gets a null player", func(t *testing.T) {
		snap := g.Snapshot(99)
		if snap.Player != nil {
			t.Errorf("Player = %+v, want nil", snap.Player)
		}
	})

	t.Run("history is never null", func(t *testing.T) {
		snap := g.SharedSnapshot()
		if snap.History == nil {
			t.Error("History = nil, want empty slice")
		}
	})
}

// TestMatchRound drives one full round through the same sequence the
// loop runs, checking prize distribution, history and cleanup.
func TestMatchRound(t *testing.T) {
	g, fanout := newTestGame(t)
	g.Connect(1, "alice")
	g.Connect(2, "bob")

	g.match.Start(testTeams()[0], testTeams()[1], 15)
	if err := g.SelectTeam(1, domain.SideHome); err != nil {
		t.Fatalf("SelectTeam() error = %v", err)
	}
	if err := g.SelectTeam(2, domain.SideAway); err != nil {
		t.Fatalf("SelectTeam() error = %v", err)
	}

	g.match.Advance(domain.StatusRunning, 30)
	if err := g.CastVote(1, domain.SideHome); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	final := g.match.Advance(domain.StatusFinished, 10)
	g.history.Record(final)
	winner := final.Winner()
	g.stats.RecordResult(final.HomeName, final.AwayName, winner)
	g.registry.GivePrize(winner)
	g.registry.CleanUpAfterGame()

	if winner != "Liverpool" {
		t.Fatalf("winner = %q, want Liverpool", winner)
	}

	alice, _ := g.registry.FindByID("alice")
	if alice.Wins != 1 || alice.Points != 3 {
		t.Errorf("alice Wins = %d, Points = %d, want 1, 3", alice.Wins, alice.Points)
	}
	if alice.CurrentTeam != "" {
		t.Errorf("alice CurrentTeam = %q after cleanup", alice.CurrentTeam)
	}
	bob, _ := g.registry.FindByID("bob")
	if bob.Wins != 0 || bob.Points != 0 {
		t.Errorf("bob Wins = %d, Points = %d, want 0, 0", bob.Wins, bob.Points)
	}

	history := g.history.All()
	if len(history) != 1 || history[0].HomeVotes != 1 {
		t.Errorf("history = %+v, want one entry with 1 home vote", history)
	}
	stat, _ := g.stats.Get("Liverpool")
	if stat.Played != 1 || stat.Won != 1 {
		t.Errorf("Liverpool stat = %+v, want 1 played, 1 won", stat)
	}
	if len(fanout.votes) != 1 {
		t.Errorf("len(votes) = %d, want 1", len(fanout.votes))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	g, fanout := newTestGame(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop on context cancellation")
	}

	// The first waiting phase was announced before the cancelled
	// sleep was observed.
	if fanout.stateCount() != 1 {
		t.Errorf("state publishes = %d, want 1", fanout.stateCount())
	}
	if current, ok := g.match.Current(); !ok || current.Status != domain.StatusWaiting {
		t.Errorf("current match = %+v, want waiting", current)
	}
}

func TestRandomPairDistinct(t *testing.T) {
	g, _ := newTestGame(t)
	for i := 0; i < 100; i++ {
		home, away := g.randomPair()
		if home.ID == away.ID {
			t.Fatalf("randomPair() returned the same team twice: %+v", home)
		}
	}
}

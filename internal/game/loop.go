package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/torcida/torcida/internal/domain"
)

// Run drives the phase state machine: waiting -> running -> finished,
// then prize distribution and cleanup, then a new match, forever. It is
// started exactly once; only ctx cancellation stops it. Broadcast
// failures are isolated inside the fanout and never stop the loop.
func (g *Game) Run(ctx context.Context) {
	g.log.Printf("[gameloop] starting")

	for {
		home, away := g.randomPair()
		match := g.match.Start(home, away, g.cfg.WaitingSeconds)
		g.log.Printf("[gameloop] match %s waiting: %s vs %s", match.ID, match.HomeName, match.AwayName)
		g.fanout.PublishState()
		if !sleep(ctx, g.cfg.WaitingSeconds) {
			g.log.Printf("[gameloop] stopped")
			return
		}

		g.match.Advance(domain.StatusRunning, g.cfg.RunningSeconds)
		g.log.Printf("[gameloop] match %s running", match.ID)
		g.fanout.PublishState()
		if !sleep(ctx, g.cfg.RunningSeconds) {
			g.log.Printf("[gameloop] stopped")
			return
		}

		final := g.match.Advance(domain.StatusFinished, g.cfg.FinishedSeconds)
		g.history.Record(final)
		winner := final.Winner()
		g.stats.RecordResult(final.HomeName, final.AwayName, winner)
		if winner == "" {
			g.log.Printf("[gameloop] match %s finished in a draw %d-%d", final.ID, final.HomeVotes, final.AwayVotes)
		} else {
			g.log.Printf("[gameloop] match %s finished, %s won %d-%d", final.ID, winner, final.HomeVotes, final.AwayVotes)
		}
		g.fanout.PublishState()
		if !sleep(ctx, g.cfg.FinishedSeconds) {
			g.log.Printf("[gameloop] stopped")
			return
		}

		g.registry.GivePrize(winner)
		g.registry.CleanUpAfterGame()
	}
}

// randomPair picks two distinct teams from the roster.
func (g *Game) randomPair() (domain.Team, domain.Team) {
	home := g.teams[rand.Intn(len(g.teams))]
	away := g.teams[rand.Intn(len(g.teams))]
	for away.ID == home.ID {
		away = g.teams[rand.Intn(len(g.teams))]
	}
	return home, away
}

// sleep waits for the phase duration, releasing the timer on shutdown.
// Returns false when ctx was cancelled.
func sleep(ctx context.Context, seconds int64) bool {
	timer := time.NewTimer(time.Duration(seconds) * time.Second)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

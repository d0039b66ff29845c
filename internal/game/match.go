package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/torcida/torcida/internal/domain"
	"github.com/torcida/torcida/internal/table"
)

// matchKey is the single row the current match lives under, so the
// vote path and the game loop share one atomically-updated record.
const matchKey = "game"

// MatchState holds the current match. The game loop is the only writer
// of the team/status/phase fields; AddVote increments the counters
// independently of any concurrent phase mutation.
type MatchState struct {
	rows *table.Table[domain.Match]
	now  func() time.Time
}

// NewMatchState creates an empty match state.
func NewMatchState() *MatchState {
	return &MatchState{
		rows: table.New[domain.Match](1),
		now:  time.Now,
	}
}

// Start replaces the current match with a fresh one in the waiting
// phase, both counters at zero.
func (m *MatchState) Start(home, away domain.Team, durationSeconds int64) domain.Match {
	now := m.now().Unix()
	match := domain.Match{
		ID:            uuid.NewString(),
		Status:        domain.StatusWaiting,
		HomeName:      home.Name,
		HomeFlag:      home.Flag,
		AwayName:      away.Name,
		AwayFlag:      away.Flag,
		PhaseStart:    now,
		PhaseDuration: durationSeconds,
		CreatedAt:     now,
	}
	m.rows.Set(matchKey, match)
	return match
}

// Advance mutates the current match in place to the given status with a
// fresh phase window.
func (m *MatchState) Advance(status string, durationSeconds int64) domain.Match {
	match, _ := m.rows.Update(matchKey, func(match *domain.Match) error {
		match.Status = status
		match.PhaseStart = m.now().Unix()
		match.PhaseDuration = durationSeconds
		return nil
	})
	return match
}

// Current returns the current match, false before the first one starts.
func (m *MatchState) Current() (domain.Match, bool) {
	return m.rows.Get(matchKey)
}

// AddVote atomically increments the counter for the given side.
func (m *MatchState) AddVote(side string) error {
	_, err := m.rows.Update(matchKey, func(match *domain.Match) error {
		switch side {
		case domain.SideHome:
			match.HomeVotes++
		case domain.SideAway:
			match.AwayVotes++
		default:
			return ErrUnknownTeam
		}
		return nil
	})
	return err
}

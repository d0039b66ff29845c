package domain

// Match status constants
const (
	StatusWaiting  = "waiting"
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// Match is the single currently-active round of team-vs-team voting.
// The game loop owns the team/status/phase fields; the vote counters
// are incremented atomically by the voting path.
type Match struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	HomeName      string `json:"homeName"`
	HomeVotes     int64  `json:"homeVotes"`
	HomeFlag      string `json:"homeFlag"`
	AwayName      string `json:"awayName"`
	AwayVotes     int64  `json:"awayVotes"`
	AwayFlag      string `json:"awayFlag"`
	PhaseStart    int64  `json:"phaseStart"`
	PhaseDuration int64  `json:"phaseDuration"`
	CreatedAt     int64  `json:"createdAt"`
}

// Draw reports whether the vote counts are tied.
func (m Match) Draw() bool {
	return m.HomeVotes == m.AwayVotes
}

// Winner returns the name of the team with strictly more votes, or ""
// on a draw.
func (m Match) Winner() string {
	switch {
	case m.HomeVotes > m.AwayVotes:
		return m.HomeName
	case m.AwayVotes > m.HomeVotes:
		return m.AwayName
	default:
		return ""
	}
}

// HistoryEntry is an immutable snapshot of a finished, non-drawn match.
type HistoryEntry struct {
	ID        string `json:"id"`
	HomeName  string `json:"homeName"`
	AwayName  string `json:"awayName"`
	HomeFlag  string `json:"homeFlag"`
	AwayFlag  string `json:"awayFlag"`
	HomeVotes int64  `json:"homeVotes"`
	AwayVotes int64  `json:"awayVotes"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

// HistoryEntryFromMatch snapshots the fields of a match that the match
// history exposes.
func HistoryEntryFromMatch(m Match) HistoryEntry {
	return HistoryEntry{
		ID:        m.ID,
		HomeName:  m.HomeName,
		AwayName:  m.AwayName,
		HomeFlag:  m.HomeFlag,
		AwayFlag:  m.AwayFlag,
		HomeVotes: m.HomeVotes,
		AwayVotes: m.AwayVotes,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

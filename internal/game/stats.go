package game

import (
	"github.com/torcida/torcida/internal/domain"
	"github.com/torcida/torcida/internal/table"
)

// TeamStats tracks played/won counters for every roster team. Rows are
// seeded at startup and never deleted.
type TeamStats struct {
	teams []domain.Team
	rows  *table.Table[domain.TeamStat]
}

// NewTeamStats seeds one row per roster team.
func NewTeamStats(teams []domain.Team) *TeamStats {
	s := &TeamStats{
		teams: teams,
		rows:  table.New[domain.TeamStat](len(teams)),
	}
	for _, team := range teams {
		s.rows.Set(team.Name, domain.TeamStat{TeamID: team.ID})
	}
	return s
}

// RecordResult increments played for both teams and won for the winner.
// An empty winner (a draw) increments neither won counter.
func (s *TeamStats) RecordResult(homeName, awayName, winner string) {
	for _, name := range []string{homeName, awayName} {
		s.rows.Update(name, func(stat *domain.TeamStat) error {
			stat.Played++
			if name == winner {
				stat.Won++
			}
			return nil
		})
	}
}

// Get returns the stat row for a team name.
func (s *TeamStats) Get(name string) (domain.TeamStat, bool) {
	return s.rows.Get(name)
}

// All returns the derived view for every seeded team, keyed by name.
func (s *TeamStats) All() map[string]domain.TeamStatView {
	out := make(map[string]domain.TeamStatView, len(s.teams))
	for _, team := range s.teams {
		stat, ok := s.rows.Get(team.Name)
		if !ok {
			out[team.Name] = domain.TeamStatView{}
			continue
		}
		out[team.Name] = stat.View()
	}
	return out
}

package domain

// Team is one entry of the roster the matches are drawn from.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// TeamStat accumulates match results for one team.
type TeamStat struct {
	TeamID int64 `json:"teamId"`
	Played int64 `json:"played"`
	Won    int64 `json:"won"`
}

// TeamStatView adds the derived win rate for broadcasting.
type TeamStatView struct {
	Played  int64   `json:"played"`
	Won     int64   `json:"won"`
	WinRate float64 `json:"winRate"`
}

// View derives the win rate; zero when the team has not played.
func (s TeamStat) View() TeamStatView {
	v := TeamStatView{Played: s.Played, Won: s.Won}
	if s.Played > 0 {
		v.WinRate = float64(s.Won) / float64(s.Played)
	}
	return v
}

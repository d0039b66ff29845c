// Package roster supplies the team list matches are drawn from: a
// ranked standings document fetched over HTTP, with a fixed fallback
// list when the fetch or parse fails.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/torcida/torcida/internal/config"
	"github.com/torcida/torcida/internal/domain"
)

// Service holds the loaded roster. The list is fetched once at startup
// and is immutable afterwards.
type Service struct {
	log    *log.Logger
	url    string
	client *http.Client
	teams  []domain.Team
}

// New creates a roster service; call Load before using it.
func New(cfg config.RosterConfig, logger *log.Logger) *Service {
	return &Service{
		log: logger,
		url: cfg.URL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// standingsResponse mirrors the shape of the standings document; only
// team id and name are read.
type standingsResponse struct {
	Standings []struct {
		Rows []struct {
			Team struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"team"`
		} `json:"rows"`
	} `json:"standings"`
}

// Load fetches the roster, substituting the fallback list on any fetch
// or parse failure. The server functions identically with either source.
func (s *Service) Load(ctx context.Context) {
	teams, err := s.fetch(ctx)
	if err != nil {
		s.log.Printf("[roster] fetch failed, using fallback roster: %v", err)
		s.teams = fallbackTeams()
		return
	}
	// A match needs two distinct teams.
	if len(teams) < 2 {
		s.log.Printf("[roster] standings returned %d teams, using fallback roster", len(teams))
		s.teams = fallbackTeams()
		return
	}
	s.log.Printf("[roster] fetched %d teams", len(teams))
	s.teams = teams
}

func (s *Service) fetch(ctx context.Context) ([]domain.Team, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var doc standingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding standings: %w", err)
	}
	if len(doc.Standings) == 0 || len(doc.Standings[0].Rows) == 0 {
		return nil, fmt.Errorf("standings document has no rows")
	}

	teams := make([]domain.Team, 0, len(doc.Standings[0].Rows))
	for _, row := range doc.Standings[0].Rows {
		teams = append(teams, domain.Team{
			ID:   row.Team.ID,
			Name: row.Team.Name,
			Flag: flagURL(row.Team.ID),
		})
	}
	return teams, nil
}

// Teams returns the loaded roster.
func (s *Service) Teams() []domain.Team {
	return s.teams
}

func flagURL(teamID int64) string {
	return fmt.Sprintf("https://img.sofascore.com/api/v1/team/%d/image", teamID)
}

func fallbackTeams() []domain.Team {
	return []domain.Team{
		{ID: 1, Name: "Real Madrid", Flag: flagURL(2829)},
		{ID: 2, Name: "Barcelona", Flag: flagURL(2817)},
		{ID: 3, Name: "Liverpool", Flag: flagURL(44)},
		{ID: 4, Name: "Manchester City", Flag: flagURL(17)},
		{ID: 5, Name: "Bayern Munich", Flag: flagURL(2672)},
		{ID: 6, Name: "Paris Saint-Germain", Flag: flagURL(1644)},
		{ID: 7, Name: "Chelsea", Flag: flagURL(38)},
		{ID: 8, Name: "Borussia Dortmund", Flag: flagURL(2673)},
		{ID: 9, Name: "Atletico Madrid", Flag: flagURL(2836)},
		{ID: 10, Name: "Inter Milan", Flag: flagURL(2697)},
	}
}

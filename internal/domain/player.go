package domain

import (
	"regexp"
	"strings"
)

// Player is the durable record for one logical person. The ID survives
// reconnects; FD is only valid while Connected is 1.
type Player struct {
	ID          string `json:"id"`
	FD          int64  `json:"fd"`
	Name        string `json:"name"`
	CurrentTeam string `json:"currentTeam"`
	Wins        int64  `json:"wins"`
	Points      int64  `json:"points"`
	LastVotedAt int64  `json:"lastVotedAt"`
	Connected   int64  `json:"connected"`
	LastLoginAt int64  `json:"lastLoginAt"`
}

// PlayerView is the player record with the connection-private fields
// (fd, connected, lastLoginAt) stripped. This is what goes over the wire.
type PlayerView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CurrentTeam string `json:"currentTeam"`
	Wins        int64  `json:"wins"`
	Points      int64  `json:"points"`
	LastVotedAt int64  `json:"lastVotedAt"`
}

// View strips the private fields for broadcasting.
func (p Player) View() PlayerView {
	return PlayerView{
		ID:          p.ID,
		Name:        p.Name,
		CurrentTeam: p.CurrentTeam,
		Wins:        p.Wins,
		Points:      p.Points,
		LastVotedAt: p.LastVotedAt,
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizeID derives the persistent player id from a client-supplied
// path token: the last path segment reduced to alphanumerics.
func SanitizeID(raw string) string {
	parts := strings.Split(raw, "/")
	last := parts[len(parts)-1]
	return nonAlphanumeric.ReplaceAllString(last, "")
}

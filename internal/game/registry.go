package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/torcida/torcida/internal/domain"
	"github.com/torcida/torcida/internal/table"
)

// Registry resolves durable player identities against ephemeral
// connection handles and keeps the per-player bookkeeping: vote
// cooldown, team selection, wins and points. Rows are never deleted; a
// disconnect only clears the connected flag, so a reconnect with the
// same token restores prior progress.
type Registry struct {
	log         *log.Logger
	cooldown    time.Duration
	prizePoints int64
	players     *table.Table[domain.Player]
	now         func() time.Time
}

// NewRegistry creates a registry bounded to capacity players.
func NewRegistry(capacity int, cooldownSeconds, prizePoints int64, logger *log.Logger) *Registry {
	return &Registry{
		log:         logger,
		cooldown:    time.Duration(cooldownSeconds) * time.Second,
		prizePoints: prizePoints,
		players:     table.New[domain.Player](capacity),
		now:         time.Now,
	}
}

// Connect resolves rawToken to a persistent id and binds fd to it. A
// new row is created on first sight (ErrCapacity when the registry is
// full); a row with a live connection is rejected with ErrDuplicate.
func (r *Registry) Connect(fd int64, rawToken string) (domain.Player, error) {
	id := domain.SanitizeID(rawToken)
	now := r.now().Unix()

	player, err := r.players.Upsert(id, func(p *domain.Player, exists bool) error {
		if !exists {
			p.ID = id
			p.Name = fmt.Sprintf("Player %d", fd)
		}
		if p.Connected == 1 {
			return ErrDuplicate
		}
		p.FD = fd
		p.Connected = 1
		p.LastLoginAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, table.ErrCapacity) {
			return domain.Player{}, ErrCapacity
		}
		return domain.Player{}, err
	}
	return player, nil
}

// Disconnect clears the connected flag of the player bound to fd. A
// connection that never completed registration is a no-op; a player
// already known to be offline is a reportable inconsistency, not fatal.
func (r *Registry) Disconnect(fd int64) {
	player, err := r.FindByFD(fd)
	if errors.Is(err, ErrNotFound) {
		// Registration never completed, e.g. the registry was full.
		return
	}
	if errors.Is(err, ErrOffline) {
		r.log.Printf("[registry] disconnect for fd %d found player %s already offline", fd, player.ID)
		return
	}

	if _, err := r.players.Update(player.ID, func(p *domain.Player) error {
		if p.Connected == 0 {
			return ErrOffline
		}
		p.Connected--
		return nil
	}); err != nil {
		r.log.Printf("[registry] disconnect inconsistency for player %s: %v", player.ID, err)
	}
}

// Vote enforces the per-player cooldown. The elapsed check and the
// timestamp write happen inside one atomic row update, so two
// near-simultaneous votes cannot both pass.
func (r *Registry) Vote(fd int64) error {
	player, err := r.FindByFD(fd)
	if err != nil {
		return err
	}

	now := r.now().Unix()
	_, err = r.players.Update(player.ID, func(p *domain.Player) error {
		if now-p.LastVotedAt < int64(r.cooldown.Seconds()) {
			return ErrCooldown
		}
		p.LastVotedAt = now
		return nil
	})
	return err
}

// SelectTeam records the player's pre-match team choice. Phase
// enforcement lives with the caller.
func (r *Registry) SelectTeam(fd int64, team string) error {
	player, err := r.FindByFD(fd)
	if err != nil {
		return err
	}
	_, err = r.players.Update(player.ID, func(p *domain.Player) error {
		p.CurrentTeam = team
		return nil
	})
	return err
}

// GivePrize rewards every connected player whose selection matches the
// winning team with one win and the configured points. A draw has no
// winning team name and awards nothing.
func (r *Registry) GivePrize(winner string) {
	if winner == "" {
		return
	}
	for _, p := range r.Connected() {
		if p.CurrentTeam != winner {
			continue
		}
		r.log.Printf("[registry] %s won a prize", p.Name)
		r.players.Update(p.ID, func(p *domain.Player) error {
			p.Wins++
			p.Points += r.prizePoints
			return nil
		})
	}
}

// CleanUpAfterGame resets every player's team selection and vote
// timestamp for the next match.
func (r *Registry) CleanUpAfterGame() {
	for _, key := range r.players.Keys() {
		r.players.Update(key, func(p *domain.Player) error {
			p.CurrentTeam = ""
			p.LastVotedAt = 0
			return nil
		})
	}
}

// RemoveBalance spends amount points if the player can afford it. The
// balance check and the decrement are one atomic operation; the balance
// never goes negative.
func (r *Registry) RemoveBalance(fd int64, amount int64) error {
	player, err := r.FindByFD(fd)
	if err != nil {
		return err
	}
	_, err = r.players.Update(player.ID, func(p *domain.Player) error {
		if p.Points < amount {
			return ErrFunds
		}
		p.Points -= amount
		return nil
	})
	return err
}

// AddPoints credits points back to a player, used to roll back a
// charge whose purchase could not be recorded.
func (r *Registry) AddPoints(id string, amount int64) {
	r.players.Update(id, func(p *domain.Player) error {
		p.Points += amount
		return nil
	})
}

// FindByFD looks up the player bound to a live connection handle.
// Returns ErrNotFound when no row references fd, and ErrOffline (with
// the row) when the row exists but the connection is gone.
func (r *Registry) FindByFD(fd int64) (domain.Player, error) {
	var found domain.Player
	var ok bool
	r.players.ForEach(func(_ string, p domain.Player) bool {
		if p.FD == fd {
			found = p
			ok = true
			return false
		}
		return true
	})
	if !ok {
		return domain.Player{}, ErrNotFound
	}
	if found.Connected == 0 {
		return found, ErrOffline
	}
	return found, nil
}

// FindByID looks up a player by persistent id, online or not.
func (r *Registry) FindByID(id string) (domain.Player, error) {
	p, ok := r.players.Get(id)
	if !ok {
		return domain.Player{}, ErrNotFound
	}
	return p, nil
}

// Connected returns every player with a live connection.
func (r *Registry) Connected() []domain.Player {
	var players []domain.Player
	r.players.ForEach(func(_ string, p domain.Player) bool {
		if p.Connected == 1 {
			players = append(players, p)
		}
		return true
	})
	return players
}

// ConnectedCount returns the number of live connections.
func (r *Registry) ConnectedCount() int {
	return len(r.Connected())
}

package game

import (
	"fmt"
	"log"

	"github.com/torcida/torcida/internal/config"
	"github.com/torcida/torcida/internal/domain"
)

// Fanout delivers state changes to every connected client, wherever its
// connection lives. Implementations must isolate per-recipient failures.
type Fanout interface {
	// PublishState triggers a connection-specific snapshot push on
	// every subscriber.
	PublishState()
	// PublishEvent fans out a typed message identical for all
	// recipients (connect/disconnect notices).
	PublishEvent(eventType, message string)
	// PublishVote fans out an accepted vote; origin and voterFD let
	// the voter's own connection mark the event as self.
	PublishVote(origin string, voterFD int64, team string, features []string)
}

// Game is the coordinator: it owns the current match, the player
// registry, the shop, the statistics and the history, and exposes the
// operations the transport dispatches into.
type Game struct {
	log      *log.Logger
	cfg      config.GameConfig
	registry *Registry
	history  *History
	shop     *Shop
	stats    *TeamStats
	match    *MatchState
	teams    []domain.Team
	fanout   Fanout
	origin   string
}

// New wires the game components together. Teams is the loaded roster;
// origin identifies this instance in relayed vote events.
func New(cfg config.GameConfig, teams []domain.Team, fanout Fanout, origin string, logger *log.Logger) *Game {
	registry := NewRegistry(cfg.MaxPlayers, cfg.CooldownSeconds, cfg.PrizePoints, logger)
	return &Game{
		log:      logger,
		cfg:      cfg,
		registry: registry,
		history:  NewHistory(cfg.HistorySize),
		shop:     NewShop(registry, cfg.ShopCapacity, logger),
		stats:    NewTeamStats(teams),
		match:    NewMatchState(),
		teams:    teams,
		fanout:   fanout,
		origin:   origin,
	}
}

// Registry exposes the player registry.
func (g *Game) Registry() *Registry { return g.registry }

// Shop exposes the shop ledger.
func (g *Game) Shop() *Shop { return g.shop }

// History exposes the match history.
func (g *Game) History() *History { return g.history }

// Stats exposes the team statistics.
func (g *Game) Stats() *TeamStats { return g.stats }

// Connect registers the connection and announces the player to
// everyone. Rejections (full registry, live duplicate session) are
// returned to the transport, which refuses the handshake.
func (g *Game) Connect(fd int64, rawToken string) (domain.Player, error) {
	player, err := g.registry.Connect(fd, rawToken)
	if err != nil {
		return domain.Player{}, err
	}
	g.log.Printf("[game] player %s connected (fd %d)", player.ID, fd)
	g.fanout.PublishEvent(domain.EventConnected, fmt.Sprintf("Player %s has connected.", player.ID))
	return player, nil
}

// Disconnect unbinds the connection and announces the departure.
func (g *Game) Disconnect(fd int64) {
	g.registry.Disconnect(fd)
	g.log.Printf("[game] fd %d disconnected", fd)
	g.fanout.PublishEvent(domain.EventDisconnected, fmt.Sprintf("Player %d has disconnected.", fd))
}

// CastVote runs the full vote pipeline: phase gate, cooldown gate,
// atomic counter increment, fanout. Exactly one of accepted, cooldown-
// rejected or phase-rejected holds for every attempt.
func (g *Game) CastVote(fd int64, side string) error {
	if side != domain.SideHome && side != domain.SideAway {
		return ErrUnknownTeam
	}
	current, ok := g.match.Current()
	if !ok || current.Status != domain.StatusRunning {
		return ErrPhase
	}

	player, err := g.registry.FindByFD(fd)
	if err != nil {
		return err
	}
	if err := g.registry.Vote(fd); err != nil {
		return err
	}
	if err := g.match.AddVote(side); err != nil {
		return err
	}

	g.fanout.PublishVote(g.origin, fd, side, g.shop.Features(player.ID))
	return nil
}

// SelectTeam records a pre-match side choice; only honored while the
// match is waiting.
func (g *Game) SelectTeam(fd int64, side string) error {
	current, ok := g.match.Current()
	if !ok || current.Status != domain.StatusWaiting {
		return ErrPhase
	}

	var team string
	switch side {
	case domain.SideHome:
		team = current.HomeName
	case domain.SideAway:
		team = current.AwayName
	default:
		return ErrUnknownTeam
	}
	if err := g.registry.SelectTeam(fd, team); err != nil {
		return err
	}
	g.log.Printf("[game] fd %d selected team %s", fd, team)
	return nil
}

// BuyItem purchases a shop item for the connection's player.
func (g *Game) BuyItem(fd int64, itemID int64) error {
	return g.shop.Purchase(fd, itemID)
}

// Snapshot assembles the full state payload for one connection. The
// player view and purchase flags are specific to that connection;
// player is nil when fd never completed registration.
func (g *Game) Snapshot(fd int64) domain.Snapshot {
	snap := g.SharedSnapshot()
	if player, err := g.registry.FindByFD(fd); err == nil {
		view := player.View()
		snap.Player = &view
		snap.Shop = g.shop.ItemsFor(player.ID)
	}
	return snap
}

// SharedSnapshot assembles the state every connection sees identically:
// no player view, catalog without purchase flags.
func (g *Game) SharedSnapshot() domain.Snapshot {
	current, _ := g.match.Current()
	return domain.Snapshot{
		History: g.history.All(),
		Game:    current,
		Stats:   g.stats.All(),
		Shop:    g.shop.ItemsFor(""),
		Count:   g.registry.ConnectedCount(),
	}
}

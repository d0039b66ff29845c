package game

import "errors"

// Rejection taxonomy. All of these are recoverable and reported to the
// originating connection only.
var (
	ErrNotFound     = errors.New("player not found")
	ErrOffline      = errors.New("player is offline")
	ErrCapacity     = errors.New("player registry is full")
	ErrDuplicate    = errors.New("player already has a live connection")
	ErrCooldown     = errors.New("vote is on cooldown")
	ErrPhase        = errors.New("not allowed in the current match phase")
	ErrFunds        = errors.New("insufficient points")
	ErrItemNotFound = errors.New("shop item not found")
	ErrOwned        = errors.New("item already purchased")
	ErrUnknownTeam  = errors.New("unknown team side")
)

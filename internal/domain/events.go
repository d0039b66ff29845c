package domain

import "encoding/json"

// Outbound event types
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventVoted        = "voted"
	EventVoteResponse = "vote-response"
	EventBuyResponse  = "buy-response"
)

// Event result statuses
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Inbound message types. Clients send either a JSON envelope or one of
// the bare string tokens.
const (
	MsgSendState  = "send-state"
	MsgVote       = "vote"
	MsgBuyItem    = "buyItem"
	MsgVoteHome   = "vote-home"
	MsgVoteAway   = "vote-away"
	MsgSelectHome = "select-home"
	MsgSelectAway = "select-away"
)

// Team sides used by vote payloads.
const (
	SideHome = "home"
	SideAway = "away"
)

// Event is a typed response or broadcast: vote/purchase acknowledgments
// and connect/disconnect/voted fanout.
type Event struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Payload any    `json:"payload"`
}

// MessagePayload carries a human-readable message.
type MessagePayload struct {
	Message string `json:"message"`
}

// VotedPayload is the fanout payload for an accepted vote. Self is true
// only on the voter's own connection.
type VotedPayload struct {
	Self     bool     `json:"self"`
	Team     string   `json:"team"`
	Features []string `json:"features"`
}

// ClientMessage is the inbound JSON envelope.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// VotePayload is the payload of a "vote" message.
type VotePayload struct {
	Team string `json:"team"`
}

// BuyPayload is the payload of a "buyItem" message.
type BuyPayload struct {
	ID int64 `json:"id"`
}

// Snapshot is the full state payload pushed to a connection on every
// state-affecting event and on request. Player and Shop are specific to
// the receiving connection; Player is null for a connection that never
// completed registration.
type Snapshot struct {
	History []HistoryEntry          `json:"history"`
	Game    Match                   `json:"game"`
	Stats   map[string]TeamStatView `json:"stats"`
	Player  *PlayerView             `json:"player"`
	Shop    []ShopItemView          `json:"shop"`
	Count   int                     `json:"count"`
}

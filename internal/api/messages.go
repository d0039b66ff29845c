package api

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/torcida/torcida/internal/domain"
	"github.com/torcida/torcida/internal/game"
)

// dispatch routes one inbound message. Clients speak two dialects: a
// JSON envelope {"type":..., "payload":...} and bare string tokens kept
// for older clients. Anything unrecognized is logged and dropped.
func (h *Hub) dispatch(c *Client, data []byte) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return
	}

	var msg domain.ClientMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Type != "" {
		h.dispatchEnvelope(c, msg)
		return
	}

	switch string(data) {
	case domain.MsgSendState:
		h.sendSnapshot(c)
	case domain.MsgVoteHome:
		h.castVote(c, domain.SideHome)
	case domain.MsgVoteAway:
		h.castVote(c, domain.SideAway)
	case domain.MsgSelectHome:
		h.selectTeam(c, domain.SideHome)
	case domain.MsgSelectAway:
		h.selectTeam(c, domain.SideAway)
	default:
		h.log.Printf("[hub] unhandled message from connection %d: %q", c.fd, data)
	}
}

func (h *Hub) dispatchEnvelope(c *Client, msg domain.ClientMessage) {
	switch msg.Type {
	case domain.MsgSendState:
		h.sendSnapshot(c)

	case domain.MsgVote:
		var payload domain.VotePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendJSON(c, errorEvent(domain.EventVoteResponse, "Malformed vote payload."))
			return
		}
		h.castVote(c, payload.Team)

	case domain.MsgBuyItem:
		var payload domain.BuyPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendJSON(c, errorEvent(domain.EventBuyResponse, "Malformed purchase payload."))
			return
		}
		h.buyItem(c, payload.ID)

	case domain.MsgSelectHome:
		h.selectTeam(c, domain.SideHome)
	case domain.MsgSelectAway:
		h.selectTeam(c, domain.SideAway)

	default:
		h.log.Printf("[hub] unhandled message type %q from connection %d", msg.Type, c.fd)
	}
}

// castVote attempts the vote and acknowledges only the voter. The voted
// fanout to everyone else travels through the relay.
func (h *Hub) castVote(c *Client, side string) {
	err := h.game.CastVote(c.fd, side)
	switch {
	case err == nil:
		h.sendJSON(c, successEvent(domain.EventVoteResponse, "Vote counted."))
	case errors.Is(err, game.ErrPhase):
		h.sendJSON(c, errorEvent(domain.EventVoteResponse, "The match is not running."))
	case errors.Is(err, game.ErrCooldown):
		h.sendJSON(c, errorEvent(domain.EventVoteResponse, "You are voting too fast."))
	case errors.Is(err, game.ErrUnknownTeam):
		h.sendJSON(c, errorEvent(domain.EventVoteResponse, "Unknown team."))
	default:
		h.sendJSON(c, errorEvent(domain.EventVoteResponse, "You are not registered."))
	}
}

// buyItem attempts the purchase, acknowledges the buyer and follows up
// with a fresh snapshot so the shop reflects the outcome immediately.
func (h *Hub) buyItem(c *Client, itemID int64) {
	err := h.game.BuyItem(c.fd, itemID)
	switch {
	case err == nil:
		h.sendJSON(c, successEvent(domain.EventBuyResponse, "Item purchased successfully!"))
	case errors.Is(err, game.ErrFunds):
		h.sendJSON(c, errorEvent(domain.EventBuyResponse, "Not enough points."))
	case errors.Is(err, game.ErrOwned):
		h.sendJSON(c, errorEvent(domain.EventBuyResponse, "You already own this item."))
	case errors.Is(err, game.ErrItemNotFound):
		h.sendJSON(c, errorEvent(domain.EventBuyResponse, "Item not found."))
	default:
		h.sendJSON(c, errorEvent(domain.EventBuyResponse, "Could not complete the purchase."))
	}
	h.sendSnapshot(c)
}

// selectTeam picks a side during the waiting phase. Out-of-phase
// attempts are logged and dropped without a reply.
func (h *Hub) selectTeam(c *Client, side string) {
	if err := h.game.SelectTeam(c.fd, side); err != nil {
		h.log.Printf("[hub] select %s rejected for connection %d: %v", side, c.fd, err)
		return
	}
	h.sendSnapshot(c)
}

func successEvent(eventType, message string) domain.Event {
	return domain.Event{
		Type:    eventType,
		Status:  domain.ResultSuccess,
		Payload: domain.MessagePayload{Message: message},
	}
}

func errorEvent(eventType, message string) domain.Event {
	return domain.Event{
		Type:    eventType,
		Status:  domain.ResultError,
		Payload: domain.MessagePayload{Message: message},
	}
}

// Package relay is the cross-worker broadcast fanout. State changes are
// published to a NATS subject; every subscriber, the publishing
// instance included, pushes the change to the connections it locally
// owns. With no external URL configured an embedded NATS server runs
// inside the process, keeping single-binary deployments while letting
// additional transport instances subscribe to the same subject.
package relay

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/torcida/torcida/internal/config"
)

// Message kinds carried over the relay subject.
const (
	KindState        = "state"
	KindConnected    = "connected"
	KindDisconnected = "disconnected"
	KindVoted        = "voted"
)

// Message is the serialized snapshot trigger or event relayed between
// workers. State messages carry no payload: each subscriber builds the
// connection-specific snapshot (private player view, purchase flags) at
// push time.
type Message struct {
	Kind     string   `json:"kind"`
	Origin   string   `json:"origin,omitempty"`
	Message  string   `json:"message,omitempty"`
	Team     string   `json:"team,omitempty"`
	Features []string `json:"features,omitempty"`
	VoterFD  int64    `json:"voterFd,omitempty"`
}

// Relay is a connection to the broadcast subject, optionally hosting
// the embedded server.
type Relay struct {
	log      *log.Logger
	nc       *nats.Conn
	embedded *server.Server
	subject  string
	origin   string
}

// Start connects to the configured NATS server, or boots an embedded
// one on a random loopback port when no URL is configured.
func Start(cfg config.RelayConfig, logger *log.Logger) (*Relay, error) {
	r := &Relay{
		log:     logger,
		subject: cfg.SubjectPrefix + ".broadcast",
		origin:  uuid.NewString(),
	}

	url := cfg.URL
	if url == "" {
		ns, err := server.NewServer(&server.Options{
			ServerName: "torcida",
			Host:       "127.0.0.1",
			Port:       server.RANDOM_PORT,
		})
		if err != nil {
			return nil, fmt.Errorf("creating embedded nats server: %w", err)
		}
		go ns.Start()
		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return nil, fmt.Errorf("embedded nats server did not become ready")
		}
		r.embedded = ns
		url = ns.ClientURL()
		logger.Printf("[relay] embedded nats server listening on %s", url)
	}

	nc, err := nats.Connect(url, nats.Name("torcida"))
	if err != nil {
		if r.embedded != nil {
			r.embedded.Shutdown()
		}
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	r.nc = nc
	logger.Printf("[relay] connected, subject %s", r.subject)
	return r, nil
}

// Origin identifies this instance in relayed messages.
func (r *Relay) Origin() string {
	return r.origin
}

// Subscribe registers handler for every relayed message, including the
// ones this instance publishes.
func (r *Relay) Subscribe(handler func(Message)) error {
	_, err := r.nc.Subscribe(r.subject, func(m *nats.Msg) {
		var msg Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			r.log.Printf("[relay] dropping malformed message: %v", err)
			return
		}
		handler(msg)
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.subject, err)
	}
	return nil
}

// PublishState relays a snapshot trigger to every worker.
func (r *Relay) PublishState() {
	r.publish(Message{Kind: KindState, Origin: r.origin})
}

// PublishEvent relays a typed notice identical for all recipients.
func (r *Relay) PublishEvent(eventType, message string) {
	r.publish(Message{Kind: eventType, Origin: r.origin, Message: message})
}

// PublishVote relays an accepted vote. Origin and voterFD let the
// voter's own worker mark the event as self on exactly one connection.
func (r *Relay) PublishVote(origin string, voterFD int64, team string, features []string) {
	r.publish(Message{
		Kind:     KindVoted,
		Origin:   origin,
		VoterFD:  voterFD,
		Team:     team,
		Features: features,
	})
}

func (r *Relay) publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.Printf("[relay] marshaling %s message: %v", msg.Kind, err)
		return
	}
	if err := r.nc.Publish(r.subject, data); err != nil {
		r.log.Printf("[relay] publishing %s message: %v", msg.Kind, err)
	}
}

// Close drains the connection and stops the embedded server if one is
// running.
func (r *Relay) Close() {
	if r.nc != nil {
		if err := r.nc.Drain(); err != nil {
			r.log.Printf("[relay] drain: %v", err)
		}
	}
	if r.embedded != nil {
		r.embedded.Shutdown()
		r.embedded.WaitForShutdown()
	}
}

package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OCAP2/dogfight/pkg/core"
	"github.com/OCAP2/dogfight/pkg/streaming"
)

// ErrNoURL is returned by New when no server address is configured.
var ErrNoURL = errors.New("websocket url not set")

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams session data over WebSocket to a recording server.
// It implements storage.Backend but not storage.Uploadable.
type Backend struct {
	conn      *connection
	cfg       Config
	sessionID string
}

// New creates a new WebSocket storage backend. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) (*Backend, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("component", "websocket")),
		cfg:  cfg,
	}, nil
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// Dropped reports messages lost because the send buffer was full.
func (b *Backend) Dropped() uint64 {
	return b.conn.droppedCount()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartSession sends the session header and waits for server ack.
func (b *Backend) StartSession(s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}

	b.conn.setReplay(data)
	b.sessionID = s.ID

	return b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session with the tally and waits for server ack.
func (b *Backend) EndSession(sum core.Summary) error {
	data, err := marshalEnvelope(streaming.TypeEndSession, streaming.EndSessionPayload{SessionID: b.sessionID, Summary: sum})
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndSession, ackTimeout)
	}

	b.conn.setReplay(nil)
	b.sessionID = ""

	return err
}

func (b *Backend) AddAircraft(a *core.Aircraft) error {
	return b.sendEnvelope(streaming.TypeAddAircraft, a)
}

func (b *Backend) RemoveAircraft(id, tick uint64) error {
	return b.sendEnvelope(streaming.TypeRemoveAircraft, streaming.RemoveAircraftPayload{AircraftID: id, Tick: tick})
}

func (b *Backend) RecordAircraftState(s *core.AircraftState) error {
	return b.sendEnvelope(streaming.TypeAircraftState, s)
}

func (b *Backend) RecordFiredEvent(e *core.FiredEvent) error {
	return b.sendEnvelope(streaming.TypeFiredEvent, e)
}

func (b *Backend) RecordHitEvent(e *core.HitEvent) error {
	return b.sendEnvelope(streaming.TypeHitEvent, e)
}

func (b *Backend) RecordKillEvent(e *core.KillEvent) error {
	return b.sendEnvelope(streaming.TypeKillEvent, e)
}

func (b *Backend) RecordExplosionEvent(e *core.ExplosionEvent) error {
	return b.sendEnvelope(streaming.TypeExplosionEvent, e)
}

func (b *Backend) RecordGeneralEvent(e *core.GeneralEvent) error {
	return b.sendEnvelope(streaming.TypeGeneralEvent, e)
}

package streaming

import (
	"encoding/json"

	"github.com/OCAP2/dogfight/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession   = "start_session"
	TypeEndSession     = "end_session"
	TypeAddAircraft    = "add_aircraft"
	TypeRemoveAircraft = "remove_aircraft"
	TypeAircraftState  = "aircraft_state"
	TypeFiredEvent     = "fired_event"
	TypeHitEvent       = "hit_event"
	TypeKillEvent      = "kill_event"
	TypeExplosionEvent = "explosion_event"
	TypeGeneralEvent   = "general_event"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session header.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// EndSessionPayload carries the final tally.
type EndSessionPayload struct {
	SessionID string       `json:"sessionId"`
	Summary   core.Summary `json:"summary"`
}

// RemoveAircraftPayload marks an aircraft as gone from the world.
type RemoveAircraftPayload struct {
	AircraftID uint64 `json:"aircraftId"`
	Tick       uint64 `json:"tick"`
}

package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/dogfight/pkg/core"
	"github.com/OCAP2/dogfight/pkg/streaming"
)

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and acks start_session/end_session.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.setSecret(r.URL.Query().Get("secret"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeStartSession || env.Type == streaming.TypeEndSession {
				data, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	secret   string
	messages []streaming.Envelope
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) setSecret(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = s
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newBackend(t *testing.T, srv *httptest.Server) *Backend {
	t.Helper()
	b, err := New(Config{URL: wsURL(srv), Secret: "s3cret"}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestInit_DialFailure(t *testing.T) {
	b, err := New(Config{URL: "ws://127.0.0.1:1/ingest"}, nil)
	require.NoError(t, err)
	assert.Error(t, b.Init())
}

func TestStartAndEndSession(t *testing.T) {
	srv, ml := testServer(t)
	b := newBackend(t, srv)

	require.NoError(t, b.StartSession(&core.Session{ID: "abc", Name: "Sortie", Tag: "Training"}))
	require.NoError(t, b.EndSession(core.Summary{Score: 300, Kills: 3}))

	msgs := ml.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, streaming.TypeStartSession, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndSession, msgs[1].Type)

	var end streaming.EndSessionPayload
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &end))
	assert.Equal(t, "abc", end.SessionID)
	assert.Equal(t, 300, end.Summary.Score)

	ml.mu.Lock()
	assert.Equal(t, "s3cret", ml.secret)
	ml.mu.Unlock()
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t)
	b := newBackend(t, srv)

	require.NoError(t, b.StartSession(&core.Session{ID: "m"}))
	require.NoError(t, b.AddAircraft(&core.Aircraft{ID: 1, Name: "Player"}))
	require.NoError(t, b.RecordAircraftState(&core.AircraftState{AircraftID: 1, Tick: 6}))
	require.NoError(t, b.RecordFiredEvent(&core.FiredEvent{ShooterID: 1, Weapon: "bullet"}))
	require.NoError(t, b.RecordHitEvent(&core.HitEvent{VictimID: 2}))
	require.NoError(t, b.RecordKillEvent(&core.KillEvent{VictimID: 2}))
	require.NoError(t, b.RecordExplosionEvent(&core.ExplosionEvent{ExplosionID: 3}))
	require.NoError(t, b.RecordGeneralEvent(&core.GeneralEvent{Name: "crash"}))
	require.NoError(t, b.RemoveAircraft(2, 40))
	require.NoError(t, b.EndSession(core.Summary{}))

	// Give a moment for all messages to arrive at server.
	time.Sleep(50 * time.Millisecond)

	types := make(map[string]int)
	for _, m := range ml.all() {
		types[m.Type]++
	}
	for _, typ := range []string{
		streaming.TypeStartSession, streaming.TypeEndSession, streaming.TypeAddAircraft,
		streaming.TypeAircraftState, streaming.TypeFiredEvent, streaming.TypeHitEvent,
		streaming.TypeKillEvent, streaming.TypeExplosionEvent, streaming.TypeGeneralEvent,
		streaming.TypeRemoveAircraft,
	} {
		assert.Equal(t, 1, types[typ], typ)
	}
	assert.Zero(t, b.Dropped())
}

func TestSendAndWait_Timeout(t *testing.T) {
	upgrader := ws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	b := newBackend(t, srv)
	err := b.conn.sendAndWait([]byte(`{"type":"noop"}`), "noop", 20*time.Millisecond)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for ack")
}

func TestMarshalEnvelope(t *testing.T) {
	data, err := marshalEnvelope(streaming.TypeRemoveAircraft, streaming.RemoveAircraftPayload{AircraftID: 7, Tick: 42})
	require.NoError(t, err)

	var env streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, streaming.TypeRemoveAircraft, env.Type)

	var p streaming.RemoveAircraftPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, uint64(7), p.AircraftID)
	assert.Equal(t, uint64(42), p.Tick)
}

func TestMarshalEnvelope_Error(t *testing.T) {
	_, err := marshalEnvelope("bad", make(chan int))
	assert.Error(t, err)
}

func TestReconnect_ReplaysSessionHeader(t *testing.T) {
	var (
		mu     sync.Mutex
		dials  int
		firsts []string
	)
	second := make(chan streaming.Envelope, 8)

	upgrader := ws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		mu.Lock()
		dials++
		n := dials
		mu.Unlock()

		for i := 0; ; i++ {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			if i == 0 {
				mu.Lock()
				firsts = append(firsts, env.Type)
				mu.Unlock()
			}
			if n == 1 {
				ack, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				_ = c.WriteMessage(ws.TextMessage, ack)
				// Drop the first socket right after the handshake.
				return
			}
			select {
			case second <- env:
			default:
			}
		}
	}))
	t.Cleanup(srv.Close)

	b := newBackend(t, srv)
	require.NoError(t, b.StartSession(&core.Session{ID: "r1"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials >= 2
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return b.AddAircraft(&core.Aircraft{ID: 4}) == nil && len(second) >= 2
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, streaming.TypeStartSession, (<-second).Type)
	mu.Lock()
	assert.Equal(t, []string{streaming.TypeStartSession, streaming.TypeStartSession}, firsts[:2])
	mu.Unlock()
}

func TestAckWaiters(t *testing.T) {
	c := newConnection(slog.Default())

	ch := c.expect(streaming.TypeEndSession)
	other := c.expect(streaming.TypeStartSession)
	c.resolve(streaming.TypeEndSession)

	select {
	case <-ch:
	default:
		t.Fatal("end_session waiter not resolved")
	}
	assert.Empty(t, other)

	c.forget(streaming.TypeStartSession, other)
	assert.Empty(t, c.waiters)

	// An ack nobody waits for is ignored.
	c.resolve("noop")
}

func TestSend_CountsDropsWhenFull(t *testing.T) {
	c := newConnection(slog.New(slog.DiscardHandler))
	for i := 0; i < outboxSize+3; i++ {
		c.send([]byte("x"))
	}
	assert.Equal(t, uint64(3), c.droppedCount())
}

func TestWithSecret(t *testing.T) {
	got, err := withSecret("ws://host:5000/ingest?v=1", "a b")
	require.NoError(t, err)
	assert.Equal(t, "ws://host:5000/ingest?secret=a+b&v=1", got)

	_, err = withSecret("://bad", "x")
	assert.Error(t, err)
}

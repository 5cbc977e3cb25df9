// Package session runs one goroutine per live game session. All reads and
// writes of a session's state go through the actor's inbox, so two players
// submitting at the same instant are applied one after the other and every
// broadcast reflects a single consistent post-mutation state.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wordarena/word-arena-backend/internal/engine"
	"github.com/wordarena/word-arena-backend/internal/types"
)

type Msg interface{ isSessionMsg() }

// Envelope is what a connection's outbox carries: either a broadcast
// snapshot or an error addressed to that connection alone.
type Envelope struct {
	Version  int
	Snapshot *types.Snapshot
	Err      *types.WireError
}

// Join registers a connection and immediately pushes the current snapshot.
// A returning player who was marked disconnected goes back to playing.
type Join struct {
	ConnID   string
	PlayerID string
	Outbox   chan Envelope
}

func (Join) isSessionMsg() {}

// Leave drops a connection. When it was the player's last connection the
// player is marked disconnected and the change is broadcast.
type Leave struct {
	ConnID   string
	PlayerID string
}

func (Leave) isSessionMsg() {}

// Submit is a guess from one connection. Rejections go only to that
// connection's outbox; accepted guesses broadcast a new snapshot to all.
type Submit struct {
	ConnID   string
	PlayerID string
	Guess    string
}

func (Submit) isSessionMsg() {}

// Resync re-pushes the current snapshot to one connection (the wire "join"
// action after the transport-level connect).
type Resync struct{ ConnID string }

func (Resync) isSessionMsg() {}

// GetState reflects internal state without data races; used by tests and
// the HTTP debug surface.
type GetState struct{ Reply chan View }

func (GetState) isSessionMsg() {}

// Expire asks the session whether it should be evicted as of Now. An
// abandoned session forfeits its remaining players before agreeing.
type Expire struct {
	Now   time.Time
	Reply chan bool
}

func (Expire) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type View struct {
	Version  int
	NumConns int
	Status   engine.Status
	Snapshot *types.Snapshot
}

// Config carries the eviction windows; zero values fall back to defaults.
type Config struct {
	Retention time.Duration // how long finished sessions linger
	Grace     time.Duration // how long a fully-disconnected session survives
}

const (
	defaultRetention = 10 * time.Minute
	defaultGrace     = 2 * time.Minute
)

type conn struct {
	playerID string
	outbox   chan Envelope
}

type Session struct {
	id      string
	inbox   chan Msg
	state   *engine.State
	dict    engine.WordSet
	version int
	conns   map[string]conn
	cfg     Config
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, state *engine.State, dict engine.WordSet, cfg Config, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.Grace <= 0 {
		cfg.Grace = defaultGrace
	}
	s := &Session{
		id:     state.SessionID,
		inbox:  make(chan Msg, 64),
		state:  state,
		dict:   dict,
		conns:  make(map[string]conn),
		cfg:    cfg,
		log:    log.With(zap.String("session", state.SessionID), zap.String("mode", string(state.Mode))),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Inbox exposes the actor's mailbox to the gateway and registry.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the actor has shut down and stopped draining its
// inbox.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

func (s *Session) loop() {
	// The countdown and the per-turn timeout ride the same one-second tick,
	// serialized with submissions because they share this loop.
	var tickC <-chan time.Time
	if s.state.Mode == engine.ModeRealtime || s.state.Rules.TurnSeconds > 0 {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case now := <-tickC:
			events, _ := engine.Apply(s.state, engine.Command{Type: engine.CmdTick, Now: now}, s.dict)
			if len(events) > 0 {
				s.broadcast()
			}

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.conns[msg.ConnID] = conn{playerID: msg.PlayerID, outbox: msg.Outbox}
				events, err := engine.Apply(s.state, engine.Command{
					Type: engine.CmdReconnect, PlayerID: msg.PlayerID, Now: time.Now(),
				}, s.dict)
				if err != nil {
					s.log.Warn("join from unknown player", zap.String("player", msg.PlayerID))
					s.send(msg.ConnID, Envelope{Err: &types.WireError{
						Code:    types.ErrorCode(err),
						Message: err.Error(),
					}})
					break
				}
				if len(events) > 0 {
					s.broadcast()
				} else {
					s.send(msg.ConnID, Envelope{Version: s.version, Snapshot: types.SnapshotFrom(s.state)})
				}

			case Leave:
				delete(s.conns, msg.ConnID)
				if !s.playerConnected(msg.PlayerID) {
					events, _ := engine.Apply(s.state, engine.Command{
						Type: engine.CmdDisconnect, PlayerID: msg.PlayerID, Now: time.Now(),
					}, s.dict)
					if len(events) > 0 {
						s.broadcast()
					}
				}

			case Submit:
				events, err := engine.Apply(s.state, engine.Command{
					Type:     engine.CmdSubmitGuess,
					PlayerID: msg.PlayerID,
					Guess:    msg.Guess,
					Now:      time.Now(),
				}, s.dict)
				if err != nil {
					s.send(msg.ConnID, Envelope{Err: &types.WireError{
						Code:    types.ErrorCode(err),
						Message: err.Error(),
					}})
					break
				}
				if engine.HasEvent(events, engine.EvtSessionFinished) {
					s.log.Info("session finished", zap.String("winner", s.state.WinnerID))
				}
				s.broadcast()

			case Resync:
				s.send(msg.ConnID, Envelope{Version: s.version, Snapshot: types.SnapshotFrom(s.state)})

			case GetState:
				msg.Reply <- View{
					Version:  s.version,
					NumConns: len(s.conns),
					Status:   s.state.Status,
					Snapshot: types.SnapshotFrom(s.state),
				}

			case Expire:
				evict := s.evictable(msg.Now)
				msg.Reply <- evict
				if evict {
					s.shutdown()
					return
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// evictable applies the registry's expiry policy. An abandoned session is
// forfeited (and the final state broadcast, in case someone reconnects the
// instant before shutdown) before agreeing to die.
func (s *Session) evictable(now time.Time) bool {
	switch {
	case s.state.Status == engine.StatusFinished:
		return now.Sub(s.state.LastActivity) > s.cfg.Retention
	case s.state.AllDisconnected():
		if now.Sub(s.state.LastActivity) <= s.cfg.Grace {
			return false
		}
		if engine.Abandon(s.state, now) {
			s.log.Info("session abandoned, forfeiting")
			s.broadcast()
		}
		return true
	default:
		return false
	}
}

func (s *Session) playerConnected(playerID string) bool {
	for _, c := range s.conns {
		if c.playerID == playerID {
			return true
		}
	}
	return false
}

// broadcast bumps the version and fans the snapshot out to every
// connection. The snapshot is built once, so all clients observe the same
// post-mutation state.
func (s *Session) broadcast() {
	s.version++
	env := Envelope{Version: s.version, Snapshot: types.SnapshotFrom(s.state)}
	for id, c := range s.conns {
		select {
		case c.outbox <- env:
		default:
			// Slow or stuck client; drop it rather than stall the session.
			close(c.outbox)
			delete(s.conns, id)
		}
	}
}

func (s *Session) send(connID string, env Envelope) {
	c, ok := s.conns[connID]
	if !ok {
		return
	}
	select {
	case c.outbox <- env:
	default:
		close(c.outbox)
		delete(s.conns, connID)
	}
}

func (s *Session) shutdown() {
	for id, c := range s.conns {
		close(c.outbox)
		delete(s.conns, id)
	}
	s.cancel()
}

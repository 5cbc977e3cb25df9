// Package ws terminates player websocket connections and bridges them onto
// a session's channel: one snapshot writer and one action reader per
// connection, with the session actor doing all the thinking.
package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/wordarena/word-arena-backend/internal/registry"
	"github.com/wordarena/word-arena-backend/internal/session"
	"github.com/wordarena/word-arena-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// joinWait bounds how long a fresh connection waits for its first
// snapshot; a var so tests can shrink it.
var joinWait = 5 * time.Second

func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		playerID := r.URL.Query().Get("player")
		if sessionID == "" || playerID == "" {
			http.Error(w, "missing session or player", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		reg.Inbox() <- registry.Get{ID: sessionID, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := randConnID()
		out := make(chan session.Envelope, 8)

		sess.Inbox() <- session.Join{ConnID: connID, PlayerID: playerID, Outbox: out}
		defer func() {
			select {
			case sess.Inbox() <- session.Leave{ConnID: connID, PlayerID: playerID}:
			case <-sess.Done():
			}
		}()

		log.Debug("player connected",
			zap.String("session", sessionID),
			zap.String("player", playerID))

		// The session can be evicted between the registry lookup and the
		// join; a join landing in a dead inbox must not hang the client.
		select {
		case env, ok := <-out:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "session closed")
				return
			}
			writeEnvelope(r.Context(), conn, env)
		case <-sess.Done():
			writeError(r.Context(), conn, "SessionNotFound", "session no longer exists")
			return
		case <-time.After(joinWait):
			writeError(r.Context(), conn, "SessionNotFound", "session did not respond")
			return
		}

		// Writer: drain the outbox until the session closes it.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range out {
				writeEnvelope(writeCtx, conn, env)
			}
			// Session dropped us (slow client or shutdown); close so the
			// reader unblocks and the handler returns.
			_ = conn.Close(websocket.StatusGoingAway, "session closed")
		}()

		// Reader: decode actions and forward them to the session actor.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "BadMessage", "malformed json")
				continue
			}

			switch cm.Action {
			case "join":
				sess.Inbox() <- session.Resync{ConnID: connID}
			case "submit_guess", "submit_turn_guess", "submit_coop_guess":
				sess.Inbox() <- session.Submit{ConnID: connID, PlayerID: playerID, Guess: cm.Guess}
			default:
				writeError(r.Context(), conn, "BadMessage", "unknown action")
			}
		}
	}
}

func toServerMessage(env session.Envelope) types.ServerMessage {
	if env.Err != nil {
		return types.ServerMessage{Type: "error", Error: env.Err}
	}
	return types.ServerMessage{Type: "state_snapshot", Version: env.Version, Snapshot: env.Snapshot}
}

func writeEnvelope(ctx context.Context, conn *websocket.Conn, env session.Envelope) {
	payload, _ := json.Marshal(toServerMessage(env))
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func writeError(ctx context.Context, conn *websocket.Conn, code, message string) {
	payload, _ := json.Marshal(types.ServerMessage{
		Type:  "error",
		Error: &types.WireError{Code: code, Message: message},
	})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func randConnID() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

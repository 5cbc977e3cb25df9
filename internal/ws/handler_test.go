package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/wordarena/word-arena-backend/internal/engine"
	"github.com/wordarena/word-arena-backend/internal/registry"
	"github.com/wordarena/word-arena-backend/internal/session"
	"github.com/wordarena/word-arena-backend/internal/types"
	"github.com/wordarena/word-arena-backend/internal/words"
)

var testBank = func() *words.Bank {
	b, err := words.FromList([]string{"HELLO"})
	if err != nil {
		panic(err)
	}
	return b
}()

func newGateway(t *testing.T) (*registry.Registry, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := registry.New(ctx, testBank, engine.Rules{MaxGuesses: 6, RealtimeSeconds: 300}, session.Config{}, zap.NewNop())
	srv := httptest.NewServer(Handler(reg, zap.NewNop()))
	t.Cleanup(srv.Close)
	return reg, srv
}

func createSession(t *testing.T, reg *registry.Registry) registry.CreateResult {
	t.Helper()
	reply := make(chan registry.CreateResult, 1)
	reg.Inbox() <- registry.Create{
		Mode:         engine.ModeSolo,
		WordLength:   5,
		Participants: []engine.Participant{{ID: "a", Name: "a"}},
		Reply:        reply,
	}
	res := <-reply
	if res.Err != nil {
		t.Fatalf("create: %v", res.Err)
	}
	return res
}

func dial(t *testing.T, srv *httptest.Server, sessionID, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + sessionID + "&player=" + playerID
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(websocket.StatusNormalClosure, "done") })
	return c
}

func readMessage(t *testing.T, c *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sm types.ServerMessage
	if err := json.Unmarshal(data, &sm); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return sm
}

func TestHandler_ConnectPushesFirstSnapshot(t *testing.T) {
	reg, srv := newGateway(t)
	res := createSession(t, reg)

	c := dial(t, srv, res.ID, "a")
	sm := readMessage(t, c)
	if sm.Type != "state_snapshot" || sm.Snapshot == nil {
		t.Fatalf("want snapshot on connect, got %+v", sm)
	}
	if sm.Snapshot.GameID != res.ID {
		t.Fatalf("want snapshot for %s, got %s", res.ID, sm.Snapshot.GameID)
	}
}

func TestHandler_DeadSessionClosesWithError(t *testing.T) {
	old := joinWait
	joinWait = 50 * time.Millisecond
	t.Cleanup(func() { joinWait = old })

	reg, srv := newGateway(t)
	res := createSession(t, reg)

	// Kill the actor while it is still in the registry, as an eviction
	// sweep can between the gateway's lookup and its join.
	res.Sess.Inbox() <- session.Shutdown{}
	select {
	case <-res.Sess.Done():
	case <-time.After(time.Second):
		t.Fatal("session never shut down")
	}

	c := dial(t, srv, res.ID, "a")
	sm := readMessage(t, c)
	if sm.Type != "error" || sm.Error == nil || sm.Error.Code != "SessionNotFound" {
		t.Fatalf("want SessionNotFound error, got %+v", sm)
	}
}

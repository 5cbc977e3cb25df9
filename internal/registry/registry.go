// Package registry owns the process-wide table of live sessions. Like each
// session, the table itself is a single-goroutine actor: creation, lookup,
// and eviction are serialized through its inbox while the sessions behind
// the table run fully in parallel.
package registry

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/wordarena/word-arena-backend/internal/engine"
	"github.com/wordarena/word-arena-backend/internal/session"
	"github.com/wordarena/word-arena-backend/internal/words"
)

type Msg interface{ isRegistryMsg() }

type Create struct {
	Mode         engine.Mode
	WordLength   int
	Participants []engine.Participant
	Reply        chan CreateResult
}

func (Create) isRegistryMsg() {}

type CreateResult struct {
	ID   string
	Sess *session.Session
	Err  error
}

type Get struct {
	ID    string
	Reply chan *session.Session // nil when unknown
}

func (Get) isRegistryMsg() {}

type Remove struct{ ID string }

func (Remove) isRegistryMsg() {}

// EvictStale probes every session with its Now and removes the ones that
// agree to die. Done (optional) receives the eviction count.
type EvictStale struct {
	Now  time.Time
	Done chan int
}

func (EvictStale) isRegistryMsg() {}

type Shutdown struct{}

func (Shutdown) isRegistryMsg() {}

type Registry struct {
	inbox    chan Msg
	sessions map[string]*session.Session
	bank     *words.Bank
	rules    engine.Rules
	scfg     session.Config
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, bank *words.Bank, rules engine.Rules, scfg session.Config, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]*session.Session),
		bank:     bank,
		rules:    rules,
		scfg:     scfg,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Create:
				msg.Reply <- r.create(msg)

			case Get:
				msg.Reply <- r.sessions[msg.ID]

			case Remove:
				if sess := r.sessions[msg.ID]; sess != nil {
					sess.Inbox() <- session.Shutdown{}
					delete(r.sessions, msg.ID)
				}

			case EvictStale:
				n := r.evictStale(msg.Now)
				if msg.Done != nil {
					msg.Done <- n
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Registry) create(msg Create) CreateResult {
	secret, err := r.bank.RandomWord(msg.WordLength)
	if err != nil {
		return CreateResult{Err: err}
	}
	id, err := r.freshID()
	if err != nil {
		return CreateResult{Err: err}
	}
	state, err := engine.NewState(id, msg.Mode, msg.WordLength, secret, msg.Participants, r.rules, time.Now())
	if err != nil {
		return CreateResult{Err: err}
	}
	sess := session.New(r.ctx, state, r.bank, r.scfg, r.log)
	r.sessions[id] = sess
	r.log.Info("session created",
		zap.String("session", id),
		zap.String("mode", string(msg.Mode)),
		zap.Int("players", len(msg.Participants)))
	return CreateResult{ID: id, Sess: sess}
}

// freshID draws 8-char crypto-random codes until one is unused. The
// keyspace is large enough that the loop effectively never repeats.
func (r *Registry) freshID() (string, error) {
	for {
		id, err := generateCode(8)
		if err != nil {
			return "", err
		}
		if _, taken := r.sessions[id]; !taken {
			return id, nil
		}
	}
}

func generateCode(n int) (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	code := make([]byte, n)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func (r *Registry) evictStale(now time.Time) int {
	evicted := 0
	for id, sess := range r.sessions {
		reply := make(chan bool, 1)
		select {
		case sess.Inbox() <- session.Expire{Now: now, Reply: reply}:
		default:
			continue // inbox jammed; try again next sweep
		}
		select {
		case gone := <-reply:
			if gone {
				delete(r.sessions, id)
				evicted++
				r.log.Info("session evicted", zap.String("session", id))
			}
		case <-time.After(time.Second):
			r.log.Warn("expiry probe timed out", zap.String("session", id))
		}
	}
	return evicted
}

func (r *Registry) shutdown() {
	for id, sess := range r.sessions {
		sess.Inbox() <- session.Shutdown{}
		delete(r.sessions, id)
	}
	r.cancel()
}

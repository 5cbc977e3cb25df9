package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wordarena/word-arena-backend/internal/engine"
	"github.com/wordarena/word-arena-backend/internal/registry"
	"github.com/wordarena/word-arena-backend/internal/words"
)

type createSessionReq struct {
	Mode       string `json:"mode"`
	WordLength int    `json:"wordLength"`
	Players    []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
}

type createSessionRes struct {
	SessionID string `json:"sessionId"`
}

// CreateSession is the matchmaking collaborator's entry point: it hands us
// a mode, a word length, and the paired participants, and gets a session id
// the clients then connect to over /ws.
func CreateSession(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "bad_json")
			return
		}
		mode, ok := engine.ParseMode(req.Mode)
		if !ok {
			httpError(w, http.StatusBadRequest, "unknown_mode")
			return
		}
		if len(req.Players) == 0 {
			httpError(w, http.StatusBadRequest, "no_players")
			return
		}
		participants := make([]engine.Participant, 0, len(req.Players))
		for _, p := range req.Players {
			if p.ID == "" {
				httpError(w, http.StatusBadRequest, "missing_player_id")
				return
			}
			participants = append(participants, engine.Participant{ID: p.ID, Name: p.Name})
		}

		reply := make(chan registry.CreateResult, 1)
		reg.Inbox() <- registry.Create{
			Mode:         mode,
			WordLength:   req.WordLength,
			Participants: participants,
			Reply:        reply,
		}
		res := <-reply
		if res.Err != nil {
			log.Warn("create session rejected", zap.Error(res.Err))
			httpError(w, http.StatusUnprocessableEntity, res.Err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createSessionRes{SessionID: res.ID})
	}
}

// ValidateWord lets clients pre-check a guess without burning an attempt.
func ValidateWord(bank *words.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		word := r.URL.Query().Get("word")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": bank.IsValid(word)})
	}
}

// DebugWords reports per-length word counts.
func DebugWords(bank *words.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bank.Stats())
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func httpError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

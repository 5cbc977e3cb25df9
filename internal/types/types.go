// Package types defines the JSON wire protocol between the gateway and game
// clients, plus the client-safe snapshot of a session. The snapshot struct
// deliberately has no field for the secret word, so it cannot leak by
// serialization.
package types

import (
	"errors"

	"github.com/wordarena/word-arena-backend/internal/engine"
)

// Client -> Server. Action is one of "join", "submit_guess",
// "submit_turn_guess", "submit_coop_guess" (the three submit variants are
// aliases the mode-specific clients send; the engine treats them the same).
type ClientMessage struct {
	Action   string `json:"action"`
	PlayerID string `json:"playerId,omitempty"`
	Guess    string `json:"guess,omitempty"`
}

// Server -> Client. Type is "state_snapshot" or "error".
type ServerMessage struct {
	Type     string     `json:"type"`
	Version  int        `json:"version,omitempty"`
	Snapshot *Snapshot  `json:"state,omitempty"`
	Error    *WireError `json:"error,omitempty"`
}

// WireError is sent only to the connection whose action was rejected.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GuessView is one scored guess as the client sees it.
type GuessView struct {
	Word   string   `json:"word"`
	Result []string `json:"result"`
	Points int      `json:"points"`
}

type PlayerView struct {
	Name    string      `json:"name"`
	Guesses []GuessView `json:"guesses"`
	Score   int         `json:"score"`
	Status  string      `json:"status"`
}

type TurnView struct {
	PlayerID string `json:"playerId"`
	Guess    string `json:"guess"`
}

// Snapshot is the full client-visible session state.
type Snapshot struct {
	GameID          string                `json:"gameId"`
	Mode            string                `json:"mode"`
	Status          string                `json:"status"`
	Players         map[string]PlayerView `json:"players"`
	WordLength      int                   `json:"wordLength"`
	MaxGuesses      int                   `json:"maxGuesses"`
	CurrentPlayerID string                `json:"currentPlayerId,omitempty"`
	TimeLeft        *int                  `json:"timeLeft,omitempty"`
	TurnHistory     []TurnView            `json:"turnHistory,omitempty"`
	Winner          string                `json:"winner,omitempty"`
}

// SnapshotFrom projects engine state into the wire shape, dropping the
// secret and the server-side timestamps.
func SnapshotFrom(s *engine.State) *Snapshot {
	snap := &Snapshot{
		GameID:          s.SessionID,
		Mode:            string(s.Mode),
		Status:          string(s.Status),
		Players:         make(map[string]PlayerView, len(s.Players)),
		WordLength:      s.WordLength,
		MaxGuesses:      s.Rules.MaxGuesses,
		CurrentPlayerID: s.ActiveID,
		Winner:          s.WinnerID,
	}
	if s.Mode == engine.ModeRealtime {
		left := s.TimeLeft
		snap.TimeLeft = &left
	}
	for id, p := range s.Players {
		pv := PlayerView{
			Name:    p.Name,
			Guesses: make([]GuessView, 0, len(p.Guesses)),
			Score:   p.Score,
			Status:  string(p.Status),
		}
		for _, g := range p.Guesses {
			result := make([]string, len(g.Result))
			for i, m := range g.Result {
				result[i] = string(m)
			}
			pv.Guesses = append(pv.Guesses, GuessView{Word: g.Word, Result: result, Points: g.Points})
		}
		snap.Players[id] = pv
	}
	for _, t := range s.TurnHistory {
		snap.TurnHistory = append(snap.TurnHistory, TurnView{PlayerID: t.PlayerID, Guess: t.Word})
	}
	return snap
}

// ErrorCode maps engine validation errors to wire codes.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, engine.ErrSessionNotPlayable):
		return "SessionNotPlayable"
	case errors.Is(err, engine.ErrInvalidLength):
		return "InvalidLength"
	case errors.Is(err, engine.ErrUnknownWord):
		return "UnknownWord"
	case errors.Is(err, engine.ErrNotYourTurn):
		return "NotYourTurn"
	case errors.Is(err, engine.ErrNoGuessesLeft):
		return "NoGuessesLeft"
	case errors.Is(err, engine.ErrUnknownPlayer):
		return "SessionNotFound"
	default:
		return "Internal"
	}
}

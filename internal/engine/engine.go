package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrSessionNotPlayable = errors.New("session not playable")
var ErrInvalidLength = errors.New("invalid guess length")
var ErrUnknownWord = errors.New("unknown word")
var ErrNotYourTurn = errors.New("not your turn")
var ErrNoGuessesLeft = errors.New("no guesses left")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type PlayerStatus string

const (
	PlayerPlaying      PlayerStatus = "playing"
	PlayerWon          PlayerStatus = "won"
	PlayerLost         PlayerStatus = "lost"
	PlayerDisconnected PlayerStatus = "disconnected"
)

// Guess is one accepted guess with its feedback and the points it earned.
type Guess struct {
	Word   string
	Result Feedback
	Points int
}

// TurnEntry records who guessed what, in order, for turn-ordered modes.
type TurnEntry struct {
	PlayerID string
	Word     string
}

type Player struct {
	ID      string
	Name    string
	Guesses []Guess
	Score   int
	Status  PlayerStatus
}

// Participant seeds a Player at session creation. Identity comes from an
// external provider; the engine only needs a stable id and a display name.
type Participant struct {
	ID   string
	Name string
}

type Rules struct {
	MaxGuesses      int
	RealtimeSeconds int
	TurnSeconds     int // 0 disables the per-turn timeout
}

func DefaultRules() Rules {
	return Rules{MaxGuesses: 6, RealtimeSeconds: 300}
}

// State is the full authoritative state of one session. It is mutated only
// through Apply, and only ever by the single session actor that owns it.
// Secret never leaves this package except through Apply's win check.
type State struct {
	SessionID  string
	Mode       Mode
	WordLength int
	Secret     string
	Rules      Rules

	Players map[string]*Player
	Order   []string // join order; also the round-robin turn order

	Status       Status
	ActiveID     string // turn-ordered modes only
	TimeLeft     int    // realtime countdown, seconds
	TurnHistory  []TurnEntry
	WinnerID     string
	CreatedAt    time.Time
	LastActivity time.Time

	// Score-timer baselines. Turn-ordered modes reset the active player's
	// baseline at turn start; solo/realtime reset on each accepted guess.
	TurnStartedAt time.Time
	Baselines     map[string]time.Time
}

// NewState creates a session already in the playing phase (lobby waits are
// matchmaking's job). The secret must match the requested length; a mismatch
// aborts creation rather than produce an inconsistent session.
func NewState(sessionID string, mode Mode, wordLength int, secret string, participants []Participant, rules Rules, now time.Time) (*State, error) {
	if len(participants) == 0 {
		return nil, errors.New("session needs at least one participant")
	}
	if len(secret) != wordLength {
		return nil, fmt.Errorf("secret length %d does not match word length %d", len(secret), wordLength)
	}
	s := &State{
		SessionID:     sessionID,
		Mode:          mode,
		WordLength:    wordLength,
		Secret:        secret,
		Rules:         rules,
		Players:       make(map[string]*Player, len(participants)),
		Status:        StatusPlaying,
		CreatedAt:     now,
		LastActivity:  now,
		TurnStartedAt: now,
		Baselines:     make(map[string]time.Time, len(participants)),
	}
	for _, pt := range participants {
		if _, dup := s.Players[pt.ID]; dup {
			return nil, fmt.Errorf("duplicate participant %q", pt.ID)
		}
		s.Players[pt.ID] = &Player{ID: pt.ID, Name: pt.Name, Status: PlayerPlaying}
		s.Order = append(s.Order, pt.ID)
		s.Baselines[pt.ID] = now
	}
	if mode.policy().turnOrdered {
		s.ActiveID = s.Order[0]
	}
	if mode.policy().timed {
		s.TimeLeft = rules.RealtimeSeconds
	}
	return s, nil
}

type CommandType string

const (
	CmdSubmitGuess CommandType = "SubmitGuess"
	CmdDisconnect  CommandType = "Disconnect"
	CmdReconnect   CommandType = "Reconnect"
	CmdTick        CommandType = "Tick"
)

type Command struct {
	Type     CommandType
	PlayerID string
	Guess    string
	Now      time.Time
}

type EventType string

const (
	EvtGuessScored        EventType = "GuessScored"
	EvtTurnAdvanced       EventType = "TurnAdvanced"
	EvtPlayerWon          EventType = "PlayerWon"
	EvtPlayerDisconnected EventType = "PlayerDisconnected"
	EvtPlayerReconnected  EventType = "PlayerReconnected"
	EvtTimerExpired       EventType = "TimerExpired"
	EvtSessionFinished    EventType = "SessionFinished"
)

type Event struct {
	Type     EventType
	PlayerID string
	Feedback Feedback
	Score    Breakdown
}

// HasEvent reports whether events contains one of the given type.
func HasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}

// WordSet is the guess-membership check Apply needs; *words.Bank satisfies it.
type WordSet interface {
	IsValid(word string) bool
}

// Apply runs one command against the state. All validation happens before
// any mutation, so a returned error means the state is untouched.
func Apply(s *State, cmd Command, dict WordSet) ([]Event, error) {
	switch cmd.Type {
	case CmdSubmitGuess:
		return applyGuess(s, cmd, dict)
	case CmdDisconnect:
		return applyDisconnect(s, cmd)
	case CmdReconnect:
		return applyReconnect(s, cmd)
	case CmdTick:
		return applyTick(s, cmd)
	default:
		return nil, ErrUnsupportedCommand
	}
}

func applyGuess(s *State, cmd Command, dict WordSet) ([]Event, error) {
	if s.Status != StatusPlaying {
		return nil, ErrSessionNotPlayable
	}
	p := s.Players[cmd.PlayerID]
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	guess := strings.ToUpper(strings.TrimSpace(cmd.Guess))
	if len(guess) != s.WordLength {
		return nil, ErrInvalidLength
	}
	if !dict.IsValid(guess) {
		return nil, ErrUnknownWord
	}
	pol := s.Mode.policy()
	if pol.turnOrdered && cmd.PlayerID != s.ActiveID {
		return nil, ErrNotYourTurn
	}
	if s.attemptCount(cmd.PlayerID) >= s.Rules.MaxGuesses {
		return nil, ErrNoGuessesLeft
	}

	fb := Evaluate(guess, s.Secret)
	elapsed := cmd.Now.Sub(s.Baselines[cmd.PlayerID]).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	bd := Score(fb, elapsed)

	p.Guesses = append(p.Guesses, Guess{Word: guess, Result: fb, Points: bd.Total})
	p.Score += bd.Total
	if pol.turnOrdered {
		s.TurnHistory = append(s.TurnHistory, TurnEntry{PlayerID: cmd.PlayerID, Word: guess})
	} else {
		s.Baselines[cmd.PlayerID] = cmd.Now
	}
	s.LastActivity = cmd.Now

	events := []Event{{Type: EvtGuessScored, PlayerID: cmd.PlayerID, Feedback: fb, Score: bd}}

	if guess == s.Secret {
		p.Status = PlayerWon
		events = append(events, Event{Type: EvtPlayerWon, PlayerID: cmd.PlayerID})
		if pol.sharedBoard {
			// Cooperative: the win belongs to the whole table.
			for _, other := range s.Players {
				if other.Status == PlayerPlaying {
					other.Status = PlayerWon
				}
			}
		}
		s.finish(cmd.PlayerID, &events)
		return events, nil
	}

	switch {
	case s.Mode == ModeSolo:
		if len(p.Guesses) >= s.Rules.MaxGuesses {
			p.Status = PlayerLost
			s.finish("", &events)
		}
	case pol.sharedBoard:
		if len(s.TurnHistory) >= s.Rules.MaxGuesses {
			// Shared attempts exhausted: a loss for everyone still in.
			for _, other := range s.Players {
				if other.Status == PlayerPlaying {
					other.Status = PlayerLost
				}
			}
			s.finish("", &events)
		} else {
			s.advanceTurn(cmd.Now, &events)
		}
	case pol.turnOrdered:
		if s.noneCanGuess() {
			s.finishByScore(true, &events)
		} else {
			s.advanceTurn(cmd.Now, &events)
		}
	default: // realtime
		if s.noneCanGuess() {
			s.finishByScore(false, &events)
		}
	}
	return events, nil
}

func applyDisconnect(s *State, cmd Command) ([]Event, error) {
	p := s.Players[cmd.PlayerID]
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if s.Status == StatusFinished {
		return nil, nil
	}
	var events []Event
	if p.Status == PlayerPlaying {
		p.Status = PlayerDisconnected
		events = append(events, Event{Type: EvtPlayerDisconnected, PlayerID: cmd.PlayerID})
	}
	if s.Mode.policy().turnOrdered && s.ActiveID == cmd.PlayerID {
		s.advanceTurn(cmd.Now, &events)
	}
	s.LastActivity = cmd.Now
	return events, nil
}

func applyReconnect(s *State, cmd Command) ([]Event, error) {
	p := s.Players[cmd.PlayerID]
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if s.Status == StatusFinished || p.Status != PlayerDisconnected {
		return nil, nil
	}
	p.Status = PlayerPlaying
	s.LastActivity = cmd.Now
	return []Event{{Type: EvtPlayerReconnected, PlayerID: cmd.PlayerID}}, nil
}

func applyTick(s *State, cmd Command) ([]Event, error) {
	if s.Status != StatusPlaying {
		return nil, nil
	}
	pol := s.Mode.policy()
	var events []Event
	switch {
	case pol.timed:
		s.TimeLeft--
		s.LastActivity = cmd.Now
		if s.TimeLeft <= 0 {
			s.TimeLeft = 0
			events = append(events, Event{Type: EvtTimerExpired})
			s.finishByScore(false, &events)
		}
	case pol.turnOrdered && s.Rules.TurnSeconds > 0:
		if cmd.Now.Sub(s.TurnStartedAt) >= time.Duration(s.Rules.TurnSeconds)*time.Second {
			// Overdue turn passes without consuming a guess.
			s.advanceTurn(cmd.Now, &events)
			if len(events) > 0 {
				s.LastActivity = cmd.Now
			}
		}
	}
	return events, nil
}

// Abandon forfeits a session whose players have all gone away: everyone
// still playing is marked lost and the session finishes with no winner.
// Reports whether it changed anything.
func Abandon(s *State, now time.Time) bool {
	if s.Status == StatusFinished {
		return false
	}
	for _, p := range s.Players {
		if p.Status == PlayerPlaying {
			p.Status = PlayerLost
		}
	}
	s.Status = StatusFinished
	s.LastActivity = now
	return true
}

// AllDisconnected reports whether no player is actively connected.
func (s *State) AllDisconnected() bool {
	for _, p := range s.Players {
		if p.Status != PlayerDisconnected {
			return false
		}
	}
	return true
}

// attemptCount is the guess budget already used by a player: the shared
// history for cooperative boards, the player's own guesses otherwise.
func (s *State) attemptCount(playerID string) int {
	if s.Mode.policy().sharedBoard {
		return len(s.TurnHistory)
	}
	return len(s.Players[playerID].Guesses)
}

// canGuess reports whether a player could still legally submit.
func (s *State) canGuess(playerID string) bool {
	p := s.Players[playerID]
	return p != nil && p.Status == PlayerPlaying && s.attemptCount(playerID) < s.Rules.MaxGuesses
}

func (s *State) noneCanGuess() bool {
	for _, id := range s.Order {
		if s.canGuess(id) {
			return false
		}
	}
	return true
}

// advanceTurn moves ActiveID to the next player in join order who can still
// act, skipping disconnected and exhausted players. No-op when nobody else
// is eligible.
func (s *State) advanceTurn(now time.Time, events *[]Event) {
	start := 0
	for i, id := range s.Order {
		if id == s.ActiveID {
			start = i
			break
		}
	}
	for off := 1; off <= len(s.Order); off++ {
		id := s.Order[(start+off)%len(s.Order)]
		if !s.canGuess(id) {
			continue
		}
		s.ActiveID = id
		s.TurnStartedAt = now
		s.Baselines[id] = now
		*events = append(*events, Event{Type: EvtTurnAdvanced, PlayerID: id})
		return
	}
}

func (s *State) finish(winnerID string, events *[]Event) {
	s.Status = StatusFinished
	s.WinnerID = winnerID
	*events = append(*events, Event{Type: EvtSessionFinished, PlayerID: winnerID})
}

// finishByScore ends the session and crowns the highest cumulative score.
// An outright winner is marked won; a tie leaves no winner. markLosers
// additionally marks the remaining players lost (turn-based exhaustion);
// realtime timer expiry leaves them as they stand.
func (s *State) finishByScore(markLosers bool, events *[]Event) {
	var winner *Player
	tie := false
	for _, id := range s.Order {
		p := s.Players[id]
		if winner == nil || p.Score > winner.Score {
			winner, tie = p, false
		} else if p.Score == winner.Score {
			tie = true
		}
	}
	winnerID := ""
	if winner != nil && !tie {
		winnerID = winner.ID
		if winner.Status == PlayerPlaying {
			winner.Status = PlayerWon
		}
	}
	if markLosers {
		for _, p := range s.Players {
			if p.Status == PlayerPlaying && p.ID != winnerID {
				p.Status = PlayerLost
			}
		}
	}
	s.finish(winnerID, events)
}

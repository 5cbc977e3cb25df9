package engine

// Mode selects the turn-order and finish rules for a session.
type Mode string

const (
	ModeSolo        Mode = "solo"
	ModeRealtime    Mode = "realtime"
	ModeTurnBased   Mode = "turnbased"
	ModeCooperative Mode = "cooperative"
)

// policy captures how a mode differs from the others, so the engine stays
// one state machine instead of four near-copies.
type policy struct {
	turnOrdered bool // only the active player may submit
	sharedBoard bool // one shared guess sequence and attempt counter
	timed       bool // hard wall-clock budget driven by Tick
}

var policies = map[Mode]policy{
	ModeSolo:        {},
	ModeRealtime:    {timed: true},
	ModeTurnBased:   {turnOrdered: true},
	ModeCooperative: {turnOrdered: true, sharedBoard: true},
}

// ParseMode maps a wire string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeSolo, ModeRealtime, ModeTurnBased, ModeCooperative:
		return Mode(s), true
	default:
		return "", false
	}
}

func (m Mode) policy() policy { return policies[m] }

// Package timeline builds and mutates the merged, ordered sequence of actions
// performed by the two participants of an encounter.
package timeline

import (
	"fmt"
	"math"
)

// ActorID identifies one of the two encounter participants. The numeric
// value doubles as the tie-break priority: lower resolves first.
type ActorID int

const (
	Primary  ActorID = 0
	Opponent ActorID = 1
)

// Valid reports whether id names a participant.
func (id ActorID) Valid() bool {
	return id == Primary || id == Opponent
}

// Other returns the opposing participant.
func (id ActorID) Other() ActorID {
	if id == Primary {
		return Opponent
	}
	return Primary
}

func (id ActorID) String() string {
	switch id {
	case Primary:
		return "primary"
	case Opponent:
		return "opponent"
	default:
		return fmt.Sprintf("actor(%d)", int(id))
	}
}

// ParseActor parses "primary" or "opponent".
func ParseActor(s string) (ActorID, error) {
	switch s {
	case "primary":
		return Primary, nil
	case "opponent":
		return Opponent, nil
	default:
		return 0, fmt.Errorf("actor %q: %w", s, ErrInvalidActor)
	}
}

// MarshalText encodes the actor by name.
func (id ActorID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, ErrInvalidActor
	}
	return []byte(id.String()), nil
}

// UnmarshalText decodes an actor name.
func (id *ActorID) UnmarshalText(text []byte) error {
	v, err := ParseActor(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ActionType distinguishes basic attacks from spells.
type ActionType int

const (
	Attack ActionType = iota
	Spell
)

func (t ActionType) String() string {
	switch t {
	case Attack:
		return "attack"
	case Spell:
		return "spell"
	default:
		return fmt.Sprintf("action(%d)", int(t))
	}
}

// MarshalText encodes the action type by name.
func (t ActionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes "attack" or "spell".
func (t *ActionType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "attack":
		*t = Attack
	case "spell":
		*t = Spell
	default:
		return fmt.Errorf("unknown action type %q", text)
	}
	return nil
}

// Action is one scheduled occurrence on the shared timeline.
type Action struct {
	Actor    ActorID    `json:"actor"`
	Turn     int        `json:"turn"`
	Time     float64    `json:"time"`
	Type     ActionType `json:"type"`
	Priority int        `json:"priority"`
}

// timeEpsilon absorbs rounding in cadence sums such as 3 x (1/3).
const timeEpsilon = 1e-9

// TurnOf returns the integer turn a time falls in.
func TurnOf(t float64) int {
	return int(math.Floor(t + timeEpsilon))
}

func sameTime(a, b float64) bool {
	return math.Abs(a-b) <= timeEpsilon
}

// Less orders actions by time, then priority. Actions of the same actor at
// the same time keep their generation order (attacks before spells) because
// sorting is stable.
func Less(a, b Action) bool {
	if !sameTime(a.Time, b.Time) {
		return a.Time < b.Time
	}
	return a.Priority < b.Priority
}

// After reports whether a comes strictly after b, breaking full ties on
// action type. It identifies actions already consumed from a window.
func After(a, b Action) bool {
	if Less(b, a) {
		return true
	}
	if Less(a, b) {
		return false
	}
	return a.Type > b.Type
}

// StunPeriod records the interval during which an actor's actions were held
// back. End always equals Start plus the applied duration. SourcePriority and
// SourceType identify the stunning action, which resolved at Start.
type StunPeriod struct {
	Actor          ActorID    `json:"actor"`
	Start          float64    `json:"start"`
	End            float64    `json:"end"`
	SourcePriority int        `json:"source_priority"`
	SourceType     ActionType `json:"source_type"`
}

// source rebuilds the key of the stunning action.
func (p StunPeriod) source() Action {
	return Action{Time: p.Start, Priority: p.SourcePriority, Type: p.SourceType}
}

// Duration returns the length of the stun.
func (p StunPeriod) Duration() float64 {
	return p.End - p.Start
}

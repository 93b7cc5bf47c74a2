package encounter

import (
	"fmt"

	"github.com/louisbranch/skirmish/internal/services/encounter/domain/status"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

// EventKind identifies what produced an event.
type EventKind int

const (
	EventAction EventKind = iota
	EventEnd
	EventMove
	EventEquip
	EventUnequip
	EventUseItem
	EventCleanse
	EventLevelUp
	EventRegenerate
)

var eventKindNames = [...]string{
	EventAction:     "action",
	EventEnd:        "end",
	EventMove:       "move",
	EventEquip:      "equip",
	EventUnequip:    "unequip",
	EventUseItem:    "use_item",
	EventCleanse:    "cleanse",
	EventLevelUp:    "level_up",
	EventRegenerate: "regenerate",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("event(%d)", int(k))
	}
	return eventKindNames[k]
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of resolving one action.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeHit is a basic attack that connected.
	OutcomeHit
	// OutcomeCast is a spell that was cast.
	OutcomeCast
	// OutcomeOutOfRange is an action whose target was too far away. Nothing
	// was spent and nothing happened.
	OutcomeOutOfRange
	// OutcomeIdle is a spell slot with no ready ability.
	OutcomeIdle
)

var outcomeNames = [...]string{
	OutcomeNone:       "none",
	OutcomeHit:        "hit",
	OutcomeCast:       "cast",
	OutcomeOutOfRange: "missed: out of range",
	OutcomeIdle:       "idle",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// EndReason tells why an encounter ended.
type EndReason int

const (
	ReasonDefeat EndReason = iota + 1
	ReasonFled
	ReasonTurnLimit
)

func (r EndReason) String() string {
	switch r {
	case ReasonDefeat:
		return "defeat"
	case ReasonFled:
		return "fled"
	case ReasonTurnLimit:
		return "turn_limit"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// MarshalText encodes the reason by name.
func (r EndReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Result is the final state of an encounter.
type Result struct {
	Reason EndReason `json:"reason"`
	// Winner is set when Decided is true.
	Winner  timeline.ActorID `json:"winner"`
	Decided bool             `json:"decided"`
	// Actor is the participant that fled, when Reason is ReasonFled.
	Actor timeline.ActorID `json:"actor"`
	Turn  int              `json:"turn"`
}

// AppliedBuff is a buff an event created or refreshed.
type AppliedBuff struct {
	Actor  timeline.ActorID `json:"actor"`
	Buff   status.Buff      `json:"buff"`
	Result status.Result    `json:"result"`
}

// PeriodicHit is one heal-over-time or damage-over-time application.
type PeriodicHit struct {
	Actor  timeline.ActorID `json:"actor"`
	BuffID string           `json:"buff_id"`
	Group  string           `json:"group"`
	// Amount is positive for heals and negative for damage.
	Amount int `json:"amount"`
}

// ExpiredBuff is a buff that decayed away on a turn boundary.
type ExpiredBuff struct {
	Actor timeline.ActorID `json:"actor"`
	Buff  status.Buff      `json:"buff"`
}

// Tick records what happened on one integer turn boundary.
type Tick struct {
	Turn     int           `json:"turn"`
	Periodic []PeriodicHit `json:"periodic,omitempty"`
	Expired  []ExpiredBuff `json:"expired,omitempty"`
}

// Event is a self-contained record of one transition. A renderer can draw it
// without tracking any other state.
type Event struct {
	Seq     int                  `json:"seq"`
	Kind    EventKind            `json:"kind"`
	Time    float64              `json:"time"`
	Turn    int                  `json:"turn"`
	Actor   timeline.ActorID     `json:"actor"`
	Target  timeline.ActorID     `json:"target"`
	Action  *timeline.Action     `json:"action,omitempty"`
	Outcome Outcome              `json:"outcome"`
	Ability string               `json:"ability,omitempty"`
	Item    string               `json:"item,omitempty"`
	Damage  int                  `json:"damage,omitempty"`
	Crit    bool                 `json:"crit,omitempty"`
	Heal    int                  `json:"heal,omitempty"`
	Vamp    int                  `json:"vamp,omitempty"`
	HP      [2]int               `json:"hp"`
	MaxHP   [2]int               `json:"max_hp"`
	Buffs   []AppliedBuff        `json:"buffs,omitempty"`
	Removed []status.Buff        `json:"removed,omitempty"`
	Stun    *timeline.StunPeriod `json:"stun,omitempty"`
	Ticks   []Tick               `json:"ticks,omitempty"`
	// Regenerate is set when the event changed attack speed or ability haste,
	// so the action window should be regenerated.
	Regenerate bool     `json:"regenerate,omitempty"`
	Result     *Result  `json:"result,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

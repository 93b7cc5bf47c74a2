// Package status tracks buffs and debuffs applied to one participant.
package status

import (
	"fmt"

	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
)

// DurationType selects the clock a buff decays on.
type DurationType int

const (
	// Turns decays once per turn boundary.
	Turns DurationType = iota
	// Encounters decays once per completed encounter.
	Encounters
)

func (d DurationType) String() string {
	switch d {
	case Turns:
		return "turns"
	case Encounters:
		return "encounters"
	default:
		return fmt.Sprintf("duration(%d)", int(d))
	}
}

// MarshalText encodes the duration type by name.
func (d DurationType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "turns" or "encounters".
func (d *DurationType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "turns", "":
		*d = Turns
	case "encounters":
		*d = Encounters
	default:
		return fmt.Errorf("unknown duration type %q", text)
	}
	return nil
}

// Kind selects how a buff acts.
type Kind int

const (
	// Instant modifies a stat for as long as the buff is active.
	Instant Kind = iota
	// HealOverTime restores Amount health on every turn boundary.
	HealOverTime
	// DamageOverTime deals Amount true damage on every turn boundary.
	DamageOverTime
)

func (k Kind) String() string {
	switch k {
	case Instant:
		return "instant"
	case HealOverTime:
		return "heal_over_time"
	case DamageOverTime:
		return "damage_over_time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "instant", "":
		*k = Instant
	case "heal_over_time":
		*k = HealOverTime
	case "damage_over_time":
		*k = DamageOverTime
	default:
		return fmt.Errorf("unknown buff kind %q", text)
	}
	return nil
}

// Buff is one application of an effect. Several buffs may share a Group
// (stacks) but every application has its own ID, timer and amount.
type Buff struct {
	ID                  string       `json:"id"`
	Group               string       `json:"group"`
	Stat                stat.Kind    `json:"stat"`
	Amount              float64      `json:"amount"`
	Duration            int          `json:"duration"`
	EncountersRemaining int          `json:"encounters_remaining,omitempty"`
	DurationType        DurationType `json:"duration_type"`
	Kind                Kind         `json:"kind"`
}

// Harmful reports whether the buff hurts its owner.
func (b Buff) Harmful() bool {
	if b.Kind == DamageOverTime {
		return true
	}
	return b.Kind == Instant && b.Amount < 0
}

// remaining returns the counter for the buff's clock.
func (b Buff) remaining() int {
	if b.DurationType == Encounters {
		return b.EncountersRemaining
	}
	return b.Duration
}

func (b *Buff) setRemaining(v int) {
	if b.DurationType == Encounters {
		b.EncountersRemaining = v
		return
	}
	b.Duration = v
}

// Package cadence converts attack speed and ability haste into the timing of
// an actor's periodic actions.
//
// Attacks: an actor with attack speed s >= 1 attacks first at t = 1 and then
// every 1/s. A slower actor (s < 1) waits 2 - s before the first attack and
// between attacks, so lower speed means strictly later attacks.
//
// Spells: the cooldown is 1 - min(haste, 500)/1000, floored at 0.5. The first
// cast happens at t = cooldown.
package cadence

import (
	"math"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
)

const (
	// MinAttackSpeed is the lowest attack speed used for scheduling.
	MinAttackSpeed = stat.MinAttackSpeed
	// MaxAbilityHaste caps the haste that contributes to cooldown reduction.
	MaxAbilityHaste = 500.0
	// MinSpellCooldown is the shortest spell interval.
	MinSpellCooldown = 0.5
)

var (
	// ErrInvalidAttackSpeed is returned for NaN or infinite attack speeds.
	ErrInvalidAttackSpeed = apperrors.New(apperrors.CodeInvalidAttackSpeed, "attack speed must be finite")
	// ErrInvalidAbilityHaste is returned for negative or NaN haste.
	ErrInvalidAbilityHaste = apperrors.New(apperrors.CodeInvalidAbilityHaste, "ability haste must be a non-negative number")
)

// Interval describes a periodic schedule: the first occurrence and the gap
// between subsequent ones.
type Interval struct {
	First     float64
	Increment float64
}

// At returns the time of the i-th occurrence (0-based). Times are computed
// from the start rather than accumulated to avoid drift.
func (iv Interval) At(i int) float64 {
	return iv.First + float64(i)*iv.Increment
}

// ClampAttackSpeed raises finite speeds below MinAttackSpeed to the floor.
func ClampAttackSpeed(speed float64) (float64, error) {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return 0, ErrInvalidAttackSpeed
	}
	if speed < MinAttackSpeed {
		return MinAttackSpeed, nil
	}
	return speed, nil
}

// Attack returns the attack schedule for an attack speed.
func Attack(attackSpeed float64) (Interval, error) {
	speed, err := ClampAttackSpeed(attackSpeed)
	if err != nil {
		return Interval{}, err
	}
	if speed >= 1 {
		return Interval{First: 1, Increment: 1 / speed}, nil
	}
	gap := 2 - speed
	return Interval{First: gap, Increment: gap}, nil
}

// SpellCooldown returns the spell interval for an ability haste value.
func SpellCooldown(abilityHaste float64) (float64, error) {
	if math.IsNaN(abilityHaste) || abilityHaste < 0 {
		return 0, ErrInvalidAbilityHaste
	}
	haste := math.Min(abilityHaste, MaxAbilityHaste)
	return math.Max(MinSpellCooldown, 1-haste/1000), nil
}

// Spell returns the spell schedule for an ability haste value.
func Spell(abilityHaste float64) (Interval, error) {
	cd, err := SpellCooldown(abilityHaste)
	if err != nil {
		return Interval{}, err
	}
	return Interval{First: cd, Increment: cd}, nil
}

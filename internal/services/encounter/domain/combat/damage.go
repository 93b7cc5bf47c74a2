// Package combat computes the numeric outcome of a single resolved action.
//
// Inputs are expected to be aggregated, non-negative stats; nothing here
// clamps caller-supplied values beyond the documented floors.
package combat

import (
	"math"

	"github.com/louisbranch/skirmish/internal/core/roll"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
)

// DefaultCriticalDamage is the crit multiplier, in percent, used when the
// attacker has no critical damage stat.
const DefaultCriticalDamage = 200.0

// Strike is the pre-mitigation damage of one hit split by damage type.
type Strike struct {
	Physical float64
	Magic    float64
	True     float64
}

// Raw returns the sum of every component.
func (s Strike) Raw() float64 {
	return s.Physical + s.Magic + s.True
}

// Hit is the resolved damage of a Strike.
type Hit struct {
	Crit      bool
	Physical  float64
	Magic     float64
	True      float64
	Total     int
	Mitigated float64
}

// Mitigate applies a resistance reduced by flat penetration:
// base * 100 / (100 + max(0, resist - penetration)).
func Mitigate(base, resist, penetration float64) float64 {
	return base * 100 / (100 + math.Max(0, resist-penetration))
}

// CritMultiplier returns the damage multiplier for a critical strike.
func CritMultiplier(criticalDamage float64) float64 {
	if criticalDamage <= 0 {
		criticalDamage = DefaultCriticalDamage
	}
	return criticalDamage / 100
}

// Resolver resolves strikes using an injected random source for crit rolls.
type Resolver struct {
	src roll.Source
}

// NewResolver returns a Resolver drawing crit rolls from src.
func NewResolver(src roll.Source) *Resolver {
	return &Resolver{src: src}
}

// Strike resolves s from attacker against defender.
//
// A crit multiplies the physical and magic components before mitigation.
// True damage is added after mitigation and never crits. A strike with any
// raw damage deals at least 1.
func (r *Resolver) Strike(s Strike, attacker, defender stat.Block, canCrit bool) Hit {
	var hit Hit
	if canCrit && r.src != nil && roll.Chance(r.src, attacker.Get(stat.CriticalChance)) {
		hit.Crit = true
		m := CritMultiplier(attacker.Get(stat.CriticalDamage))
		s.Physical *= m
		s.Magic *= m
	}

	hit.Physical = Mitigate(s.Physical, defender.Get(stat.Armor), attacker.Get(stat.Lethality))
	hit.Magic = Mitigate(s.Magic, defender.Get(stat.MagicResist), attacker.Get(stat.MagicPenetration))
	hit.True = s.True
	hit.Mitigated = (s.Physical - hit.Physical) + (s.Magic - hit.Magic)

	if s.Raw() <= 0 {
		return hit
	}
	hit.Total = int(math.Max(1, math.Floor(hit.Physical+hit.Magic+hit.True)))
	return hit
}

package combat

import "math"

// HealSpec describes a heal's scaling.
type HealSpec struct {
	Flat           float64 `json:"flat"`
	APScaling      float64 `json:"ap_scaling"`      // percent of ability power
	MissingScaling float64 `json:"missing_scaling"` // percent of missing health
	// LowHealthThreshold is a health ratio in (0, 1]; below it the whole heal
	// is multiplied by LowHealthMultiplier.
	LowHealthThreshold  float64 `json:"low_health_threshold,omitempty"`
	LowHealthMultiplier float64 `json:"low_health_multiplier,omitempty"`
}

// Heal returns the healing amount, floored. It is not clamped to max health.
func Heal(spec HealSpec, abilityPower float64, current, max int) int {
	missing := math.Max(0, float64(max-current))
	total := spec.Flat + abilityPower*spec.APScaling/100 + missing*spec.MissingScaling/100

	if spec.LowHealthThreshold > 0 && spec.LowHealthMultiplier > 0 && max > 0 {
		if float64(current)/float64(max) < spec.LowHealthThreshold {
			total *= spec.LowHealthMultiplier
		}
	}
	if total <= 0 {
		return 0
	}
	return int(math.Floor(total))
}

// Vamp returns the lifesteal or omnivamp heal for damage dealt:
// max(1, round(damage * percent / 100)), or 0 when either input is 0.
// Callers apply it only when the target survived the hit.
func Vamp(damage int, percent float64) int {
	if damage <= 0 || percent <= 0 {
		return 0
	}
	return int(math.Max(1, math.Round(float64(damage)*percent/100)))
}

// EffectiveStun reduces a stun by tenacity, capped at full immunity.
func EffectiveStun(duration, tenacity float64) float64 {
	return duration * (1 - math.Min(tenacity, 100)/100)
}

package timeline

import (
	"math"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
)

// ErrInvalidStunDuration is returned for negative or non-finite durations.
var ErrInvalidStunDuration = apperrors.New(apperrors.CodeInvalidStunDuration, "stun duration must be a finite non-negative number")

// ApplyStun returns a new sequence where every action of target at or after
// appliedAt is pushed back by duration. The other actor's actions are copied
// unchanged and the result is re-sorted.
//
// An action of target scheduled exactly at appliedAt is delayed as well, so a
// stun landing on the current action's time holds back that actor's pending
// action.
func ApplyStun(seq []Action, target ActorID, duration, appliedAt float64) ([]Action, error) {
	if !target.Valid() {
		return nil, ErrInvalidActor
	}
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, ErrInvalidStunDuration
	}

	out := make([]Action, len(seq))
	copy(out, seq)
	if duration == 0 {
		return out, nil
	}

	for i := range out {
		a := &out[i]
		if a.Actor != target || a.Time < appliedAt-timeEpsilon {
			continue
		}
		a.Time += duration
		a.Turn = TurnOf(a.Time)
	}
	Sort(out)
	return out, nil
}

// Period builds the StunPeriod for a stun that by applied to target.
func Period(by Action, target ActorID, duration float64) StunPeriod {
	return StunPeriod{
		Actor:          target,
		Start:          by.Time,
		End:            by.Time + duration,
		SourcePriority: by.Priority,
		SourceType:     by.Type,
	}
}

// Shift maps an unstunned cadence action through stuns in the order they
// were applied and returns its stunned time, exactly as successive
// Window.Stun calls would move it. An action at the same time as a stun is
// delayed only if it resolves after the stunning action; earlier ones were
// already consumed when the stun landed.
func Shift(a Action, stuns []StunPeriod) float64 {
	for _, s := range stuns {
		if After(a, s.source()) {
			a.Time += s.Duration()
		}
	}
	return a.Time
}

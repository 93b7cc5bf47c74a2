package timeline

import (
	"fmt"
	"sort"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/cadence"
)

var (
	// ErrInvalidTurnCount is returned when a window covers no turns.
	ErrInvalidTurnCount = apperrors.New(apperrors.CodeInvalidTurnCount, "turn count must be at least 1")
	// ErrInvalidActor is returned for entities that are not a participant.
	ErrInvalidActor = apperrors.New(apperrors.CodeInvalidActor, "actor must be primary or opponent")
)

// Entity is the scheduling view of a participant: who it is, the stats that
// drive its cadence, and the stuns it has received so far.
type Entity struct {
	ID           ActorID
	AttackSpeed  float64
	AbilityHaste float64
	Stuns        []StunPeriod
}

// Generate returns the sorted actions of both entities for turns 1..turns.
func Generate(primary, opponent Entity, turns int) ([]Action, error) {
	if turns < 1 {
		return nil, ErrInvalidTurnCount
	}
	return GenerateBetween(primary, opponent, 1, turns)
}

// GenerateBetween returns the sorted actions whose turn lies in [from, to].
//
// Actions are collected as primary attacks, primary spells, opponent attacks,
// opponent spells and then stable-sorted by time and priority, so exact ties
// resolve primary first and, within one actor, attack before spell.
func GenerateBetween(primary, opponent Entity, from, to int) ([]Action, error) {
	if from < 1 {
		from = 1
	}
	if to < from {
		return nil, ErrInvalidTurnCount
	}
	if primary.ID != Primary || opponent.ID != Opponent {
		return nil, ErrInvalidActor
	}

	var actions []Action
	for _, e := range []Entity{primary, opponent} {
		attack, err := cadence.Attack(e.AttackSpeed)
		if err != nil {
			return nil, fmt.Errorf("%s attack cadence: %w", e.ID, err)
		}
		spell, err := cadence.Spell(e.AbilityHaste)
		if err != nil {
			return nil, fmt.Errorf("%s spell cadence: %w", e.ID, err)
		}
		actions = appendCadence(actions, e, Attack, attack, from, to)
		actions = appendCadence(actions, e, Spell, spell, from, to)
	}

	Sort(actions)
	return actions, nil
}

func appendCadence(actions []Action, e Entity, kind ActionType, iv cadence.Interval, from, to int) []Action {
	for i := 0; ; i++ {
		a := Action{Actor: e.ID, Time: iv.At(i), Type: kind, Priority: int(e.ID)}
		a.Time = Shift(a, e.Stuns)
		a.Turn = TurnOf(a.Time)
		if a.Turn > to {
			return actions
		}
		if a.Turn < from {
			continue
		}
		actions = append(actions, a)
	}
}

// Sort orders actions in place by time, then priority, keeping the existing
// order of full ties.
func Sort(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return Less(actions[i], actions[j])
	})
}

package scenario

import (
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/encounter"
)

// defaultSeed keeps scenarios reproducible when the script sets no seed.
const defaultSeed int64 = 1

type scenarioState struct {
	seed      int64
	config    encounter.Config
	actors    [2]*encounter.Actor
	started   bool
	encounter encounter.Encounter
	events    []encounter.Event
}

func newScenarioState() *scenarioState {
	return &scenarioState{seed: defaultSeed}
}

func (s *scenarioState) record(next encounter.Encounter, ev encounter.Event) {
	s.encounter = next
	s.events = append(s.events, ev)
}

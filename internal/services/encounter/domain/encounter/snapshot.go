package encounter

import (
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/status"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

// Actor returns the current description of a participant.
func (e Encounter) Actor(id timeline.ActorID) (Actor, error) {
	p, err := e.participant(id)
	if err != nil {
		return Actor{}, err
	}
	return p.snapshot(), nil
}

// HP returns current and maximum health of a participant.
func (e Encounter) HP(id timeline.ActorID) (hp, maxHP int, err error) {
	p, err := e.participant(id)
	if err != nil {
		return 0, 0, err
	}
	return p.hp, p.maxHP(e.catalog), nil
}

// Effective returns a participant's stats after items and buffs.
func (e Encounter) Effective(id timeline.ActorID) (stat.Block, error) {
	p, err := e.participant(id)
	if err != nil {
		return stat.Block{}, err
	}
	return p.effective(e.catalog), nil
}

// Cooldowns returns the remaining turns of every ability on cooldown.
func (e Encounter) Cooldowns(id timeline.ActorID) (map[string]int, error) {
	p, err := e.participant(id)
	if err != nil {
		return nil, err
	}
	return p.cooldowns.Snapshot(), nil
}

// Statuses returns a participant's active buffs in application order.
func (e Encounter) Statuses(id timeline.ActorID) ([]status.Buff, error) {
	p, err := e.participant(id)
	if err != nil {
		return nil, err
	}
	return p.statuses.Active(), nil
}

// Stuns returns every stun applied so far.
func (e Encounter) Stuns() []timeline.StunPeriod {
	return append([]timeline.StunPeriod(nil), e.stuns...)
}

// Pending returns the unresolved actions of the current window.
func (e Encounter) Pending() []timeline.Action {
	return e.window.Pending()
}

// Turn returns the integer turn the encounter has reached.
func (e Encounter) Turn() int {
	return e.turn
}

// Distance returns the distance between the participants.
func (e Encounter) Distance() float64 {
	return e.distance()
}

// NeedsRegeneration reports whether a stat change is waiting for the window
// to be regenerated.
func (e Encounter) NeedsRegeneration() bool {
	return e.statsChanged
}

// Over reports whether the encounter has ended.
func (e Encounter) Over() bool {
	return e.result != nil
}

// Result returns the outcome of an ended encounter.
func (e Encounter) Result() (Result, bool) {
	if e.result == nil {
		return Result{}, false
	}
	return *e.result, true
}

// Config returns the effective configuration.
func (e Encounter) Config() Config {
	return e.cfg
}

package encounter

import (
	"fmt"
	"math"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/combat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/status"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

var (
	// ErrInvalidMove is returned for non-finite movement.
	ErrInvalidMove = apperrors.New(apperrors.CodeInvalidMove, "movement must be finite")
	// ErrItemNotCarried is returned when using an item that is not in the bag.
	ErrItemNotCarried = apperrors.New(apperrors.CodeItemNotCarried, "item is not carried")
	// ErrItemNotConsumable is returned when using or equipping the wrong kind of item.
	ErrItemNotConsumable = apperrors.New(apperrors.CodeItemNotConsumable, "item is not consumable")
)

// transition clones e, applies fn to the clone and stamps the event.
func transition(e Encounter, id timeline.ActorID, kind EventKind, fn func(*Encounter, *participant, *Event) error) (Encounter, Event, error) {
	if e.result != nil {
		return e, Event{}, ErrOver
	}
	next := e.Clone()
	p, err := next.participant(id)
	if err != nil {
		return e, Event{}, err
	}
	ev := Event{
		Kind:   kind,
		Time:   next.lastTime(),
		Turn:   next.turn,
		Actor:  id,
		Target: id,
	}
	if err := fn(&next, p, &ev); err != nil {
		return e, Event{}, err
	}
	ev.Regenerate = next.statsChanged
	return next, next.stamp(ev), nil
}

// Move shifts an actor's position by delta. Moving past the flee bound ends
// the encounter at the next ResolveNext.
func Move(e Encounter, id timeline.ActorID, delta float64) (Encounter, Event, error) {
	return transition(e, id, EventMove, func(_ *Encounter, p *participant, _ *Event) error {
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			return ErrInvalidMove
		}
		p.position += delta
		return nil
	})
}

// Equip adds an equipment item to the actor.
func Equip(e Encounter, id timeline.ActorID, itemID string) (Encounter, Event, error) {
	return transition(e, id, EventEquip, func(next *Encounter, p *participant, ev *Event) error {
		item, err := next.catalog.Item(itemID)
		if err != nil {
			return err
		}
		if item.Consumable {
			return fmt.Errorf("equip %s: consumables go in the bag: %w", itemID, ErrItemNotConsumable)
		}
		p.items = append(p.items, itemID)
		ev.Item = itemID
		next.markStatChange(item.Stats)
		return nil
	})
}

// Unequip removes the first equipped copy of an item.
func Unequip(e Encounter, id timeline.ActorID, itemID string) (Encounter, Event, error) {
	return transition(e, id, EventUnequip, func(next *Encounter, p *participant, ev *Event) error {
		idx := indexOf(p.items, itemID)
		if idx < 0 {
			return fmt.Errorf("unequip %s: %w", itemID, ErrItemNotCarried)
		}
		item, err := next.catalog.Item(itemID)
		if err != nil {
			return err
		}
		p.items = append(p.items[:idx], p.items[idx+1:]...)
		if maxHP := p.maxHP(next.catalog); maxHP > 0 && p.hp > maxHP {
			p.hp = maxHP
		}
		ev.Item = itemID
		next.markStatChange(item.Stats)
		return nil
	})
}

// UseItem consumes one copy of a consumable from the actor's bag.
func UseItem(e Encounter, id timeline.ActorID, itemID string) (Encounter, Event, error) {
	return transition(e, id, EventUseItem, func(next *Encounter, p *participant, ev *Event) error {
		idx := indexOf(p.bag, itemID)
		if idx < 0 {
			return fmt.Errorf("use %s: %w", itemID, ErrItemNotCarried)
		}
		item, err := next.catalog.Item(itemID)
		if err != nil {
			return err
		}
		if !item.Consumable {
			return fmt.Errorf("use %s: %w", itemID, ErrItemNotConsumable)
		}
		p.bag = append(p.bag[:idx], p.bag[idx+1:]...)
		ev.Item = itemID

		if item.Heal != nil {
			eff := p.effective(next.catalog)
			maxHP := p.maxHP(next.catalog)
			ev.Heal = p.heal(combat.Heal(*item.Heal, eff.Get(stat.AbilityPower), p.hp, maxHP), maxHP)
		}
		applied, err := next.applyEffects(p, next.actors[p.id.Other()], item.Effects)
		if err != nil {
			return err
		}
		ev.Buffs = applied
		return nil
	})
}

// Cleanse removes every harmful buff from the actor.
func Cleanse(e Encounter, id timeline.ActorID) (Encounter, Event, error) {
	return transition(e, id, EventCleanse, func(next *Encounter, p *participant, ev *Event) error {
		ev.Removed = p.statuses.Cleanse()
		for _, b := range ev.Removed {
			if b.Kind == status.Instant && (b.Stat == stat.AttackSpeed || b.Stat == stat.AbilityHaste) {
				next.statsChanged = true
			}
		}
		return nil
	})
}

// LevelUp adds bonus to the actor's base stats. Extra max health is granted
// as current health too.
func LevelUp(e Encounter, id timeline.ActorID, bonus stat.Block) (Encounter, Event, error) {
	return transition(e, id, EventLevelUp, func(next *Encounter, p *participant, _ *Event) error {
		p.base = p.base.Add(bonus)
		if gain := int(math.Floor(bonus.Get(stat.MaxHealth))); gain > 0 {
			p.hp += gain
		}
		if maxHP := p.maxHP(next.catalog); maxHP > 0 && p.hp > maxHP {
			p.hp = maxHP
		}
		next.markStatChange(bonus)
		return nil
	})
}

// Regenerate rebuilds the action window now from current stats. Callers use
// it after an event reported Regenerate.
func Regenerate(e Encounter) (Encounter, Event, error) {
	return transition(e, timeline.Primary, EventRegenerate, func(next *Encounter, _ *participant, _ *Event) error {
		return next.regenerate()
	})
}

// Carryover holds the encounter-duration buffs each side keeps for its next
// encounter.
type Carryover struct {
	Buffs    [2][]status.Buff
	Warnings []string
}

// Finish decays encounter-duration buffs once for a completed encounter and
// returns those that remain.
func Finish(e Encounter) (Carryover, error) {
	if e.result == nil {
		return Carryover{}, ErrNotOver
	}
	var out Carryover
	for _, p := range e.actors {
		ledger := p.statuses.Clone()
		_, tickErr := ledger.TickEncounter()
		if w, err := e.invariant(tickErr); err != nil {
			return Carryover{}, err
		} else if w != "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %s", p.id, w))
		}
		for _, b := range ledger.Active() {
			if b.DurationType == status.Encounters {
				out.Buffs[p.id] = append(out.Buffs[p.id], b)
			}
		}
	}
	return out, nil
}

// markStatChange flags the window for regeneration when a change touches
// attack speed or ability haste.
func (e *Encounter) markStatChange(delta stat.Block) {
	if delta.Get(stat.AttackSpeed) != 0 || delta.Get(stat.AbilityHaste) != 0 {
		e.statsChanged = true
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Carry returns a copy of actor with the given carryover buffs attached.
func Carry(actor Actor, buffs []status.Buff) Actor {
	actor.Carried = append(append([]status.Buff(nil), actor.Carried...), buffs...)
	return actor
}


// Package encounter drives a two-participant fight over a generated action
// timeline.
//
// An Encounter is a value. ResolveNext and the other transitions take an
// Encounter and return the next one plus a self-contained Event, leaving
// their input untouched. The caller owns the loop and decides whether to
// persist, render or discard each step. The only shared state is the random
// source used for crit rolls, which advances with every resolved strike.
package encounter

import (
	"errors"
	"fmt"
	"math"

	"github.com/louisbranch/skirmish/internal/core/roll"
	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/combat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/status"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

var (
	// ErrOver is returned by transitions on an encounter that has ended.
	ErrOver = apperrors.New(apperrors.CodeEncounterOver, "encounter is over")
	// ErrNotOver is returned by Finish on an encounter still in progress.
	ErrNotOver = apperrors.New(apperrors.CodeEncounterOver, "encounter is still in progress")
)

// Encounter is the aggregate state of one fight.
type Encounter struct {
	cfg      Config
	catalog  *catalog.Catalog
	resolver *combat.Resolver

	actors [2]*participant
	window timeline.Window
	turn   int
	last   *timeline.Action
	seq    int
	stuns  []timeline.StunPeriod

	statsChanged bool
	result       *Result
}

// New validates both actors and generates the first action window.
func New(cfg Config, cat *catalog.Catalog, src roll.Source, primary, opponent Actor) (Encounter, error) {
	if cat == nil {
		return Encounter{}, errors.New("catalog is required")
	}
	if src == nil {
		return Encounter{}, errors.New("random source is required")
	}
	p, err := newParticipant(timeline.Primary, primary, cat)
	if err != nil {
		return Encounter{}, err
	}
	o, err := newParticipant(timeline.Opponent, opponent, cat)
	if err != nil {
		return Encounter{}, err
	}

	e := Encounter{
		cfg:      cfg.withDefaults(),
		catalog:  cat,
		resolver: combat.NewResolver(src),
		actors:   [2]*participant{p, o},
		turn:     1,
	}
	e.window.Lookahead = e.cfg.Lookahead
	if err := e.regenerate(); err != nil {
		return Encounter{}, err
	}
	return e, nil
}

// Clone returns an independent copy. The catalog and random source are shared.
func (e Encounter) Clone() Encounter {
	c := e
	for i, p := range e.actors {
		if p != nil {
			c.actors[i] = p.clone()
		}
	}
	c.window = e.window.Clone()
	if e.last != nil {
		last := *e.last
		c.last = &last
	}
	c.stuns = append([]timeline.StunPeriod(nil), e.stuns...)
	if e.result != nil {
		r := *e.result
		c.result = &r
	}
	return c
}

// ResolveNext resolves the next action on the timeline.
//
// Terminal conditions are checked before an action is read. Turn boundaries
// crossed on the way to the action apply periodic effects and tick both
// ledgers; if that ends the encounter the action is not resolved.
func ResolveNext(e Encounter) (Encounter, Event, error) {
	if e.result != nil {
		return e, Event{}, ErrOver
	}
	next := e.Clone()
	ev, err := next.resolveNext()
	if err != nil {
		return e, Event{}, err
	}
	return next, ev, nil
}

func (e *Encounter) resolveNext() (Event, error) {
	if ended, ok := e.checkTerminal(); ok {
		return e.end(ended, Event{Time: e.lastTime()}), nil
	}

	if e.window.NeedsRegeneration() || (e.cfg.RegenerateOnStatChange && e.statsChanged) {
		if err := e.regenerate(); err != nil {
			return Event{}, err
		}
	}

	action, ok := e.window.Peek()
	if !ok || action.Turn > e.cfg.MaxTurns {
		return e.end(Result{Reason: ReasonTurnLimit, Turn: e.cfg.MaxTurns}, Event{Time: e.lastTime()}), nil
	}
	e.window.Next()
	e.last = &action

	ev := Event{
		Kind:   EventAction,
		Time:   action.Time,
		Turn:   action.Turn,
		Actor:  action.Actor,
		Target: action.Actor.Other(),
		Action: &action,
	}

	for e.turn < action.Turn {
		e.turn++
		tick, warnings, err := e.tickBoundary(e.turn)
		if err != nil {
			return Event{}, err
		}
		ev.Ticks = append(ev.Ticks, tick)
		ev.Warnings = append(ev.Warnings, warnings...)
		if ended, ok := e.checkTerminal(); ok {
			ev.Action = nil
			return e.end(ended, ev), nil
		}
	}

	var err error
	switch action.Type {
	case timeline.Attack:
		e.resolveAttack(action, &ev)
	case timeline.Spell:
		err = e.resolveSpell(action, &ev)
	}
	if err != nil {
		return Event{}, err
	}
	ev.Regenerate = e.statsChanged
	return e.stamp(ev), nil
}

func (e *Encounter) resolveAttack(action timeline.Action, ev *Event) {
	attacker, defender := e.actors[action.Actor], e.actors[action.Actor.Other()]
	att, def := attacker.effective(e.catalog), defender.effective(e.catalog)

	if e.distance() > att.Get(stat.AttackRange) {
		ev.Outcome = OutcomeOutOfRange
		return
	}

	hit := e.resolver.Strike(combat.Strike{Physical: att.Get(stat.AttackDamage)}, att, def, true)
	ev.Outcome = OutcomeHit
	ev.Crit = hit.Crit
	ev.Damage = defender.damage(hit.Total)
	if defender.alive() {
		vamp := combat.Vamp(ev.Damage, att.Get(stat.Lifesteal)+att.Get(stat.Omnivamp))
		ev.Vamp = attacker.heal(vamp, attacker.maxHP(e.catalog))
	}
}

func (e *Encounter) resolveSpell(action timeline.Action, ev *Event) error {
	caster, target := e.actors[action.Actor], e.actors[action.Actor.Other()]

	ability, ok, err := e.readyAbility(caster)
	if err != nil {
		return err
	}
	if !ok {
		ev.Outcome = OutcomeIdle
		return nil
	}
	ev.Ability = ability.ID

	eff := caster.effective(e.catalog)
	if ability.TargetsEnemy() && e.distance() > ability.Range {
		ev.Outcome = OutcomeOutOfRange
		return nil
	}
	if err := caster.cooldowns.Use(ability.ID, ability.Cooldown, action.Time); err != nil {
		return err
	}
	ev.Outcome = OutcomeCast

	if ability.Damage != nil {
		hit := e.resolver.Strike(ability.Damage.Strike(eff), eff, target.effective(e.catalog), ability.CanCrit)
		ev.Crit = hit.Crit
		ev.Damage = target.damage(hit.Total)
		if target.alive() {
			ev.Vamp = caster.heal(combat.Vamp(ev.Damage, eff.Get(stat.Omnivamp)), caster.maxHP(e.catalog))
		}
	}
	if ability.Heal != nil {
		amount := combat.Heal(*ability.Heal, eff.Get(stat.AbilityPower), caster.hp, caster.maxHP(e.catalog))
		ev.Heal = caster.heal(amount, caster.maxHP(e.catalog))
	}

	applied, err := e.applyEffects(caster, target, ability.Effects)
	if err != nil {
		return err
	}
	ev.Buffs = applied

	if ability.Stun > 0 && target.alive() {
		d := combat.EffectiveStun(ability.Stun, target.effective(e.catalog).Get(stat.Tenacity))
		if d > 0 {
			if err := e.window.Stun(target.id, d, action.Time); err != nil {
				return err
			}
			period := timeline.Period(action, target.id, d)
			target.stuns = append(target.stuns, period)
			e.stuns = append(e.stuns, period)
			ev.Stun = &period
		}
	}
	return nil
}

// readyAbility returns the first loadout ability off cooldown.
func (e *Encounter) readyAbility(caster *participant) (catalog.Ability, bool, error) {
	for _, id := range caster.loadout {
		if !caster.cooldowns.Ready(id) {
			continue
		}
		ability, err := e.catalog.Ability(id)
		if err != nil {
			return catalog.Ability{}, false, err
		}
		return ability, true, nil
	}
	return catalog.Ability{}, false, nil
}

// applyEffects applies effects to the caster or its target. Effects aimed at
// a defeated target are skipped.
func (e *Encounter) applyEffects(caster, target *participant, effects []catalog.EffectSpec) ([]AppliedBuff, error) {
	var applied []AppliedBuff
	for _, effect := range effects {
		owner := caster
		if effect.Target == catalog.Enemy {
			owner = target
		}
		if !owner.alive() {
			continue
		}
		buff, res, err := owner.statuses.Apply(effect.Buff(), effect.StackCap)
		if err != nil {
			return nil, err
		}
		if res == status.Ignored {
			continue
		}
		if effect.ChangesStats() {
			e.statsChanged = true
		}
		applied = append(applied, AppliedBuff{Actor: owner.id, Buff: buff, Result: res})
	}
	return applied, nil
}

// tickBoundary runs the per-turn step for crossing into turn.
func (e *Encounter) tickBoundary(turn int) (Tick, []string, error) {
	tick := Tick{Turn: turn}
	var warnings []string

	for _, p := range e.actors {
		if !p.alive() {
			continue
		}
		for _, b := range p.statuses.Periodic() {
			amount := int(math.Floor(b.Amount))
			switch b.Kind {
			case status.HealOverTime:
				amount = p.heal(amount, p.maxHP(e.catalog))
			case status.DamageOverTime:
				amount = -p.damage(amount)
			}
			tick.Periodic = append(tick.Periodic, PeriodicHit{Actor: p.id, BuffID: b.ID, Group: b.Group, Amount: amount})
		}
	}

	for _, p := range e.actors {
		if w, err := e.invariant(p.cooldowns.Tick()); err != nil {
			return Tick{}, nil, err
		} else if w != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", p.id, w))
		}
		expired, tickErr := p.statuses.TickTurn()
		if w, err := e.invariant(tickErr); err != nil {
			return Tick{}, nil, err
		} else if w != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", p.id, w))
		}
		for _, b := range expired {
			tick.Expired = append(tick.Expired, ExpiredBuff{Actor: p.id, Buff: b})
			if b.Kind == status.Instant && (b.Stat == stat.AttackSpeed || b.Stat == stat.AbilityHaste) {
				e.statsChanged = true
			}
		}
		// Losing max health buffs can leave hp above the new maximum.
		if maxHP := p.maxHP(e.catalog); maxHP > 0 && p.hp > maxHP {
			p.hp = maxHP
		}
	}
	return tick, warnings, nil
}

// invariant returns the warning text for an invariant violation in lenient
// mode and the error itself in strict mode. Other errors pass through.
func (e *Encounter) invariant(err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if e.cfg.Strict || apperrors.KindOf(err) != apperrors.KindInvariant {
		return "", err
	}
	return err.Error(), nil
}

func (e *Encounter) checkTerminal() (Result, bool) {
	p, o := e.actors[timeline.Primary], e.actors[timeline.Opponent]
	switch {
	case !p.alive() && !o.alive():
		return Result{Reason: ReasonDefeat, Turn: e.turn}, true
	case !o.alive():
		return Result{Reason: ReasonDefeat, Winner: timeline.Primary, Decided: true, Turn: e.turn}, true
	case !p.alive():
		return Result{Reason: ReasonDefeat, Winner: timeline.Opponent, Decided: true, Turn: e.turn}, true
	}
	for _, a := range e.actors {
		if math.Abs(a.position) > e.cfg.FleeBound {
			return Result{Reason: ReasonFled, Actor: a.id, Turn: e.turn}, true
		}
	}
	return Result{}, false
}

// end records the result, discards the remaining window and finalises ev.
func (e *Encounter) end(r Result, ev Event) Event {
	e.result = &r
	e.window.Reset(nil)
	ev.Kind = EventEnd
	ev.Turn = r.Turn
	ev.Result = &r
	return e.stamp(ev)
}

func (e *Encounter) stamp(ev Event) Event {
	e.seq++
	ev.Seq = e.seq
	for _, p := range e.actors {
		ev.HP[p.id] = p.hp
		ev.MaxHP[p.id] = p.maxHP(e.catalog)
	}
	return ev
}

// regenerate rebuilds the window from the current turn with current stats.
// Turns with no actions at all, possible when both sides are stunned for
// long stretches, are skipped.
func (e *Encounter) regenerate() error {
	from := e.turn
	for from <= e.cfg.MaxTurns {
		actions, err := timeline.Regenerate(
			e.actors[timeline.Primary].entity(e.catalog),
			e.actors[timeline.Opponent].entity(e.catalog),
			from, e.cfg.WindowTurns, e.last,
		)
		if err != nil {
			return err
		}
		if len(actions) > 0 {
			e.window.Reset(actions)
			e.statsChanged = false
			return nil
		}
		from += e.cfg.WindowTurns
	}
	e.window.Reset(nil)
	e.statsChanged = false
	return nil
}

func (e *Encounter) distance() float64 {
	return math.Abs(e.actors[timeline.Primary].position - e.actors[timeline.Opponent].position)
}

func (e *Encounter) lastTime() float64 {
	if e.last == nil {
		return 0
	}
	return e.last.Time
}

func (e *Encounter) participant(id timeline.ActorID) (*participant, error) {
	if !id.Valid() {
		return nil, timeline.ErrInvalidActor
	}
	return e.actors[id], nil
}

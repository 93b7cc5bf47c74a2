package scenario

import (
	"context"
	"fmt"
	"math"

	"github.com/louisbranch/skirmish/internal/core/roll"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/encounter"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

// maxRunSteps bounds run_to_end and run_until_turn so a broken script cannot
// spin forever.
const maxRunSteps = 100000

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "seed":
		return r.runSeedStep(state, step.Args)
	case "config":
		return r.runConfigStep(state, step.Args)
	case "actor":
		return r.runActorStep(state, step.Args)
	case "step":
		return r.runAdvanceStep(ctx, state, step.Args)
	case "run_until_turn":
		return r.runUntilTurnStep(ctx, state, step.Args)
	case "run_to_end":
		return r.runToEndStep(ctx, state)
	case "move":
		return r.runMoveStep(state, step.Args)
	case "equip", "unequip", "use_item":
		return r.runItemStep(state, step.Kind, step.Args)
	case "cleanse":
		return r.runCleanseStep(state, step.Args)
	case "level_up":
		return r.runLevelUpStep(state, step.Args)
	case "regenerate":
		return r.runRegenerateStep(state)
	case "expect_hp":
		return r.runExpectHPStep(state, step.Args)
	case "expect_cooldown":
		return r.runExpectCooldownStep(state, step.Args)
	case "expect_buffs":
		return r.runExpectBuffsStep(state, step.Args)
	case "expect_outcome":
		return r.runExpectOutcomeStep(state, step.Args)
	case "expect_result":
		return r.runExpectResultStep(state, step.Args)
	case "expect_turn":
		return r.runExpectTurnStep(state, step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runSeedStep(state *scenarioState, args map[string]any) error {
	if state.started {
		return r.failf("seed must be set before the encounter starts")
	}
	seed, err := requireInt(args, "value")
	if err != nil {
		return err
	}
	state.seed = int64(seed)
	return nil
}

func (r *Runner) runConfigStep(state *scenarioState, args map[string]any) error {
	if state.started {
		return r.failf("config must be set before the encounter starts")
	}
	cfg := state.config
	var err error
	if value, ok, readErr := readInt(args, "window_turns"); readErr != nil {
		return readErr
	} else if ok {
		cfg.WindowTurns = value
	}
	if value, ok, readErr := readInt(args, "lookahead"); readErr != nil {
		return readErr
	} else if ok {
		cfg.Lookahead = value
	}
	if value, ok, readErr := readInt(args, "max_turns"); readErr != nil {
		return readErr
	} else if ok {
		cfg.MaxTurns = value
	}
	if value, ok, readErr := readFloat(args, "flee_bound"); readErr != nil {
		return readErr
	} else if ok {
		cfg.FleeBound = value
	}
	if cfg.Strict, err = readBool(args, "strict"); err != nil {
		return err
	}
	if cfg.RegenerateOnStatChange, err = readBool(args, "regenerate_on_stat_change"); err != nil {
		return err
	}
	state.config = cfg
	return nil
}

func (r *Runner) runActorStep(state *scenarioState, args map[string]any) error {
	if state.started {
		return r.failf("actors must be declared before the encounter starts")
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	base, err := readStats(args, "stats")
	if err != nil {
		return err
	}
	hp, _, err := readInt(args, "hp")
	if err != nil {
		return err
	}
	position, _, err := readFloat(args, "position")
	if err != nil {
		return err
	}
	loadout, err := readStrings(args, "loadout")
	if err != nil {
		return err
	}
	items, err := readStrings(args, "items")
	if err != nil {
		return err
	}
	bag, err := readStrings(args, "bag")
	if err != nil {
		return err
	}
	state.actors[id] = &encounter.Actor{
		Name:     readString(args, "name"),
		Base:     base,
		HP:       hp,
		Position: position,
		Loadout:  loadout,
		Items:    items,
		Bag:      bag,
	}
	r.logf("actor %s declared", id)
	return nil
}

// ensureStarted creates the encounter on first use.
func (r *Runner) ensureStarted(state *scenarioState) error {
	if state.started {
		return nil
	}
	for i, actor := range state.actors {
		if actor == nil {
			return r.failf("%s actor is not declared", timeline.ActorID(i))
		}
	}
	e, err := encounter.New(state.config, r.catalog, roll.New(state.seed),
		*state.actors[timeline.Primary], *state.actors[timeline.Opponent])
	if err != nil {
		return fmt.Errorf("start encounter: %w", err)
	}
	state.encounter = e
	state.started = true
	r.logf("encounter started with seed %d", state.seed)
	return nil
}

func (r *Runner) advance(ctx context.Context, state *scenarioState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next, ev, err := encounter.ResolveNext(state.encounter)
	if err != nil {
		return err
	}
	state.record(next, ev)
	for _, warning := range ev.Warnings {
		r.logger.Printf("warning: %s", warning)
	}
	r.logf("event %d: %s t=%.3f turn=%d %s hp=%v", ev.Seq, ev.Kind, ev.Time, ev.Turn, ev.Outcome, ev.HP)
	return nil
}

func (r *Runner) runAdvanceStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	count, ok, err := readInt(args, "count")
	if err != nil {
		return err
	}
	if !ok {
		count = 1
	}
	for i := 0; i < count; i++ {
		if err := r.advance(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runUntilTurnStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	turn, err := requireInt(args, "turn")
	if err != nil {
		return err
	}
	for i := 0; i < maxRunSteps; i++ {
		if state.encounter.Over() {
			return nil
		}
		pending := state.encounter.Pending()
		if len(pending) > 0 && pending[0].Turn >= turn {
			return nil
		}
		if err := r.advance(ctx, state); err != nil {
			return err
		}
	}
	return r.failf("turn %d not reached after %d events", turn, maxRunSteps)
}

func (r *Runner) runToEndStep(ctx context.Context, state *scenarioState) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	for i := 0; i < maxRunSteps; i++ {
		if state.encounter.Over() {
			return nil
		}
		if err := r.advance(ctx, state); err != nil {
			return err
		}
	}
	return r.failf("encounter did not end after %d events", maxRunSteps)
}

func (r *Runner) runMoveStep(state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	delta, ok, err := readFloat(args, "delta")
	if err != nil {
		return err
	}
	if !ok || math.IsNaN(delta) {
		return fmt.Errorf("delta is required")
	}
	next, ev, err := encounter.Move(state.encounter, id, delta)
	if err != nil {
		return err
	}
	state.record(next, ev)
	return nil
}

func (r *Runner) runItemStep(state *scenarioState, kind string, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	item, err := requireString(args, "item")
	if err != nil {
		return err
	}
	var (
		next encounter.Encounter
		ev   encounter.Event
	)
	switch kind {
	case "equip":
		next, ev, err = encounter.Equip(state.encounter, id, item)
	case "unequip":
		next, ev, err = encounter.Unequip(state.encounter, id, item)
	default:
		next, ev, err = encounter.UseItem(state.encounter, id, item)
	}
	if err != nil {
		return err
	}
	state.record(next, ev)
	return nil
}

func (r *Runner) runCleanseStep(state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	next, ev, err := encounter.Cleanse(state.encounter, id)
	if err != nil {
		return err
	}
	state.record(next, ev)
	return nil
}

func (r *Runner) runLevelUpStep(state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	bonus, err := readStats(args, "stats")
	if err != nil {
		return err
	}
	next, ev, err := encounter.LevelUp(state.encounter, id, bonus)
	if err != nil {
		return err
	}
	state.record(next, ev)
	return nil
}

func (r *Runner) runRegenerateStep(state *scenarioState) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	next, ev, err := encounter.Regenerate(state.encounter)
	if err != nil {
		return err
	}
	state.record(next, ev)
	return nil
}

func (r *Runner) runExpectHPStep(state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	want, err := requireInt(args, "hp")
	if err != nil {
		return err
	}
	got, _, err := state.encounter.HP(id)
	if err != nil {
		return err
	}
	if got != want {
		return r.assertf("%s hp = %d, want %d", id, got, want)
	}
	return nil
}

func (r *Runner) runExpectCooldownStep(state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	ability, err := requireString(args, "ability")
	if err != nil {
		return err
	}
	want, err := requireInt(args, "turns")
	if err != nil {
		return err
	}
	cooldowns, err := state.encounter.Cooldowns(id)
	if err != nil {
		return err
	}
	if got := cooldowns[ability]; got != want {
		return r.assertf("%s cooldown %s = %d, want %d", id, ability, got, want)
	}
	return nil
}

func (r *Runner) runExpectBuffsStep(state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	id, err := readActor(args)
	if err != nil {
		return err
	}
	group, err := requireString(args, "group")
	if err != nil {
		return err
	}
	want, err := requireInt(args, "count")
	if err != nil {
		return err
	}
	buffs, err := state.encounter.Statuses(id)
	if err != nil {
		return err
	}
	got := 0
	for _, b := range buffs {
		if b.Group == group {
			got++
		}
	}
	if got != want {
		return r.assertf("%s %s stacks = %d, want %d", id, group, got, want)
	}
	return nil
}

// runExpectOutcomeStep checks the outcome of the most recent action event.
func (r *Runner) runExpectOutcomeStep(state *scenarioState, args map[string]any) error {
	want, err := requireString(args, "outcome")
	if err != nil {
		return err
	}
	for i := len(state.events) - 1; i >= 0; i-- {
		ev := state.events[i]
		if ev.Kind != encounter.EventAction {
			continue
		}
		if got := ev.Outcome.String(); got != want {
			return r.assertf("last action outcome = %q, want %q", got, want)
		}
		return nil
	}
	return r.assertf("no action resolved, want outcome %q", want)
}

func (r *Runner) runExpectResultStep(state *scenarioState, args map[string]any) error {
	if !state.started {
		return r.failf("encounter has not started")
	}
	result, over := state.encounter.Result()
	if !over {
		return r.assertf("encounter is still in progress")
	}
	if want := readString(args, "reason"); want != "" && result.Reason.String() != want {
		return r.assertf("result reason = %s, want %s", result.Reason, want)
	}
	if _, ok := args["winner"]; ok {
		want := readString(args, "winner")
		got := ""
		if result.Decided {
			got = result.Winner.String()
		}
		if want == "draw" {
			want = ""
		}
		if got != want {
			return r.assertf("result winner = %q, want %q", got, want)
		}
	}
	if want, ok, err := readInt(args, "turn"); err != nil {
		return err
	} else if ok && result.Turn != want {
		return r.assertf("result turn = %d, want %d", result.Turn, want)
	}
	return nil
}

func (r *Runner) runExpectTurnStep(state *scenarioState, args map[string]any) error {
	if err := r.ensureStarted(state); err != nil {
		return err
	}
	want, err := requireInt(args, "turn")
	if err != nil {
		return err
	}
	if got := state.encounter.Turn(); got != want {
		return r.assertf("turn = %d, want %d", got, want)
	}
	return nil
}

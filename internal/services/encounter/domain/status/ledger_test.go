package status

import (
	"errors"
	"testing"

	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
)

func bleed(amount float64, turns int) Buff {
	return Buff{Group: "bleed", Amount: amount, Duration: turns, DurationType: Turns, Kind: DamageOverTime}
}

func TestApplyKeepsIndependentStacks(t *testing.T) {
	l := New()
	first, res, err := l.Apply(bleed(5, 2), 0)
	if err != nil || res != Added {
		t.Fatalf("apply first: %v %v", res, err)
	}
	second, _, err := l.Apply(bleed(8, 4), 0)
	if err != nil {
		t.Fatalf("apply second: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("stacks share id %q", first.ID)
	}

	expired, err := l.TickTurn()
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(expired) != 0 || l.Stacks("bleed") != 2 {
		t.Fatalf("after 1 tick: expired %d, stacks %d", len(expired), l.Stacks("bleed"))
	}

	expired, err = l.TickTurn()
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != first.ID {
		t.Fatalf("expired = %+v, want first stack", expired)
	}
	active := l.Active()
	if len(active) != 1 || active[0].Amount != 8 || active[0].Duration != 2 {
		t.Fatalf("active = %+v", active)
	}
}

func TestApplyAtStackCapRefreshesAllStacks(t *testing.T) {
	l := New()
	var first Buff
	for i, turns := range []int{1, 2, 3} {
		b, _, err := l.Apply(bleed(4, turns), 3)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if i == 0 {
			first = b
		}
	}

	refreshed, res, err := l.Apply(bleed(10, 5), 3)
	if err != nil {
		t.Fatalf("apply at cap: %v", err)
	}
	if res != Refreshed {
		t.Fatalf("result = %v, want Refreshed", res)
	}
	if refreshed.ID != first.ID || refreshed.Duration != 5 || refreshed.Amount != 4 {
		t.Fatalf("refreshed = %+v, want stack %s with 5 turns and amount 4", refreshed, first.ID)
	}
	if l.Stacks("bleed") != 3 {
		t.Fatalf("stacks = %d, want 3", l.Stacks("bleed"))
	}
	for _, b := range l.Active() {
		if b.Duration != 5 {
			t.Fatalf("stack %s duration = %d, want 5", b.ID, b.Duration)
		}
		if b.Amount != 4 {
			t.Fatalf("stack %s amount = %v, want unchanged 4", b.ID, b.Amount)
		}
	}
}

func TestApplyDurationValidation(t *testing.T) {
	l := New()
	if _, _, err := l.Apply(bleed(1, -1), 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("err = %v, want ErrInvalidDuration", err)
	}
	_, res, err := l.Apply(bleed(1, 0), 0)
	if err != nil || res != Ignored {
		t.Fatalf("zero duration: %v %v, want Ignored", res, err)
	}
	if l.Len() != 0 {
		t.Fatalf("len = %d, want 0", l.Len())
	}
}

func TestTicksAreIndependentPerClock(t *testing.T) {
	l := New()
	_, _, _ = l.Apply(Buff{Group: "haste", Stat: stat.AttackSpeed, Amount: 0.3, Duration: 1, DurationType: Turns}, 0)
	_, _, _ = l.Apply(Buff{Group: "blessing", Stat: stat.Armor, Amount: 20, EncountersRemaining: 2, DurationType: Encounters}, 0)

	expired, err := l.TickTurn()
	if err != nil {
		t.Fatalf("tick turn: %v", err)
	}
	if len(expired) != 1 || expired[0].Group != "haste" {
		t.Fatalf("turn tick expired %+v", expired)
	}
	if l.Stacks("blessing") != 1 {
		t.Fatal("turn tick touched encounter buff")
	}

	if _, err := l.TickEncounter(); err != nil {
		t.Fatalf("tick encounter: %v", err)
	}
	if got := l.Active()[0].EncountersRemaining; got != 1 {
		t.Fatalf("encounters remaining = %d, want 1", got)
	}
	expired, _ = l.TickEncounter()
	if len(expired) != 1 || l.Len() != 0 {
		t.Fatalf("expected blessing to expire, active %d", l.Len())
	}
}

func TestTickReportsNegativeRemaining(t *testing.T) {
	l := Restore([]Buff{
		{ID: "weak#1", Group: "weak", Amount: -5, Stat: stat.Armor, Duration: -1},
		{ID: "weak#2", Group: "weak", Amount: -5, Stat: stat.Armor, Duration: 3},
	})

	expired, err := l.TickTurn()
	if !errors.Is(err, ErrNegativeRemaining) {
		t.Fatalf("err = %v, want ErrNegativeRemaining", err)
	}
	if len(expired) != 1 || expired[0].ID != "weak#1" {
		t.Fatalf("expired = %+v", expired)
	}
	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
}

func TestModifiersAndPeriodic(t *testing.T) {
	l := New()
	_, _, _ = l.Apply(Buff{Group: "guard", Stat: stat.Armor, Amount: 15, Duration: 2}, 0)
	_, _, _ = l.Apply(Buff{Group: "guard", Stat: stat.Armor, Amount: 10, Duration: 2}, 0)
	_, _, _ = l.Apply(Buff{Group: "shred", Stat: stat.Armor, Amount: -30, Duration: 2}, 0)
	_, _, _ = l.Apply(Buff{Group: "regen", Amount: 6, Duration: 3, Kind: HealOverTime}, 0)

	if got := l.Modifiers().Get(stat.Armor); got != -5 {
		t.Fatalf("armor modifier = %v, want -5", got)
	}
	periodic := l.Periodic()
	if len(periodic) != 1 || periodic[0].Group != "regen" {
		t.Fatalf("periodic = %+v", periodic)
	}
}

func TestCleanseAndRemove(t *testing.T) {
	l := New()
	guard, _, _ := l.Apply(Buff{Group: "guard", Stat: stat.Armor, Amount: 15, Duration: 2}, 0)
	_, _, _ = l.Apply(Buff{Group: "shred", Stat: stat.Armor, Amount: -30, Duration: 2}, 0)
	_, _, _ = l.Apply(bleed(3, 2), 0)
	_, _, _ = l.Apply(bleed(3, 2), 0)

	removed := l.Cleanse()
	if len(removed) != 3 {
		t.Fatalf("cleansed %d, want 3", len(removed))
	}
	if !l.Remove(guard.ID) {
		t.Fatal("expected guard to be removed")
	}
	if l.Remove(guard.ID) {
		t.Fatal("second remove should report false")
	}
	if l.Len() != 0 {
		t.Fatalf("len = %d, want 0", l.Len())
	}
}

func TestRestoreContinuesIDs(t *testing.T) {
	l := Restore([]Buff{{ID: "blessing#7", Group: "blessing", EncountersRemaining: 1, DurationType: Encounters}})
	b, _, err := l.Apply(Buff{Group: "blessing", EncountersRemaining: 2, DurationType: Encounters}, 0)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if b.ID != "blessing#8" {
		t.Fatalf("id = %q, want blessing#8", b.ID)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := New()
	_, _, _ = l.Apply(bleed(1, 2), 0)
	c := l.Clone()
	_, _ = c.TickTurn()
	_, _ = c.TickTurn()
	if l.Len() != 1 || c.Len() != 0 {
		t.Fatalf("original %d, clone %d", l.Len(), c.Len())
	}
}

package timeline

import "testing"

func TestWindowNextAndRegenerationThreshold(t *testing.T) {
	actions := make([]Action, 12)
	for i := range actions {
		actions[i] = Action{Actor: Primary, Time: float64(i + 1), Turn: i + 1}
	}
	w := NewWindow(actions)

	if w.NeedsRegeneration() {
		t.Fatal("fresh window should not need regeneration")
	}
	w.Next()
	w.Next()
	if w.NeedsRegeneration() {
		t.Fatal("cursor 2 of 12 is not past the threshold")
	}
	w.Next()
	if !w.NeedsRegeneration() {
		t.Fatal("cursor 3 of 12 is past the threshold")
	}
	if w.Remaining() != 9 {
		t.Fatalf("remaining = %d, want 9", w.Remaining())
	}
}

func TestWindowNextExhausts(t *testing.T) {
	w := NewWindow([]Action{{Time: 1}})
	if _, ok := w.Next(); !ok {
		t.Fatal("expected one action")
	}
	if _, ok := w.Next(); ok {
		t.Fatal("expected exhausted window")
	}
	if _, ok := w.Peek(); ok {
		t.Fatal("expected no peek on exhausted window")
	}
}

func TestWindowStunKeepsConsumedActions(t *testing.T) {
	primary := Entity{ID: Primary, AttackSpeed: 1}
	opponent := Entity{ID: Opponent, AttackSpeed: 1}
	seq, err := Generate(primary, opponent, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	w := NewWindow(seq)
	consumed, _ := w.Next()

	if err := w.Stun(Opponent, 0.5, consumed.Time); err != nil {
		t.Fatalf("stun: %v", err)
	}
	if w.Actions[0] != consumed {
		t.Fatalf("consumed action changed: %+v", w.Actions[0])
	}
	next, _ := w.Peek()
	if next.Actor != Primary {
		t.Fatalf("next actor = %v, want primary after opponent is stunned", next.Actor)
	}
	if seq[2].Actor != Opponent || seq[2].Time != 1 {
		t.Fatal("generated sequence was mutated by window stun")
	}
}

func TestRegenerateDropsConsumedActions(t *testing.T) {
	primary := Entity{ID: Primary, AttackSpeed: 1}
	opponent := Entity{ID: Opponent, AttackSpeed: 1}
	last := Action{Actor: Primary, Time: 2, Turn: 2, Type: Spell, Priority: 0}

	got, err := Regenerate(primary, opponent, 2, 2, &last)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	for _, a := range got {
		if !After(a, last) {
			t.Fatalf("kept consumed action %+v", a)
		}
	}
	first := got[0]
	if first.Actor != Opponent || first.Type != Attack || first.Time != 2 {
		t.Fatalf("first = %+v, want opponent attack at 2", first)
	}
	if got[len(got)-1].Turn != 3 {
		t.Fatalf("last turn = %d, want 3", got[len(got)-1].Turn)
	}
}

func TestRegenerateAgreesWithWindowStunAfterTargetResolved(t *testing.T) {
	primary := Entity{ID: Primary, AttackSpeed: 1}
	opponent := Entity{ID: Opponent, AttackSpeed: 1}
	seq, err := Generate(primary, opponent, 6)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	w := NewWindow(seq)
	attack, _ := w.Next()
	spell, _ := w.Next()
	stunner, _ := w.Next()
	if attack.Actor != Primary || spell.Actor != Primary || stunner.Actor != Opponent || !sameTime(attack.Time, stunner.Time) {
		t.Fatalf("setup: resolved %+v and %+v before %+v", attack, spell, stunner)
	}

	if err := w.Stun(Primary, 0.5, stunner.Time); err != nil {
		t.Fatalf("stun: %v", err)
	}
	primary.Stuns = []StunPeriod{Period(stunner, Primary, 0.5)}
	rebuilt, err := Regenerate(primary, opponent, TurnOf(stunner.Time), 6, &stunner)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	var fromWindow, fromRebuild []float64
	for _, a := range w.Pending() {
		if a.Actor == Primary {
			fromWindow = append(fromWindow, a.Time)
		}
	}
	for _, a := range rebuilt {
		if a.Actor == Primary {
			fromRebuild = append(fromRebuild, a.Time)
		}
	}
	if len(fromWindow) == 0 || len(fromRebuild) < len(fromWindow) {
		t.Fatalf("window primary times %v, rebuilt %v", fromWindow, fromRebuild)
	}
	for i, want := range fromWindow {
		if !sameTime(fromRebuild[i], want) {
			t.Fatalf("rebuilt primary times %v, want prefix %v", fromRebuild, fromWindow)
		}
	}
	if !sameTime(fromRebuild[0], 2.5) {
		t.Fatalf("first rebuilt primary action at %v, want 2.5", fromRebuild[0])
	}
}

func TestRegenerateUsesCurrentStats(t *testing.T) {
	primary := Entity{ID: Primary, AttackSpeed: 2}
	opponent := Entity{ID: Opponent, AttackSpeed: 1}

	got, err := Regenerate(primary, opponent, 5, 1, nil)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	attacks := 0
	for _, a := range got {
		if a.Actor == Primary && a.Type == Attack {
			attacks++
		}
	}
	if attacks != 2 {
		t.Fatalf("primary attacks in turn 5 = %d, want 2", attacks)
	}
}

func TestWindowCloneIsIndependent(t *testing.T) {
	w := NewWindow([]Action{{Time: 1}, {Time: 2}})
	c := w.Clone()
	c.Actions[0].Time = 5
	c.Next()
	if w.Actions[0].Time != 1 || w.Cursor != 0 {
		t.Fatal("clone shares state with original")
	}
}

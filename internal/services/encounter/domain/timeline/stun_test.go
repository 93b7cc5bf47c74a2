package timeline

import (
	"errors"
	"testing"
)

func TestApplyStunShiftsOnlyTargetFutureActions(t *testing.T) {
	primary := Entity{ID: Primary, AttackSpeed: 1.5, AbilityHaste: 300}
	opponent := Entity{ID: Opponent, AttackSpeed: 0.8, AbilityHaste: 100}
	seq, err := Generate(primary, opponent, 6)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	const (
		duration  = 1.25
		appliedAt = 2.0
	)
	got, err := ApplyStun(seq, Opponent, duration, appliedAt)
	if err != nil {
		t.Fatalf("apply stun: %v", err)
	}
	if len(got) != len(seq) {
		t.Fatalf("len = %d, want %d", len(got), len(seq))
	}

	var wantOpp []float64
	var wantPrimary []Action
	for _, a := range seq {
		if a.Actor == Opponent {
			if a.Time >= appliedAt {
				wantOpp = append(wantOpp, a.Time+duration)
			} else {
				wantOpp = append(wantOpp, a.Time)
			}
		} else {
			wantPrimary = append(wantPrimary, a)
		}
	}

	var gotOpp []float64
	var gotPrimary []Action
	for i, a := range got {
		if i > 0 && Less(a, got[i-1]) {
			t.Fatalf("result unsorted at %d", i)
		}
		if a.Turn != TurnOf(a.Time) {
			t.Fatalf("turn %d not recomputed for time %v", a.Turn, a.Time)
		}
		if a.Actor == Opponent {
			gotOpp = append(gotOpp, a.Time)
		} else {
			gotPrimary = append(gotPrimary, a)
		}
	}

	for i := range wantPrimary {
		if gotPrimary[i] != wantPrimary[i] {
			t.Fatalf("primary action %d = %+v, want %+v", i, gotPrimary[i], wantPrimary[i])
		}
	}
	// Shifting keeps the relative order of an actor's own actions.
	for i := range wantOpp {
		if !sameTime(gotOpp[i], wantOpp[i]) {
			t.Fatalf("opponent action %d at %v, want %v", i, gotOpp[i], wantOpp[i])
		}
	}
}

func TestApplyStunDelaysActionAtAppliedTime(t *testing.T) {
	seq := []Action{
		{Actor: Primary, Turn: 1, Time: 1, Type: Attack, Priority: 0},
		{Actor: Opponent, Turn: 1, Time: 1, Type: Attack, Priority: 1},
		{Actor: Opponent, Turn: 2, Time: 2, Type: Attack, Priority: 1},
	}

	got, err := ApplyStun(seq, Opponent, 0.5, 1)
	if err != nil {
		t.Fatalf("apply stun: %v", err)
	}
	want := []float64{1, 1.5, 2.5}
	for i, a := range got {
		if !sameTime(a.Time, want[i]) {
			t.Fatalf("action %d at %v, want %v", i, a.Time, want[i])
		}
	}
	if got[1].Turn != 1 || got[2].Turn != 2 {
		t.Fatalf("turns = %d,%d, want 1,2", got[1].Turn, got[2].Turn)
	}
}

func TestApplyStunReordersPastOtherActor(t *testing.T) {
	seq := []Action{
		{Actor: Opponent, Turn: 1, Time: 1.2, Type: Attack, Priority: 1},
		{Actor: Primary, Turn: 1, Time: 1.5, Type: Attack, Priority: 0},
	}
	got, err := ApplyStun(seq, Opponent, 1, 1)
	if err != nil {
		t.Fatalf("apply stun: %v", err)
	}
	if got[0].Actor != Primary || got[1].Actor != Opponent || !sameTime(got[1].Time, 2.2) {
		t.Fatalf("sequence = %+v", got)
	}
	if seq[0].Time != 1.2 {
		t.Fatal("input sequence was mutated")
	}
}

func TestApplyStunZeroDurationCopies(t *testing.T) {
	seq := []Action{{Actor: Primary, Turn: 1, Time: 1}}
	got, err := ApplyStun(seq, Primary, 0, 0)
	if err != nil {
		t.Fatalf("apply stun: %v", err)
	}
	got[0].Time = 9
	if seq[0].Time != 1 {
		t.Fatal("zero stun returned an alias of the input")
	}
}

func TestApplyStunRejectsInvalidInput(t *testing.T) {
	if _, err := ApplyStun(nil, Primary, -1, 1); !errors.Is(err, ErrInvalidStunDuration) {
		t.Fatalf("err = %v, want ErrInvalidStunDuration", err)
	}
	if _, err := ApplyStun(nil, ActorID(7), 1, 1); !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("err = %v, want ErrInvalidActor", err)
	}
}

func TestPeriod(t *testing.T) {
	by := Action{Actor: Primary, Time: 2.25, Type: Spell, Priority: int(Primary)}
	p := Period(by, Opponent, 1.5)
	if p.End != 3.75 || p.Duration() != 1.5 {
		t.Fatalf("period = %+v", p)
	}
	if p.SourcePriority != int(Primary) || p.SourceType != Spell {
		t.Fatalf("period source = (%d, %v), want (0, spell)", p.SourcePriority, p.SourceType)
	}
}

func TestShiftMatchesApplyStun(t *testing.T) {
	primary := Entity{ID: Primary, AttackSpeed: 1.3, AbilityHaste: 150}
	opponent := Entity{ID: Opponent, AttackSpeed: 0.9, AbilityHaste: 40}
	seq, err := Generate(primary, opponent, 8)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	stuns := []StunPeriod{
		Period(Action{Time: 2.1, Priority: int(Primary), Type: Spell}, Opponent, 0.75),
		Period(Action{Time: 4, Priority: int(Primary), Type: Spell}, Opponent, 1.5),
	}
	for _, s := range stuns {
		seq, err = ApplyStun(seq, Opponent, s.Duration(), s.Start)
		if err != nil {
			t.Fatalf("apply stun: %v", err)
		}
	}

	opponent.Stuns = stuns
	regenerated, err := Generate(primary, opponent, 12)
	if err != nil {
		t.Fatalf("generate stunned: %v", err)
	}
	byKey := map[ActionType][]float64{}
	for _, a := range regenerated {
		if a.Actor == Opponent {
			byKey[a.Type] = append(byKey[a.Type], a.Time)
		}
	}
	idx := map[ActionType]int{}
	for _, a := range seq {
		if a.Actor != Opponent {
			continue
		}
		want := byKey[a.Type][idx[a.Type]]
		idx[a.Type]++
		if !sameTime(a.Time, want) {
			t.Fatalf("%v at %v, regenerated at %v", a.Type, a.Time, want)
		}
	}
}

func TestShiftSkipsActionsResolvedBeforeStun(t *testing.T) {
	byOpponent := Period(Action{Time: 2, Priority: int(Opponent), Type: Attack}, Primary, 0.5)
	byPrimary := Period(Action{Time: 2, Priority: int(Primary), Type: Attack}, Opponent, 0.5)

	tests := []struct {
		name  string
		a     Action
		stuns []StunPeriod
		want  float64
	}{
		{"earlier", Action{Time: 1.5, Priority: int(Primary)}, []StunPeriod{byOpponent}, 1.5},
		{"same time higher priority", Action{Time: 2, Priority: int(Primary), Type: Spell}, []StunPeriod{byOpponent}, 2},
		{"same time lower priority", Action{Time: 2, Priority: int(Opponent)}, []StunPeriod{byPrimary}, 2.5},
		{"later", Action{Time: 3, Priority: int(Primary)}, []StunPeriod{byOpponent}, 3.5},
		{"chained", Action{Time: 2, Priority: int(Opponent)}, []StunPeriod{byPrimary, Period(Action{Time: 2.5, Priority: int(Primary), Type: Spell}, Opponent, 1)}, 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shift(tt.a, tt.stuns); !sameTime(got, tt.want) {
				t.Fatalf("Shift = %v, want %v", got, tt.want)
			}
		})
	}
}

package roll

import (
	"math"
	"testing"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d: %v != %v", i, x, y)
		}
	}
}

func TestChance(t *testing.T) {
	tests := []struct {
		name    string
		draw    float64
		percent float64
		want    bool
	}{
		{name: "zero never hits", draw: 0, percent: 0, want: false},
		{name: "hundred always hits", draw: 0.999, percent: 100, want: true},
		{name: "below threshold", draw: 0.24, percent: 25, want: true},
		{name: "at threshold", draw: 0.25, percent: 25, want: false},
		{name: "negative percent", draw: 0, percent: -5, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Chance(NewSequence(tt.draw), tt.percent); got != tt.want {
				t.Fatalf("Chance(%v, %v) = %v, want %v", tt.draw, tt.percent, got, tt.want)
			}
		})
	}
}

func TestCountMatchesExpectedRate(t *testing.T) {
	const trials = 100000
	hits := Count(New(7), 25, trials)
	rate := float64(hits) / trials
	// Four standard deviations of a binomial(0.25) over 100k trials.
	tolerance := 4 * math.Sqrt(0.25*0.75/trials)
	if math.Abs(rate-0.25) > tolerance {
		t.Fatalf("crit rate = %v, want 0.25 +/- %v", rate, tolerance)
	}
}

func TestSequenceWraps(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	got := []float64{s.Float64(), s.Float64(), s.Float64()}
	want := []float64{0.1, 0.9, 0.1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw %d = %v, want %v", i, got[i], want[i])
		}
	}
	if v := NewSequence().Float64(); v != 0 {
		t.Fatalf("empty sequence = %v, want 0", v)
	}
}

func TestResolveSeedKeepsExplicitSeed(t *testing.T) {
	got, err := ResolveSeed(99)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	if got != 99 {
		t.Fatalf("seed = %d, want 99", got)
	}
}

func TestResolveSeedGeneratesWhenUnset(t *testing.T) {
	a, err := ResolveSeed(0)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	b, err := ResolveSeed(0)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct generated seeds, got %d twice", a)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeInvalidAttackSpeed, "attack speed must be finite")
	other := New(CodeInvalidAttackSpeed, "different message")

	if !stderrors.Is(other, sentinel) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(New(CodeInvalidCooldown, "x"), sentinel) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "save encounter", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be found")
	}
	if got, want := err.Error(), "save encounter: disk full"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "plain", err: stderrors.New("boom"), want: KindInternal},
		{name: "invalid input", err: New(CodeInvalidAbilityHaste, "x"), want: KindInvalidInput},
		{name: "wrapped", err: fmt.Errorf("apply: %w", New(CodeInvalidBuffDuration, "x")), want: KindInvalidInput},
		{name: "precondition", err: New(CodeEncounterOver, "x"), want: KindPrecondition},
		{name: "not found", err: New(CodeUnknownItem, "x"), want: KindNotFound},
		{name: "invariant", err: New(CodeInvariantViolation, "x"), want: KindInvariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithMetadataKeepsContext(t *testing.T) {
	err := WithMetadata(CodeUnknownStat, "unknown stat", map[string]string{"Stat": "mana"})
	if err.Metadata["Stat"] != "mana" {
		t.Fatalf("metadata = %v, want Stat=mana", err.Metadata)
	}
	if CodeOf(err) != CodeUnknownStat {
		t.Fatalf("CodeOf() = %v, want %v", CodeOf(err), CodeUnknownStat)
	}
}

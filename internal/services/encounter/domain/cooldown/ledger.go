// Package cooldown tracks per-ability cooldowns in whole turns.
//
// Using an ability at any fractional time sets its entry to base + 1 so the
// partial turn in progress never counts as a full one. Entries decrement once
// per turn boundary and the ability is ready when its entry is absent or 0.
package cooldown

import (
	"fmt"
	"sort"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
)

var (
	// ErrInvalidCooldown is returned for negative base cooldowns.
	ErrInvalidCooldown = apperrors.New(apperrors.CodeInvalidCooldown, "base cooldown must be non-negative")
	// ErrNegativeEntry reports an entry that went below zero.
	ErrNegativeEntry = apperrors.New(apperrors.CodeInvariantViolation, "cooldown entry is negative")
)

// Ledger maps ability ids to remaining whole turns.
type Ledger struct {
	entries map[string]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]int)}
}

// Use starts the cooldown of id. now is the fractional time of use and only
// documents the call; the entry always snaps to the next turn boundary.
func (l *Ledger) Use(id string, baseTurns int, now float64) error {
	if baseTurns < 0 {
		return fmt.Errorf("use %s at %.2f: %w", id, now, ErrInvalidCooldown)
	}
	if l.entries == nil {
		l.entries = make(map[string]int)
	}
	l.entries[id] = baseTurns + 1
	return nil
}

// Tick advances every entry by one turn and drops ready entries.
//
// A negative entry is clamped to 0 and reported as ErrNegativeEntry after the
// tick completes, so callers can fail loudly while the ledger stays usable.
func (l *Ledger) Tick() error {
	var negative []string
	for id, remaining := range l.entries {
		if remaining < 0 {
			negative = append(negative, id)
			delete(l.entries, id)
			continue
		}
		remaining--
		if remaining <= 0 {
			delete(l.entries, id)
			continue
		}
		l.entries[id] = remaining
	}
	if len(negative) > 0 {
		sort.Strings(negative)
		return apperrors.WithMetadata(ErrNegativeEntry.Code, fmt.Sprintf("cooldown entries %v were negative", negative), map[string]string{"Abilities": fmt.Sprint(negative)})
	}
	return nil
}

// Ready reports whether id can be used.
func (l *Ledger) Ready(id string) bool {
	return l.Remaining(id) <= 0
}

// Remaining returns the turns left for id, 0 when ready.
func (l *Ledger) Remaining(id string) int {
	if l == nil {
		return 0
	}
	return l.entries[id]
}

// Len returns the number of abilities on cooldown.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Snapshot returns a read-only copy of the entries.
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int)
	if l == nil {
		return out
	}
	for id, v := range l.entries {
		out[id] = v
	}
	return out
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{entries: l.Snapshot()}
}

// Restore builds a ledger from a snapshot, keeping every entry as given.
func Restore(entries map[string]int) *Ledger {
	l := New()
	for id, v := range entries {
		l.entries[id] = v
	}
	return l
}

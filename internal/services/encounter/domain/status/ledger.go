package status

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
)

var (
	// ErrInvalidDuration is returned for buffs applied with negative duration.
	ErrInvalidDuration = apperrors.New(apperrors.CodeInvalidBuffDuration, "buff duration must be non-negative")
	// ErrNegativeRemaining reports an active buff whose counter went below zero.
	ErrNegativeRemaining = apperrors.New(apperrors.CodeInvariantViolation, "buff remaining duration is negative")
)

// Result describes what Apply did.
type Result int

const (
	// Added means a new stack was created.
	Added Result = iota
	// Refreshed means the stack cap was reached and existing stacks were refreshed.
	Refreshed
	// Ignored means the buff had zero duration and was discarded.
	Ignored
)

func (r Result) String() string {
	switch r {
	case Added:
		return "added"
	case Refreshed:
		return "refreshed"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// MarshalText encodes the result by name.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Ledger holds the active buffs of one participant in application order.
type Ledger struct {
	buffs []Buff
	seq   int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Restore builds a ledger holding buffs, e.g. encounter buffs carried over
// from a previous encounter. IDs are kept when present.
func Restore(buffs []Buff) *Ledger {
	l := New()
	for _, b := range buffs {
		if b.ID == "" {
			b.ID = l.nextID(b.Group)
		} else {
			l.observeID(b.ID)
		}
		l.buffs = append(l.buffs, b)
	}
	return l
}

// Apply adds b as a new stack of its group.
//
// With stackCap > 0 and the group already holding stackCap stacks, no stack
// is added: every existing stack takes b's duration instead and the oldest
// refreshed stack is returned. A zero duration is ignored and a negative one
// rejected.
func (l *Ledger) Apply(b Buff, stackCap int) (Buff, Result, error) {
	if b.remaining() < 0 {
		return Buff{}, Ignored, fmt.Errorf("apply %s: %w", b.Group, ErrInvalidDuration)
	}
	if b.remaining() == 0 {
		return Buff{}, Ignored, nil
	}

	if stackCap > 0 && l.Stacks(b.Group) >= stackCap {
		var oldest *Buff
		for i := range l.buffs {
			if l.buffs[i].Group == b.Group {
				l.buffs[i].setRemaining(b.remaining())
				if oldest == nil {
					oldest = &l.buffs[i]
				}
			}
		}
		return *oldest, Refreshed, nil
	}

	b.ID = l.nextID(b.Group)
	l.buffs = append(l.buffs, b)
	return b, Added, nil
}

// Stacks returns the number of active buffs in group.
func (l *Ledger) Stacks(group string) int {
	n := 0
	for _, b := range l.buffs {
		if b.Group == group {
			n++
		}
	}
	return n
}

// TickTurn decrements every turn buff and removes those that reach 0.
// Encounter buffs are untouched.
func (l *Ledger) TickTurn() ([]Buff, error) {
	return l.tick(Turns)
}

// TickEncounter decrements every encounter buff and removes those that
// reach 0. Turn buffs are untouched.
func (l *Ledger) TickEncounter() ([]Buff, error) {
	return l.tick(Encounters)
}

func (l *Ledger) tick(clock DurationType) ([]Buff, error) {
	var expired []Buff
	var negative []string
	kept := l.buffs[:0]
	for _, b := range l.buffs {
		if b.DurationType != clock {
			kept = append(kept, b)
			continue
		}
		if b.remaining() < 0 {
			negative = append(negative, b.ID)
			b.setRemaining(0)
			expired = append(expired, b)
			continue
		}
		b.setRemaining(b.remaining() - 1)
		if b.remaining() <= 0 {
			expired = append(expired, b)
			continue
		}
		kept = append(kept, b)
	}
	l.buffs = kept
	if len(negative) > 0 {
		return expired, apperrors.WithMetadata(ErrNegativeRemaining.Code,
			fmt.Sprintf("buffs %v had negative remaining %s", negative, clock),
			map[string]string{"Buffs": strings.Join(negative, ",")})
	}
	return expired, nil
}

// Remove drops the buff with id and reports whether it existed.
func (l *Ledger) Remove(id string) bool {
	for i, b := range l.buffs {
		if b.ID == id {
			l.buffs = append(l.buffs[:i], l.buffs[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveGroup drops every stack of group and returns how many were removed.
func (l *Ledger) RemoveGroup(group string) int {
	return len(l.removeWhere(func(b Buff) bool { return b.Group == group }))
}

// Cleanse drops every harmful buff and returns them.
func (l *Ledger) Cleanse() []Buff {
	return l.removeWhere(Buff.Harmful)
}

func (l *Ledger) removeWhere(match func(Buff) bool) []Buff {
	var removed []Buff
	kept := l.buffs[:0]
	for _, b := range l.buffs {
		if match(b) {
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	l.buffs = kept
	return removed
}

// Modifiers sums the stat changes of every active Instant buff.
func (l *Ledger) Modifiers() stat.Block {
	var out stat.Block
	if l == nil {
		return out
	}
	for _, b := range l.buffs {
		if b.Kind == Instant && b.Stat.Valid() {
			out[b.Stat] += b.Amount
		}
	}
	return out
}

// Periodic returns the active heal-over-time and damage-over-time buffs.
func (l *Ledger) Periodic() []Buff {
	var out []Buff
	if l == nil {
		return out
	}
	for _, b := range l.buffs {
		if b.Kind == HealOverTime || b.Kind == DamageOverTime {
			out = append(out, b)
		}
	}
	return out
}

// Active returns a copy of every active buff in application order.
func (l *Ledger) Active() []Buff {
	if l == nil {
		return nil
	}
	return append([]Buff(nil), l.buffs...)
}

// Len returns the number of active buffs.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.buffs)
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return New()
	}
	return &Ledger{buffs: l.Active(), seq: l.seq}
}

func (l *Ledger) nextID(group string) string {
	l.seq++
	return group + "#" + strconv.Itoa(l.seq)
}

func (l *Ledger) observeID(id string) {
	idx := strings.LastIndexByte(id, '#')
	if idx < 0 {
		return
	}
	if n, err := strconv.Atoi(id[idx+1:]); err == nil && n > l.seq {
		l.seq = n
	}
}

package timeline

// DefaultLookahead is the number of unread actions below which a window
// must be regenerated.
const DefaultLookahead = 10

// Window is a generated action list consumed from the front by a cursor.
type Window struct {
	Actions   []Action
	Cursor    int
	Lookahead int
}

// NewWindow wraps actions with the default lookahead.
func NewWindow(actions []Action) Window {
	return Window{Actions: actions, Lookahead: DefaultLookahead}
}

// Remaining returns the number of unread actions.
func (w Window) Remaining() int {
	if w.Cursor >= len(w.Actions) {
		return 0
	}
	return len(w.Actions) - w.Cursor
}

// Peek returns the next unread action without consuming it.
func (w Window) Peek() (Action, bool) {
	if w.Cursor >= len(w.Actions) {
		return Action{}, false
	}
	return w.Actions[w.Cursor], true
}

// Next consumes and returns the next unread action.
func (w *Window) Next() (Action, bool) {
	a, ok := w.Peek()
	if ok {
		w.Cursor++
	}
	return a, ok
}

// NeedsRegeneration reports whether the cursor has passed len - lookahead.
func (w Window) NeedsRegeneration() bool {
	lookahead := w.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return w.Cursor > len(w.Actions)-lookahead
}

// Pending returns a copy of the unread actions.
func (w Window) Pending() []Action {
	if w.Cursor >= len(w.Actions) {
		return nil
	}
	out := make([]Action, len(w.Actions)-w.Cursor)
	copy(out, w.Actions[w.Cursor:])
	return out
}

// Stun shifts the target's unread actions at or after appliedAt and keeps
// already consumed actions in place.
func (w *Window) Stun(target ActorID, duration, appliedAt float64) error {
	shifted, err := ApplyStun(w.Pending(), target, duration, appliedAt)
	if err != nil {
		return err
	}
	w.Actions = append(w.Actions[:w.Cursor:w.Cursor], shifted...)
	return nil
}

// Reset replaces the window contents and moves the cursor to 0.
func (w *Window) Reset(actions []Action) {
	w.Actions = actions
	w.Cursor = 0
}

// Clone returns a window with its own copy of the action list.
func (w Window) Clone() Window {
	w.Actions = append([]Action(nil), w.Actions...)
	return w
}

// Regenerate produces a fresh window covering turns [from, from+turns-1] for
// the entities' current stats and delays, dropping every action that does
// not come strictly after last. Pass a nil last to keep everything.
func Regenerate(primary, opponent Entity, from, turns int, last *Action) ([]Action, error) {
	if turns < 1 {
		return nil, ErrInvalidTurnCount
	}
	actions, err := GenerateBetween(primary, opponent, from, from+turns-1)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return actions, nil
	}
	kept := actions[:0]
	for _, a := range actions {
		if After(a, *last) {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

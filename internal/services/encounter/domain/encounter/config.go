package encounter

import "github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"

const (
	// DefaultWindowTurns is the number of turns generated per window.
	DefaultWindowTurns = 10
	// DefaultMaxTurns ends an encounter in a draw after this turn.
	DefaultMaxTurns = 100
	// DefaultFleeBound is the distance from the origin past which an actor
	// has fled.
	DefaultFleeBound = 20.0
)

// Config tunes an encounter. Zero values select the defaults.
type Config struct {
	WindowTurns int
	Lookahead   int
	MaxTurns    int
	FleeBound   float64
	// Strict turns invariant violations found while ticking ledgers into
	// errors. Otherwise they are clamped and reported as event warnings.
	Strict bool
	// RegenerateOnStatChange regenerates the window before the next action
	// whenever attack speed or ability haste changed. By default such
	// changes wait for the next lookahead regeneration.
	RegenerateOnStatChange bool
}

func (c Config) withDefaults() Config {
	if c.WindowTurns < 2 {
		c.WindowTurns = DefaultWindowTurns
	}
	if c.Lookahead <= 0 {
		c.Lookahead = timeline.DefaultLookahead
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.FleeBound <= 0 {
		c.FleeBound = DefaultFleeBound
	}
	return c
}

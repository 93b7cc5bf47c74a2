package scenario

import (
	"fmt"
	"log"
	"strings"
)

// AssertionMode selects how failed expectations are reported.
type AssertionMode int

const (
	// AssertionStrict fails the scenario on the first unmet expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLog logs unmet expectations and keeps running.
	AssertionLog
)

// ParseAssertionMode parses "strict" or "log".
func ParseAssertionMode(value string) (AssertionMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "strict":
		return AssertionStrict, nil
	case "log":
		return AssertionLog, nil
	default:
		return AssertionStrict, fmt.Errorf("unknown assertion mode %q", value)
	}
}

// Assertions reports expectation results for one run.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
	// Failures counts expectations missed in log mode.
	Failures int
}

// Failf reports a failure that always stops the scenario.
func (a *Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf reports an unmet expectation according to Mode.
func (a *Assertions) Assertf(format string, args ...any) error {
	if a.Mode == AssertionLog {
		a.Failures++
		if a.Logger != nil {
			a.Logger.Printf("assertion failed: "+format, args...)
		}
		return nil
	}
	return fmt.Errorf(format, args...)
}

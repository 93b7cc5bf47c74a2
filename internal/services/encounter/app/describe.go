package app

import (
	"fmt"
	"strings"

	"github.com/louisbranch/skirmish/internal/services/encounter/domain/encounter"
)

// Describe renders ev as one log line.
func Describe(ev encounter.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d t=%.2f turn %d", ev.Seq, ev.Time, ev.Turn)
	for _, tick := range ev.Ticks {
		for _, p := range tick.Periodic {
			fmt.Fprintf(&b, " [%s %s %+d]", p.Actor, p.Group, p.Amount)
		}
		for _, x := range tick.Expired {
			fmt.Fprintf(&b, " [%s %s expired]", x.Actor, x.Buff.Group)
		}
	}

	switch ev.Kind {
	case encounter.EventAction:
		fmt.Fprintf(&b, " %s %s", ev.Actor, ev.Action.Type)
		if ev.Ability != "" {
			fmt.Fprintf(&b, " %s", ev.Ability)
		}
		fmt.Fprintf(&b, ": %s", ev.Outcome)
		if ev.Damage > 0 {
			fmt.Fprintf(&b, " %d damage", ev.Damage)
			if ev.Crit {
				b.WriteString(" (crit)")
			}
		}
		if ev.Heal > 0 {
			fmt.Fprintf(&b, " %d heal", ev.Heal)
		}
		if ev.Vamp > 0 {
			fmt.Fprintf(&b, " %d vamp", ev.Vamp)
		}
		if ev.Stun != nil {
			fmt.Fprintf(&b, " stuns %s for %.2f", ev.Stun.Actor, ev.Stun.Duration())
		}
	case encounter.EventEnd:
		b.WriteString(" end: ")
		b.WriteString(DescribeResult(*ev.Result))
	default:
		fmt.Fprintf(&b, " %s %s", ev.Actor, ev.Kind)
		if ev.Item != "" {
			fmt.Fprintf(&b, " %s", ev.Item)
		}
	}
	fmt.Fprintf(&b, " hp %d/%d vs %d/%d", ev.HP[0], ev.MaxHP[0], ev.HP[1], ev.MaxHP[1])
	return b.String()
}

// DescribeResult renders an end result.
func DescribeResult(r encounter.Result) string {
	switch {
	case r.Decided:
		return fmt.Sprintf("%s wins by %s on turn %d", r.Winner, r.Reason, r.Turn)
	case r.Reason == encounter.ReasonFled:
		return fmt.Sprintf("%s fled on turn %d", r.Actor, r.Turn)
	case r.Reason == encounter.ReasonTurnLimit:
		return fmt.Sprintf("draw at turn limit %d", r.Turn)
	default:
		return fmt.Sprintf("draw by %s on turn %d", r.Reason, r.Turn)
	}
}

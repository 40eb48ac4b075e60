// internal/engine/resolve.go
package engine

import (
	"github.com/riskgate/riskgate/internal/types"
)

/*
 * Decision resolution.
 *
 * Reduces the triggered rules of one request to a single action with a
 * two-level policy: severity tier first (block > hold > approve -- a block
 * is a hard veto over any hold or approve regardless of numeric priority),
 * then effective priority within the winning tier, then registration order
 * for ties. No triggered rules means approve.
 */

// resolveAction picks the final action and the rule whose reason is surfaced
// on the decision. triggered must be in evaluation (registration) order;
// winner is nil when the slice is empty.
func resolveAction(triggered []*CompiledRule) (types.Action, *CompiledRule) {
	if len(triggered) == 0 {
		return types.ActionApprove, nil
	}

	var winner *CompiledRule
	for _, rule := range triggered {
		if winner == nil {
			winner = rule
			continue
		}
		switch {
		case rule.Action.Severity() > winner.Action.Severity():
			winner = rule
		case rule.Action.Severity() == winner.Action.Severity() &&
			rule.EffectivePriority() > winner.EffectivePriority():
			winner = rule
			// Equal severity and priority keeps the earlier rule: the
			// slice is already in registration order.
		}
	}
	return winner.Action, winner
}

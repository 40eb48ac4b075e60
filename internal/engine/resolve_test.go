// internal/engine/resolve_test.go
package engine

import (
	"testing"

	"github.com/riskgate/riskgate/internal/types"
)

func actionRule(id string, action types.Action, priority, seq int) *CompiledRule {
	return &CompiledRule{
		ID:       id,
		Name:     id,
		Enabled:  true,
		Action:   action,
		Priority: priority,
		Seq:      seq,
	}
}

func TestResolveAction_EmptyIsApprove(t *testing.T) {
	action, winner := resolveAction(nil)
	if action != types.ActionApprove {
		t.Errorf("action = %v, want approve", action)
	}
	if winner != nil {
		t.Errorf("winner = %v, want nil", winner)
	}
}

func TestResolveAction_BlockVetoesHigherPriorityHold(t *testing.T) {
	hold := actionRule("hold-high", types.ActionHold, 100, 0)
	block := actionRule("block-low", types.ActionBlock, 5, 1)

	action, winner := resolveAction([]*CompiledRule{hold, block})
	if action != types.ActionBlock {
		t.Errorf("action = %v, want block", action)
	}
	if winner.ID != "block-low" {
		t.Errorf("winner = %s, want block-low", winner.ID)
	}
}

func TestResolveAction_PriorityWithinTier(t *testing.T) {
	low := actionRule("hold-low", types.ActionHold, 10, 0)
	high := actionRule("hold-high", types.ActionHold, 90, 1)

	_, winner := resolveAction([]*CompiledRule{low, high})
	if winner.ID != "hold-high" {
		t.Errorf("winner = %s, want hold-high", winner.ID)
	}
}

func TestResolveAction_PriorityBoostCounts(t *testing.T) {
	plain := actionRule("plain", types.ActionHold, 50, 0)
	boosted := actionRule("boosted", types.ActionHold, 40, 1)
	boosted.PriorityBoost = 20

	_, winner := resolveAction([]*CompiledRule{plain, boosted})
	if winner.ID != "boosted" {
		t.Errorf("winner = %s, want boosted (40+20 > 50)", winner.ID)
	}
}

func TestResolveAction_TieKeepsEarlierRegistration(t *testing.T) {
	first := actionRule("first", types.ActionHold, 50, 0)
	second := actionRule("second", types.ActionHold, 50, 1)

	_, winner := resolveAction([]*CompiledRule{first, second})
	if winner.ID != "first" {
		t.Errorf("winner = %s, want first", winner.ID)
	}
}

func TestResolveAction_OnlyApproves(t *testing.T) {
	a := actionRule("allowlist", types.ActionApprove, 30, 0)

	action, winner := resolveAction([]*CompiledRule{a})
	if action != types.ActionApprove {
		t.Errorf("action = %v, want approve", action)
	}
	if winner.ID != "allowlist" {
		t.Errorf("winner = %s, want allowlist", winner.ID)
	}
}

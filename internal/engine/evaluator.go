// internal/engine/evaluator.go
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/riskgate/riskgate/internal/catalog"
	"github.com/riskgate/riskgate/internal/types"
)

/*
 * Rule evaluation orchestration.
 *
 * For one request: build the evaluation context once, run every enabled rule
 * through the condition evaluator in priority order, time each run, score
 * triggered rules, then hand the triggered set to the decision resolver and
 * the confidence aggregator.
 *
 * Failure isolation: a rule whose condition cannot be evaluated (degraded
 * parse, or anything that panics despite the total evaluation functions) is
 * recorded as not triggered and logged; it never aborts the request. One
 * bad custom rule must not take down evaluation for a whole request.
 *
 * Determinism: identical (payload, results, rule set) yields the identical
 * decision and triggered set. There is no clock-based branching; the clock
 * is only read to report evaluation_time_ms.
 */

// Evaluator runs rule sets against requests. Stateless apart from the
// logger; safe for concurrent use.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates an evaluator. A nil logger disables logging.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

// Outcome is the complete evaluation result for one request.
type Outcome struct {
	Results     types.ValidationResults
	Evaluations []types.RuleEvaluation
	Decision    types.FinalDecision
}

// Evaluate runs every enabled rule against the payload and validation
// results. rules must be ordered by descending priority with stable
// registration-order ties (the registry snapshot provides this).
func (e *Evaluator) Evaluate(rules []*CompiledRule, payload types.Payload, results types.ValidationResults) Outcome {
	if results == nil {
		results = types.ValidationResults{}
	}
	ctx := BuildContext(payload, results)

	evaluations := make([]types.RuleEvaluation, 0, len(rules))
	var triggered []*CompiledRule

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}

		start := time.Now()
		matched, stats := e.evalRule(rule, ctx)
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		eval := types.RuleEvaluation{
			RuleID:           rule.ID,
			RuleName:         rule.Name,
			Triggered:        matched,
			Action:           rule.Action,
			Priority:         rule.Priority,
			EvaluationTimeMs: elapsed,
		}
		if matched {
			score := ruleConfidence(stats, rule.Leaves, results)
			eval.ConfidenceScore = &score
			if rule.Action != types.ActionApprove {
				eval.Reason = reasonText(rule)
			}
			triggered = append(triggered, rule)
		}
		evaluations = append(evaluations, eval)
	}

	action, winner := resolveAction(triggered)
	confidence, risk := aggregate(results, triggered)

	decision := types.FinalDecision{
		Action:     action,
		RiskLevel:  risk,
		Confidence: confidence,
	}
	if winner != nil {
		decision.TriggeredBy = winner.ID
		decision.ReasonCode = winner.ReasonCode
		decision.Message = reasonText(winner)
	}

	return Outcome{
		Results:     results,
		Evaluations: evaluations,
		Decision:    decision,
	}
}

// evalRule evaluates one rule with panic isolation. The condition walk is
// total over well-formed trees; the recover is the containment boundary for
// anything a malformed custom rule still manages to break.
func (e *Evaluator) evalRule(rule *CompiledRule, ctx map[string]any) (matched bool, stats leafStats) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			stats = leafStats{}
			e.logger.Warn("rule evaluation failed",
				zap.String("rule_id", rule.ID),
				zap.String("tenant_id", rule.TenantID),
				zap.Any("panic", r))
		}
	}()

	if rule.Cond == nil {
		// Degraded rule: expression failed to parse at registration.
		e.logger.Debug("skipping degraded rule", zap.String("rule_id", rule.ID))
		return false, leafStats{}
	}
	return evalCondition(rule.Cond, ctx)
}

// reasonText resolves the human-readable reason for a rule, preferring the
// catalog description of its reason code.
func reasonText(rule *CompiledRule) string {
	if rule.ReasonCode != "" {
		if desc, ok := catalog.ReasonDescription(rule.ReasonCode); ok {
			return desc
		}
	}
	if rule.Description != "" {
		return rule.Description
	}
	return rule.Name
}

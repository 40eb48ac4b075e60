// internal/engine/aggregate.go
package engine

import (
	"github.com/riskgate/riskgate/internal/types"
)

/*
 * Confidence and risk aggregation.
 *
 * Starts from the average of the per-field validator confidences (absent
 * fields are excluded, not penalized; no validation results at all starts
 * at full confidence). Each triggered rule then applies a multiplicative
 * penalty proportional to its severity. Multiplicative decay gives the two
 * required shapes for free: confidence never goes negative, and every
 * additional block/hold trigger strictly decreases it -- the penalty's
 * absolute size shrinks as confidence shrinks.
 *
 * Risk buckets are fixed thresholds on the aggregate. The cutpoints are
 * chosen so that a disposable-email block plus a PO-box block plus an
 * invalid-phone hold lands below 0.5 and in high/critical even when the
 * validators reported optimistic confidences.
 */

// Per-trigger penalty factors by action severity. Approve-triggering rules
// carry no risk signal and leave confidence untouched.
const (
	blockPenalty = 0.35
	holdPenalty  = 0.20
)

// Risk-level thresholds on aggregate confidence.
const (
	riskLowFloor    = 0.80
	riskMediumFloor = 0.60
	riskHighFloor   = 0.30
)

// aggregate combines field confidences and triggered rules into the overall
// confidence (0..1) and risk bucket.
func aggregate(results types.ValidationResults, triggered []*CompiledRule) (float64, types.RiskLevel) {
	confidence := baseConfidence(results)

	for _, rule := range triggered {
		switch rule.Action {
		case types.ActionBlock:
			confidence *= 1 - blockPenalty
		case types.ActionHold:
			confidence *= 1 - holdPenalty
		}
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence, riskLevel(confidence)
}

// baseConfidence averages the validator confidences of fields present in
// the request. An empty result set means nothing was checked and nothing
// failed: full confidence.
func baseConfidence(results types.ValidationResults) float64 {
	if len(results) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, res := range results {
		sum += res.Confidence
	}
	return sum / float64(len(results))
}

// riskLevel buckets confidence with fixed thresholds.
func riskLevel(confidence float64) types.RiskLevel {
	switch {
	case confidence >= riskLowFloor:
		return types.RiskLow
	case confidence >= riskMediumFloor:
		return types.RiskMedium
	case confidence >= riskHighFloor:
		return types.RiskHigh
	default:
		return types.RiskCritical
	}
}

// ruleConfidence scores one triggered rule from its matched-leaf fraction
// and the validator confidences of the fields involved in the match.
// More corroborating leaves raise the score; shakier field validations
// (lower validator confidence) also raise it, because the rule's finding
// agrees with the validator's doubt. Capped at 1.0.
func ruleConfidence(stats leafStats, totalLeaves int, results types.ValidationResults) float64 {
	if totalLeaves < 1 {
		totalLeaves = 1
	}
	fraction := float64(stats.matched) / float64(totalLeaves)

	fieldConf := 0.5
	n := 0
	sum := 0.0
	for _, field := range stats.fields {
		if res, ok := results[field]; ok {
			sum += res.Confidence
			n++
		}
	}
	if n > 0 {
		fieldConf = sum / float64(n)
	}

	score := 0.6 + 0.3*fraction + 0.1*(1-fieldConf)
	if score > 1 {
		score = 1
	}
	return score
}

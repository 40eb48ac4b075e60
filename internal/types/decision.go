package types

/*
 * Evaluation output types.
 *
 * RuleEvaluation is the per-rule trace record for one request. FinalDecision
 * is the single resolved outcome after severity/priority conflict resolution
 * and confidence aggregation. Confidence is reported on the 0..1 scale
 * everywhere in the API.
 */

// RiskLevel buckets the aggregate confidence into a coarse classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RuleEvaluation records the outcome of running one rule against one request.
// ConfidenceScore is only present when the rule triggered.
type RuleEvaluation struct {
	RuleID           string   `json:"rule_id"`
	RuleName         string   `json:"rule_name"`
	Triggered        bool     `json:"triggered"`
	Action           Action   `json:"action"`
	Priority         int      `json:"priority"`
	ConfidenceScore  *float64 `json:"confidence_score,omitempty"`
	EvaluationTimeMs float64  `json:"evaluation_time_ms"`
	Reason           string   `json:"reason,omitempty"`
}

// FinalDecision is the resolved outcome for one request. TriggeredBy and
// ReasonCode identify the winning rule when any rule triggered.
type FinalDecision struct {
	Action      Action    `json:"action"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Confidence  float64   `json:"confidence"`
	TriggeredBy string    `json:"triggered_by,omitempty"`
	ReasonCode  string    `json:"reason_code,omitempty"`
	Message     string    `json:"message,omitempty"`
}

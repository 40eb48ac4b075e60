package types

import "encoding/json"

/*
 * Domain types for rule registration.
 *
 * A RuleDraft is the wire form a tenant submits. Exactly one condition form
 * must be present: Condition (structured {field: {operator: value}} tree with
 * and/or combinators) or Expression (free-form boolean expression). Both
 * compile to the same internal tree in internal/engine.
 *
 * Actions are an open JSON object on the wire ({"block": true,
 * "reason_code": "..."}) and a closed tagged variant (RuleActions) once
 * validated, so the decision resolver can match exhaustively.
 */

// Action is the primary outcome a rule requests when it triggers.
type Action string

const (
	ActionApprove Action = "approve"
	ActionHold    Action = "hold"
	ActionBlock   Action = "block"
)

// Severity returns the conflict-resolution tier for the action.
// Block always outranks hold, which outranks approve, regardless of the
// numeric priority of the rules involved.
func (a Action) Severity() int {
	switch a {
	case ActionBlock:
		return 3
	case ActionHold:
		return 2
	case ActionApprove:
		return 1
	default:
		return 0
	}
}

// RuleDraft is a rule as submitted for registration.
type RuleDraft struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Enabled     *bool           `json:"enabled,omitempty"`  // nil = true
	Priority    *int            `json:"priority,omitempty"` // nil = DefaultPriority
	Condition   json.RawMessage `json:"condition,omitempty"`
	Expression  string          `json:"expression,omitempty"`
	Actions     map[string]any  `json:"actions"`
}

// DefaultPriority applies when a draft omits priority. Zero sits below every
// explicitly prioritized rule (builtin priorities start at 10).
const DefaultPriority = 0

// RuleActions is the validated form of a draft's actions object. Exactly one
// primary action is set; ReasonCode and PriorityBoost are optional
// side-effects.
type RuleActions struct {
	Action        Action `json:"action"`
	ReasonCode    string `json:"reason_code,omitempty"`
	PriorityBoost int    `json:"priority_boost,omitempty"`
}

// RuleInfo is the read-model returned by rule listing.
type RuleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Enabled     bool   `json:"enabled"`
	Priority    int    `json:"priority"`
	Builtin     bool   `json:"builtin"`
}

// StoredRule is the persisted form of an accepted custom rule. The original
// authoring form is kept verbatim (structured condition or expression) so a
// reload compiles through the exact same path as registration.
type StoredRule struct {
	TenantID    string          `json:"tenant_id"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Enabled     bool            `json:"enabled"`
	Priority    int             `json:"priority"`
	Condition   json.RawMessage `json:"condition,omitempty"`
	Expression  string          `json:"expression,omitempty"`
	Actions     RuleActions     `json:"actions"`
}

// Package types provides domain models shared across riskgate components.
//
// Zero-dependency design: types.go, rules.go, decision.go and errors.go use
// only the standard library so embedding SDKs stay small. ID utilities in
// ids.go import uuid but are isolated for selective inclusion.
package types

// Payload is the raw request payload the engine evaluates. All fields are
// optional; absent fields simply never match rule predicates.
type Payload struct {
	Email             string         `json:"email,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	Name              string         `json:"name,omitempty"`
	IP                string         `json:"ip,omitempty"`
	UserAgent         string         `json:"user_agent,omitempty"`
	TransactionAmount *float64       `json:"transaction_amount,omitempty"`
	Currency          string         `json:"currency,omitempty"`
	PaymentMethod     string         `json:"payment_method,omitempty"`
	Address           map[string]any `json:"address,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// ValidationResult is the externally computed outcome for one payload field.
// The engine consumes these as input; it never performs field validation
// itself. Facts carry structured findings such as "disposable", "po_box",
// "free_provider" or "country" and are merged into the evaluation context
// under the field's key.
type ValidationResult struct {
	Valid      bool           `json:"valid"`
	Confidence float64        `json:"confidence"`
	Facts      map[string]any `json:"facts,omitempty"`
}

// ValidationResults maps a payload field name ("email", "phone", "address",
// "name", "ip") to its externally computed result.
type ValidationResults map[string]ValidationResult

// Resource limits enforced at rule registration to keep evaluation cost
// bounded regardless of what tenants register.
const (
	// MaxConditionDepth prevents stack exhaustion during recursive
	// condition evaluation. 16 levels handles any realistic policy tree.
	MaxConditionDepth = 16

	// MaxInOperatorValues limits IN membership lists. 64 values covers
	// enum-style checks (country lists, currency allowlists) without
	// degrading evaluation to large linear scans.
	MaxInOperatorValues = 64

	// MaxFieldPathDepth limits dotted field paths. Payloads nest at most a
	// few levels (address.line1, metadata.order.sku); 8 is generous.
	MaxFieldPathDepth = 8

	// MaxRuleBatchSize caps a single registration batch. Registration is
	// atomic, so the whole batch is validated and compiled up front.
	MaxRuleBatchSize = 256

	// MaxExpressionLength caps free-form condition expressions.
	MaxExpressionLength = 4096
)

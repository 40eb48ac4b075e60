// Package catalog holds the static reason-code and error-code tables.
//
// Reason codes annotate triggered rule evaluations and final decisions;
// error codes classify registration rejections. Both are served verbatim by
// the listing endpoints. Tables are package-level constants in effect:
// accessors return copies so callers cannot mutate the catalog.
package catalog

// Severity classifies how strongly a code should weigh in review queues.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Code is one catalog entry.
type Code struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
}

var reasonCodes = []Code{
	{"EMAIL_DISPOSABLE", "Email address uses a disposable domain", "email", SeverityHigh},
	{"EMAIL_INVALID", "Email address failed validation", "email", SeverityMedium},
	{"EMAIL_FREE_PROVIDER", "Email address uses a free provider", "email", SeverityLow},
	{"PHONE_INVALID_FORMAT", "Phone number failed format validation", "phone", SeverityMedium},
	{"PHONE_UNSUPPORTED_COUNTRY", "Phone number belongs to an unsupported country", "phone", SeverityMedium},
	{"ADDRESS_PO_BOX", "Address resolves to a PO box", "address", SeverityHigh},
	{"ADDRESS_UNDELIVERABLE", "Address is not deliverable", "address", SeverityMedium},
	{"IP_BLOCKLISTED", "IP address is on a blocklist", "general", SeverityHigh},
	{"ORDER_HIGH_AMOUNT", "Transaction amount exceeds the review threshold", "order", SeverityMedium},
	{"MANUAL_REVIEW", "Flagged for manual review by a custom rule", "general", SeverityLow},
	{"CUSTOM_RULE", "Triggered by a tenant-registered rule", "general", SeverityLow},
}

var errorCodes = []Code{
	{"EMPTY_RULE_BATCH", "Registration request contained no rules", "registration", SeverityLow},
	{"BATCH_TOO_LARGE", "Registration batch exceeds the maximum size", "registration", SeverityLow},
	{"MISSING_REQUIRED_FIELD", "Rule is missing id, name, category or actions", "registration", SeverityMedium},
	{"DUPLICATE_RULE_ID", "Rule id collides within the batch or with an existing rule", "registration", SeverityMedium},
	{"INVALID_ACTIONS", "Rule must carry exactly one of approve, hold, block", "registration", SeverityMedium},
	{"MISSING_CONDITION", "Rule has neither a condition nor an expression", "registration", SeverityMedium},
	{"AMBIGUOUS_CONDITION", "Rule carries both a condition and an expression", "registration", SeverityMedium},
	{"INVALID_CONDITION", "Structured condition failed to compile", "registration", SeverityMedium},
	{"UNKNOWN_OPERATOR", "Condition uses an unsupported operator", "registration", SeverityMedium},
	{"CONDITION_TOO_DEEP", "Condition nesting exceeds the maximum depth", "registration", SeverityLow},
	{"TOO_MANY_IN_VALUES", "IN operator list exceeds the maximum size", "registration", SeverityLow},
	{"INTERNAL_ERROR", "Unexpected internal failure", "internal", SeverityHigh},
}

// ReasonCodes returns a copy of the reason-code table.
func ReasonCodes() []Code {
	out := make([]Code, len(reasonCodes))
	copy(out, reasonCodes)
	return out
}

// ErrorCodes returns a copy of the error-code table.
func ErrorCodes() []Code {
	out := make([]Code, len(errorCodes))
	copy(out, errorCodes)
	return out
}

// ReasonDescription looks up the human description for a reason code.
func ReasonDescription(code string) (string, bool) {
	for _, c := range reasonCodes {
		if c.Code == code {
			return c.Description, true
		}
	}
	return "", false
}

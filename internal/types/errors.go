package types

import "errors"

// Sentinel errors for riskgate operations. Registration errors are
// caller-fault (400-class); evaluation never surfaces per-rule errors.
var (
	// ErrEmptyRuleBatch indicates a registration request with no rules.
	ErrEmptyRuleBatch = errors.New("rule batch is empty")

	// ErrBatchTooLarge indicates a batch exceeds MaxRuleBatchSize.
	ErrBatchTooLarge = errors.New("rule batch exceeds maximum size")

	// ErrMissingRuleField indicates a draft lacks id, name, category or actions.
	ErrMissingRuleField = errors.New("rule is missing a required field")

	// ErrDuplicateRuleID indicates an id collision within a batch or
	// against already registered rules.
	ErrDuplicateRuleID = errors.New("duplicate rule id")

	// ErrInvalidActions indicates zero or more than one primary action.
	ErrInvalidActions = errors.New("rule must carry exactly one of approve, hold, block")

	// ErrMissingCondition indicates a draft with neither a structured
	// condition nor an expression.
	ErrMissingCondition = errors.New("rule has no condition")

	// ErrAmbiguousCondition indicates a draft carrying both forms.
	ErrAmbiguousCondition = errors.New("rule carries both condition and expression")

	// ErrInvalidCondition indicates a structured condition that failed to
	// compile. Free-form expressions never produce this at registration;
	// they degrade to non-matching instead.
	ErrInvalidCondition = errors.New("invalid rule condition")

	// ErrUnknownOperator indicates a structured leaf using an operator
	// outside the supported set.
	ErrUnknownOperator = errors.New("unknown condition operator")

	// ErrConditionTooDeep indicates nesting beyond MaxConditionDepth.
	ErrConditionTooDeep = errors.New("condition exceeds maximum depth")

	// ErrFieldPathTooDeep indicates a dotted path beyond MaxFieldPathDepth.
	ErrFieldPathTooDeep = errors.New("field path exceeds maximum depth")

	// ErrTooManyInValues indicates an IN list beyond MaxInOperatorValues.
	ErrTooManyInValues = errors.New("IN operator has too many values")

	// ErrExpressionTooLong indicates an expression beyond MaxExpressionLength.
	ErrExpressionTooLong = errors.New("expression exceeds maximum length")

	// ErrUnknownTenant indicates a read against a tenant the registry has
	// never seen. Listing treats this as an empty custom set, not an error;
	// the sentinel exists for store implementations.
	ErrUnknownTenant = errors.New("unknown tenant")
)

// IsRegistrationError reports whether err belongs to the caller-fault
// registration taxonomy. The API layer maps these to 400-class responses.
func IsRegistrationError(err error) bool {
	for _, sentinel := range []error{
		ErrEmptyRuleBatch,
		ErrBatchTooLarge,
		ErrMissingRuleField,
		ErrDuplicateRuleID,
		ErrInvalidActions,
		ErrMissingCondition,
		ErrAmbiguousCondition,
		ErrInvalidCondition,
		ErrUnknownOperator,
		ErrConditionTooDeep,
		ErrFieldPathTooDeep,
		ErrTooManyInValues,
		ErrExpressionTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

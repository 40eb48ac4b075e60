// internal/engine/operators.go
package engine

import (
	"strings"
)

/*
 * Operator comparison logic.
 *
 * Values arrive straight from JSON unmarshaling, so numeric comparison has
 * to tolerate float64/int/int64 mixing. Ordering operators are numeric only
 * and evaluate to false (never an error) when either operand is non-numeric.
 * String comparison is case-sensitive; the single documented exception
 * (domain names) is normalized during context construction and leaf
 * evaluation, not here.
 *
 * Why function-based: ten operators via switch are clearer than ten
 * interface implementations with near-identical shape.
 */

// compare applies op to (value, target). target is the IN value list for
// OpIn. Incomparable operands yield false.
func compare(op Operator, value, target any) bool {
	switch op {
	case OpEq:
		return compareEqual(value, target)
	case OpNeq:
		return !compareEqual(value, target)
	case OpGt:
		return compareOrdered(value, target, func(a, b float64) bool { return a > b })
	case OpGte:
		return compareOrdered(value, target, func(a, b float64) bool { return a >= b })
	case OpLt:
		return compareOrdered(value, target, func(a, b float64) bool { return a < b })
	case OpLte:
		return compareOrdered(value, target, func(a, b float64) bool { return a <= b })
	case OpIn:
		return compareIn(value, target)
	case OpPrefix:
		return compareString(value, target, strings.HasPrefix)
	case OpSuffix:
		return compareString(value, target, strings.HasSuffix)
	case OpContains:
		return compareString(value, target, strings.Contains)
	default:
		return false
	}
}

// compareEqual performs same-type strict comparison with numeric mixing.
// float64(5) equals int(5); "5" never equals 5.
func compareEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	return a == b
}

// compareOrdered applies a numeric ordering. Non-numeric operands are false,
// not an error: ordering a string is a rule-quality issue, never a request
// failure.
func compareOrdered(a, b any, cmp func(a, b float64) bool) bool {
	na, nb, ok := asNumbers(a, b)
	if !ok {
		return false
	}
	return cmp(na, nb)
}

// compareIn checks case-sensitive membership using equality semantics.
func compareIn(value, set any) bool {
	values, ok := set.([]any)
	if !ok {
		return false
	}
	for _, elem := range values {
		if compareEqual(value, elem) {
			return true
		}
	}
	return false
}

// compareString applies a string predicate; non-string operands are false.
func compareString(value, target any, pred func(s, substr string) bool) bool {
	vs, ok1 := value.(string)
	ts, ok2 := target.(string)
	if !ok1 || !ok2 {
		return false
	}
	return pred(vs, ts)
}

// asNumbers converts both values to float64 when both are numeric.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 handles float64, int and int64 from JSON unmarshaling and Go
// literals in builtin rules.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

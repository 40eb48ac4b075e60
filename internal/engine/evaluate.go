// internal/engine/evaluate.go
package engine

import (
	"strings"
)

/*
 * Condition tree evaluation.
 *
 * Walks a compiled Node tree against an evaluation context and returns a
 * boolean plus per-leaf match statistics (which leaves matched and which
 * top-level fields corroborated the match) for confidence scoring.
 *
 * Short-circuit semantics: AND stops at the first false child, OR at the
 * first true child. Leaves over missing fields are false, never an error.
 * Evaluation is side-effect free and safe for unlimited concurrent use
 * against immutable trees.
 */

// leafStats accumulates match diagnostics during one tree walk.
// matched counts leaf predicates that evaluated true; fields records the
// top-level context field of each matched leaf (deduplicated).
type leafStats struct {
	matched int
	fields  []string
}

func (s *leafStats) record(path []string) {
	s.matched++
	field := path[0]
	for _, f := range s.fields {
		if f == field {
			return
		}
	}
	s.fields = append(s.fields, field)
}

// evalCondition evaluates a compiled condition against ctx.
// A nil tree (degraded rule) never matches.
func evalCondition(node *Node, ctx map[string]any) (bool, leafStats) {
	var stats leafStats
	if node == nil {
		return false, stats
	}
	matched := evalNode(node, ctx, &stats)
	return matched, stats
}

func evalNode(node *Node, ctx map[string]any, stats *leafStats) bool {
	switch node.Kind {
	case NodeAnd:
		for _, child := range node.Children {
			if !evalNode(child, ctx, stats) {
				return false
			}
		}
		return true

	case NodeOr:
		for _, child := range node.Children {
			if evalNode(child, ctx, stats) {
				return true
			}
		}
		return false

	default:
		return evalLeaf(node, ctx, stats)
	}
}

// evalLeaf resolves the leaf's field path and applies its operator.
// Missing path means false. Domain-valued fields compare case-insensitively
// per the field contract, so both sides are lowercased for those leaves.
func evalLeaf(leaf *Node, ctx map[string]any, stats *leafStats) bool {
	value, found := resolvePath(leaf.Path, ctx)
	if !found {
		return false
	}

	target := leaf.Value
	values := leaf.Values
	if domainPath(leaf.Path) {
		value = lowerIfString(value)
		target = lowerIfString(target)
		if values != nil {
			lowered := make([]any, len(values))
			for i, v := range values {
				lowered[i] = lowerIfString(v)
			}
			values = lowered
		}
	}

	var matched bool
	if leaf.Op == OpIn {
		matched = compare(OpIn, value, values)
	} else {
		matched = compare(leaf.Op, value, target)
	}
	if matched {
		stats.record(leaf.Path)
	}
	return matched
}

// domainPath reports whether a leaf addresses a domain-valued field.
func domainPath(path []string) bool {
	return path[len(path)-1] == "domain"
}

func lowerIfString(v any) any {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}

// internal/engine/fieldpath.go
package engine

/*
 * Field path resolution over the evaluation context.
 *
 * The context is a nested map built by BuildContext (payload fields merged
 * with validation results). Paths are dotted key chains; resolution walks
 * maps only. Any miss -- absent key, scalar in an intermediate position,
 * nil subtree -- reports not-found rather than an error, because a predicate
 * over a missing field must evaluate to false, never fail the rule.
 */

// resolvePath walks ctx following path segments.
// Returns (value, true) when the full path resolves, (nil, false) otherwise.
func resolvePath(path []string, ctx map[string]any) (any, bool) {
	var current any = ctx
	for _, seg := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// internal/engine/condition.go
package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/riskgate/riskgate/internal/types"
)

/*
 * Condition model and structured-form compilation.
 *
 * A condition is a tagged tree: combinator nodes (AND/OR) over children, or
 * leaf predicates {field path, operator, value}. Two authoring forms compile
 * into this one tree:
 *
 *   structured: {"and": [{"email.disposable": true},
 *                        {"transaction_amount": {"gte": 1000}}]}
 *   expression: "email.disposable == true && transaction_amount >= 1000"
 *
 * Structured compilation is strict: unknown operators, malformed shapes and
 * limit violations are rejected so registration can fail fast. Expression
 * compilation lives in exprparse.go and degrades instead of rejecting.
 *
 * Compiled trees are immutable after compilation and safe for unlimited
 * concurrent evaluation.
 */

// Operator identifies a leaf predicate comparison.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpIn
	OpGt
	OpGte
	OpLt
	OpLte
	OpPrefix
	OpSuffix
	OpContains
)

// operatorNames maps structured-form operator keys to Operator values.
// "eq" is accepted explicitly even though scalar values imply it.
var operatorNames = map[string]Operator{
	"eq":       OpEq,
	"neq":      OpNeq,
	"in":       OpIn,
	"gt":       OpGt,
	"gte":      OpGte,
	"lt":       OpLt,
	"lte":      OpLte,
	"prefix":   OpPrefix,
	"suffix":   OpSuffix,
	"contains": OpContains,
}

// NodeKind discriminates condition tree nodes.
type NodeKind int

const (
	NodeLeaf NodeKind = iota
	NodeAnd
	NodeOr
)

// Node is one node of a compiled condition tree. Combinator nodes use
// Children; leaf nodes use Path/Op/Value (Values for IN).
type Node struct {
	Kind     NodeKind
	Children []*Node
	Path     []string
	Op       Operator
	Value    any
	Values   []any
}

// LeafCount returns the number of leaf predicates under n.
func (n *Node) LeafCount() int {
	if n == nil {
		return 0
	}
	if n.Kind == NodeLeaf {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += c.LeafCount()
	}
	return total
}

// CompiledRule is a fully validated rule ready for evaluation. Cond is nil
// for degraded rules (free-form expression that failed to parse); a nil
// condition never matches.
type CompiledRule struct {
	ID            string
	Name          string
	Description   string
	Category      string
	TenantID      string // empty for builtins
	Enabled       bool
	Priority      int
	Seq           int // registration order, stable tie-break
	Action        types.Action
	ReasonCode    string
	PriorityBoost int
	Builtin       bool
	Cond          *Node
	Leaves        int // cached Cond.LeafCount()
}

// EffectivePriority is the priority used for conflict resolution within a
// severity tier. PriorityBoost only applies when the rule triggered, which
// is the only context the resolver sees.
func (r *CompiledRule) EffectivePriority() int {
	return r.Priority + r.PriorityBoost
}

// CompileCondition compiles the structured JSON form into a condition tree.
// Strict: any malformed shape, unknown operator or limit violation is an
// error so registration can reject the batch.
func CompileCondition(raw json.RawMessage) (*Node, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidCondition, err)
	}
	return compileNode(v, 1)
}

// compileNode compiles one structured node. A map with a single "and"/"or"
// key is a combinator; any other map is a set of leaf predicates joined by
// an implicit AND.
func compileNode(v any, depth int) (*Node, error) {
	if depth > types.MaxConditionDepth {
		return nil, types.ErrConditionTooDeep
	}

	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, fmt.Errorf("%w: condition node must be a non-empty object", types.ErrInvalidCondition)
	}

	if kind, children, ok := combinator(m); ok {
		if len(m) != 1 {
			return nil, fmt.Errorf("%w: combinator must be the only key", types.ErrInvalidCondition)
		}
		node := &Node{Kind: kind}
		for _, child := range children {
			cc, err := compileNode(child, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, cc)
		}
		if len(node.Children) == 0 {
			return nil, fmt.Errorf("%w: combinator has no children", types.ErrInvalidCondition)
		}
		return node, nil
	}

	// Leaf map: deterministic compile order for multi-key predicates.
	leaves := make([]*Node, 0, len(m))
	for _, field := range sortedKeys(m) {
		compiled, err := compileLeaf(field, m[field])
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, compiled...)
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return &Node{Kind: NodeAnd, Children: leaves}, nil
}

// combinator detects an "and"/"or" key (case-insensitive) in a node map.
func combinator(m map[string]any) (NodeKind, []any, bool) {
	for k, v := range m {
		var kind NodeKind
		switch strings.ToLower(k) {
		case "and":
			kind = NodeAnd
		case "or":
			kind = NodeOr
		default:
			continue
		}
		children, ok := v.([]any)
		if !ok {
			return 0, nil, false
		}
		return kind, children, true
	}
	return 0, nil, false
}

// compileLeaf compiles one field's predicate value. Scalars imply equality;
// an object maps operator keys to comparison values. Multiple operator keys
// on one field expand into multiple AND-ed leaves.
func compileLeaf(field string, value any) ([]*Node, error) {
	path, err := parseFieldPath(field)
	if err != nil {
		return nil, err
	}

	spec, ok := value.(map[string]any)
	if !ok {
		if _, isArray := value.([]any); isArray {
			return nil, fmt.Errorf("%w: array value for %q requires the \"in\" operator", types.ErrInvalidCondition, field)
		}
		return []*Node{{Kind: NodeLeaf, Path: path, Op: OpEq, Value: value}}, nil
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("%w: empty operator object for %q", types.ErrInvalidCondition, field)
	}

	leaves := make([]*Node, 0, len(spec))
	for _, opName := range sortedKeys(spec) {
		op, ok := operatorNames[strings.ToLower(opName)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownOperator, opName)
		}
		leaf := &Node{Kind: NodeLeaf, Path: path, Op: op}
		if op == OpIn {
			values, ok := spec[opName].([]any)
			if !ok {
				return nil, fmt.Errorf("%w: \"in\" requires a list for %q", types.ErrInvalidCondition, field)
			}
			if len(values) > types.MaxInOperatorValues {
				return nil, types.ErrTooManyInValues
			}
			leaf.Values = values
		} else {
			leaf.Value = spec[opName]
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

// parseFieldPath splits a dotted path and validates segments and depth.
func parseFieldPath(field string) ([]string, error) {
	segments := strings.Split(field, ".")
	if len(segments) > types.MaxFieldPathDepth {
		return nil, types.ErrFieldPathTooDeep
	}
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty path segment in %q", types.ErrInvalidCondition, field)
		}
	}
	return segments, nil
}

// sortedKeys returns map keys in lexical order for deterministic compilation.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// internal/engine/condition_test.go
package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/riskgate/riskgate/internal/types"
)

func TestCompileCondition_ImplicitEquality(t *testing.T) {
	node, err := CompileCondition(json.RawMessage(`{"email.disposable": true}`))
	if err != nil {
		t.Fatalf("CompileCondition() error = %v, want nil", err)
	}
	if node.Kind != NodeLeaf {
		t.Fatalf("Kind = %v, want NodeLeaf", node.Kind)
	}
	if node.Op != OpEq {
		t.Errorf("Op = %v, want OpEq", node.Op)
	}
	if len(node.Path) != 2 || node.Path[0] != "email" || node.Path[1] != "disposable" {
		t.Errorf("Path = %v, want [email disposable]", node.Path)
	}
	if node.Value != true {
		t.Errorf("Value = %v, want true", node.Value)
	}
}

func TestCompileCondition_OperatorObject(t *testing.T) {
	node, err := CompileCondition(json.RawMessage(`{"transaction_amount": {"gte": 1000}}`))
	if err != nil {
		t.Fatalf("CompileCondition() error = %v, want nil", err)
	}
	if node.Op != OpGte {
		t.Errorf("Op = %v, want OpGte", node.Op)
	}
	if node.Value != float64(1000) {
		t.Errorf("Value = %v, want 1000", node.Value)
	}
}

func TestCompileCondition_Combinators(t *testing.T) {
	raw := `{"and": [
		{"email.disposable": true},
		{"or": [
			{"transaction_amount": {"gte": 1000}},
			{"currency": {"in": ["USD", "EUR"]}}
		]}
	]}`
	node, err := CompileCondition(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("CompileCondition() error = %v, want nil", err)
	}
	if node.Kind != NodeAnd {
		t.Fatalf("Kind = %v, want NodeAnd", node.Kind)
	}
	if len(node.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(node.Children))
	}
	if node.Children[1].Kind != NodeOr {
		t.Errorf("Children[1].Kind = %v, want NodeOr", node.Children[1].Kind)
	}
	if got := node.LeafCount(); got != 3 {
		t.Errorf("LeafCount() = %d, want 3", got)
	}
}

func TestCompileCondition_MultiKeyLeafIsAND(t *testing.T) {
	node, err := CompileCondition(json.RawMessage(`{"email.disposable": true, "email.free_provider": true}`))
	if err != nil {
		t.Fatalf("CompileCondition() error = %v, want nil", err)
	}
	if node.Kind != NodeAnd {
		t.Fatalf("Kind = %v, want NodeAnd", node.Kind)
	}
	if len(node.Children) != 2 {
		t.Errorf("len(Children) = %d, want 2", len(node.Children))
	}
}

func TestCompileCondition_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"invalid JSON", `{`, types.ErrInvalidCondition},
		{"empty object", `{}`, types.ErrInvalidCondition},
		{"non-object", `42`, types.ErrInvalidCondition},
		{"unknown operator", `{"email.domain": {"matches": ".*"}}`, types.ErrUnknownOperator},
		{"array without in", `{"currency": ["USD"]}`, types.ErrInvalidCondition},
		{"in without list", `{"currency": {"in": "USD"}}`, types.ErrInvalidCondition},
		{"empty path segment", `{"email..domain": true}`, types.ErrInvalidCondition},
		{"empty combinator", `{"and": []}`, types.ErrInvalidCondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileCondition(json.RawMessage(tt.raw))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CompileCondition() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompileCondition_TooManyInValues(t *testing.T) {
	values := make([]string, types.MaxInOperatorValues+1)
	for i := range values {
		values[i] = `"x"`
	}
	raw := `{"currency": {"in": [` + strings.Join(values, ",") + `]}}`
	_, err := CompileCondition(json.RawMessage(raw))
	if !errors.Is(err, types.ErrTooManyInValues) {
		t.Errorf("CompileCondition() error = %v, want ErrTooManyInValues", err)
	}
}

func TestCompileCondition_TooDeep(t *testing.T) {
	raw := `{"email.disposable": true}`
	for i := 0; i <= types.MaxConditionDepth; i++ {
		raw = `{"and": [` + raw + `]}`
	}
	_, err := CompileCondition(json.RawMessage(raw))
	if !errors.Is(err, types.ErrConditionTooDeep) {
		t.Errorf("CompileCondition() error = %v, want ErrConditionTooDeep", err)
	}
}

func TestCompileCondition_FieldPathTooDeep(t *testing.T) {
	raw := `{"` + strings.Repeat("a.", types.MaxFieldPathDepth) + `b": 1}`
	_, err := CompileCondition(json.RawMessage(raw))
	if !errors.Is(err, types.ErrFieldPathTooDeep) {
		t.Errorf("CompileCondition() error = %v, want ErrFieldPathTooDeep", err)
	}
}

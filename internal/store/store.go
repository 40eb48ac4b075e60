// Package store persists tenant-registered rules.
//
// The registry is write-through: an accepted batch is persisted before the
// in-memory snapshot is swapped, and persisted rules are reloaded into
// snapshots at startup. Rules are stored in their original authoring form
// (structured condition JSON or free-form expression) so a reload compiles
// through the exact same path as registration, including degradation of
// unparsable expressions.
//
// Two implementations: Memory for tests and storeless deployments, SQL
// (sqlx + embedded named queries) for sqlite and postgres.
package store

import (
	"context"
	"sync"

	"github.com/riskgate/riskgate/internal/types"
)

// RuleStore persists accepted custom rules.
type RuleStore interface {
	// SaveRules persists a registration batch atomically. The registry has
	// already validated the batch; a failure here aborts the registration.
	SaveRules(ctx context.Context, tenantID string, rules []types.StoredRule) error

	// LoadAll returns every persisted rule across tenants in registration
	// order. Used once at startup to rebuild snapshots.
	LoadAll(ctx context.Context) ([]types.StoredRule, error)
}

// Memory is an in-process RuleStore. Insertion order is preserved, which is
// what gives reloads a stable registration order.
type Memory struct {
	mu    sync.Mutex
	rules []types.StoredRule
}

// NewMemory creates an empty in-memory rule store.
func NewMemory() *Memory {
	return &Memory{}
}

// SaveRules appends the batch under the lock; the whole batch is applied or
// none of it (append cannot partially fail).
func (m *Memory) SaveRules(_ context.Context, tenantID string, rules []types.StoredRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rules {
		r.TenantID = tenantID
		m.rules = append(m.rules, r)
	}
	return nil
}

// LoadAll returns a copy of all stored rules in insertion order.
func (m *Memory) LoadAll(_ context.Context) ([]types.StoredRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.StoredRule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

// Package registry holds the active rule set.
//
// Readers (the evaluator) get an immutable snapshot; registration is the
// only mutation and replaces the snapshot wholesale under a writer lock
// (copy-on-write pointer swap). Concurrent evaluations therefore observe
// either the pre-registration or post-registration rule set, never a
// partial one, without taking any lock.
//
// State is tenant-scoped: every tenant sees the global builtins plus its own
// custom rules, and never another tenant's. Registration validates the whole
// batch before committing anything -- an internal duplicate, a collision
// with an existing rule or a structurally invalid draft rejects the batch
// with nothing applied.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/riskgate/riskgate/internal/engine"
	"github.com/riskgate/riskgate/internal/store"
	"github.com/riskgate/riskgate/internal/types"
)

// Registry manages builtin and tenant-registered rules.
type Registry struct {
	store    store.RuleStore
	logger   *zap.Logger
	builtins []*engine.CompiledRule

	mu   sync.Mutex // serializes registration; readers never take it
	snap atomic.Pointer[snapshot]
}

// snapshot is an immutable view of all custom rules. Replaced wholesale on
// every successful registration.
type snapshot struct {
	custom  map[string][]*engine.CompiledRule // tenant -> rules in seq order
	nextSeq int
}

// New creates a registry seeded with the builtin rule set. st may be nil for
// storeless operation (rules live only in memory).
func New(st store.RuleStore, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	builtins := Builtins()
	r := &Registry{
		store:    st,
		logger:   logger,
		builtins: builtins,
	}
	r.snap.Store(&snapshot{
		custom:  map[string][]*engine.CompiledRule{},
		nextSeq: len(builtins),
	})
	return r
}

// LoadPersisted rebuilds tenant snapshots from the store. Called once at
// startup, before the registry serves reads. Rules that no longer compile
// degrade exactly as they would at registration.
func (r *Registry) LoadPersisted(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	stored, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted rules: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.snap.Load()
	next := &snapshot{
		custom:  map[string][]*engine.CompiledRule{},
		nextSeq: snap.nextSeq,
	}
	for _, sr := range stored {
		compiled := r.compileStored(sr, next.nextSeq)
		next.nextSeq++
		next.custom[sr.TenantID] = append(next.custom[sr.TenantID], compiled)
	}
	r.snap.Store(next)

	r.logger.Info("loaded persisted rules",
		zap.Int("rules", len(stored)),
		zap.Int("tenants", len(next.custom)))
	return nil
}

// Register validates, compiles, persists and activates a batch of rules for
// one tenant. Any structural problem or id collision rejects the whole
// batch; nothing is partially applied.
func (r *Registry) Register(ctx context.Context, tenantID string, drafts []types.RuleDraft) error {
	if len(drafts) == 0 {
		return types.ErrEmptyRuleBatch
	}
	if len(drafts) > types.MaxRuleBatchSize {
		return types.ErrBatchTooLarge
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.snap.Load()

	taken := make(map[string]bool)
	for _, b := range r.builtins {
		taken[b.ID] = true
	}
	for _, existing := range snap.custom[tenantID] {
		taken[existing.ID] = true
	}

	compiled := make([]*engine.CompiledRule, 0, len(drafts))
	stored := make([]types.StoredRule, 0, len(drafts))
	seq := snap.nextSeq

	for _, draft := range drafts {
		if draft.ID == "" {
			draft.ID = types.NewRuleID()
		}
		if taken[draft.ID] {
			return fmt.Errorf("%w: %q", types.ErrDuplicateRuleID, draft.ID)
		}
		rule, storedRule, err := r.compileDraft(tenantID, draft, seq)
		if err != nil {
			return err
		}
		taken[draft.ID] = true
		seq++
		compiled = append(compiled, rule)
		stored = append(stored, storedRule)
	}

	if r.store != nil {
		if err := r.store.SaveRules(ctx, tenantID, stored); err != nil {
			return fmt.Errorf("failed to persist rule batch: %w", err)
		}
	}

	// Copy-on-write: readers keep the old snapshot until the swap.
	next := &snapshot{
		custom:  make(map[string][]*engine.CompiledRule, len(snap.custom)+1),
		nextSeq: seq,
	}
	for tenant, rules := range snap.custom {
		next.custom[tenant] = rules
	}
	merged := make([]*engine.CompiledRule, 0, len(snap.custom[tenantID])+len(compiled))
	merged = append(merged, snap.custom[tenantID]...)
	merged = append(merged, compiled...)
	next.custom[tenantID] = merged
	r.snap.Store(next)

	r.logger.Info("registered rules",
		zap.String("tenant_id", tenantID),
		zap.Int("count", len(compiled)))
	return nil
}

// SnapshotFor returns the active rules visible to a tenant (builtins plus
// the tenant's custom rules) ordered by descending priority, registration
// order breaking ties. The returned slice is freshly allocated; the rules
// it points at are immutable.
func (r *Registry) SnapshotFor(tenantID string) []*engine.CompiledRule {
	snap := r.snap.Load()
	custom := snap.custom[tenantID]

	rules := make([]*engine.CompiledRule, 0, len(r.builtins)+len(custom))
	rules = append(rules, r.builtins...)
	rules = append(rules, custom...)

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].Seq < rules[j].Seq
	})
	return rules
}

// ListRules returns the read-model for a tenant's visible rules in the same
// order as SnapshotFor.
func (r *Registry) ListRules(tenantID string) []types.RuleInfo {
	rules := r.SnapshotFor(tenantID)
	infos := make([]types.RuleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, types.RuleInfo{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			Category:    rule.Category,
			Enabled:     rule.Enabled,
			Priority:    rule.Priority,
			Builtin:     rule.Builtin,
		})
	}
	return infos
}

// compileDraft validates a draft and produces its compiled and persisted
// forms. Structural problems reject; an unparsable free-form expression
// degrades to a never-matching rule instead, per the graceful-handling
// contract for that authoring form.
func (r *Registry) compileDraft(tenantID string, draft types.RuleDraft, seq int) (*engine.CompiledRule, types.StoredRule, error) {
	if draft.Name == "" || draft.Category == "" {
		return nil, types.StoredRule{}, fmt.Errorf("%w: rule %q", types.ErrMissingRuleField, draft.ID)
	}
	actions, err := parseActions(draft.Actions)
	if err != nil {
		return nil, types.StoredRule{}, fmt.Errorf("rule %q: %w", draft.ID, err)
	}

	hasCondition := len(draft.Condition) > 0
	hasExpression := draft.Expression != ""
	if hasCondition && hasExpression {
		return nil, types.StoredRule{}, fmt.Errorf("rule %q: %w", draft.ID, types.ErrAmbiguousCondition)
	}
	if !hasCondition && !hasExpression {
		return nil, types.StoredRule{}, fmt.Errorf("rule %q: %w", draft.ID, types.ErrMissingCondition)
	}

	var cond *engine.Node
	if hasCondition {
		cond, err = engine.CompileCondition(draft.Condition)
		if err != nil {
			return nil, types.StoredRule{}, fmt.Errorf("rule %q: %w", draft.ID, err)
		}
	} else {
		cond, err = engine.ParseExpression(draft.Expression)
		if err != nil {
			// Degrade, don't reject: the rule registers but never matches.
			r.logger.Warn("expression failed to parse, rule degraded",
				zap.String("tenant_id", tenantID),
				zap.String("rule_id", draft.ID),
				zap.Error(err))
			cond = nil
		}
	}

	enabled := true
	if draft.Enabled != nil {
		enabled = *draft.Enabled
	}
	priority := types.DefaultPriority
	if draft.Priority != nil {
		priority = *draft.Priority
	}

	rule := &engine.CompiledRule{
		ID:            draft.ID,
		Name:          draft.Name,
		Description:   draft.Description,
		Category:      draft.Category,
		TenantID:      tenantID,
		Enabled:       enabled,
		Priority:      priority,
		Seq:           seq,
		Action:        actions.Action,
		ReasonCode:    actions.ReasonCode,
		PriorityBoost: actions.PriorityBoost,
		Cond:          cond,
		Leaves:        cond.LeafCount(),
	}

	storedRule := types.StoredRule{
		TenantID:    tenantID,
		ID:          draft.ID,
		Name:        draft.Name,
		Description: draft.Description,
		Category:    draft.Category,
		Enabled:     enabled,
		Priority:    priority,
		Condition:   draft.Condition,
		Expression:  draft.Expression,
		Actions:     actions,
	}
	return rule, storedRule, nil
}

// compileStored rebuilds a compiled rule from its persisted form. The rule
// was valid at registration; anything that fails now degrades rather than
// blocking startup.
func (r *Registry) compileStored(sr types.StoredRule, seq int) *engine.CompiledRule {
	var cond *engine.Node
	var err error
	if len(sr.Condition) > 0 {
		cond, err = engine.CompileCondition(sr.Condition)
	} else {
		cond, err = engine.ParseExpression(sr.Expression)
	}
	if err != nil {
		r.logger.Warn("persisted rule no longer compiles, degraded",
			zap.String("tenant_id", sr.TenantID),
			zap.String("rule_id", sr.ID),
			zap.Error(err))
		cond = nil
	}

	return &engine.CompiledRule{
		ID:            sr.ID,
		Name:          sr.Name,
		Description:   sr.Description,
		Category:      sr.Category,
		TenantID:      sr.TenantID,
		Enabled:       sr.Enabled,
		Priority:      sr.Priority,
		Seq:           seq,
		Action:        sr.Actions.Action,
		ReasonCode:    sr.Actions.ReasonCode,
		PriorityBoost: sr.Actions.PriorityBoost,
		Cond:          cond,
		Leaves:        cond.LeafCount(),
	}
}

// parseActions validates a draft's actions object into the closed variant.
// Exactly one of approve/hold/block must be present and true.
func parseActions(actions map[string]any) (types.RuleActions, error) {
	if len(actions) == 0 {
		return types.RuleActions{}, types.ErrMissingRuleField
	}

	var out types.RuleActions
	primaries := 0
	for _, primary := range []types.Action{types.ActionApprove, types.ActionHold, types.ActionBlock} {
		v, ok := actions[string(primary)]
		if !ok {
			continue
		}
		if enabled, ok := v.(bool); !ok || !enabled {
			return types.RuleActions{}, types.ErrInvalidActions
		}
		out.Action = primary
		primaries++
	}
	if primaries != 1 {
		return types.RuleActions{}, types.ErrInvalidActions
	}

	if v, ok := actions["reason_code"]; ok {
		code, ok := v.(string)
		if !ok {
			return types.RuleActions{}, types.ErrInvalidActions
		}
		out.ReasonCode = code
	}
	if v, ok := actions["priority_boost"]; ok {
		boost, ok := v.(float64)
		if !ok {
			return types.RuleActions{}, types.ErrInvalidActions
		}
		out.PriorityBoost = int(boost)
	}
	return out, nil
}

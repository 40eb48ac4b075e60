package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskgate/riskgate/internal/core/db"
	"github.com/riskgate/riskgate/internal/types"
)

func newSQLiteStore(t *testing.T) *SQL {
	t.Helper()

	database, err := db.Open("sqlite:///" + filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.MigrateUp(database))

	st, err := NewSQL(database)
	require.NoError(t, err)
	return st
}

func TestSQL_RoundTrip(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	structured := storedRule("acme", "r_structured", 10)
	expression := types.StoredRule{
		TenantID:   "acme",
		ID:         "r_expression",
		Name:       "expression rule",
		Category:   "custom",
		Enabled:    true,
		Priority:   20,
		Expression: `transaction_amount >= 1000`,
		Actions:    types.RuleActions{Action: types.ActionBlock, ReasonCode: "MANUAL_REVIEW", PriorityBoost: 5},
	}

	require.NoError(t, st.SaveRules(ctx, "acme", []types.StoredRule{structured, expression}))

	all, err := st.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "r_structured", all[0].ID)
	assert.JSONEq(t, string(structured.Condition), string(all[0].Condition))
	assert.Empty(t, all[0].Expression)

	assert.Equal(t, "r_expression", all[1].ID)
	assert.Nil(t, all[1].Condition, "expression rules persist with no condition")
	assert.Equal(t, expression.Expression, all[1].Expression)
	assert.Equal(t, types.ActionBlock, all[1].Actions.Action)
	assert.Equal(t, "MANUAL_REVIEW", all[1].Actions.ReasonCode)
	assert.Equal(t, 5, all[1].Actions.PriorityBoost)
}

func TestSQL_LoadAllPreservesRegistrationOrder(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRules(ctx, "acme", []types.StoredRule{storedRule("acme", "first", 1)}))
	require.NoError(t, st.SaveRules(ctx, "globex", []types.StoredRule{storedRule("globex", "second", 2)}))
	require.NoError(t, st.SaveRules(ctx, "acme", []types.StoredRule{storedRule("acme", "third", 3)}))

	all, err := st.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].ID)
	assert.Equal(t, "second", all[1].ID)
	assert.Equal(t, "third", all[2].ID)
}

func TestSQL_SaveRollsBackOnConstraintViolation(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRules(ctx, "acme", []types.StoredRule{storedRule("acme", "taken", 1)}))

	// Batch with a fresh rule followed by a unique-constraint violation:
	// neither row may land.
	err := st.SaveRules(ctx, "acme", []types.StoredRule{
		storedRule("acme", "fresh", 2),
		storedRule("acme", "taken", 3),
	})
	require.Error(t, err)

	all, err := st.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "taken", all[0].ID)
}

func TestSQL_SameRuleIDAcrossTenants(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRules(ctx, "acme", []types.StoredRule{storedRule("acme", "shared", 1)}))
	require.NoError(t, st.SaveRules(ctx, "globex", []types.StoredRule{storedRule("globex", "shared", 1)}))

	all, err := st.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database, err := db.Open("sqlite:///" + filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, db.MigrateUp(database))
	require.NoError(t, db.MigrateUp(database), "re-running applied migrations is a no-op")
}

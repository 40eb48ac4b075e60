package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"

	"github.com/riskgate/riskgate/internal/types"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// SQL is a RuleStore backed by sqlite or postgres through sqlx. Named
// queries are loaded from embedded .sql files; the seq column (autoincrement)
// preserves registration order across restarts.
type SQL struct {
	db  *sqlx.DB
	dot *dotsql.DotSql
}

// NewSQL loads the embedded named queries and wraps the database handle.
func NewSQL(db *sqlx.DB) (*SQL, error) {
	var combined string
	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		combined += string(content) + "\n"
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combined)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	return &SQL{db: db, dot: dot}, nil
}

// SaveRules inserts the whole batch in one transaction; any failure rolls
// the batch back so the store never holds a partial registration.
func (s *SQL) SaveRules(ctx context.Context, tenantID string, rules []types.StoredRule) error {
	insert, err := s.dot.Raw("insert-rule")
	if err != nil {
		return fmt.Errorf("missing insert-rule query: %w", err)
	}
	insert = s.db.Rebind(insert)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, r := range rules {
		var condition sql.NullString
		if len(r.Condition) > 0 {
			condition = sql.NullString{String: string(r.Condition), Valid: true}
		}
		_, err := tx.ExecContext(ctx, insert,
			tenantID, r.ID, r.Name, r.Description, r.Category,
			r.Enabled, r.Priority, condition, r.Expression,
			string(r.Actions.Action), r.Actions.ReasonCode, r.Actions.PriorityBoost,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert rule %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rule batch: %w", err)
	}
	return nil
}

// LoadAll returns every persisted rule in registration (seq) order.
func (s *SQL) LoadAll(ctx context.Context) ([]types.StoredRule, error) {
	query, err := s.dot.Raw("list-rules")
	if err != nil {
		return nil, fmt.Errorf("missing list-rules query: %w", err)
	}

	var rows []struct {
		TenantID      string         `db:"tenant_id"`
		RuleID        string         `db:"rule_id"`
		Name          string         `db:"name"`
		Description   string         `db:"description"`
		Category      string         `db:"category"`
		Enabled       bool           `db:"enabled"`
		Priority      int            `db:"priority"`
		ConditionJSON sql.NullString `db:"condition_json"`
		Expression    string         `db:"expression"`
		Action        string         `db:"action"`
		ReasonCode    string         `db:"reason_code"`
		PriorityBoost int            `db:"priority_boost"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query)); err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	rules := make([]types.StoredRule, 0, len(rows))
	for _, row := range rows {
		r := types.StoredRule{
			TenantID:    row.TenantID,
			ID:          row.RuleID,
			Name:        row.Name,
			Description: row.Description,
			Category:    row.Category,
			Enabled:     row.Enabled,
			Priority:    row.Priority,
			Expression:  row.Expression,
			Actions: types.RuleActions{
				Action:        types.Action(row.Action),
				ReasonCode:    row.ReasonCode,
				PriorityBoost: row.PriorityBoost,
			},
		}
		if row.ConditionJSON.Valid {
			r.Condition = json.RawMessage(row.ConditionJSON.String)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

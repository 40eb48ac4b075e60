package db

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	embeddedmigrations "github.com/riskgate/riskgate/migrations"
)

/*
 * Migration runner.
 *
 * Applies embedded SQL migrations in filename order, tracking applied
 * migrations with checksums in a migrations table. A checksum mismatch on an
 * already-applied migration aborts: applied migration files are immutable.
 * Each migration and its tracking record commit in one transaction so a
 * crash never leaves half-applied state.
 */

type migrationFile struct {
	ID       string
	SQL      string
	Checksum string
}

// MigrateUp runs all pending migrations against the database. The driver
// determines which embedded migration set applies (sqlite or postgres).
func MigrateUp(database *sqlx.DB) error {
	var migrationsFS embed.FS
	var dir string

	switch database.DriverName() {
	case "sqlite3":
		migrationsFS = embeddedmigrations.SqliteMigrations
		dir = "sqlite"
	case "postgres":
		migrationsFS = embeddedmigrations.PostgresMigrations
		dir = "postgres"
	default:
		return fmt.Errorf("unsupported database driver: %s", database.DriverName())
	}

	if err := createMigrationsTable(database); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := loadMigrationFiles(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := appliedMigrations(database)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}

	for _, m := range migrations {
		if checksum, ok := applied[m.ID]; ok {
			if checksum != m.Checksum {
				return fmt.Errorf("migration %s checksum mismatch (applied migrations are immutable)", m.ID)
			}
			continue
		}

		start := time.Now()
		tx, err := database.Beginx()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		record := database.Rebind(`INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)`)
		if _, err := tx.Exec(record, m.ID, m.Checksum, time.Now().UTC(), time.Since(start).Milliseconds()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}
	}

	return nil
}

func createMigrationsTable(database *sqlx.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			migration_id TEXT PRIMARY KEY,
			checksum     TEXT NOT NULL,
			applied_at   TIMESTAMP NOT NULL,
			execution_ms BIGINT NOT NULL
		)`)
	return err
}

// loadMigrationFiles reads and checksums embedded .sql files, sorted by
// filename so numeric prefixes define application order.
func loadMigrationFiles(migrationsFS embed.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, err
	}

	var migrations []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := migrationsFS.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, migrationFile{
			ID:       entry.Name(),
			SQL:      string(content),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].ID < migrations[j].ID })
	return migrations, nil
}

func appliedMigrations(database *sqlx.DB) (map[string]string, error) {
	var rows []struct {
		MigrationID string `db:"migration_id"`
		Checksum    string `db:"checksum"`
	}
	if err := database.Select(&rows, `SELECT migration_id, checksum FROM migrations`); err != nil {
		return nil, err
	}
	applied := make(map[string]string, len(rows))
	for _, row := range rows {
		applied[row.MigrationID] = row.Checksum
	}
	return applied, nil
}

// Package migrations holds the schema history and the runner that applies it.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

const ensureTableSQL = `
CREATE TABLE IF NOT EXISTS schema_revisions (
	revision VARCHAR(64) PRIMARY KEY,
	down_revision VARCHAR(64),
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Status describes one revision and whether it has been applied
type Status struct {
	Revision    string
	Description string
	Applied     bool
}

// Runner applies and reverts revisions recorded in schema_revisions
type Runner struct {
	db        *sql.DB
	revisions []Revision
}

// NewRunner creates a runner over the built-in schema history
func NewRunner(db *sql.DB) *Runner {
	return NewRunnerWithRevisions(db, Revisions())
}

// NewRunnerWithRevisions creates a runner over a custom history
func NewRunnerWithRevisions(db *sql.DB, revisions []Revision) *Runner {
	return &Runner{db: db, revisions: revisions}
}

// ValidateChain checks that revisions form one linear history from a single root
func ValidateChain(revisions []Revision) error {
	seen := make(map[string]struct{}, len(revisions))
	parent := ""
	for i, rev := range revisions {
		if rev.ID == "" {
			return fmt.Errorf("revision at position %d has no id", i)
		}
		if _, dup := seen[rev.ID]; dup {
			return fmt.Errorf("revision %s is defined twice", rev.ID)
		}
		if rev.DownRevision != parent {
			if parent == "" {
				return fmt.Errorf("root revision %s must not have a parent, got %s", rev.ID, rev.DownRevision)
			}
			return fmt.Errorf("revision %s has parent %q, expected %q", rev.ID, rev.DownRevision, parent)
		}
		seen[rev.ID] = struct{}{}
		parent = rev.ID
	}
	return nil
}

// Up applies every pending revision in order, each in its own transaction
func (r *Runner) Up(ctx context.Context) (int, error) {
	applied, err := r.prepare(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, rev := range r.revisions[len(applied):] {
		log.Info().Str("revision", rev.ID).Str("description", rev.Description).Msg("Applying revision")
		if err := r.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, rev.Up); err != nil {
				return fmt.Errorf("failed to apply revision %s: %w", rev.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_revisions (revision, down_revision) VALUES ($1, $2)`,
				rev.ID, nullIfEmpty(rev.DownRevision),
			); err != nil {
				return fmt.Errorf("failed to record revision %s: %w", rev.ID, err)
			}
			return nil
		}); err != nil {
			return count, err
		}
		count++
	}

	if count == 0 {
		log.Info().Msg("Schema is up to date")
	}
	return count, nil
}

// Down reverts the head revision. It returns the reverted id, or "" when nothing is applied.
func (r *Runner) Down(ctx context.Context) (string, error) {
	applied, err := r.prepare(ctx)
	if err != nil {
		return "", err
	}
	if len(applied) == 0 {
		log.Info().Msg("Nothing to revert")
		return "", nil
	}

	head := r.revisions[len(applied)-1]
	log.Info().Str("revision", head.ID).Msg("Reverting revision")
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, head.Down); err != nil {
			return fmt.Errorf("failed to revert revision %s: %w", head.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_revisions WHERE revision = $1`, head.ID); err != nil {
			return fmt.Errorf("failed to unrecord revision %s: %w", head.ID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return head.ID, nil
}

// Status lists every known revision with its applied flag
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	applied, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(r.revisions))
	for i, rev := range r.revisions {
		out = append(out, Status{
			Revision:    rev.ID,
			Description: rev.Description,
			Applied:     i < len(applied),
		})
	}
	return out, nil
}

// prepare validates the chain, ensures the tracking table and returns the
// applied revisions, which must be a prefix of the chain.
func (r *Runner) prepare(ctx context.Context) ([]string, error) {
	if err := ValidateChain(r.revisions); err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, ensureTableSQL); err != nil {
		return nil, fmt.Errorf("failed to ensure schema_revisions table: %w", err)
	}

	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateApplied(applied, r.revisions); err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *Runner) applied(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT revision FROM schema_revisions ORDER BY applied_at, revision`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied revisions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revisions: %w", err)
	}
	return ids, nil
}

// validateApplied requires the recorded revisions to match the head of the chain.
func validateApplied(applied []string, chain []Revision) error {
	if len(applied) > len(chain) {
		return fmt.Errorf("database records %d revisions but only %d are known", len(applied), len(chain))
	}
	set := make(map[string]struct{}, len(applied))
	for _, id := range applied {
		set[id] = struct{}{}
	}
	for i := range applied {
		if _, ok := set[chain[i].ID]; !ok {
			return fmt.Errorf("schema_revisions is out of order: expected %s to be applied", chain[i].ID)
		}
	}
	return nil
}

func (r *Runner) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

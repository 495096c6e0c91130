package history

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var schemaFiles embed.FS

// ErrSchemaTooNew is returned when the history database was written by a
// newer build than this one.
var ErrSchemaTooNew = errors.New("history schema is newer than this build")

// schemaStep is one numbered file under migrations/, e.g. 0001_runs.sql.
type schemaStep struct {
	version int
	name    string
	ddl     string
}

func schemaSteps() ([]schemaStep, error) {
	names, err := schemaFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("list history schema: %w", err)
	}
	var steps []schemaStep
	for _, entry := range names {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		prefix, _, _ := strings.Cut(entry.Name(), "_")
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("history schema file %s: name must start with a positive version", entry.Name())
		}
		ddl, err := schemaFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read history schema %s: %w", entry.Name(), err)
		}
		steps = append(steps, schemaStep{version: version, name: entry.Name(), ddl: string(ddl)})
	}
	slices.SortFunc(steps, func(a, b schemaStep) int { return a.version - b.version })
	for i := 1; i < len(steps); i++ {
		if steps[i].version == steps[i-1].version {
			return nil, fmt.Errorf("history schema version %d defined twice", steps[i].version)
		}
	}
	return steps, nil
}

// upgradeSchema brings the runs table up to the newest embedded version.
// Progress is tracked in SQLite's user_version header, so a database
// created by a newer build is refused rather than silently downgraded.
func (s *Store) upgradeSchema(ctx context.Context) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}
	latest := 0
	if len(steps) > 0 {
		latest = steps[len(steps)-1].version
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema upgrade: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read history schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("%s: database at v%d, build supports v%d: %w", s.path, current, latest, ErrSchemaTooNew)
	}
	if current == latest {
		return nil
	}

	for _, step := range steps {
		if step.version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.ddl); err != nil {
			return fmt.Errorf("apply history schema %s: %w", step.name, err)
		}
	}
	// PRAGMA arguments cannot be bound.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", latest)); err != nil {
		return fmt.Errorf("stamp history schema v%d: %w", latest, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema upgrade: %w", err)
	}
	return nil
}

// SchemaVersion reports the schema version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read history schema version: %w", err)
	}
	return version, nil
}

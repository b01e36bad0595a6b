package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/blockplan/blockplan/pkg/planner"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds SQLite store configuration.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	return &SQLiteStore{path: cfg.Path}, nil
}

// Init opens the database, enables WAL mode, and applies migrations.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return s.migrate()
}

func (s *SQLiteStore) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// SavePlan persists a computed plan and its steps in one transaction.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *planner.Plan, layoutPath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plans (id, layout_path, step_count, created_at) VALUES (?, ?, ?, ?)`,
		plan.ID, layoutPath, len(plan.Steps), plan.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	for _, step := range plan.Steps {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO plan_steps (plan_id, seq, action_id, kind, device, detail)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			plan.ID, step.Seq, step.ActionID, step.Kind, step.Device, step.Detail)
		if err != nil {
			return fmt.Errorf("failed to insert step %d: %w", step.Seq, err)
		}
	}

	return tx.Commit()
}

// GetPlan retrieves a plan and its steps by id.
func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*planner.Plan, error) {
	var (
		plan      planner.Plan
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM plans WHERE id = ?`, id).
		Scan(&plan.ID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}
	if plan.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse plan timestamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, action_id, kind, device, detail
		 FROM plan_steps WHERE plan_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var step planner.Step
		if err := rows.Scan(&step.Seq, &step.ActionID, &step.Kind, &step.Device, &step.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		plan.Steps = append(plan.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read steps: %w", err)
	}
	return &plan, nil
}

// ListPlans returns stored plan records, most recent first.
func (s *SQLiteStore) ListPlans(ctx context.Context, limit int) ([]PlanRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, layout_path, step_count, created_at
		 FROM plans ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []PlanRecord
	for rows.Next() {
		var (
			rec       PlanRecord
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.LayoutPath, &rec.StepCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan record: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse plan timestamp: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

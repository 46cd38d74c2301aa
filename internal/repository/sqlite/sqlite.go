package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/msomdec/healthyu/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// dayLayout is the storage format of calendar days.
const dayLayout = "2006-01-02"

// DB wraps the SQLite connection and hands out the repositories built on it.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// One writer at a time; PRAGMAs above apply to this connection only.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := migrations.Run(ctx, d.SqlDB)
	return err
}

// PendingMigrations lists migrations that Migrate would apply.
func (d *DB) PendingMigrations(ctx context.Context) ([]string, error) {
	return migrations.Pending(ctx, d.SqlDB)
}

// Ping checks that the database answers.
func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() *UserRepository       { return NewUserRepository(d) }
func (d *DB) Profiles() *ProfileRepository { return NewProfileRepository(d) }
func (d *DB) Plans() *PlanRepository       { return NewPlanRepository(d) }
func (d *DB) Reports() *ReportRepository   { return NewReportRepository(d) }

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

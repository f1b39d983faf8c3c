// Package store persists admin records and operator settings. SQLite is the
// default backend; postgres and mysql are supported for deployments that
// already run a database. All three allocate ids from a monotonic sequence
// that is never rewound, so a deleted admin's id is not reused.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kubhq/admind/internal/model"
)

// Options selects and configures the storage backend.
type Options struct {
	// Driver is one of "sqlite" (default), "postgres", "mysql".
	Driver string
	// DSN is the connection string for postgres/mysql. The mysql DSN must
	// include parseTime=true so timestamps scan into time.Time.
	DSN string
	// DataDir is the sqlite database directory. Empty means in-memory,
	// which is what the tests use.
	DataDir string
}

// Store is the durable admin table plus a small settings key/value table.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the configured backend and runs migrations.
func Open(opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = "sqlite"
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "sqlite":
		dsn := opts.DSN
		if dsn == "" {
			if opts.DataDir == "" {
				dsn = ":memory:?_journal_mode=WAL"
			} else {
				if mkErr := os.MkdirAll(opts.DataDir, 0755); mkErr != nil {
					return nil, fmt.Errorf("create data dir: %w", mkErr)
				}
				dsn = filepath.Join(opts.DataDir, "admind.db") + "?_journal_mode=WAL&_busy_timeout=5000"
			}
		}
		db, err = sqlx.Connect("sqlite", dsn)
		if err == nil {
			db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
		}
	case "postgres":
		db, err = sqlx.Connect("pgx", opts.DSN)
	case "mysql":
		db, err = sqlx.Connect("mysql", opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open admin database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate admin database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the active backend name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping verifies the backend is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---------------------------------------------------------------------------
// Admin CRUD
// ---------------------------------------------------------------------------

// CreateAdmin inserts a new admin. The ID, CreatedAt, and UpdatedAt fields on
// admin are populated after a successful insert. Returns ErrEmailTaken when
// the email is already held by a live admin; the unique index is the
// authority, so two concurrent creates with the same email yield exactly one
// success.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const q = `INSERT INTO admins (last_name, first_name, middle_name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	if s.driver == "postgres" {
		// LastInsertId is not supported by pgx; use RETURNING.
		err := s.db.QueryRowContext(ctx, s.db.Rebind(q+" RETURNING id"),
			admin.LastName, admin.FirstName, admin.MiddleName, admin.Email,
			admin.CreatedAt, admin.UpdatedAt).Scan(&admin.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("insert admin: %w", err)
		}
		return nil
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(q),
		admin.LastName, admin.FirstName, admin.MiddleName, admin.Email,
		admin.CreatedAt, admin.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get admin id: %w", err)
	}
	admin.ID = id
	return nil
}

// GetAdmin returns a live admin by id, or ErrNotFound.
func (s *Store) GetAdmin(ctx context.Context, id int64) (*model.Admin, error) {
	var admin model.Admin
	err := s.db.GetContext(ctx, &admin, s.db.Rebind("SELECT * FROM admins WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// GetAdminByEmail returns a live admin by email, or ErrNotFound.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := s.db.GetContext(ctx, &admin, s.db.Rebind("SELECT * FROM admins WHERE email = ?"), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all live admins ordered by id.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	admins := []model.Admin{}
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// UpdateAdmin replaces the mutable fields of the admin with the given id in
// one statement, so concurrent readers observe either the old or the new
// record, never a mix. Returns ErrNotFound when the id has no live record
// and ErrEmailTaken when the new email collides with another admin.
func (s *Store) UpdateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.UpdatedAt = time.Now().UTC()

	const q = `UPDATE admins
		SET last_name = ?, first_name = ?, middle_name = ?, email = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, s.db.Rebind(q),
		admin.LastName, admin.FirstName, admin.MiddleName, admin.Email,
		admin.UpdatedAt, admin.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("update admin: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update admin rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAdmin removes the admin with the given id. The id is never handed
// out again; the email becomes free for reuse. Returns ErrNotFound when the
// id has no live record.
func (s *Store) DeleteAdmin(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM admins WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete admin rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAdmins reports the number of live admins. Used by telemetry.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM admins"); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// GetSetting returns the value stored under name, or empty string with a nil
// error when the setting does not exist.
func (s *Store) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind("SELECT value FROM settings WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", name, err)
	}
	return value, nil
}

// SetSetting stores value under name, replacing any previous value. The
// update-then-insert dance keeps the statement portable across all three
// backends.
func (s *Store) SetSetting(ctx context.Context, name, value string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE settings SET value = ? WHERE name = ?"), value, name)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind("INSERT INTO settings (name, value) VALUES (?, ?)"), name, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint failure.
// Matched textually because each driver wraps the condition in its own
// error type.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

package store

import "fmt"

// migrate creates the schema for the active backend. Statements are
// idempotent so startup can always run them.
//
// Id allocation must be monotonic for the process lifetime: sqlite uses
// AUTOINCREMENT (rowids of deleted rows are not reused), postgres an
// identity sequence, mysql AUTO_INCREMENT. All three keep a high-water mark
// rather than refilling gaps.
func (s *Store) migrate() error {
	var migrations []string

	switch s.driver {
	case "sqlite":
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				last_name TEXT NOT NULL,
				first_name TEXT NOT NULL,
				middle_name TEXT NOT NULL DEFAULT '',
				email TEXT UNIQUE NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS settings (
				name TEXT PRIMARY KEY,
				value TEXT NOT NULL DEFAULT ''
			)`,
		}
	case "postgres":
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				last_name TEXT NOT NULL,
				first_name TEXT NOT NULL,
				middle_name TEXT NOT NULL DEFAULT '',
				email TEXT UNIQUE NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS settings (
				name TEXT PRIMARY KEY,
				value TEXT NOT NULL DEFAULT ''
			)`,
		}
	case "mysql":
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				last_name VARCHAR(255) NOT NULL,
				first_name VARCHAR(255) NOT NULL,
				middle_name VARCHAR(255) NOT NULL DEFAULT '',
				email VARCHAR(255) NOT NULL UNIQUE,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS settings (
				name VARCHAR(191) PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		}
	default:
		return fmt.Errorf("no migrations for driver %q", s.driver)
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

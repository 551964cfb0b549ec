package database

import (
	"context"
	"database/sql"

	"taskman/internal/models"
)

// Credentials for the administrator account seeded on first run. This is
// the only bootstrap credential; without it the system has no way to log in.
const (
	seedAdminUsername = "admin"
	seedAdminPassword = "admin"
	seedAdminEmail    = "test@test.com"
)

// runMigrations creates the database schema and seeds the administrator
// account if the user table is empty
func runMigrations(ctx context.Context, db *sql.DB) error {
	// Create tasks table
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			assignedDate TEXT NOT NULL,
			dueDate TEXT NOT NULL,
			isComplete TEXT NOT NULL DEFAULT 'No',
			user TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create user table
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			email TEXT NOT NULL,
			isAdmin TEXT NOT NULL DEFAULT 'No'
		)
	`)
	if err != nil {
		return err
	}

	// Create index for assignee lookups
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_tasks_user
		ON tasks(user)
	`)
	if err != nil {
		return err
	}

	return seedAdminUser(ctx, db)
}

// seedAdminUser inserts the bootstrap administrator when the user table is
// empty. The count check and insert run inside one transaction; two
// concurrent initializers could still both observe zero, an accepted
// limitation since the application is single-process.
func seedAdminUser(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM user").Scan(&count); err != nil {
			return err
		}

		// If users exist, don't seed
		if count > 0 {
			return nil
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO user (username, password, email, isAdmin) VALUES (?, ?, ?, ?)`,
			seedAdminUsername, seedAdminPassword, seedAdminEmail, models.FlagYes,
		)
		return err
	})
}

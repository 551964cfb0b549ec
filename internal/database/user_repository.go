package database

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"taskman/internal/models"
	"taskman/internal/validate"
)

// userFieldCount is the number of comma-separated fields in a user
// import/export record: id,username,password,email,isAdmin
const userFieldCount = 5

// UserRepo handles all user-related database operations. It is the sole
// enforcer of username uniqueness.
type UserRepo struct {
	db *sql.DB
}

// userImportRecord carries the validation rules for one import line.
type userImportRecord struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Email    string `validate:"required,taskemail"`
	IsAdmin  string `validate:"oneof=No Yes"`
}

// Login checks the credentials and returns the account's role. An unknown
// username and a wrong password are reported as distinct errors so the
// caller can phrase them differently. Passwords compare as plain text.
func (r *UserRepo) Login(ctx context.Context, username, password string) (*models.AuthResult, error) {
	var storedName, storedPassword, isAdmin string
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password, isAdmin FROM user WHERE username = ?`,
		username,
	).Scan(&storedName, &storedPassword, &isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	if storedPassword != password {
		return nil, ErrWrongPassword
	}

	role := models.RoleUser
	if isAdmin == models.FlagYes {
		role = models.RoleAdmin
	}
	return &models.AuthResult{Role: role, Username: storedName}, nil
}

// Create inserts a new user with the admin flag forced to "No". The
// uniqueness pre-check and the insert share one transaction; a colliding
// username returns ErrUsernameTaken without mutating anything.
func (r *UserRepo) Create(ctx context.Context, username, password, email string) (*models.User, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM user WHERE username = ?`, username,
		).Scan(&count); err != nil {
			return fmt.Errorf("failed to check username %q: %w", username, err)
		}
		if count > 0 {
			return ErrUsernameTaken
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO user (username, password, email, isAdmin) VALUES (?, ?, ?, ?)`,
			username, password, email, models.FlagNo,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user %q: %w", username, err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get user ID after insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, int(id))
}

// GetByID retrieves a user by id. A missing user is (nil, nil).
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, email, isAdmin FROM user WHERE id = ?`,
		id,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Email, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username. A missing user is (nil, nil).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, email, isAdmin FROM user WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Email, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// GetAll retrieves every user in insertion order.
func (r *UserRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, password, email, isAdmin FROM user ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Password, &user.Email, &user.IsAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}

// Update replaces a user's username, password and email. If the username
// changes, uniqueness is re-validated against every other row inside the
// same transaction as the write. Returns true iff a row was changed.
func (r *UserRepo) Update(ctx context.Context, id int, username, password, email string) (bool, error) {
	var changed bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM user WHERE username = ? AND id <> ?`, username, id,
		).Scan(&count); err != nil {
			return fmt.Errorf("failed to check username %q: %w", username, err)
		}
		if count > 0 {
			return ErrUsernameTaken
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE user SET username = ?, password = ?, email = ? WHERE id = ?`,
			username, password, email, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update user %d: %w", id, err)
		}
		changed, err = rowChanged(result)
		return err
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// PromoteToAdmin sets the admin flag. There is no demotion operation.
func (r *UserRepo) PromoteToAdmin(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user SET isAdmin = ? WHERE id = ?`,
		models.FlagYes, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to promote user %d: %w", id, err)
	}
	return rowChanged(result)
}

// Delete removes a user. The repository does not special-case the seed
// administrator; protecting against self-lockout is the caller's job.
func (r *UserRepo) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return rowChanged(result)
}

// Count returns the number of user records.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ImportFrom reads 5-field delimited user records from src. The conflict
// rule is stricter than for tasks: a record is skipped when any existing
// row matches its id with a different username, or its username with a
// different id — either way the record describes a different identity than
// the one already stored. The whole batch commits once at the end;
// validation failures skip single records, storage errors roll back.
func (r *UserRepo) ImportFrom(ctx context.Context, src io.Reader) (ImportResult, error) {
	var res ImportResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		scanner := bufio.NewScanner(src)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			fields := strings.Split(text, ",")
			if len(fields) != userFieldCount {
				slog.Warn("skipping user record: wrong field count",
					"line", line, "got", len(fields), "want", userFieldCount)
				res.Skipped++
				continue
			}
			for i := range fields {
				fields[i] = strings.TrimSpace(fields[i])
			}

			id, err := strconv.Atoi(fields[0])
			if err != nil {
				slog.Warn("skipping user record: id is not a number",
					"line", line, "id", fields[0])
				res.Skipped++
				continue
			}

			rec := userImportRecord{
				Username: fields[1],
				Password: fields[2],
				Email:    fields[3],
				IsAdmin:  fields[4],
			}
			if err := validate.Struct(rec); err != nil {
				slog.Warn("skipping user record: invalid fields",
					"line", line, "username", rec.Username, "error", err)
				res.Skipped++
				continue
			}

			var conflicts int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM user
				 WHERE (id = ? AND username <> ?) OR (username = ? AND id <> ?)`,
				id, rec.Username, rec.Username, id,
			).Scan(&conflicts); err != nil {
				return fmt.Errorf("failed to check conflicts for user %d: %w", id, err)
			}
			if conflicts > 0 {
				slog.Warn("skipping user record: conflicts with a different identity",
					"line", line, "id", id, "username", rec.Username)
				res.Skipped++
				continue
			}

			result, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO user (id, username, password, email, isAdmin)
				 VALUES (?, ?, ?, ?, ?)`,
				id, rec.Username, rec.Password, rec.Email, rec.IsAdmin,
			)
			if err != nil {
				return fmt.Errorf("failed to import user %d: %w", id, err)
			}
			inserted, err := rowChanged(result)
			if err != nil {
				return err
			}
			if inserted {
				res.Inserted++
			} else {
				// exact match already stored, nothing to do
				res.Skipped++
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read user import data: %w", err)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

// ExportTo serializes every user as one comma-delimited line in the same
// 5-field order the import expects, and returns the number of rows written.
func (r *UserRepo) ExportTo(ctx context.Context, dst io.Writer) (int, error) {
	users, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	w := bufio.NewWriter(dst)
	for _, u := range users {
		fields := []string{
			strconv.Itoa(u.ID), u.Username, u.Password, u.Email, u.IsAdmin,
		}
		if _, err := w.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return 0, fmt.Errorf("failed to write user %d: %w", u.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush user export: %w", err)
	}
	return len(users), nil
}

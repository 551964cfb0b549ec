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
	"time"

	"taskman/internal/dates"
	"taskman/internal/models"
)

// taskFieldCount is the number of comma-separated fields in a task
// import/export record: id,title,description,assignedDate,dueDate,isComplete,user
const taskFieldCount = 7

// TaskRepo handles all task-related database operations.
type TaskRepo struct {
	db *sql.DB
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// Create inserts a new task and returns the stored record. The caller is
// responsible for validating the dates and the assignee; the repository
// performs raw CRUD only.
func (r *TaskRepo) Create(ctx context.Context, title, description, assignedDate, dueDate, user string) (*models.Task, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, assignedDate, dueDate, isComplete, user)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		title, description, assignedDate, dueDate, models.FlagNo, user,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task %q: %w", title, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get task ID after insert: %w", err)
	}

	task, err := r.GetByID(ctx, int(id))
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d missing immediately after insert", id)
	}
	return task, nil
}

// GetByID retrieves a task by its ID. A missing task is not an error; the
// result is (nil, nil).
func (r *TaskRepo) GetByID(ctx context.Context, id int) (*models.Task, error) {
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, assignedDate, dueDate, isComplete, user
		 FROM tasks WHERE id = ?`,
		id,
	).Scan(
		&task.ID, &task.Title, &task.Description,
		&task.AssignedDate, &task.DueDate, &task.IsComplete, &task.User,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// GetByUser retrieves all tasks assigned to a username, in insertion order.
func (r *TaskRepo) GetByUser(ctx context.Context, username string) ([]*models.Task, error) {
	return r.queryTasks(ctx,
		`SELECT id, title, description, assignedDate, dueDate, isComplete, user
		 FROM tasks WHERE user = ? ORDER BY id`,
		username,
	)
}

// GetAll retrieves every task in insertion order.
func (r *TaskRepo) GetAll(ctx context.Context) ([]*models.Task, error) {
	return r.queryTasks(ctx,
		`SELECT id, title, description, assignedDate, dueDate, isComplete, user
		 FROM tasks ORDER BY id`,
	)
}

// GetCompleted retrieves all tasks marked complete.
func (r *TaskRepo) GetCompleted(ctx context.Context) ([]*models.Task, error) {
	return r.queryTasks(ctx,
		`SELECT id, title, description, assignedDate, dueDate, isComplete, user
		 FROM tasks WHERE isComplete = ? ORDER BY id`,
		models.FlagYes,
	)
}

// GetOverdue retrieves incomplete tasks whose due date falls before now.
// DD/MM/YYYY strings do not order lexicographically, so the date comparison
// happens here rather than in SQL.
func (r *TaskRepo) GetOverdue(ctx context.Context, now time.Time) ([]*models.Task, error) {
	tasks, err := r.queryTasks(ctx,
		`SELECT id, title, description, assignedDate, dueDate, isComplete, user
		 FROM tasks WHERE isComplete = ? ORDER BY id`,
		models.FlagNo,
	)
	if err != nil {
		return nil, err
	}

	// time.Parse yields UTC midnight, so compare against the same
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var overdue []*models.Task
	for _, task := range tasks {
		due, err := dates.Parse(task.DueDate)
		if err != nil {
			slog.Warn("task has an unparseable due date", "id", task.ID, "dueDate", task.DueDate)
			continue
		}
		if due.Before(today) {
			overdue = append(overdue, task)
		}
	}
	return overdue, nil
}

// Update replaces a task's mutable fields. The assigned date and completion
// state are never touched here. Returns true iff a row was changed; an
// unknown id reports false, not an error.
func (r *TaskRepo) Update(ctx context.Context, id int, title, description, dueDate, user string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, dueDate = ?, user = ?
		 WHERE id = ?`,
		title, description, dueDate, user, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return rowChanged(result)
}

// MarkComplete flips a task to complete. The update matches on id only, so
// marking an already-complete task still reports a changed row and leaves
// the stored state identical.
func (r *TaskRepo) MarkComplete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET isComplete = ? WHERE id = ?`,
		models.FlagYes, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark task %d complete: %w", id, err)
	}
	return rowChanged(result)
}

// Delete removes a task. Returns true iff a row was removed.
func (r *TaskRepo) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return rowChanged(result)
}

// Count returns the number of task records.
func (r *TaskRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// ImportFrom reads 7-field delimited task records from src and inserts them
// with their explicit ids. The whole batch runs in one transaction that
// commits at the end; a record that fails validation is logged and skipped
// without aborting the batch, while a storage error rolls everything back.
// Records whose id already exists are left untouched: the existing row is
// authoritative and updates must go through Update, never through import.
func (r *TaskRepo) ImportFrom(ctx context.Context, src io.Reader) (ImportResult, error) {
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
			if len(fields) != taskFieldCount {
				slog.Warn("skipping task record: wrong field count",
					"line", line, "got", len(fields), "want", taskFieldCount)
				res.Skipped++
				continue
			}
			for i := range fields {
				fields[i] = strings.TrimSpace(fields[i])
			}

			id, err := strconv.Atoi(fields[0])
			if err != nil {
				slog.Warn("skipping task record: id is not a number",
					"line", line, "id", fields[0])
				res.Skipped++
				continue
			}

			if _, err := dates.Parse(fields[3]); err != nil {
				slog.Warn("skipping task record: bad assigned date",
					"line", line, "assignedDate", fields[3])
				res.Skipped++
				continue
			}
			if _, err := dates.Parse(fields[4]); err != nil {
				slog.Warn("skipping task record: bad due date",
					"line", line, "dueDate", fields[4])
				res.Skipped++
				continue
			}

			assignee := fields[6]
			var exists int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM user WHERE username = ?", assignee,
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to look up assignee %q: %w", assignee, err)
			}
			if exists == 0 {
				slog.Warn("skipping task record: assignee does not exist",
					"line", line, "user", assignee)
				res.Skipped++
				continue
			}

			result, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO tasks (id, title, description, assignedDate, dueDate, isComplete, user)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, fields[1], fields[2], fields[3], fields[4], fields[5], assignee,
			)
			if err != nil {
				return fmt.Errorf("failed to import task %d: %w", id, err)
			}
			inserted, err := rowChanged(result)
			if err != nil {
				return err
			}
			if inserted {
				res.Inserted++
			} else {
				// id already present, existing row wins silently
				res.Skipped++
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read task import data: %w", err)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

// ExportTo serializes every task as one comma-delimited line in the same
// 7-field order the import expects, and returns the number of rows written.
func (r *TaskRepo) ExportTo(ctx context.Context, dst io.Writer) (int, error) {
	tasks, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	w := bufio.NewWriter(dst)
	for _, t := range tasks {
		fields := []string{
			strconv.Itoa(t.ID), t.Title, t.Description,
			t.AssignedDate, t.DueDate, t.IsComplete, t.User,
		}
		if _, err := w.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return 0, fmt.Errorf("failed to write task %d: %w", t.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush task export: %w", err)
	}
	return len(tasks), nil
}

// queryTasks runs a SELECT returning full task rows and scans them into a slice.
func (r *TaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.Title, &task.Description,
			&task.AssignedDate, &task.DueDate, &task.IsComplete, &task.User,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}
	return tasks, nil
}

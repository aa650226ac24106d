package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgienger/todo/internal/models"
)

const taskColumns = `id, title, description, completed, created_at, due_date, priority, category, is_starred`

// GetAll returns every task in manual (position) order
func (db *DB) GetAll(ctx context.Context) ([]models.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY position ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, id string) (models.Task, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return models.Task{}, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return t, err
}

// Add builds a new task from input and appends it after every existing task
func (db *DB) Add(ctx context.Context, in models.TaskInput) (models.Task, error) {
	t := models.NewTask(in)

	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks))
	`, t.ID, t.Title, t.Description, t.Completed, t.CreatedAt, nullTime(t), string(t.Priority), string(t.Category), t.IsStarred)
	if err != nil {
		return models.Task{}, err
	}

	db.logger.Debug("task inserted", "id", t.ID)
	return t, nil
}

// Update replaces every mutable field of a task and returns the stored
// record. created_at is never written.
func (db *DB) Update(ctx context.Context, t models.Task) (models.Task, error) {
	_, err := db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, completed = ?, due_date = ?, priority = ?, category = ?, is_starred = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Completed, nullTime(t), string(t.Priority), string(t.Category), t.IsStarred, t.ID)
	if err != nil {
		return models.Task{}, err
	}
	return db.GetTask(ctx, t.ID)
}

// Delete deletes a task and reports whether a row was removed
func (db *DB) Delete(ctx context.Context, id string) (bool, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveOrder rewrites every task position in one transaction so that ids[i]
// gets position i+1
func (db *DB) SaveOrder(ctx context.Context, ids []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE tasks SET position = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, i+1, id); err != nil {
			return fmt.Errorf("set position of %s: %w", id, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t        models.Task
		due      sql.NullTime
		priority string
		category string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &due, &priority, &category, &t.IsStarred)
	if err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	t.Priority = models.Priority(priority)
	t.Category = models.Category(category)
	return t, nil
}

func nullTime(t models.Task) sql.NullTime {
	if !t.HasDueDate() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t.DueDate, Valid: true}
}

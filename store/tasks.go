package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"KanbanService/models"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.tags,
	t.startDate, t.dueDate, t.points, t.projectId, t.authorUserId, t.assignedUserId,
	a.userId, a.username, a.profilePictureUrl,
	s.userId, s.username, s.profilePictureUrl`

const taskFrom = `FROM tasks t
	LEFT JOIN users a ON a.userId = t.authorUserId
	LEFT JOIN users s ON s.userId = t.assignedUserId`

// ListTasks returns the tasks of a project ordered by id, with author, assignee,
// comments and attachments included. A project without tasks yields an empty slice.
func (s *Store) ListTasks(ctx context.Context, projectID int) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " " + taskFrom + " WHERE t.projectId = ? ORDER BY t.id"
	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	index := map[int]int{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		index[task.Id] = len(tasks)
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	attachments, err := s.listAttachments(ctx,
		"JOIN tasks t ON t.id = at.taskId WHERE t.projectId = ?", projectID)
	if err != nil {
		return nil, err
	}
	for _, at := range attachments {
		if i, ok := index[at.TaskId]; ok {
			tasks[i].Attachments = append(tasks[i].Attachments, at)
		}
	}
	comments, err := s.listComments(ctx,
		"JOIN tasks t ON t.id = c.taskId WHERE t.projectId = ?", projectID)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if i, ok := index[c.TaskId]; ok {
			tasks[i].Comments = append(tasks[i].Comments, c)
		}
	}
	return tasks, nil
}

// GetTask retrieves a single task with its related records.
// It returns ErrNotFound when no task has the given id.
func (s *Store) GetTask(ctx context.Context, id int) (*models.Task, error) {
	query := "SELECT " + taskColumns + " " + taskFrom + " WHERE t.id = ?"
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if task.Attachments, err = s.listAttachments(ctx, "WHERE at.taskId = ?", id); err != nil {
		return nil, err
	}
	if task.Comments, err = s.listComments(ctx, "WHERE c.taskId = ?", id); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTask inserts a new task and sets its Id.
// If the task's status is empty, it will be set to "To Do".
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	task.Status = task.Status.OrDefault()
	query := `INSERT INTO tasks(title, description, status, priority, tags, startDate, dueDate,
		points, projectId, authorUserId, assignedUserId) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		task.Title, nullString(task.Description), string(task.Status), nullString(string(task.Priority)),
		nullString(task.Tags), nullTime(task.StartDate), nullTime(task.DueDate), nullInt(task.Points),
		task.ProjectId, task.AuthorUserId, nullInt(task.AssignedUserId))
	if err != nil {
		return fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve the last inserted ID: %w", err)
	}
	task.Id = int(id)
	return nil
}

// UpdateTaskStatus moves a task to status and returns the updated task.
// It returns ErrNotFound when no task has the given id.
func (s *Store) UpdateTaskStatus(ctx context.Context, id int, status models.Status) (*models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx, "SELECT id FROM tasks WHERE id = ?", id).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up task: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE tasks SET status = ? WHERE id = ?", string(status), id); err != nil {
		return nil, fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return s.GetTask(ctx, id)
}

// AddAttachment records a file attached to a task and sets its Id.
func (s *Store) AddAttachment(ctx context.Context, at *models.Attachment) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO attachments(fileURL, fileName, taskId, uploadedById) VALUES(?, ?, ?, ?)",
		at.FileURL, nullString(at.FileName), at.TaskId, at.UploadedById)
	if err != nil {
		return fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve the last inserted ID: %w", err)
	}
	at.Id = int(id)
	return nil
}

// AddComment records a comment on a task and sets its Id.
func (s *Store) AddComment(ctx context.Context, c *models.Comment) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO comments(text, taskId, userId) VALUES(?, ?, ?)", c.Text, c.TaskId, c.UserId)
	if err != nil {
		return fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve the last inserted ID: %w", err)
	}
	c.Id = int(id)
	return nil
}

func (s *Store) listAttachments(ctx context.Context, where string, args ...any) ([]models.Attachment, error) {
	query := "SELECT at.id, at.fileURL, at.fileName, at.taskId, at.uploadedById FROM attachments at " +
		where + " ORDER BY at.id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var at models.Attachment
		var fileName sql.NullString
		if err := rows.Scan(&at.Id, &at.FileURL, &fileName, &at.TaskId, &at.UploadedById); err != nil {
			return nil, fmt.Errorf("failed to scan row into Attachment struct: %w", err)
		}
		at.FileName = fileName.String
		attachments = append(attachments, at)
	}
	return attachments, rows.Err()
}

func (s *Store) listComments(ctx context.Context, where string, args ...any) ([]models.Comment, error) {
	query := "SELECT c.id, c.text, c.taskId, c.userId FROM comments c " + where + " ORDER BY c.id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.Id, &c.Text, &c.TaskId, &c.UserId); err != nil {
			return nil, fmt.Errorf("failed to scan row into Comment struct: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanTask(row scanner) (*models.Task, error) {
	var (
		task                        models.Task
		description, status, prio   sql.NullString
		tags                        sql.NullString
		start, due                  sql.NullTime
		points, assigned            sql.NullInt64
		authorID, assigneeID        sql.NullInt64
		authorName, assigneeName    sql.NullString
		authorPicture, assigneeFace sql.NullString
	)
	err := row.Scan(&task.Id, &task.Title, &description, &status, &prio, &tags,
		&start, &due, &points, &task.ProjectId, &task.AuthorUserId, &assigned,
		&authorID, &authorName, &authorPicture,
		&assigneeID, &assigneeName, &assigneeFace)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row into Task struct: %w", err)
	}
	task.Description = description.String
	task.Status = models.Status(status.String)
	task.Priority = models.Priority(prio.String)
	task.Tags = tags.String
	task.StartDate = timePtr(start)
	task.DueDate = timePtr(due)
	task.Points = intPtr(points)
	task.AssignedUserId = intPtr(assigned)
	if authorID.Valid {
		task.Author = &models.User{UserId: int(authorID.Int64), Username: authorName.String, ProfilePictureUrl: authorPicture.String}
	}
	if assigneeID.Valid {
		task.Assignee = &models.User{UserId: int(assigneeID.Int64), Username: assigneeName.String, ProfilePictureUrl: assigneeFace.String}
	}
	return &task, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"KanbanService/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens an in-memory sqlite store with the schema in place.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

// seed creates two users and a project and returns their ids.
func seed(t *testing.T, s *Store) (author, assignee, project int) {
	t.Helper()
	ctx := context.Background()
	a := &models.User{Username: "alice", ProfilePictureUrl: "p1.jpeg"}
	b := &models.User{Username: "bob"}
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))
	p := &models.Project{Name: "Apollo"}
	require.NoError(t, s.CreateProject(ctx, p))
	return a.UserId, b.UserId, p.Id
}

func TestDSN(t *testing.T) {
	dsn, err := DSN(Config{Driver: DriverMySQL, User: "root", Password: "pw", Address: "db:3306", Name: "taskdb"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "root:pw@tcp(db:3306)/taskdb")
	assert.Contains(t, dsn, "parseTime=true")

	dsn, err = DSN(Config{Driver: DriverSQLite, Path: "kanban.db"})
	require.NoError(t, err)
	assert.Equal(t, "kanban.db?_foreign_keys=on", dsn)

	_, err = DSN(Config{Driver: "postgres"})
	assert.Error(t, err)
}

func TestEnsureSchemaIsRepeatable(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.EnsureSchema(context.Background()))
}

func TestCreateAndListTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author, assignee, project := seed(t, s)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	points := 5
	first := &models.Task{
		Title:          "Write brief",
		Description:    "one pager",
		Priority:       models.PriorityHigh,
		Tags:           "docs,planning",
		StartDate:      &start,
		Points:         &points,
		ProjectId:      project,
		AuthorUserId:   author,
		AssignedUserId: &assignee,
	}
	require.NoError(t, s.CreateTask(ctx, first))
	second := &models.Task{Title: "Ship", Status: models.StatusCompleted, ProjectId: project, AuthorUserId: author}
	require.NoError(t, s.CreateTask(ctx, second))

	assert.NotZero(t, first.Id)
	assert.Equal(t, models.StatusToDo, first.Status, "empty status defaults to To Do")

	require.NoError(t, s.AddComment(ctx, &models.Comment{Text: "looks good", TaskId: first.Id, UserId: assignee}))
	require.NoError(t, s.AddAttachment(ctx, &models.Attachment{FileURL: "brief.pdf", FileName: "Brief", TaskId: first.Id, UploadedById: author}))

	tasks, err := s.ListTasks(ctx, project)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	got := tasks[0]
	assert.Equal(t, first.Id, got.Id)
	assert.Equal(t, "Write brief", got.Title)
	assert.Equal(t, models.StatusToDo, got.Status)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"docs", "planning"}, got.TagList())
	require.NotNil(t, got.StartDate)
	assert.True(t, start.Equal(*got.StartDate))
	assert.Nil(t, got.DueDate)
	require.NotNil(t, got.Points)
	assert.Equal(t, 5, *got.Points)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, "bob", got.Assignee.Username)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "looks good", got.Comments[0].Text)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "brief.pdf", got.Attachments[0].FileURL)

	assert.Equal(t, models.StatusCompleted, tasks[1].Status)
	assert.Nil(t, tasks[1].Assignee)
	assert.Empty(t, tasks[1].Comments)
}

func TestListTasksEmptyProject(t *testing.T) {
	s := newTestStore(t)
	tasks, err := s.ListTasks(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestUpdateTaskStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author, _, project := seed(t, s)
	task := &models.Task{Title: "Review", ProjectId: project, AuthorUserId: author}
	require.NoError(t, s.CreateTask(ctx, task))

	updated, err := s.UpdateTaskStatus(ctx, task.Id, models.StatusUnderReview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, updated.Status)

	// same status again is accepted
	updated, err = s.UpdateTaskStatus(ctx, task.Id, models.StatusUnderReview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, updated.Status)

	_, err = s.UpdateTaskStatus(ctx, task.Id+100, models.StatusCompleted)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTask(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTaskRequiresExistingProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author, _, _ := seed(t, s)
	err := s.CreateTask(ctx, &models.Task{Title: "orphan", ProjectId: 999, AuthorUserId: author})
	assert.Error(t, err)
}

func TestProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	p := &models.Project{Name: "Gemini", Description: "second", EndDate: &end}
	require.NoError(t, s.CreateProject(ctx, p))

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Gemini", projects[0].Name)
	require.NotNil(t, projects[0].EndDate)
	assert.True(t, end.Equal(*projects[0].EndDate))

	got, err := s.GetProject(ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Description)

	_, err = s.GetProject(ctx, p.Id+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

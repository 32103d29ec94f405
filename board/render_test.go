package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"KanbanService/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func readyState(tasks ...models.Task) State {
	return State{ProjectID: 7, Phase: Ready, Tasks: tasks, Board: Group(tasks)}
}

func TestRenderMessages(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"idle", State{}, "No project selected\n"},
		{"loading", State{ProjectID: 7, Phase: Loading}, "Loading tasks...\n"},
		{"failed", State{ProjectID: 7, Phase: Failed, Err: errors.New("boom")}, "An error occurred while fetching tasks: boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tt.state))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderBoard(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	write := task(1, models.StatusToDo)
	write.Title = "Write brief"
	write.Priority = models.PriorityHigh
	write.Tags = "docs, planning"
	write.StartDate, write.DueDate = &start, &due
	write.Assignee = &models.User{UserId: 2, Username: "bob"}
	write.Comments = []models.Comment{{Id: 1, Text: "ok", TaskId: 1}, {Id: 2, Text: "done?", TaskId: 1}}
	write.Attachments = []models.Attachment{
		{Id: 1, FileURL: "https://example.com/files/brief.pdf", FileName: "brief.pdf", TaskId: 1},
		{Id: 2, FileURL: "https://example.com/files/notes.txt", FileName: "notes.txt", TaskId: 1},
	}
	odd := task(9, "Blocked")
	odd.Title = "Odd one"

	s := readyState(write, task(2, models.StatusCompleted), odd)
	s.Highlight = models.StatusCompleted
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Project 7\n"))
	assert.Contains(t, out, "To Do (1)\n")
	assert.Contains(t, out, "Work In Progress (0)\n  -\n")
	assert.Contains(t, out, "Completed (1) <\n")
	assert.Contains(t, out, "Unrecognized (1)\n")
	assert.Contains(t, out, "Write brief")
	assert.Contains(t, out, "docs, planning")
	assert.Contains(t, out, "03/01/2024 - 03/08/2024")
	assert.Contains(t, out, "@bob")
	assert.Contains(t, out, "2 comments")
	assert.Contains(t, out, "brief.pdf")
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, out, "0 comments")
	assert.Less(t, strings.Index(out, "To Do"), strings.Index(out, "Under Review"))
}

func TestRenderList(t *testing.T) {
	due := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	bare := task(1, "")
	bare.Title = "Bare"
	full := task(2, models.StatusUnderReview)
	full.Title = "Full"
	full.Description = "All the fields"
	full.Priority = models.PriorityUrgent
	full.Tags = "a,b"
	full.DueDate = &due
	full.Author = &models.User{UserId: 1, Username: "alice"}
	full.Assignee = &models.User{UserId: 2, Username: "bob"}
	full.Comments = []models.Comment{{Id: 1, Text: "ok", TaskId: 2}}
	full.Attachments = []models.Attachment{{Id: 1, FileURL: "https://example.com/files/spec.pdf", TaskId: 2}}

	var buf bytes.Buffer
	require.NoError(t, RenderList(&buf, []models.Task{bare, full}))
	cards := strings.Split(buf.String(), "\n\n")
	require.Len(t, cards, 2)

	assert.Contains(t, cards[0], "Status:      To Do")
	assert.Contains(t, cards[0], "No description provided")
	assert.Contains(t, cards[0], "Priority:    None")
	assert.Contains(t, cards[0], "No tags")
	assert.Contains(t, cards[0], "Due Date:    Not set")
	assert.Contains(t, cards[0], "Author:      Unknown")
	assert.Contains(t, cards[0], "Assignee:    Unassigned")
	assert.Contains(t, cards[0], "Comments:    0")
	assert.NotContains(t, cards[0], "Attachment:")

	assert.Contains(t, cards[1], "Tags:        a, b")
	assert.Contains(t, cards[1], "Due Date:    Mar 8, 2024")
	assert.Contains(t, cards[1], "Author:      alice")
	assert.Contains(t, cards[1], "Task ID:     2")
	assert.Contains(t, cards[1], "Comments:    1")
	assert.Contains(t, cards[1], "Attachment:  spec.pdf")

	buf.Reset()
	require.NoError(t, RenderList(&buf, nil))
	assert.Equal(t, "No tasks\n", buf.String())
}

func TestExport(t *testing.T) {
	points := 3
	first := task(1, models.StatusToDo)
	first.Points = &points
	first.Tags = "x"
	first.Comments = []models.Comment{{Id: 1, Text: "hi", TaskId: 1}}
	first.Attachments = []models.Attachment{{Id: 1, FileURL: "https://example.com/a.png", FileName: "a.png", TaskId: 1}}
	s := readyState(first, task(2, models.StatusCompleted), task(3, "Blocked"))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, s))
	var fromJSON Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))

	buf.Reset()
	require.NoError(t, WriteYAML(&buf, s))
	var fromYAML Export
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))

	for _, e := range []Export{fromJSON, fromYAML} {
		assert.Equal(t, 7, e.ProjectID)
		require.Len(t, e.Columns, 4)
		assert.Equal(t, models.StatusToDo, e.Columns[0].Status)
		assert.Equal(t, 1, e.Columns[0].Count)
		assert.Equal(t, []string{"x"}, e.Columns[0].Tasks[0].Tags)
		require.NotNil(t, e.Columns[0].Tasks[0].Points)
		assert.Equal(t, 3, *e.Columns[0].Tasks[0].Points)
		assert.Equal(t, 1, e.Columns[0].Tasks[0].Comments)
		assert.Equal(t, "a.png", e.Columns[0].Tasks[0].Attachment)
		assert.Equal(t, 0, e.Columns[1].Count)
		assert.Empty(t, e.Columns[1].Tasks)
		require.Len(t, e.Unrecognized, 1)
		assert.Equal(t, 3, e.Unrecognized[0].ID)
	}
	assert.Contains(t, buf.String(), "status: To Do")
}

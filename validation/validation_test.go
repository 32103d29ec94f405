package validation_test

import (
	"errors"
	"testing"
	"time"

	"KanbanService/commands"
	"KanbanService/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := validation.ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, value := range []string{"2024-03-01", "2024-03-01T00:00:00", "2024-03-01T02:00:00+02:00"} {
		got, err := validation.ParseDate(value)
		require.NoError(t, err, value)
		assert.True(t, got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), value)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err = validation.ParseDate("next week")
	assert.EqualError(t, err, `invalid date "next week"`)
}

func TestDescribe(t *testing.T) {
	validate := validation.New()
	points := -1
	err := validate.Struct(commands.CreateTaskCommand{
		Title:        "   ",
		Status:       "Blocked",
		Priority:     "Whenever",
		DueDate:      "tomorrow",
		Points:       &points,
		ProjectId:    1,
		AuthorUserId: 1,
	})
	require.Error(t, err)

	assert.Equal(t, "title is required; "+
		"status must be one of To Do, Work In Progress, Under Review, Completed; "+
		"priority must be one of Urgent, High, Medium, Low; "+
		"dueDate must be a date; "+
		"points must be at least 0", validation.Describe(err))
}

func TestDescribeValidCommand(t *testing.T) {
	validate := validation.New()
	err := validate.Struct(commands.CreateTaskCommand{
		Title:        "Write brief",
		Status:       "Under Review",
		Priority:     "High",
		StartDate:    "2024-03-01",
		ProjectId:    1,
		AuthorUserId: 1,
	})
	assert.NoError(t, err)

	assert.Equal(t, "boom", validation.Describe(errors.New("boom")))
}

func TestUpdateStatusValidation(t *testing.T) {
	validate := validation.New()
	assert.NoError(t, validate.Struct(commands.UpdateTaskStatusCommand{Status: "Completed"}))

	err := validate.Struct(commands.UpdateTaskStatusCommand{})
	require.Error(t, err)
	assert.Equal(t, "status is required", validation.Describe(err))
}

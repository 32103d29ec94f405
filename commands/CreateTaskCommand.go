// Package commands contains the commands for the application to be used for request inputs.
package commands

import (
	"KanbanService/models"
	"KanbanService/validation"
	"fmt"
)

// MissingTaskFieldsMessage is returned when a create request lacks a required field.
const MissingTaskFieldsMessage = "title, projectId, and authorUserId are required"

// CreateTaskCommand represents a command to create a task on a project board.
// Dates are accepted as RFC 3339 timestamps or plain yyyy-mm-dd days.
type CreateTaskCommand struct {
	Title          string `json:"title" validate:"required,fieldValidator,max=255"`
	Description    string `json:"description,omitempty" validate:"max=2000"`
	Status         string `json:"status,omitempty" validate:"omitempty,statusValidator"`
	Priority       string `json:"priority,omitempty" validate:"omitempty,priorityValidator"`
	Tags           string `json:"tags,omitempty" validate:"max=255"`
	StartDate      string `json:"startDate,omitempty" validate:"omitempty,dateValidator"`
	DueDate        string `json:"dueDate,omitempty" validate:"omitempty,dateValidator"`
	Points         *int   `json:"points,omitempty" validate:"omitempty,min=0"`
	ProjectId      int    `json:"projectId" validate:"required,min=1"`
	AuthorUserId   int    `json:"authorUserId" validate:"required,min=1"`
	AssignedUserId *int   `json:"assignedUserId,omitempty" validate:"omitempty,min=1"`
}

// MissingRequired reports whether title, projectId or authorUserId is absent.
func (c CreateTaskCommand) MissingRequired() bool {
	return c.Title == "" || c.ProjectId == 0 || c.AuthorUserId == 0
}

// Task converts a validated command into the task to insert.
// A missing status defaults to "To Do".
func (c CreateTaskCommand) Task() (*models.Task, error) {
	start, err := validation.ParseDate(c.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := validation.ParseDate(c.DueDate)
	if err != nil {
		return nil, err
	}
	if start != nil && due != nil && due.Before(*start) {
		return nil, fmt.Errorf("dueDate cannot be earlier than startDate")
	}
	return &models.Task{
		Title:          c.Title,
		Description:    c.Description,
		Status:         models.Status(c.Status).OrDefault(),
		Priority:       models.Priority(c.Priority),
		Tags:           c.Tags,
		StartDate:      start,
		DueDate:        due,
		Points:         c.Points,
		ProjectId:      c.ProjectId,
		AuthorUserId:   c.AuthorUserId,
		AssignedUserId: c.AssignedUserId,
	}, nil
}

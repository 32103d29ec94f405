package commands

import (
	"KanbanService/models"
	"KanbanService/validation"
	"fmt"
)

// CreateProjectCommand represents a command to create a project.
type CreateProjectCommand struct {
	Name        string `json:"name" validate:"required,fieldValidator,max=255"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	StartDate   string `json:"startDate,omitempty" validate:"omitempty,dateValidator"`
	EndDate     string `json:"endDate,omitempty" validate:"omitempty,dateValidator"`
}

// Project converts a validated command into the project to insert.
func (c CreateProjectCommand) Project() (*models.Project, error) {
	start, err := validation.ParseDate(c.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := validation.ParseDate(c.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("end date cannot be earlier than start date")
	}
	return &models.Project{
		Name:        c.Name,
		Description: c.Description,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

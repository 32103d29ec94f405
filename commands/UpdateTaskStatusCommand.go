package commands

// UpdateTaskStatusCommand represents a command to move a task to another board column.
type UpdateTaskStatusCommand struct {
	Status string `json:"status" validate:"required,statusValidator"`
}

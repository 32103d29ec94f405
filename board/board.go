// Package board holds the client-side state of a project's kanban board: grouping
// tasks into status columns, loading them from the task service, and turning drag and
// drop gestures into status updates.
package board

import "KanbanService/models"

// Column is the ordered list of tasks currently believed to hold one status.
type Column struct {
	Status models.Status
	Tasks  []models.Task
}

// Board is the grouping of a task list into the four status columns, in
// models.Statuses order. Tasks whose status is outside the enum are kept in
// Unrecognized rather than dropped.
type Board struct {
	Columns      []Column
	Unrecognized []models.Task
}

// Group partitions tasks into the four status columns, preserving their relative
// order. A task without a status belongs to "To Do". Group never modifies tasks.
func Group(tasks []models.Task) Board {
	var toDo, inProgress, review, completed, unknown []models.Task
	for _, task := range tasks {
		switch task.Status.OrDefault() {
		case models.StatusToDo:
			toDo = append(toDo, task)
		case models.StatusWorkInProgress:
			inProgress = append(inProgress, task)
		case models.StatusUnderReview:
			review = append(review, task)
		case models.StatusCompleted:
			completed = append(completed, task)
		default:
			unknown = append(unknown, task)
		}
	}
	return Board{
		Columns: []Column{
			{Status: models.StatusToDo, Tasks: nonNil(toDo)},
			{Status: models.StatusWorkInProgress, Tasks: nonNil(inProgress)},
			{Status: models.StatusUnderReview, Tasks: nonNil(review)},
			{Status: models.StatusCompleted, Tasks: nonNil(completed)},
		},
		Unrecognized: unknown,
	}
}

// Tasks returns the tasks of the column for status, or nil for a status outside the enum.
func (b Board) Tasks(status models.Status) []models.Task {
	for _, col := range b.Columns {
		if col.Status == status {
			return col.Tasks
		}
	}
	return nil
}

// IDs maps each status to the ids of its tasks. Every status is present.
func (b Board) IDs() map[models.Status][]int {
	ids := make(map[models.Status][]int, len(b.Columns))
	for _, col := range b.Columns {
		list := make([]int, 0, len(col.Tasks))
		for _, t := range col.Tasks {
			list = append(list, t.Id)
		}
		ids[col.Status] = list
	}
	return ids
}

// Find returns the task with the given id and the column holding it.
func (b Board) Find(id int) (models.Task, models.Status, bool) {
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			if t.Id == id {
				return t, col.Status, true
			}
		}
	}
	return models.Task{}, "", false
}

func nonNil(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}

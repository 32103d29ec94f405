package models

import "fmt"

// Status is the board column a task currently sits in.
type Status string

const (
	StatusToDo           Status = "To Do"
	StatusWorkInProgress Status = "Work In Progress"
	StatusUnderReview    Status = "Under Review"
	StatusCompleted      Status = "Completed"
)

// Statuses lists every status in board column order.
var Statuses = []Status{StatusToDo, StatusWorkInProgress, StatusUnderReview, StatusCompleted}

// Valid reports whether s is one of the four board statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusWorkInProgress, StatusUnderReview, StatusCompleted:
		return true
	}
	return false
}

// OrDefault returns s, or StatusToDo when s is empty.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusToDo
	}
	return s
}

// ParseStatus converts a literal such as "Under Review" into a Status.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return s, nil
}

// Priority is the urgency label attached to a task.
type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the four priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Package models contains the data models for the application to be used in request handling.
package models

import (
	"strings"
	"time"
)

// Task represents a task on a project board.
// Task has the following properties:
// - Id: The unique identifier of the task, assigned by the store.
// - Title: The title of the task.
// - Description: The optional description of the task.
// - Status: The board column of the task. An empty status is treated as "To Do".
// - Priority: The optional priority of the task.
// - Tags: The optional comma-joined tag string.
// - StartDate, DueDate: The optional schedule of the task.
// - Points: The optional estimate of the task.
// - ProjectId: The project the task belongs to.
// - AuthorUserId, AssignedUserId: The user references of the task.
// - Author, Assignee: The resolved users, included when listing tasks.
// - Comments, Attachments: The related records, included when listing tasks.
type Task struct {
	Id             int          `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Status         Status       `json:"status,omitempty"`
	Priority       Priority     `json:"priority,omitempty"`
	Tags           string       `json:"tags,omitempty"`
	StartDate      *time.Time   `json:"startDate,omitempty"`
	DueDate        *time.Time   `json:"dueDate,omitempty"`
	Points         *int         `json:"points,omitempty"`
	ProjectId      int          `json:"projectId"`
	AuthorUserId   int          `json:"authorUserId"`
	AssignedUserId *int         `json:"assignedUserId,omitempty"`
	Author         *User        `json:"author,omitempty"`
	Assignee       *User        `json:"assignee,omitempty"`
	Comments       []Comment    `json:"comments,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// TagList splits the comma-joined tag string. Blank entries are skipped.
func (t Task) TagList() []string {
	if t.Tags == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(t.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Attachment is a file attached to a task.
type Attachment struct {
	Id           int    `json:"id"`
	FileURL      string `json:"fileURL"`
	FileName     string `json:"fileName,omitempty"`
	TaskId       int    `json:"taskId"`
	UploadedById int    `json:"uploadedById"`
}

// Comment is a remark left on a task by a user.
type Comment struct {
	Id     int    `json:"id"`
	Text   string `json:"text"`
	TaskId int    `json:"taskId"`
	UserId int    `json:"userId"`
}

package models

// User represents an author or assignee of tasks.
type User struct {
	UserId            int    `json:"userId"`
	Username          string `json:"username"`
	ProfilePictureUrl string `json:"profilePictureUrl,omitempty"`
}

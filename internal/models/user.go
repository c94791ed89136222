package models

// User is an account profile. Users are referenced by id everywhere else
// (project owners, members, task assignees) and resolved at read time.
// The json tags are the persisted field names and part of the store
// contract; they never change with the Go names.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

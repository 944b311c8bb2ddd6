package models

// User is an account known to the backend. Immutable once created.
type User struct {
	ID       int64  `json:"id"`       // Unique user identifier
	Username string `json:"username"` // Unique display name
}

package domain

import "time"

// User is the account record owned by the auth collaborator.
// The messaging core only ever sees its opaque ID.
type User struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic,omitempty"`
	Roles      []string  `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Admins bypass per-resource ownership checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered blog account. Sub is set for accounts created from OIDC claims.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Sub          string             `bson:"sub,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// AuthorRef is the reduced user shape embedded in post responses.
type AuthorRef struct {
	ID       primitive.ObjectID `json:"_id"`
	Username string             `json:"username"`
}

// Ref reduces the user to {_id, username}.
func (u *User) Ref() AuthorRef { return AuthorRef{ID: u.ID, Username: u.Username} }

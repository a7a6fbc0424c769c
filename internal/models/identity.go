package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Identity is the caller resolved by the authorization gate.
type Identity struct {
	ID       primitive.ObjectID
	Username string
	Role     string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CategoryRef is the reduced category shape embedded in post responses.
type CategoryRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

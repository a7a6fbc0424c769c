package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID parses a hex ObjectID. Every malformed input wraps primitive.ErrInvalidHex.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", primitive.ErrInvalidHex, s)
	}
	return id, nil
}

// Now returns the current UTC time at MongoDB's millisecond resolution.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

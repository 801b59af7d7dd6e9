package model

import "go.mongodb.org/mongo-driver/v2/bson"

// Role names known to the platform. Roles are seeded at startup and
// looked up by name during signup and authorization checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Role represents an authorization role assigned to users.
type Role struct {
	ID   bson.ObjectID `bson:"_id,omitempty"`
	Name string        `bson:"name"`
}

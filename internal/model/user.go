package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered member of the platform. RoleID references
// a Role record; the role name is resolved with a secondary fetch.
type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	FullName       string        `bson:"full_name"`
	Username       string        `bson:"username"`
	Email          string        `bson:"email"`
	PasswordHash   string        `bson:"password_hash"`
	ProfilePicture string        `bson:"profile_picture,omitempty"`
	RoleID         bson.ObjectID `bson:"role_id"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}

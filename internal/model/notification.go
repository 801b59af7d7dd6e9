package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Notification types emitted by the moderation workflow.
const (
	NotificationArticleApproved = "article_approved"
	NotificationArticleRejected = "article_rejected"
)

// Notification represents a moderation outcome delivered to an article's
// author. Destroyed together with its article or owning user.
type Notification struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Type      string        `bson:"type"`
	Message   string        `bson:"message"`
	ArticleID bson.ObjectID `bson:"article_id"`
	Read      bool          `bson:"read"`
	CreatedAt time.Time     `bson:"created_at"`
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Article moderation statuses. Status is the single source of truth for
// the moderation state; IsApproved is derived from it and always written
// in the same update so the two cannot drift apart.
const (
	ArticleStatusDraft    = "draft"
	ArticleStatusPending  = "pending"
	ArticleStatusApproved = "approved"
	ArticleStatusRejected = "rejected"
)

// Article represents a submitted article moving through the moderation
// workflow: draft -> pending -> approved/rejected.
type Article struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Title           string        `bson:"title"`
	Content         string        `bson:"content"`
	Status          string        `bson:"status"`
	IsApproved      bool          `bson:"is_approved"`
	Image           string        `bson:"image,omitempty"`
	RejectionReason string        `bson:"rejection_reason,omitempty"`
	AuthorID        bson.ObjectID `bson:"author_id"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}

// ValidArticleStatus reports whether s is one of the known moderation statuses.
func ValidArticleStatus(s string) bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPending, ArticleStatusApproved, ArticleStatusRejected:
		return true
	default:
		return false
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/inkwellhq/inkwell-api/internal/model"
)

// NotificationRepository defines the interface for notification-related database operations.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *model.Notification) (*model.Notification, error)
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID bson.ObjectID) ([]*model.Notification, error)
	MarkNotificationAsRead(ctx context.Context, id string) (*model.Notification, error)
	DeleteNotificationsByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
	DeleteNotificationsByArticle(ctx context.Context, articleID bson.ObjectID) (int64, error)
}

const notificationCollection = "notifications"

type notificationMongoRepository struct {
	db *mongo.Database
}

func NewNotificationMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) NotificationRepository {
	collection := db.Collection(notificationCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "article_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create notification indexes")
	}

	return &notificationMongoRepository{db: db}
}

func (r *notificationMongoRepository) CreateNotification(
	ctx context.Context,
	notification *model.Notification,
) (*model.Notification, error) {
	notification.CreatedAt = time.Now()
	notification.Read = false

	result, err := r.db.Collection(notificationCollection).InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		notification.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return notification, nil
}

func (r *notificationMongoRepository) GetNotification(ctx context.Context, id string) (*model.Notification, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(notificationCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var notification model.Notification
	if err := result.Decode(&notification); err != nil {
		return nil, err
	}

	return &notification, nil
}

func (r *notificationMongoRepository) ListNotificationsByUser(
	ctx context.Context,
	userID bson.ObjectID,
) ([]*model.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(notificationCollection).Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*model.Notification
	for cursor.Next(ctx) {
		var notification model.Notification
		if err := cursor.Decode(&notification); err != nil {
			return nil, err
		}
		notifications = append(notifications, &notification)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationMongoRepository) MarkNotificationAsRead(
	ctx context.Context,
	id string,
) (*model.Notification, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(notificationCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"read": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var notification model.Notification
	if err := result.Decode(&notification); err != nil {
		return nil, err
	}

	return &notification, nil
}

func (r *notificationMongoRepository) DeleteNotificationsByUser(
	ctx context.Context,
	userID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(notificationCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func (r *notificationMongoRepository) DeleteNotificationsByArticle(
	ctx context.Context,
	articleID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(notificationCollection).DeleteMany(ctx, bson.M{"article_id": articleID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

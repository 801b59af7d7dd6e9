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

// ArticleRepository defines the interface for article-related database operations.
type ArticleRepository interface {
	CreateArticle(ctx context.Context, article *model.Article) (*model.Article, error)
	GetArticle(ctx context.Context, id string) (*model.Article, error)
	UpdateArticle(ctx context.Context, id string, params UpdateArticleParams) (*model.Article, error)
	DeleteArticle(ctx context.Context, id string) (*model.Article, error)
	ListArticles(ctx context.Context, params FilterArticlesParams) ([]*model.Article, error)
	DeleteArticlesByAuthor(ctx context.Context, authorID bson.ObjectID) (int64, error)
	CountArticles(ctx context.Context, params FilterArticlesParams) (int64, error)
	CountArticlesByStatus(ctx context.Context, authorID *bson.ObjectID) (map[string]int64, error)
	CountArticlesByAuthor(ctx context.Context) (map[bson.ObjectID]int64, error)
}

// UpdateArticleParams defines the optional parameters for updating an article.
// Only the fields that are not nil will be updated. Setting Status also
// rewrites is_approved and the rejection reason in the same update document,
// so the moderation state cannot drift.
type UpdateArticleParams struct {
	Title           *string
	Content         *string
	Image           *string
	Status          *string
	RejectionReason *string
}

// FilterArticlesParams defines the parameters for filtering articles. All
// list queries sort by created_at descending.
type FilterArticlesParams struct {
	AuthorID   *bson.ObjectID
	Status     *string
	IsApproved *bool
}

const articleCollection = "articles"

type articleMongoRepository struct {
	db *mongo.Database
}

func NewArticleMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ArticleRepository {
	collection := db.Collection(articleCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "author_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create article indexes")
	}

	return &articleMongoRepository{db: db}
}

func (r *articleMongoRepository) CreateArticle(ctx context.Context, article *model.Article) (*model.Article, error) {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now
	article.IsApproved = article.Status == model.ArticleStatusApproved

	result, err := r.db.Collection(articleCollection).InsertOne(ctx, article)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		article.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return article, nil
}

func (r *articleMongoRepository) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(articleCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var article model.Article
	if err := result.Decode(&article); err != nil {
		return nil, err
	}

	return &article, nil
}

func (r *articleMongoRepository) UpdateArticle(
	ctx context.Context,
	id string,
	params UpdateArticleParams,
) (*model.Article, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	unsetMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Content != nil {
		updateMap["content"] = *params.Content
	}
	if params.Image != nil {
		updateMap["image"] = *params.Image
	}
	if params.Status != nil {
		updateMap["status"] = *params.Status
		updateMap["is_approved"] = *params.Status == model.ArticleStatusApproved
		if *params.Status != model.ArticleStatusRejected {
			unsetMap["rejection_reason"] = ""
		}
	}
	if params.RejectionReason != nil {
		updateMap["rejection_reason"] = *params.RejectionReason
		delete(unsetMap, "rejection_reason")
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no article fields to update")
	}

	updateMap["updated_at"] = time.Now()

	update := bson.M{"$set": updateMap}
	if len(unsetMap) > 0 {
		update["$unset"] = unsetMap
	}

	result := r.db.Collection(articleCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var article model.Article
	if err := result.Decode(&article); err != nil {
		return nil, err
	}

	return &article, nil
}

func (r *articleMongoRepository) DeleteArticle(ctx context.Context, id string) (*model.Article, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(articleCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var article model.Article
	if err := result.Decode(&article); err != nil {
		return nil, err
	}

	return &article, nil
}

func (r *articleMongoRepository) ListArticles(
	ctx context.Context,
	params FilterArticlesParams,
) ([]*model.Article, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(articleCollection).Find(ctx, articleFilter(params), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []*model.Article
	for cursor.Next(ctx) {
		var article model.Article
		if err := cursor.Decode(&article); err != nil {
			return nil, err
		}
		articles = append(articles, &article)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}

func (r *articleMongoRepository) DeleteArticlesByAuthor(ctx context.Context, authorID bson.ObjectID) (int64, error) {
	result, err := r.db.Collection(articleCollection).DeleteMany(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func (r *articleMongoRepository) CountArticles(ctx context.Context, params FilterArticlesParams) (int64, error) {
	return r.db.Collection(articleCollection).CountDocuments(ctx, articleFilter(params))
}

// CountArticlesByStatus groups articles by status in a single aggregation.
// When authorID is non-nil only that author's articles are counted.
func (r *articleMongoRepository) CountArticlesByStatus(
	ctx context.Context,
	authorID *bson.ObjectID,
) (map[string]int64, error) {
	pipeline := mongo.Pipeline{}
	if authorID != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"author_id": *authorID}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":   "$status",
		"count": bson.M{"$sum": 1},
	}}})

	cursor, err := r.db.Collection(articleCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// CountArticlesByAuthor groups articles by author in a single aggregation,
// replacing a per-user query loop when listing users.
func (r *articleMongoRepository) CountArticlesByAuthor(ctx context.Context) (map[bson.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$author_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.db.Collection(articleCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[bson.ObjectID]int64)
	for cursor.Next(ctx) {
		var row struct {
			AuthorID bson.ObjectID `bson:"_id"`
			Count    int64         `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.AuthorID] = row.Count
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func articleFilter(params FilterArticlesParams) bson.M {
	filter := bson.M{}
	if params.AuthorID != nil {
		filter["author_id"] = *params.AuthorID
	}
	if params.Status != nil {
		filter["status"] = *params.Status
	}
	if params.IsApproved != nil {
		filter["is_approved"] = *params.IsApproved
	}

	return filter
}

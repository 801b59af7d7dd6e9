package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/inkwellhq/inkwell-api/internal/imagehost"
	"github.com/inkwellhq/inkwell-api/internal/model"
	"github.com/inkwellhq/inkwell-api/internal/repository"
)

// ArticleUsecase defines the business logic for article and notification
// operations performed by regular users.
type ArticleUsecase interface {
	CreateArticle(ctx context.Context, authorID string, params CreateArticleParams) (*model.Article, error)
	ListMyArticles(ctx context.Context, authorID string) ([]*model.Article, error)
	ListApprovedArticles(ctx context.Context) ([]*ArticleWithAuthor, error)
	GetArticleStats(ctx context.Context, authorID string) (*ArticleStats, error)
	UpdateArticle(ctx context.Context, userID, articleID string, params UpdateMyArticleParams) (*model.Article, error)
	DeleteArticle(ctx context.Context, userID, articleID string) error
	ListNotifications(ctx context.Context, userID string) ([]*model.Notification, error)
	MarkNotificationAsRead(ctx context.Context, userID, notificationID string) (*model.Notification, error)
}

// CreateArticleParams defines the parameters for submitting an article.
type CreateArticleParams struct {
	Title   string
	Content string
	Status  string

	// ImagePath is a local temp file to upload, empty when the submission
	// carries no image.
	ImagePath string
}

// UpdateMyArticleParams defines the optional parameters for an owner-side
// article update.
type UpdateMyArticleParams struct {
	Title     *string
	Content   *string
	Status    *string
	ImagePath string
}

// ArticleWithAuthor pairs an article with its author for public listings.
type ArticleWithAuthor struct {
	Article *model.Article
	Author  *model.User
}

// ArticleStats holds a single author's article counts per moderation status.
type ArticleStats struct {
	Total    int64
	Draft    int64
	Pending  int64
	Approved int64
	Rejected int64
}

var (
	ErrArticleNotFound      = errors.New("article not found")
	ErrNotArticleOwner      = errors.New("not the owner of the article")
	ErrInvalidStatus        = errors.New("invalid article status")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("not the owner of the notification")
)

type articleUsecase struct {
	articleRepo      repository.ArticleRepository
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	uploader         imagehost.Uploader
}

// NewArticleUsecase creates a new instance of ArticleUsecase.
func NewArticleUsecase(
	articleRepo repository.ArticleRepository,
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	uploader imagehost.Uploader,
) ArticleUsecase {
	return &articleUsecase{
		articleRepo:      articleRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		uploader:         uploader,
	}
}

func (u *articleUsecase) CreateArticle(
	ctx context.Context,
	authorID string,
	params CreateArticleParams,
) (*model.Article, error) {
	author, err := bson.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = model.ArticleStatusDraft
	}
	// Users submit drafts or send them straight to moderation; the
	// approved/rejected statuses belong to admins.
	if status != model.ArticleStatusDraft && status != model.ArticleStatusPending {
		return nil, ErrInvalidStatus
	}

	image := ""
	if params.ImagePath != "" {
		image, err = u.uploader.Upload(ctx, params.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
		}
	}

	return u.articleRepo.CreateArticle(ctx, &model.Article{
		Title:    params.Title,
		Content:  params.Content,
		Status:   status,
		Image:    image,
		AuthorID: author,
	})
}

func (u *articleUsecase) ListMyArticles(ctx context.Context, authorID string) ([]*model.Article, error) {
	author, err := bson.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, err
	}

	return u.articleRepo.ListArticles(ctx, repository.FilterArticlesParams{AuthorID: &author})
}

func (u *articleUsecase) ListApprovedArticles(ctx context.Context) ([]*ArticleWithAuthor, error) {
	status := model.ArticleStatusApproved
	articles, err := u.articleRepo.ListArticles(ctx, repository.FilterArticlesParams{Status: &status})
	if err != nil {
		return nil, err
	}

	authors := make(map[bson.ObjectID]*model.User)
	result := make([]*ArticleWithAuthor, 0, len(articles))
	for _, article := range articles {
		author, ok := authors[article.AuthorID]
		if !ok {
			author, err = u.userRepo.GetUser(ctx, article.AuthorID.Hex())
			if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, err
			}
			authors[article.AuthorID] = author
		}
		result = append(result, &ArticleWithAuthor{Article: article, Author: author})
	}

	return result, nil
}

func (u *articleUsecase) GetArticleStats(ctx context.Context, authorID string) (*ArticleStats, error) {
	author, err := bson.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, err
	}

	counts, err := u.articleRepo.CountArticlesByStatus(ctx, &author)
	if err != nil {
		return nil, err
	}

	stats := &ArticleStats{
		Draft:    counts[model.ArticleStatusDraft],
		Pending:  counts[model.ArticleStatusPending],
		Approved: counts[model.ArticleStatusApproved],
		Rejected: counts[model.ArticleStatusRejected],
	}
	stats.Total = stats.Draft + stats.Pending + stats.Approved + stats.Rejected

	return stats, nil
}

func (u *articleUsecase) UpdateArticle(
	ctx context.Context,
	userID, articleID string,
	params UpdateMyArticleParams,
) (*model.Article, error) {
	article, err := u.getOwnedArticle(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}

	if params.Status != nil &&
		*params.Status != model.ArticleStatusDraft &&
		*params.Status != model.ArticleStatusPending {
		return nil, ErrInvalidStatus
	}

	updateParams := repository.UpdateArticleParams{
		Title:   params.Title,
		Content: params.Content,
		Status:  params.Status,
	}

	if params.ImagePath != "" {
		if article.Image != "" {
			_ = u.uploader.Destroy(ctx, imagehost.PublicIDFromURL(article.Image))
		}

		uploaded, err := u.uploader.Upload(ctx, params.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
		}
		updateParams.Image = &uploaded
	}

	return u.articleRepo.UpdateArticle(ctx, articleID, updateParams)
}

func (u *articleUsecase) DeleteArticle(ctx context.Context, userID, articleID string) error {
	article, err := u.getOwnedArticle(ctx, userID, articleID)
	if err != nil {
		return err
	}

	if _, err := u.notificationRepo.DeleteNotificationsByArticle(ctx, article.ID); err != nil {
		return err
	}

	if article.Image != "" {
		_ = u.uploader.Destroy(ctx, imagehost.PublicIDFromURL(article.Image))
	}

	_, err = u.articleRepo.DeleteArticle(ctx, articleID)
	return err
}

func (u *articleUsecase) ListNotifications(ctx context.Context, userID string) ([]*model.Notification, error) {
	user, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	return u.notificationRepo.ListNotificationsByUser(ctx, user)
}

func (u *articleUsecase) MarkNotificationAsRead(
	ctx context.Context,
	userID, notificationID string,
) (*model.Notification, error) {
	notification, err := u.notificationRepo.GetNotification(ctx, notificationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if notification.UserID.Hex() != userID {
		return nil, ErrNotNotificationOwner
	}

	return u.notificationRepo.MarkNotificationAsRead(ctx, notificationID)
}

func (u *articleUsecase) getOwnedArticle(ctx context.Context, userID, articleID string) (*model.Article, error) {
	article, err := u.articleRepo.GetArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	if article.AuthorID.Hex() != userID {
		return nil, ErrNotArticleOwner
	}

	return article, nil
}

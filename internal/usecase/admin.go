package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/inkwellhq/inkwell-api/internal/imagehost"
	"github.com/inkwellhq/inkwell-api/internal/model"
	"github.com/inkwellhq/inkwell-api/internal/repository"
)

// Email status values reported by ApproveArticle. Email delivery is a side
// channel: the approval itself never fails because of it.
const (
	EmailStatusSent     = "sent"
	EmailStatusNoAuthor = "author email missing"
)

// AdminUsecase defines the business logic for moderation and administration.
type AdminUsecase interface {
	ListUsers(ctx context.Context) ([]*UserWithStats, error)
	DeleteUser(ctx context.Context, id string) error
	ListArticlesByUser(ctx context.Context, userID string) ([]*model.Article, error)
	ListPendingArticles(ctx context.Context) ([]*model.Article, error)
	ListApprovedArticles(ctx context.Context) ([]*model.Article, error)
	ApproveArticle(ctx context.Context, id string) (*model.Article, string, error)
	DeclineArticle(ctx context.Context, id, reason string) (*model.Article, error)
	UpdateAnyArticle(ctx context.Context, id string, params repository.UpdateArticleParams) (*model.Article, error)
	DeleteAnyArticle(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*PlatformStatistics, error)
}

// UserWithStats pairs a user with its role and article count for the admin
// user listing.
type UserWithStats struct {
	User         *model.User
	Role         *model.Role
	ArticleCount int64
}

// PlatformStatistics holds platform-wide moderation counters.
type PlatformStatistics struct {
	TotalArticles    int64
	PendingArticles  int64
	ApprovedArticles int64

	// Users counts registered users excluding admins.
	Users int64
}

var (
	ErrReasonRequired = errors.New("rejection reason is required")
	ErrAuthorNotFound = errors.New("article has no author")
)

type adminUsecase struct {
	userRepo         repository.UserRepository
	roleRepo         repository.RoleRepository
	articleRepo      repository.ArticleRepository
	notificationRepo repository.NotificationRepository
	uploader         imagehost.Uploader
	mailer           EmailSender
}

// NewAdminUsecase creates a new instance of AdminUsecase.
func NewAdminUsecase(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	articleRepo repository.ArticleRepository,
	notificationRepo repository.NotificationRepository,
	uploader imagehost.Uploader,
	mailer EmailSender,
) AdminUsecase {
	return &adminUsecase{
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		articleRepo:      articleRepo,
		notificationRepo: notificationRepo,
		uploader:         uploader,
		mailer:           mailer,
	}
}

// ListUsers returns every user with its role and article count. Article
// counts come from a single aggregation instead of one query per user.
func (u *adminUsecase) ListUsers(ctx context.Context) ([]*UserWithStats, error) {
	users, err := u.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := u.articleRepo.CountArticlesByAuthor(ctx)
	if err != nil {
		return nil, err
	}

	roles := make(map[bson.ObjectID]*model.Role)
	result := make([]*UserWithStats, 0, len(users))
	for _, user := range users {
		role, ok := roles[user.RoleID]
		if !ok {
			role, err = u.roleRepo.GetRole(ctx, user.RoleID)
			if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, err
			}
			roles[user.RoleID] = role
		}

		result = append(result, &UserWithStats{
			User:         user,
			Role:         role,
			ArticleCount: counts[user.ID],
		})
	}

	return result, nil
}

func (u *adminUsecase) DeleteUser(ctx context.Context, id string) error {
	return deleteUserCascade(ctx, u.userRepo, u.articleRepo, u.notificationRepo, u.uploader, id)
}

func (u *adminUsecase) ListArticlesByUser(ctx context.Context, userID string) ([]*model.Article, error) {
	author, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	return u.articleRepo.ListArticles(ctx, repository.FilterArticlesParams{AuthorID: &author})
}

func (u *adminUsecase) ListPendingArticles(ctx context.Context) ([]*model.Article, error) {
	status := model.ArticleStatusPending
	return u.articleRepo.ListArticles(ctx, repository.FilterArticlesParams{Status: &status})
}

func (u *adminUsecase) ListApprovedArticles(ctx context.Context) ([]*model.Article, error) {
	status := model.ArticleStatusApproved
	return u.articleRepo.ListArticles(ctx, repository.FilterArticlesParams{Status: &status})
}

// ApproveArticle marks an article approved, notifies its author and attempts
// a congratulatory email. The returned email status reports the delivery
// outcome without ever failing the approval.
func (u *adminUsecase) ApproveArticle(ctx context.Context, id string) (*model.Article, string, error) {
	status := model.ArticleStatusApproved
	article, err := u.articleRepo.UpdateArticle(ctx, id, repository.UpdateArticleParams{Status: &status})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrArticleNotFound
		}
		return nil, "", err
	}

	author, err := u.userRepo.GetUser(ctx, article.AuthorID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return article, EmailStatusNoAuthor, nil
		}
		return nil, "", err
	}

	if _, err := u.notificationRepo.CreateNotification(ctx, &model.Notification{
		UserID:    author.ID,
		Type:      model.NotificationArticleApproved,
		Message:   fmt.Sprintf("Your article %q has been approved.", article.Title),
		ArticleID: article.ID,
	}); err != nil {
		return nil, "", err
	}

	emailStatus := EmailStatusSent
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Congratulations! Your article <strong>%s</strong> has been approved and is now live.</p>

		<p>Thank you,</p>
		<p>The Inkwell Team</p>
	`, author.FullName, article.Title)
	if err := u.mailer.SendHTML([]string{author.Email}, "Your article has been approved", htmlBody); err != nil {
		emailStatus = "failed: " + err.Error()
	}

	return article, emailStatus, nil
}

// DeclineArticle rejects an article with a mandatory reason and notifies its
// author. Nothing is mutated when the reason is missing or the author is gone.
func (u *adminUsecase) DeclineArticle(ctx context.Context, id, reason string) (*model.Article, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	article, err := u.articleRepo.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	author, err := u.userRepo.GetUser(ctx, article.AuthorID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	status := model.ArticleStatusRejected
	article, err = u.articleRepo.UpdateArticle(ctx, id, repository.UpdateArticleParams{
		Status:          &status,
		RejectionReason: &reason,
	})
	if err != nil {
		return nil, err
	}

	if _, err := u.notificationRepo.CreateNotification(ctx, &model.Notification{
		UserID:    author.ID,
		Type:      model.NotificationArticleRejected,
		Message:   fmt.Sprintf("Your article %q has been rejected: %s", article.Title, reason),
		ArticleID: article.ID,
	}); err != nil {
		return nil, err
	}

	return article, nil
}

func (u *adminUsecase) UpdateAnyArticle(
	ctx context.Context,
	id string,
	params repository.UpdateArticleParams,
) (*model.Article, error) {
	article, err := u.articleRepo.UpdateArticle(ctx, id, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	return article, nil
}

func (u *adminUsecase) DeleteAnyArticle(ctx context.Context, id string) error {
	article, err := u.articleRepo.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrArticleNotFound
		}
		return err
	}

	if _, err := u.notificationRepo.DeleteNotificationsByArticle(ctx, article.ID); err != nil {
		return err
	}

	if article.Image != "" {
		_ = u.uploader.Destroy(ctx, imagehost.PublicIDFromURL(article.Image))
	}

	_, err = u.articleRepo.DeleteArticle(ctx, id)
	return err
}

func (u *adminUsecase) Statistics(ctx context.Context) (*PlatformStatistics, error) {
	counts, err := u.articleRepo.CountArticlesByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}

	adminRole, err := u.roleRepo.GetRoleByName(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	users, err := u.userRepo.CountUsersExcludingRole(ctx, adminRole.ID)
	if err != nil {
		return nil, err
	}

	stats := &PlatformStatistics{
		PendingArticles:  counts[model.ArticleStatusPending],
		ApprovedArticles: counts[model.ArticleStatusApproved],
		Users:            users,
	}
	for _, count := range counts {
		stats.TotalArticles += count
	}

	return stats, nil
}

package handler

import (
	"regexp"
	"time"

	"github.com/inkwellhq/inkwell-api/internal/model"
	"github.com/inkwellhq/inkwell-api/internal/usecase"
)

// emailRegex is deliberately loose: anything of the shape local@domain.tld.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type signUpRequest struct {
	FullName string `json:"fullName" validate:"required"`
	UserName string `json:"userName" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type logInRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type googleLogInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type updateUserRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type createArticleRequest struct {
	Title   string `json:"title"   validate:"required"`
	Content string `json:"content" validate:"required"`
	Status  string `json:"status"`
}

type updateArticleRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

type declineArticleRequest struct {
	Reason string `json:"reason"`
}

type adminUpdateArticleRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	Status          *string `json:"status"`
	Image           *string `json:"image"`
	RejectionReason *string `json:"rejectionReason"`
}

type userResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	UserName       string `json:"userName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type articleResponse struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Content         string        `json:"content"`
	Status          string        `json:"status"`
	IsApproved      bool          `json:"isApproved"`
	Image           string        `json:"image,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	AuthorID        string        `json:"authorId"`
	Author          *userResponse `json:"author,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ArticleID string    `json:"articleId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type articleStatsResponse struct {
	Total    int64 `json:"total"`
	Draft    int64 `json:"draft"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type statisticsResponse struct {
	TotalArticles    int64 `json:"totalArticles"`
	PendingArticles  int64 `json:"pendingArticles"`
	ApprovedArticles int64 `json:"approvedArticles"`
	Users            int64 `json:"users"`
}

type adminUserResponse struct {
	userResponse
	ArticleCount int64 `json:"articleCount"`
}

func toUserResponse(user *model.User, role *model.Role) userResponse {
	roleName := ""
	if role != nil {
		roleName = role.Name
	}

	return userResponse{
		ID:             user.ID.Hex(),
		FullName:       user.FullName,
		UserName:       user.Username,
		Email:          user.Email,
		Role:           roleName,
		ProfilePicture: user.ProfilePicture,
	}
}

func toArticleResponse(article *model.Article) articleResponse {
	return articleResponse{
		ID:              article.ID.Hex(),
		Title:           article.Title,
		Content:         article.Content,
		Status:          article.Status,
		IsApproved:      article.IsApproved,
		Image:           article.Image,
		RejectionReason: article.RejectionReason,
		AuthorID:        article.AuthorID.Hex(),
		CreatedAt:       article.CreatedAt,
		UpdatedAt:       article.UpdatedAt,
	}
}

func toArticleResponses(articles []*model.Article) []articleResponse {
	result := make([]articleResponse, 0, len(articles))
	for _, article := range articles {
		result = append(result, toArticleResponse(article))
	}
	return result
}

func toNotificationResponse(notification *model.Notification) notificationResponse {
	return notificationResponse{
		ID:        notification.ID.Hex(),
		Type:      notification.Type,
		Message:   notification.Message,
		ArticleID: notification.ArticleID.Hex(),
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}

func toAuthResponse(session *usecase.AuthSession) authResponse {
	return authResponse{
		Token: session.Token,
		User:  toUserResponse(session.User, session.Role),
	}
}

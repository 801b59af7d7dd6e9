package handler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/inkwellhq/inkwell-api/internal/model"
	"github.com/inkwellhq/inkwell-api/internal/repository"
)

// duplicateKeyError fabricates the driver error shape the usecases check
// with mongo.IsDuplicateKeyError.
func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Second}
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*model.User
	clock *fakeClock
}

func newFakeUserRepo(clock *fakeClock) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[bson.ObjectID]*model.User), clock: clock}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, duplicateKeyError()
		}
	}

	user.ID = bson.NewObjectID()
	now := r.clock.next()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.FullName == nil && params.Email == nil && params.PasswordHash == nil &&
		params.ProfilePicture == nil && params.RoleID == nil {
		return nil, errors.New("no user fields to update")
	}

	if params.FullName != nil {
		user.FullName = *params.FullName
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.ProfilePicture != nil {
		user.ProfilePicture = *params.ProfilePicture
	}
	if params.RoleID != nil {
		user.RoleID = *params.RoleID
	}
	user.UpdatedAt = r.clock.next()

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(r.users, objectID)
	return user, nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *fakeUserRepo) CountUsersExcludingRole(_ context.Context, roleID bson.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, user := range r.users {
		if user.RoleID != roleID {
			count++
		}
	}
	return count, nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[bson.ObjectID]*model.Role
}

func newFakeRoleRepo(names ...string) *fakeRoleRepo {
	repo := &fakeRoleRepo{roles: make(map[bson.ObjectID]*model.Role)}
	_ = repo.EnsureRoles(context.Background(), names)
	return repo
}

func (r *fakeRoleRepo) GetRole(_ context.Context, id bson.ObjectID) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return role, nil
}

func (r *fakeRoleRepo) GetRoleByName(_ context.Context, name string) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeRoleRepo) EnsureRoles(_ context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		exists := false
		for _, role := range r.roles {
			if role.Name == name {
				exists = true
				break
			}
		}
		if !exists {
			id := bson.NewObjectID()
			r.roles[id] = &model.Role{ID: id, Name: name}
		}
	}
	return nil
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[bson.ObjectID]*model.Article
	clock    *fakeClock
}

func newFakeArticleRepo(clock *fakeClock) *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[bson.ObjectID]*model.Article), clock: clock}
}

func (r *fakeArticleRepo) CreateArticle(_ context.Context, article *model.Article) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	article.ID = bson.NewObjectID()
	now := r.clock.next()
	article.CreatedAt = now
	article.UpdatedAt = now
	article.IsApproved = article.Status == model.ArticleStatusApproved
	r.articles[article.ID] = article

	copied := *article
	return &copied, nil
}

func (r *fakeArticleRepo) GetArticle(_ context.Context, id string) (*model.Article, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	article, ok := r.articles[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *article
	return &copied, nil
}

func (r *fakeArticleRepo) UpdateArticle(
	_ context.Context,
	id string,
	params repository.UpdateArticleParams,
) (*model.Article, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	article, ok := r.articles[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Title != nil {
		article.Title = *params.Title
	}
	if params.Content != nil {
		article.Content = *params.Content
	}
	if params.Image != nil {
		article.Image = *params.Image
	}
	if params.Status != nil {
		article.Status = *params.Status
		article.IsApproved = *params.Status == model.ArticleStatusApproved
		if *params.Status != model.ArticleStatusRejected {
			article.RejectionReason = ""
		}
	}
	if params.RejectionReason != nil {
		article.RejectionReason = *params.RejectionReason
	}
	article.UpdatedAt = r.clock.next()

	copied := *article
	return &copied, nil
}

func (r *fakeArticleRepo) DeleteArticle(_ context.Context, id string) (*model.Article, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	article, ok := r.articles[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(r.articles, objectID)
	return article, nil
}

func (r *fakeArticleRepo) ListArticles(
	_ context.Context,
	params repository.FilterArticlesParams,
) ([]*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var articles []*model.Article
	for _, article := range r.articles {
		if !matchArticle(article, params) {
			continue
		}
		copied := *article
		articles = append(articles, &copied)
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
	return articles, nil
}

func (r *fakeArticleRepo) DeleteArticlesByAuthor(_ context.Context, authorID bson.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, article := range r.articles {
		if article.AuthorID == authorID {
			delete(r.articles, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeArticleRepo) CountArticles(
	_ context.Context,
	params repository.FilterArticlesParams,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, article := range r.articles {
		if matchArticle(article, params) {
			count++
		}
	}
	return count, nil
}

func (r *fakeArticleRepo) CountArticlesByStatus(
	_ context.Context,
	authorID *bson.ObjectID,
) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int64)
	for _, article := range r.articles {
		if authorID != nil && article.AuthorID != *authorID {
			continue
		}
		counts[article.Status]++
	}
	return counts, nil
}

func (r *fakeArticleRepo) CountArticlesByAuthor(_ context.Context) (map[bson.ObjectID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[bson.ObjectID]int64)
	for _, article := range r.articles {
		counts[article.AuthorID]++
	}
	return counts, nil
}

func matchArticle(article *model.Article, params repository.FilterArticlesParams) bool {
	if params.AuthorID != nil && article.AuthorID != *params.AuthorID {
		return false
	}
	if params.Status != nil && article.Status != *params.Status {
		return false
	}
	if params.IsApproved != nil && article.IsApproved != *params.IsApproved {
		return false
	}
	return true
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[bson.ObjectID]*model.Notification
	clock         *fakeClock
}

func newFakeNotificationRepo(clock *fakeClock) *fakeNotificationRepo {
	return &fakeNotificationRepo{
		notifications: make(map[bson.ObjectID]*model.Notification),
		clock:         clock,
	}
}

func (r *fakeNotificationRepo) CreateNotification(
	_ context.Context,
	notification *model.Notification,
) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification.ID = bson.NewObjectID()
	notification.CreatedAt = r.clock.next()
	notification.Read = false
	r.notifications[notification.ID] = notification

	copied := *notification
	return &copied, nil
}

func (r *fakeNotificationRepo) GetNotification(_ context.Context, id string) (*model.Notification, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *notification
	return &copied, nil
}

func (r *fakeNotificationRepo) ListNotificationsByUser(
	_ context.Context,
	userID bson.ObjectID,
) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var notifications []*model.Notification
	for _, notification := range r.notifications {
		if notification.UserID == userID {
			copied := *notification
			notifications = append(notifications, &copied)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *fakeNotificationRepo) MarkNotificationAsRead(
	_ context.Context,
	id string,
) (*model.Notification, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	notification.Read = true

	copied := *notification
	return &copied, nil
}

func (r *fakeNotificationRepo) DeleteNotificationsByUser(
	_ context.Context,
	userID bson.ObjectID,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, notification := range r.notifications {
		if notification.UserID == userID {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeNotificationRepo) DeleteNotificationsByArticle(
	_ context.Context,
	articleID bson.ObjectID,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, notification := range r.notifications {
		if notification.ArticleID == articleID {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.PasswordResetToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*model.PasswordResetToken)}
}

func (r *fakeTokenRepo) CreateToken(
	_ context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = bson.NewObjectID()
	token.Used = false
	r.tokens[token.Token] = token
	return token, nil
}

func (r *fakeTokenRepo) GetToken(_ context.Context, token string) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resetToken, ok := r.tokens[token]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *resetToken
	return &copied, nil
}

func (r *fakeTokenRepo) MarkTokenAsUsed(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if resetToken, ok := r.tokens[token]; ok {
		resetToken.Used = true
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpiredTokens(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, token := range r.tokens {
		if time.Now().After(token.ExpiresAt) {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeTokenRepo) InvalidateUserTokens(_ context.Context, userID bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.UserID == userID {
			token.Used = true
		}
	}
	return nil
}

// latestTokenForUser returns the newest usable token issued to the user.
func (r *fakeTokenRepo) latestTokenForUser(userID bson.ObjectID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.UserID == userID && !token.Used {
			return token.Token
		}
	}
	return ""
}

type fakeUploader struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
}

func (u *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.uploads++
	return "https://img.example.com/asset-" + localPath + ".png", nil
}

func (u *fakeUploader) Destroy(_ context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.destroyed = append(u.destroyed, publicID)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (m *fakeMailer) SendHTML(to []string, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errors.New("smtp connection refused")
	}
	m.sent = append(m.sent, subject)
	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/inkwellhq/inkwell-api/internal/auth"
	"github.com/inkwellhq/inkwell-api/internal/config"
	"github.com/inkwellhq/inkwell-api/internal/imagehost"
	"github.com/inkwellhq/inkwell-api/internal/model"
	"github.com/inkwellhq/inkwell-api/internal/provider"
	"github.com/inkwellhq/inkwell-api/internal/repository"
	"github.com/inkwellhq/inkwell-api/internal/security"
)

// EmailSender sends HTML emails. Satisfied by *mailer.Mailer.
type EmailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

// AuthUsecase defines the business logic for authentication and profile management.
type AuthUsecase interface {
	SignUp(ctx context.Context, params SignUpParams) (*AuthSession, error)
	Login(ctx context.Context, username, password string) (*AuthSession, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*AuthSession, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*Profile, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// SignUpParams defines the parameters for user registration.
type SignUpParams struct {
	FullName string
	Username string
	Email    string
	Password string
	RoleName string

	// ProfilePicturePath is a local temp file to upload, empty when the
	// signup carries no picture.
	ProfilePicturePath string
}

// UpdateProfileParams defines the optional parameters for a profile update.
type UpdateProfileParams struct {
	FullName           *string
	Email              *string
	Password           *string
	RoleName           *string
	ProfilePicturePath string
}

// AuthSession is the result of a successful signup or login.
type AuthSession struct {
	Token string
	User  *model.User
	Role  *model.Role
}

// Profile pairs a user with its resolved role.
type Profile struct {
	User *model.User
	Role *model.Role
}

var (
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrImageUploadFailed   = errors.New("image upload failed")
	ErrGoogleLoginDisabled = errors.New("google login is not configured")
)

type authUsecase struct {
	userRepo         repository.UserRepository
	roleRepo         repository.RoleRepository
	articleRepo      repository.ArticleRepository
	notificationRepo repository.NotificationRepository
	jwtAuth          auth.JWTAuthenticator
	uploader         imagehost.Uploader
	google           provider.GoogleIDTokenValidator
	cfg              *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	articleRepo repository.ArticleRepository,
	notificationRepo repository.NotificationRepository,
	jwtAuth auth.JWTAuthenticator,
	uploader imagehost.Uploader,
	google provider.GoogleIDTokenValidator,
	cfg *config.Config,
) AuthUsecase {
	return &authUsecase{
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		articleRepo:      articleRepo,
		notificationRepo: notificationRepo,
		jwtAuth:          jwtAuth,
		uploader:         uploader,
		google:           google,
		cfg:              cfg,
	}
}

func (u *authUsecase) SignUp(ctx context.Context, params SignUpParams) (*AuthSession, error) {
	roleName := params.RoleName
	if roleName == "" {
		roleName = model.RoleUser
	}

	role, err := u.roleRepo.GetRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	profilePicture := ""
	if params.ProfilePicturePath != "" {
		profilePicture, err = u.uploader.Upload(ctx, params.ProfilePicturePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
		}
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		FullName:       params.FullName,
		Username:       params.Username,
		Email:          params.Email,
		PasswordHash:   passwordHash,
		ProfilePicture: profilePicture,
		RoleID:         role.ID,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return u.createAuthSession(user, role)
}

func (u *authUsecase) Login(ctx context.Context, username, password string) (*AuthSession, error) {
	user, err := u.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if ok, err := security.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	role, err := u.roleRepo.GetRole(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return u.createAuthSession(user, role)
}

func (u *authUsecase) LoginWithGoogle(ctx context.Context, idToken string) (*AuthSession, error) {
	if u.google == nil {
		return nil, ErrGoogleLoginDisabled
	}

	tokenInfo, err := u.google.ValidateIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	role, err := u.roleRepo.GetRoleByName(ctx, model.RoleUser)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetUserByEmail(ctx, tokenInfo.Email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		// First Google login creates the account. The password hash is a
		// random value nobody knows, so password login stays impossible
		// until the user performs a reset.
		opaque, err := generateRandomHex()
		if err != nil {
			return nil, err
		}
		passwordHash, err := security.HashPassword(opaque)
		if err != nil {
			return nil, err
		}

		user, err = u.userRepo.CreateUser(ctx, &model.User{
			FullName:     tokenInfo.Email,
			Username:     tokenInfo.Email,
			Email:        tokenInfo.Email,
			PasswordHash: passwordHash,
			RoleID:       role.ID,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrUserAlreadyExists
			}
			return nil, err
		}

		return u.createAuthSession(user, role)
	}

	userRole, err := u.roleRepo.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	return u.createAuthSession(user, userRole)
}

func (u *authUsecase) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	role, err := u.roleRepo.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Role: role}, nil
}

func (u *authUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*Profile, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updateParams := repository.UpdateUserParams{
		FullName: params.FullName,
		Email:    params.Email,
	}

	if params.Password != nil {
		passwordHash, err := security.HashPassword(*params.Password)
		if err != nil {
			return nil, err
		}
		updateParams.PasswordHash = &passwordHash
	}

	if params.RoleName != nil {
		role, err := u.roleRepo.GetRoleByName(ctx, *params.RoleName)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrRoleNotFound
			}
			return nil, err
		}
		updateParams.RoleID = &role.ID
	}

	if params.ProfilePicturePath != "" {
		if user.ProfilePicture != "" {
			// Best effort: a stale remote asset is not worth failing the update.
			_ = u.uploader.Destroy(ctx, imagehost.PublicIDFromURL(user.ProfilePicture))
		}

		uploaded, err := u.uploader.Upload(ctx, params.ProfilePicturePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
		}
		updateParams.ProfilePicture = &uploaded
	}

	updated, err := u.userRepo.UpdateUser(ctx, userID, updateParams)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	role, err := u.roleRepo.GetRole(ctx, updated.RoleID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: updated, Role: role}, nil
}

func (u *authUsecase) DeleteAccount(ctx context.Context, userID string) error {
	return deleteUserCascade(ctx, u.userRepo, u.articleRepo, u.notificationRepo, u.uploader, userID)
}

func (u *authUsecase) createAuthSession(user *model.User, role *model.Role) (*AuthSession, error) {
	now := time.Now()
	claims := auth.AccessTokenClaims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Role:     role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.cfg.Token.AccessTokenExpiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Token.Issuer},
			Subject:   user.ID.Hex(),
		},
	}

	token, err := u.jwtAuth.GenerateToken(claims, u.cfg.Token.Secret)
	if err != nil {
		return nil, err
	}

	return &AuthSession{Token: token, User: user, Role: role}, nil
}

// deleteUserCascade removes a user together with their articles, the
// notifications referencing either, and the remote image assets. The steps
// are independent store calls; a failure partway leaves earlier deletions in
// place.
func deleteUserCascade(
	ctx context.Context,
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	notificationRepo repository.NotificationRepository,
	uploader imagehost.Uploader,
	userID string,
) error {
	user, err := userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	articles, err := articleRepo.ListArticles(ctx, repository.FilterArticlesParams{AuthorID: &user.ID})
	if err != nil {
		return err
	}

	for _, article := range articles {
		if _, err := notificationRepo.DeleteNotificationsByArticle(ctx, article.ID); err != nil {
			return err
		}
		if article.Image != "" {
			_ = uploader.Destroy(ctx, imagehost.PublicIDFromURL(article.Image))
		}
	}

	if _, err := articleRepo.DeleteArticlesByAuthor(ctx, user.ID); err != nil {
		return err
	}

	if _, err := notificationRepo.DeleteNotificationsByUser(ctx, user.ID); err != nil {
		return err
	}

	if user.ProfilePicture != "" {
		_ = uploader.Destroy(ctx, imagehost.PublicIDFromURL(user.ProfilePicture))
	}

	_, err = userRepo.DeleteUser(ctx, userID)
	return err
}

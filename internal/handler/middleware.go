package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/inkwellhq/inkwell-api/internal/auth"
	"github.com/inkwellhq/inkwell-api/internal/model"
	"github.com/inkwellhq/inkwell-api/internal/repository"
)

// Principal is the authenticated user attached to a request by the JWT
// middleware. It is re-fetched from the store on every request so revoked
// users and stale role claims do not survive token lifetime.
type Principal struct {
	ID             string
	Username       string
	Role           string
	Email          string
	FullName       string
	ProfilePicture string
}

type principalKey struct{}

// PrincipalFromContext returns the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	principal, _ := ctx.Value(principalKey{}).(*Principal)
	return principal
}

// Authenticator validates bearer tokens and loads the request principal.
type Authenticator struct {
	jwtAuth  auth.JWTAuthenticator
	secret   string
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewAuthenticator creates a new Authenticator instance.
func NewAuthenticator(
	jwtAuth auth.JWTAuthenticator,
	secret string,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
) *Authenticator {
	return &Authenticator{
		jwtAuth:  jwtAuth,
		secret:   secret,
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// Middleware authenticates the request and attaches the principal.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r.Header.Get("Authorization"))
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims := &auth.AccessTokenClaims{}
		if _, err := a.jwtAuth.ValidateTokenWithClaims(tokenStr, a.secret, claims); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := a.userRepo.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				writeError(w, http.StatusUnauthorized, "user no longer exists")
				return
			}
			writeError(w, http.StatusInternalServerError, "something went wrong")
			return
		}

		principal := &Principal{
			ID:             user.ID.Hex(),
			Username:       user.Username,
			Role:           claims.Role,
			Email:          user.Email,
			FullName:       user.FullName,
			ProfilePicture: user.ProfilePicture,
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows only principals whose stored role is "admin". The role
// is re-fetched so a demotion takes effect before the token expires.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())
		if principal == nil {
			writeError(w, http.StatusUnauthorized, "missing authentication")
			return
		}

		user, err := a.userRepo.GetUser(r.Context(), principal.ID)
		if err != nil {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}

		role, err := a.roleRepo.GetRole(r.Context(), user.RoleID)
		if err != nil || role.Name != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

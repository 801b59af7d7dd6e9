package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell-api/internal/usecase"
)

// AuthHandler serves the /users routes: signup, login, profile management
// and password reset.
type AuthHandler struct {
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validate             *validator.Validate
	logger               *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	validate *validator.Validate,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validate:             validate,
		logger:               logger,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	picturePath := ""

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req = signUpRequest{
			FullName: r.FormValue("fullName"),
			UserName: r.FormValue("userName"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
			Role:     r.FormValue("role"),
		}

		path, err := formFileToTemp(r, "profilePicture")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid profile picture upload")
			return
		}
		picturePath = path
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if picturePath != "" {
		defer os.Remove(picturePath)
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "fullName, userName, email and a password of at least 6 characters are required")
		return
	}
	if !emailRegex.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	session, err := h.authUsecase.SignUp(r.Context(), usecase.SignUpParams{
		FullName:           req.FullName,
		Username:           req.UserName,
		Email:              req.Email,
		Password:           req.Password,
		RoleName:           req.Role,
		ProfilePicturePath: picturePath,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign up")

		switch {
		case errors.Is(err, usecase.ErrRoleNotFound):
			writeError(w, http.StatusBadRequest, "role does not exist")
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			writeError(w, http.StatusConflict, "username or email already taken")
		case errors.Is(err, usecase.ErrImageUploadFailed):
			writeError(w, http.StatusInternalServerError, "profile picture upload failed")
		default:
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(session))
}

func (h *AuthHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req logInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "userName and password are required")
		return
	}

	session, err := h.authUsecase.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to log in")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(session))
}

func (h *AuthHandler) LogInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleLogInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "idToken is required")
		return
	}

	session, err := h.authUsecase.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to log in with google")

		if errors.Is(err, usecase.ErrGoogleLoginDisabled) {
			writeError(w, http.StatusNotImplemented, "google login is not configured")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(session))
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	profile, err := h.authUsecase.GetProfile(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get profile")

		if errors.Is(err, usecase.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(profile.User, profile.Role))
}

func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req updateUserRequest
	picturePath := ""

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req = updateUserRequest{
			FullName: formValuePtr(r, "fullName"),
			Email:    formValuePtr(r, "email"),
			Password: formValuePtr(r, "password"),
			Role:     formValuePtr(r, "role"),
		}

		path, err := formFileToTemp(r, "profilePicture")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid profile picture upload")
			return
		}
		picturePath = path
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if picturePath != "" {
		defer os.Remove(picturePath)
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if req.Email != nil && !emailRegex.MatchString(*req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	profile, err := h.authUsecase.UpdateProfile(r.Context(), principal.ID, usecase.UpdateProfileParams{
		FullName:           req.FullName,
		Email:              req.Email,
		Password:           req.Password,
		RoleName:           req.Role,
		ProfilePicturePath: picturePath,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update user")

		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrRoleNotFound):
			writeError(w, http.StatusBadRequest, "role does not exist")
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			writeError(w, http.StatusConflict, "username or email already taken")
		case errors.Is(err, usecase.ErrImageUploadFailed):
			writeError(w, http.StatusInternalServerError, "profile picture upload failed")
		default:
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(profile.User, profile.Role))
}

func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	if err := h.authUsecase.DeleteAccount(r.Context(), principal.ID); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete user")

		if errors.Is(err, usecase.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	// Identical response whether or not the account exists.
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if an account with that email exists, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), token, req.Password); err != nil {
		h.logger.Error().Err(err).Msg("failed to reset password")

		switch {
		case errors.Is(err, usecase.ErrTokenNotFound):
			writeError(w, http.StatusBadRequest, "invalid password reset token")
		case errors.Is(err, usecase.ErrTokenAlreadyUsed):
			writeError(w, http.StatusBadRequest, "password reset token has already been used")
		case errors.Is(err, usecase.ErrTokenExpired):
			writeError(w, http.StatusBadRequest, "password reset token has expired")
		default:
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

func formValuePtr(r *http.Request, field string) *string {
	if _, ok := r.MultipartForm.Value[field]; !ok {
		return nil
	}
	value := r.FormValue(field)
	return &value
}

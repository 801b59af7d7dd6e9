package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell-api/internal/repository"
	"github.com/inkwellhq/inkwell-api/internal/usecase"
)

// AdminHandler serves the /admin moderation routes.
type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
	logger       *zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(adminUsecase usecase.AdminUsecase, logger *zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
		logger:       logger,
	}
}

func (h *AdminHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminUsecase.ListUsers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list users")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	result := make([]adminUserResponse, 0, len(users))
	for _, entry := range users {
		result = append(result, adminUserResponse{
			userResponse: toUserResponse(entry.User, entry.Role),
			ArticleCount: entry.ArticleCount,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminUsecase.Statistics(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute statistics")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, statisticsResponse{
		TotalArticles:    stats.TotalArticles,
		PendingArticles:  stats.PendingArticles,
		ApprovedArticles: stats.ApprovedArticles,
		Users:            stats.Users,
	})
}

func (h *AdminHandler) GetPendingArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.adminUsecase.ListPendingArticles(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list pending articles")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponses(articles))
}

func (h *AdminHandler) GetApprovedArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.adminUsecase.ListApprovedArticles(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list approved articles")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponses(articles))
}

func (h *AdminHandler) GetArticlesByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	articles, err := h.adminUsecase.ListArticlesByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list articles by user")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponses(articles))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.adminUsecase.DeleteUser(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete user")

		if errors.Is(err, usecase.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (h *AdminHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.adminUsecase.DeleteAnyArticle(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete article")

		if errors.Is(err, usecase.ErrArticleNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "article deleted"})
}

// UpdateArticle is the admin override: any field, no ownership check.
func (h *AdminHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req adminUpdateArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := h.adminUsecase.UpdateAnyArticle(r.Context(), id, repository.UpdateArticleParams{
		Title:           req.Title,
		Content:         req.Content,
		Image:           req.Image,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update article")

		if errors.Is(err, usecase.ErrArticleNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *AdminHandler) ApproveArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	article, emailStatus, err := h.adminUsecase.ApproveArticle(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to approve article")

		if errors.Is(err, usecase.ErrArticleNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"article":     toArticleResponse(article),
		"emailStatus": emailStatus,
	})
}

func (h *AdminHandler) DeclineArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req declineArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	article, err := h.adminUsecase.DeclineArticle(r.Context(), id, req.Reason)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to decline article")

		switch {
		case errors.Is(err, usecase.ErrReasonRequired):
			writeError(w, http.StatusBadRequest, "a rejection reason is required")
		case errors.Is(err, usecase.ErrAuthorNotFound):
			writeError(w, http.StatusBadRequest, "article has no author")
		case errors.Is(err, usecase.ErrArticleNotFound):
			writeError(w, http.StatusNotFound, "article not found")
		default:
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

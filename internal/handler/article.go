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

// ArticleHandler serves the /articles routes.
type ArticleHandler struct {
	articleUsecase usecase.ArticleUsecase
	validate       *validator.Validate
	logger         *zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler instance.
func NewArticleHandler(
	articleUsecase usecase.ArticleUsecase,
	validate *validator.Validate,
	logger *zerolog.Logger,
) *ArticleHandler {
	return &ArticleHandler{
		articleUsecase: articleUsecase,
		validate:       validate,
		logger:         logger,
	}
}

func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req createArticleRequest
	imagePath := ""

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req = createArticleRequest{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
			Status:  r.FormValue("status"),
		}

		path, err := formFileToTemp(r, "image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
		imagePath = path
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if imagePath != "" {
		defer os.Remove(imagePath)
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	article, err := h.articleUsecase.CreateArticle(r.Context(), principal.ID, usecase.CreateArticleParams{
		Title:     req.Title,
		Content:   req.Content,
		Status:    req.Status,
		ImagePath: imagePath,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create article")

		switch {
		case errors.Is(err, usecase.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "status must be draft or pending")
		case errors.Is(err, usecase.ErrImageUploadFailed):
			writeError(w, http.StatusInternalServerError, "image upload failed")
		default:
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toArticleResponse(article))
}

func (h *ArticleHandler) GetMyArticles(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	articles, err := h.articleUsecase.ListMyArticles(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list own articles")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponses(articles))
}

// GetAllArticles is the public feed: approved articles only, newest first,
// with the author embedded.
func (h *ArticleHandler) GetAllArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleUsecase.ListApprovedArticles(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list approved articles")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	result := make([]articleResponse, 0, len(articles))
	for _, entry := range articles {
		resp := toArticleResponse(entry.Article)
		if entry.Author != nil {
			author := toUserResponse(entry.Author, nil)
			resp.Author = &author
		}
		result = append(result, resp)
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ArticleHandler) GetArticleStats(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	stats, err := h.articleUsecase.GetArticleStats(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute article stats")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, articleStatsResponse{
		Total:    stats.Total,
		Draft:    stats.Draft,
		Pending:  stats.Pending,
		Approved: stats.Approved,
		Rejected: stats.Rejected,
	})
}

func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	articleID := chi.URLParam(r, "id")

	var req updateArticleRequest
	imagePath := ""

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req = updateArticleRequest{
			Title:   formValuePtr(r, "title"),
			Content: formValuePtr(r, "content"),
			Status:  formValuePtr(r, "status"),
		}

		path, err := formFileToTemp(r, "image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
		imagePath = path
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if imagePath != "" {
		defer os.Remove(imagePath)
	}

	article, err := h.articleUsecase.UpdateArticle(r.Context(), principal.ID, articleID, usecase.UpdateMyArticleParams{
		Title:     req.Title,
		Content:   req.Content,
		Status:    req.Status,
		ImagePath: imagePath,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update article")
		h.writeArticleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	articleID := chi.URLParam(r, "id")

	if err := h.articleUsecase.DeleteArticle(r.Context(), principal.ID, articleID); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete article")
		h.writeArticleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "article deleted"})
}

func (h *ArticleHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	notifications, err := h.articleUsecase.ListNotifications(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notifications")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	result := make([]notificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		result = append(result, toNotificationResponse(notification))
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ArticleHandler) MarkNotificationAsRead(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	notificationID := chi.URLParam(r, "id")

	notification, err := h.articleUsecase.MarkNotificationAsRead(r.Context(), principal.ID, notificationID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to mark notification as read")

		switch {
		case errors.Is(err, usecase.ErrNotificationNotFound):
			writeError(w, http.StatusNotFound, "notification not found")
		case errors.Is(err, usecase.ErrNotNotificationOwner):
			writeError(w, http.StatusForbidden, "not the owner of this notification")
		default:
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, toNotificationResponse(notification))
}

func (h *ArticleHandler) writeArticleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrArticleNotFound):
		writeError(w, http.StatusNotFound, "article not found")
	case errors.Is(err, usecase.ErrNotArticleOwner):
		writeError(w, http.StatusForbidden, "not the owner of this article")
	case errors.Is(err, usecase.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "status must be draft or pending")
	case errors.Is(err, usecase.ErrImageUploadFailed):
		writeError(w, http.StatusInternalServerError, "image upload failed")
	default:
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDependencies bundles everything the HTTP router needs.
type RouterDependencies struct {
	Auth          *AuthHandler
	Articles      *ArticleHandler
	Admin         *AdminHandler
	Authenticator *Authenticator
	Logger        *zerolog.Logger
}

// NewRouter assembles the chi router for the whole API surface.
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	authn := deps.Authenticator

	r.Route("/users", func(r chi.Router) {
		r.Post("/signup", deps.Auth.SignUp)
		r.Post("/login", deps.Auth.LogIn)
		r.Post("/login/google", deps.Auth.LogInWithGoogle)
		r.Post("/forgot-password", deps.Auth.ForgotPassword)
		r.Post("/reset-password/{token}", deps.Auth.ResetPassword)

		r.With(authn.Middleware).Get("/getProfile", deps.Auth.GetProfile)
		r.With(authn.Middleware).Put("/update", deps.Auth.UpdateUser)
		r.With(authn.Middleware).Delete("/delete", deps.Auth.DeleteUser)
	})

	r.Route("/articles", func(r chi.Router) {
		r.Get("/all", deps.Articles.GetAllArticles)

		r.With(authn.Middleware).Post("/create-article", deps.Articles.CreateArticle)
		r.With(authn.Middleware).Get("/get-my-article", deps.Articles.GetMyArticles)
		r.With(authn.Middleware).Get("/stats", deps.Articles.GetArticleStats)
		r.With(authn.Middleware).Put("/update-article/{id}", deps.Articles.UpdateArticle)
		r.With(authn.Middleware).Delete("/delete-article/{id}", deps.Articles.DeleteArticle)
		r.With(authn.Middleware).Get("/notifications", deps.Articles.GetNotifications)
		r.With(authn.Middleware).Put("/notifications/{id}/read", deps.Articles.MarkNotificationAsRead)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authn.Middleware)
		r.Use(authn.RequireAdmin)

		r.Get("/get-users", deps.Admin.GetAllUsers)
		r.Get("/statistics", deps.Admin.GetStatistics)
		r.Get("/pending-articles", deps.Admin.GetPendingArticles)
		r.Get("/approved-articles", deps.Admin.GetApprovedArticles)
		r.Get("/get-articles/{userId}", deps.Admin.GetArticlesByUser)
		r.Delete("/delete-user/{id}", deps.Admin.DeleteUser)
		r.Delete("/delete-article/{id}", deps.Admin.DeleteArticle)
		r.Put("/update-article/{id}", deps.Admin.UpdateArticle)
		r.Put("/approve-article/{id}", deps.Admin.ApproveArticle)
		r.Put("/articles/{id}/decline", deps.Admin.DeclineArticle)
	})

	return r
}

func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("request completed")
		})
	}
}

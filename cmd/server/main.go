package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/inkwellhq/inkwell-api/internal/auth"
	"github.com/inkwellhq/inkwell-api/internal/config"
	"github.com/inkwellhq/inkwell-api/internal/handler"
	"github.com/inkwellhq/inkwell-api/internal/imagehost"
	"github.com/inkwellhq/inkwell-api/internal/mailer"
	"github.com/inkwellhq/inkwell-api/internal/model"
	"github.com/inkwellhq/inkwell-api/internal/provider"
	"github.com/inkwellhq/inkwell-api/internal/repository"
	"github.com/inkwellhq/inkwell-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.New(&logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	roleRepo := repository.NewRoleMongoRepository(ctx, &logger, db)
	articleRepo := repository.NewArticleMongoRepository(ctx, &logger, db)
	notificationRepo := repository.NewNotificationMongoRepository(ctx, &logger, db)
	tokenRepo := repository.NewPasswordResetTokenMongoRepository(ctx, &logger, db)

	if err := roleRepo.EnsureRoles(ctx, []string{model.RoleUser, model.RoleAdmin}); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed roles")
	}

	mail := mailer.NewMailer(&logger)
	if err := mail.Verify(); err != nil {
		logger.Warn().Err(err).Msg("smtp transport verification failed")
	}

	uploader := imagehost.NewClient(cfg.ImageHost.BaseURL, cfg.ImageHost.APIKey)

	var google provider.GoogleIDTokenValidator
	if cfg.GoogleClientID != "" {
		google = provider.NewGoogleOAuthProvider(cfg.GoogleClientID)
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	authUsecase := usecase.NewAuthUsecase(
		userRepo, roleRepo, articleRepo, notificationRepo, jwtAuth, uploader, google, cfg,
	)
	articleUsecase := usecase.NewArticleUsecase(articleRepo, notificationRepo, userRepo, uploader)
	adminUsecase := usecase.NewAdminUsecase(
		userRepo, roleRepo, articleRepo, notificationRepo, uploader, mail,
	)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(userRepo, tokenRepo, mail, cfg)

	validate := validator.New(validator.WithRequiredStructEnabled())

	router := handler.NewRouter(handler.RouterDependencies{
		Auth:          handler.NewAuthHandler(authUsecase, passwordResetUsecase, validate, &logger),
		Articles:      handler.NewArticleHandler(articleUsecase, validate, &logger),
		Admin:         handler.NewAdminHandler(adminUsecase, &logger),
		Authenticator: handler.NewAuthenticator(jwtAuth, cfg.Token.Secret, userRepo, roleRepo),
		Logger:        &logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("http server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("http server shutdown failed")
	}

	logger.Info().Msg("http server stopped")
}

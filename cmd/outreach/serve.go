package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"outreach/internal/approval"
	"outreach/internal/assign"
	"outreach/internal/authn"
	"outreach/internal/cache"
	"outreach/internal/db"
	"outreach/internal/events"
	"outreach/internal/server"
	"outreach/internal/storage"
	"outreach/internal/store"
	"outreach/internal/workflow"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	usersRepo := store.NewUserRepository(pool)
	requestsRepo := store.NewRequestRepository(pool, usersRepo)
	offersRepo := store.NewSupportOfferRepository(pool)
	historyRepo := store.NewRequestEventRepository(pool)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	provider := authn.NewCognitoProvider(cognitoClient, config.CognitoUserPoolID, config.CognitoClientID, logger)
	verifier := authn.NewVerifier(jwkCache, jwksURL)

	uploader := storage.NewS3Storage(s3Client, config.StorageBucketName, config.StoragePublicURL, logger)

	requestCache, err := buildCache(config.RedisURL, logger)
	if err != nil {
		return err
	}

	dispatcher := events.NewInMemoryDispatcher()
	events.NewRecorder(historyRepo, logger).Register(dispatcher)

	orchestrator := workflow.NewOrchestrator(requestsRepo, uploader, requestCache, dispatcher, logger)
	engine := assign.NewEngine(usersRepo, requestsRepo)
	approvals := approval.NewService(provider, logger)

	srv, err := server.New(
		config,
		logger,
		provider,
		verifier,
		requestsRepo,
		offersRepo,
		historyRepo,
		orchestrator,
		engine,
		approvals,
		dispatcher,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

// buildCache picks Redis when configured and falls back to the in-process
// cache otherwise.
func buildCache(redisURL string, logger *logrus.Logger) (cache.Cache, error) {
	if redisURL == "" {
		return cache.NewMemory(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	return cache.NewRedis(redis.NewClient(opts), logger), nil
}

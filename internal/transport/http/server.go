package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/oyishomapeter-tech/blog-app/internal/cache"
	"github.com/oyishomapeter-tech/blog-app/internal/config"
	"github.com/oyishomapeter-tech/blog-app/internal/database"
	"github.com/oyishomapeter-tech/blog-app/internal/handler"
	"github.com/oyishomapeter-tech/blog-app/internal/logging"
	"github.com/oyishomapeter-tech/blog-app/internal/redis"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
	"github.com/oyishomapeter-tech/blog-app/internal/repository/memory"
	"github.com/oyishomapeter-tech/blog-app/internal/service"
	"github.com/oyishomapeter-tech/blog-app/internal/view"
)

const shutdownTimeout = 10 * time.Second

// Stores bundles the repositories the application runs on.
type Stores struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
}

// NewHandler builds services and handlers on top of stores and returns the
// routed application.
func NewHandler(cfg *config.Config, stores Stores, userCache cache.UserCache, logger zerolog.Logger) (stdhttp.Handler, error) {
	views, err := view.New()
	if err != nil {
		return nil, err
	}

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	userService := service.NewUserService(stores.Users, userCache)
	postService := service.NewPostService(stores.Posts, stores.Comments)
	feedService := service.NewFeedService(stores.Posts)

	return NewRouter(RouterConfig{
		AuthHandler: handler.NewAuthHandler(userService, tokenService, views, cfg),
		FeedHandler: handler.NewFeedHandler(feedService, postService, views),
		PostHandler: handler.NewPostHandler(postService, feedService, views),
		PageHandler: handler.NewPageHandler(postService, views),
		Tokens:      tokenService,
		Users:       userService,
		Logger:      logger,
	}), nil
}

// openStores returns repositories for the configured driver and a func that
// releases them.
func openStores(ctx context.Context, cfg *config.Config) (Stores, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return Stores{Users: store.Users(), Posts: store.Posts(), Comments: store.Comments()}, func() {}, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return Stores{}, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db.DB); err != nil {
			db.Close()
			return Stores{}, nil, err
		}
	}

	stores := Stores{
		Users:    repository.NewUserRepository(db),
		Posts:    repository.NewPostRepository(db),
		Comments: repository.NewCommentRepository(db),
	}
	return stores, func() { db.Close() }, nil
}

// openUserCache connects to Redis when configured. Without REDIS_URL every
// lookup goes to the database.
func openUserCache(ctx context.Context, cfg *config.Config) (cache.UserCache, func(), error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, user cache disabled")
		return cache.NopUserCache{}, func() {}, nil
	}

	client, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return cache.NewUserCache(client.Client, cfg.UserCacheTTL), func() { client.Close() }, nil
}

// Run loads configuration, opens storage and serves until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	userCache, closeCache, err := openUserCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	h, err := NewHandler(cfg, stores, userCache, logger)
	if err != nil {
		return err
	}

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("driver", cfg.DBDriver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

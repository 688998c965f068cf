package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pandamarket/apiserver/config"
	"github.com/pandamarket/apiserver/internal/auth"
	"github.com/pandamarket/apiserver/internal/db"
	"github.com/pandamarket/apiserver/internal/handlers"
	"github.com/pandamarket/apiserver/internal/mq"
	"github.com/pandamarket/apiserver/internal/services"
	"github.com/pandamarket/apiserver/internal/storage"
	"github.com/pandamarket/apiserver/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	broker     *mq.MQ
	logger     *zap.SugaredLogger
}

// New constructs a Server with all dependencies wired from config.
func New(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenManager(
		cfg.Token.AccessSecret,
		cfg.Token.RefreshSecret,
		cfg.Token.AccessTTL,
		cfg.Token.RefreshTTL,
	)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	cookies := auth.NewCookieWriter(cfg.Token.SecureCookies, tokens.AccessTTL(), tokens.RefreshTTL())

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
	}
	denylist := auth.NewDenylist(redisClient)

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	productRepo := store.NewProductRepository(dbConn)
	articleRepo := store.NewArticleRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)
	reactionRepo := store.NewReactionRepository(dbConn)
	notificationRepo := store.NewNotificationRepository(dbConn)

	userService := services.NewUserService(userRepo)
	reactionService := services.NewReactionService(reactionRepo)
	var publisher services.EventPublisher
	if broker != nil {
		publisher = broker
	}
	notificationService := services.NewNotificationService(notificationRepo, publisher, cfg.MQ.Channel, logger)
	productService := services.NewProductService(productRepo, reactionRepo, notificationService)
	articleService := services.NewArticleService(articleRepo, reactionRepo)
	commentService := services.NewCommentService(commentRepo, articleRepo, productRepo)

	authHandler := handlers.NewAuthHandler(userService, tokens, cookies, denylist)
	productHandler := handlers.NewProductHandler(productService, reactionService, commentService)
	articleHandler := handlers.NewArticleHandler(articleService, reactionService, commentService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	session := handlers.NewSession(tokens, denylist)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Group(func(r chi.Router) {
		r.Use(session.WithSession)
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authHandler)
		})
		r.With(handlers.RequireAuth).Get("/users/me", authHandler.Me)
		r.Route("/products", func(r chi.Router) {
			handlers.ProductRouter(r, productHandler)
		})
		r.Route("/articles", func(r chi.Router) {
			handlers.ArticleRouter(r, articleHandler)
		})
		r.Route("/comments", func(r chi.Router) {
			handlers.CommentRouter(r, commentHandler)
		})
		r.Route("/notifications", func(r chi.Router) {
			handlers.NotificationRouter(r, notificationHandler)
		})
		if imageStore, err := storage.Open(ctx, cfg.Storage); err != nil {
			logger.Warnw("image storage unavailable, uploads disabled", "error", err)
		} else if imageStore != nil {
			imageHandler := handlers.NewImageHandler(imageStore, cfg.Storage.PublicBaseURL)
			r.Route("/images", func(r chi.Router) {
				handlers.ImageRouter(r, imageHandler)
			})
		}
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		redis:      redisClient,
		broker:     broker,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown attempts a graceful shutdown and closes all connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}

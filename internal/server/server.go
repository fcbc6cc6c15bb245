// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	nats           *nats.Conn
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens       *middleware.TokenManager
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	authService         *service.AuthService
	userService         *service.UserService
	postService         *service.PostService
	commentService      *service.CommentService
	socialService       *service.SocialService
	notificationService *service.NotificationService
	catalogService      *service.CatalogService
	libraryService      *service.LibraryService
	permissionService   *service.PermissionService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, token revocation and the live stream are
// then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	nc, err := notifications.ConnectNATS(cfg.NATSURL)
	if err != nil {
		middleware.Logger.Warn("nats unavailable, notification events disabled",
			slog.String("error", err.Error()))
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		nats:           nc,
		promMiddleware: middleware.InitMetrics("agora-api"),
		tokens:         middleware.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	var sinks []notifications.Sink
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		sinks = append(sinks, s.notifier)
	}
	if nc != nil {
		sinks = append(sinks, notifications.NewNATSPublisher(nc))
	}

	users := repository.NewUserRepository(db, redisClient)
	posts := repository.NewPostRepository(db, redisClient)
	groups := repository.NewGroupRepository(db)

	s.authService = service.NewAuthService(users, s.tokens, groups)
	s.userService = service.NewUserService(users)
	s.postService = service.NewPostService(posts, repository.NewTagRepository(db))
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db, redisClient), posts)
	s.socialService = service.NewSocialService(
		repository.NewFollowRepository(db, redisClient),
		repository.NewLikeRepository(db, redisClient),
		users,
		notifications.NewDispatcher(sinks...),
	)
	s.notificationService = service.NewNotificationService(repository.NewNotificationRepository(db), s.featureFlags)
	s.catalogService = service.NewCatalogService(
		repository.NewBookRepository(db, redisClient),
		repository.NewAuthorRepository(db, redisClient),
	)
	s.libraryService = service.NewLibraryService(repository.NewLibraryRepository(db))
	s.permissionService = service.NewPermissionService(users, groups)

	return s, nil
}

// NewApp builds the Fiber app with every middleware and route registered.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Agora API",
		StrictRouting: false,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application. Routing is not
// strict, so every path also answers with a trailing slash.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api", s.tokens.OptionalAuth())
	auth := s.Authenticated()
	authWrite := s.config.RateLimitAuth
	if authWrite <= 0 {
		authWrite = 10
	}
	write := middleware.RateLimit(s.redis, max(s.config.RateLimitWrite, 1), time.Minute, "write")

	// Auth
	api.Post("/auth/register", middleware.RateLimit(s.redis, authWrite, time.Minute, "register"),
		Validate(registerRequest.validate), s.Register)
	api.Post("/auth/login", middleware.RateLimit(s.redis, authWrite, time.Minute, "login"),
		Validate(loginRequest.validate), s.Login)
	api.Post("/auth/logout", auth, s.Logout)

	// Accounts
	api.Get("/profile", auth, s.GetProfile)
	api.Put("/profile", auth, Validate(profileRequest.validate), s.UpdateProfile)
	api.Patch("/profile", auth, Validate(profileRequest.validate), s.UpdateProfile)
	api.Get("/users", s.ListUsers)
	api.Get("/users/:id/followers", s.ListFollowers)
	api.Get("/users/:id/following", s.ListFollowing)
	api.Post("/users/:id/follow", auth, write, s.FollowUser)
	api.Post("/users/:id/unfollow", auth, write, s.UnfollowUser)
	api.Post("/users/:id/promote-admin", auth, s.AdminRequired(), s.PromoteToAdmin)
	api.Post("/users/:id/demote-admin", auth, s.AdminRequired(), s.DemoteFromAdmin)
	api.Get("/users/:id", s.GetUser)

	// Posts
	postOwner := s.Owner("id", s.postService.PostAuthor)
	api.Get("/posts", s.ListPosts)
	api.Post("/posts", auth, write, Validate(postRequest.validateCreate), s.CreatePost)
	api.Get("/posts/:id", s.GetPost)
	api.Put("/posts/:id", auth, postOwner, Validate(postRequest.validateCreate), s.UpdatePost)
	api.Patch("/posts/:id", auth, postOwner, Validate(postRequest.validatePatch), s.UpdatePost)
	api.Delete("/posts/:id", auth, postOwner, s.DeletePost)
	api.Post("/posts/:id/like", auth, write, s.LikePost)
	api.Post("/posts/:id/unlike", auth, write, s.UnlikePost)
	api.Get("/tags", s.ListTags)
	api.Get("/tags/:slug/posts", s.ListPostsByTag)
	api.Get("/search", s.SearchPosts)
	api.Get("/feed", auth, s.GetFeed)

	// Comments
	commentOwner := s.Owner("id", s.commentService.CommentAuthor)
	api.Get("/comments", s.ListComments)
	api.Post("/comments", auth, write, Validate(commentRequest.validateCreate), s.CreateComment)
	api.Get("/comments/:id", s.GetComment)
	api.Put("/comments/:id", auth, commentOwner, Validate(commentRequest.validateUpdate), s.UpdateComment)
	api.Patch("/comments/:id", auth, commentOwner, Validate(commentRequest.validateUpdate), s.UpdateComment)
	api.Delete("/comments/:id", auth, commentOwner, s.DeleteComment)

	// Notifications
	api.Get("/notifications", auth, s.ListNotifications)
	api.Post("/notifications/read", auth, Validate(markReadRequest.validate), s.MarkNotificationsRead)
	api.Get("/notifications/unread-count", auth, s.UnreadNotificationCount)
	api.Get("/ws/notifications", s.tokens.WebSocketAuthRequired(), s.NotificationStreamHandler())

	// Catalog
	api.Get("/books", s.ListBooks)
	api.Post("/books", auth, Validate(bookRequest.validateCreate), s.CreateBook)
	api.Get("/books/:id", s.GetBook)
	api.Put("/books/:id", auth, Validate(bookRequest.validateCreate), s.UpdateBook)
	api.Patch("/books/:id", auth, Validate(bookRequest.validatePatch), s.UpdateBook)
	api.Delete("/books/:id", auth, s.DeleteBook)
	api.Get("/authors", s.ListAuthors)
	api.Post("/authors", auth, Validate(nameRequest.validate), s.CreateAuthor)
	api.Get("/authors/:id", s.GetAuthor)
	api.Get("/authors/:id/books", s.ListAuthorBooks)

	// Libraries
	api.Get("/libraries", s.ListLibraries)
	api.Post("/libraries", auth, s.Permission(models.PermCreate), Validate(nameRequest.validate), s.CreateLibrary)
	api.Get("/libraries/:id", s.GetLibrary)
	api.Put("/libraries/:id", auth, s.Permission(models.PermEdit), Validate(nameRequest.validate), s.RenameLibrary)
	api.Delete("/libraries/:id", auth, s.Permission(models.PermDelete), s.DeleteLibrary)
	api.Post("/libraries/:id/books/:bookId", auth, s.Permission(models.PermEdit), s.AddLibraryBook)
	api.Delete("/libraries/:id/books/:bookId", auth, s.Permission(models.PermEdit), s.RemoveLibraryBook)
	api.Put("/libraries/:id/librarian", auth, s.Permission(models.PermEdit), Validate(nameRequest.validate), s.AssignLibrarian)
	api.Get("/roles/:role", auth, s.RoleView)

	api.Get("/feature-flags", s.GetFeatureFlags)
}

// Authenticated rejects anonymous callers with 401.
func (s *Server) Authenticated() fiber.Handler {
	return s.tokens.AuthRequired()
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the live notification stream and serves HTTP until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil && !errors.Is(err, context.Canceled) {
				middleware.Logger.Error("notification hub wiring stopped",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + strings.TrimPrefix(s.config.Port, ":"))
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if s.nats != nil {
		if err := s.nats.Drain(); err != nil {
			middleware.Logger.Error("error draining nats", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}

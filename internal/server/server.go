// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"hoopsnews/internal/auth"
	"hoopsnews/internal/cache"
	"hoopsnews/internal/config"
	"hoopsnews/internal/database"
	"hoopsnews/internal/middleware"
	"hoopsnews/internal/models"
	"hoopsnews/internal/repository"
	"hoopsnews/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	promMiddleware  *fiberprometheus.FiberPrometheus
	identity        *middleware.IdentityMiddleware
	userService     *service.UserService
	articleService  *service.ArticleService
	threadService   *service.ThreadService
	commentService  *service.CommentService
	categoryService *service.CategoryService
	adminService    *service.AdminService
}

// NewServer creates a server, connecting the database and Redis from config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests and bootstrap code that establish their own DB/Redis use this.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("hoopsnews-api"),
		identity:        middleware.NewIdentityMiddleware(tokens, userSource{userRepo}),
		userService:     service.NewUserService(db, userRepo, articleRepo, tokens),
		articleService:  service.NewArticleService(db, articleRepo, categoryRepo, tagRepo),
		threadService:   service.NewThreadService(db, threadRepo, tagRepo),
		commentService:  service.NewCommentService(db, commentRepo, articleRepo, threadRepo),
		categoryService: service.NewCategoryService(db, categoryRepo),
		adminService:    service.NewAdminService(userRepo, articleRepo, threadRepo, commentRepo),
	}

	return server, nil
}

// userSource adapts the user repository to the auth middleware.
type userSource struct {
	users repository.UserRepository
}

func (s userSource) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// SetupMiddleware configures the middleware stack for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS runs before middlewares that can short-circuit (e.g. the
	// limiter) so browser clients still receive CORS headers on errors.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limit, 100 requests per minute per IP.
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Get("/me", s.identity.Required(), s.Me)

	// Articles. Reads resolve an optional identity so authors see
	// their own drafts.
	articles := api.Group("/articles")
	articles.Get("/", s.identity.Optional(), s.ListArticles)
	articles.Post("/", s.identity.Required(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_article"), s.CreateArticle)
	articles.Get("/:slug/related", s.identity.Optional(), s.GetRelatedArticles)
	articles.Get("/:slug/comments", s.identity.Optional(), s.GetArticleComments)
	articles.Post("/:slug/comments", s.identity.Required(), middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateArticleComment)
	articles.Get("/:slug", s.identity.Optional(), s.GetArticle)
	articles.Put("/:slug", s.identity.Required(), s.UpdateArticle)
	articles.Delete("/:slug", s.identity.Required(), s.DeleteArticle)

	// Threads
	threads := api.Group("/threads")
	threads.Get("/", s.ListThreads)
	threads.Post("/", s.identity.Required(), s.CreateThread)
	threads.Get("/:id/comments", s.identity.Optional(), s.GetThreadComments)
	threads.Post("/:id/comments", s.identity.Required(), middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateThreadComment)
	threads.Get("/:id", s.identity.Optional(), s.GetThread)
	threads.Put("/:id", s.identity.Required(), s.UpdateThread)
	threads.Delete("/:id", s.identity.Required(), s.DeleteThread)

	// Comments (edit and delete by id; creation goes through the target)
	comments := api.Group("/comments", s.identity.Required())
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Categories
	categories := api.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Post("/", s.identity.Required(), middleware.AdminRequired(), s.CreateCategory)
	categories.Get("/:slug", s.GetCategory)
	categories.Put("/:slug", s.identity.Required(), middleware.AdminRequired(), s.UpdateCategory)
	categories.Delete("/:slug", s.identity.Required(), middleware.AdminRequired(), s.DeleteCategory)

	// Users
	users := api.Group("/users")
	users.Put("/profile", s.identity.Required(), s.UpdateProfile)
	users.Put("/password", s.identity.Required(), s.ChangePassword)
	users.Get("/profile/:username", s.GetPublicProfile)
	users.Get("/:username/articles", s.identity.Optional(), s.GetUserArticles)

	// Admin
	admin := api.Group("/admin", s.identity.Required(), middleware.AdminRequired())
	admin.Get("/stats", s.GetStats)
	admin.Get("/users", s.AdminListUsers)
	admin.Post("/users/:id/activate", s.ActivateUser)
	admin.Post("/users/:id/deactivate", s.DeactivateUser)
	admin.Delete("/users/:id", s.AdminDeleteUser)
	admin.Get("/articles", s.AdminListArticles)
	admin.Get("/comments", s.AdminListComments)
	admin.Post("/comments/:id/approve", s.ApproveComment)
	admin.Post("/comments/:id/reject", s.RejectComment)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
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

// Shutdown releases server resources: the database pool and the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return fmt.Errorf("redis close: %w", err)
		}
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// App builds the configured fiber application.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return models.RespondWithError(c, code, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

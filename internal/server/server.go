// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Preeth02/aqi-using-ai/internal/airquality"
	"github.com/Preeth02/aqi-using-ai/internal/cache"
	"github.com/Preeth02/aqi-using-ai/internal/config"
	"github.com/Preeth02/aqi-using-ai/internal/database"
	"github.com/Preeth02/aqi-using-ai/internal/mailer"
	"github.com/Preeth02/aqi-using-ai/internal/middleware"
	"github.com/Preeth02/aqi-using-ai/internal/models"
	"github.com/Preeth02/aqi-using-ai/internal/repository"
	"github.com/Preeth02/aqi-using-ai/internal/service"
	"github.com/Preeth02/aqi-using-ai/internal/suggest"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	messageRepo    repository.MessageRepository
	accounts       *service.AccountService
	suggester      *suggest.Client
	air            *airquality.Client
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer owns DB/Redis setup.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	sender := mailer.NewClient(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.EmailFrom)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("mystery-message-api"),
		userRepo:       userRepo,
		messageRepo:    messageRepo,
		accounts:       service.NewAccountService(userRepo, sender),
		suggester: suggest.NewClient(suggest.Config{
			BaseURL: cfg.SuggestBaseURL,
			APIKey:  cfg.SuggestAPIKey,
			Model:   cfg.SuggestModel,
		}),
		air: airquality.NewClient(cfg.AQIBaseURL, cfg.AQIAPIKey, cfg.WAQIBaseURL, cfg.WAQIToken),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// OpenTelemetry tracing
	app.Use(middleware.TracingMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. the
	// limiter) so browser clients still get CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Signup and verification (public)
	api.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	api.Post("/verifyCode", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "verify_code"), s.VerifyCode)
	api.Get("/check-username-unique", s.CheckUsernameUnique)
	api.Post("/sign-in", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "sign_in"), s.SignIn)

	// Public mailbox submission and suggestion relay
	api.Post("/send-messages", middleware.RateLimit(
		s.redis, 10, time.Minute, "send_message"), s.SendMessage)
	api.Post("/suggest-messages", middleware.RateLimit(
		s.redis, 5, time.Minute, "suggest_messages"), s.SuggestMessages)

	// Air quality proxy (public)
	api.Get("/getAQI/:city", s.GetAQI)
	aqi := api.Group("/aqi")
	aqi.Get("/search", s.SearchStations)
	aqi.Get("/bounds", s.MapBounds)
	aqi.Get("/stations/:uid", s.StationFeed)

	// Owner-only mailbox routes
	protected := api.Group("", s.AuthRequired())
	protected.Get("/get-messages", s.GetMessages)
	protected.Delete("/delete-message/:messageId", s.DeleteMessage)
	protected.Get("/accept-messages", s.GetAcceptMessages)
	protected.Post("/accept-messages", s.SetAcceptMessages)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
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
		// Redis is optional; the app degrades to uncached operation.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It validates the
// Bearer token and stores the identity snapshot carried by the token in
// request locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authenticated"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		subStr, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token subject"))
		}
		userIDVal, err := strconv.ParseUint(subStr, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Identity snapshot fixed at issuance; the accept-flag may drift
		// from the live record until re-authentication.
		c.Locals("userID", uint(userIDVal))
		if username, ok := claims["username"].(string); ok {
			c.Locals("username", username)
		}
		if accepting, ok := claims["isAcceptingMessages"].(bool); ok {
			c.Locals("isAcceptingMessages", accepting)
		}

		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userIDVal))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// generateToken creates a JWT session token snapshotting the user's
// identity and messaging preference at issuance.
func (s *Server) generateToken(user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":                 strconv.FormatUint(uint64(user.ID), 10),
		"username":            user.Username,
		"isVerified":          user.IsVerified,
		"isAcceptingMessages": user.IsAcceptingMessages,
		"iss":                 "mystery-message-api",
		"aud":                 "mystery-message-client",
		"exp":                 now.Add(time.Hour * 24 * 7).Unix(),
		"iat":                 now.Unix(),
		"nbf":                 now.Unix(),
		"jti":                 s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// Shutdown releases server-owned resources (database pool and Redis)
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

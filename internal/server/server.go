package server

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/cache"
	"whiteboard-backend/internal/config"
	"whiteboard-backend/internal/handler"
	"whiteboard-backend/internal/realtime"
)

// Server wraps the Fiber app with its handlers and realtime hub
type Server struct {
	app              *fiber.App
	cfg              *config.Config
	db               *gorm.DB
	hub              *realtime.Hub
	relay            *realtime.Relay
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	boardHandler     *handler.BoardHandler
	containerHandler *handler.ContainerHandler
	drawingHandler   *handler.DrawingHandler
	friendHandler    *handler.FriendHandler
	healthHandler    *handler.HealthHandler
	jwtManager       *auth.JWTManager
}

// New builds a server instance. redis may be nil when the cache is
// unavailable; drawing reads then hit the database directly.
func New(cfg *config.Config, db *gorm.DB, redis *cache.RedisClient) *Server {
	app := fiber.New(fiber.Config{
		AppName:         "Whiteboard Backend",
		ServerHeader:    "Fiber",
		StrictRouting:   true,
		CaseSensitive:   true,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		Prefork:         false, // incompatible with in-process websocket state
		ReadBufferSize:  16384,
		WriteBufferSize: 16384,
		BodyLimit:       10 * 1024 * 1024,
	})

	jwtManager := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	googleAuth := auth.NewGoogleAuthenticator(cfg.Auth.GoogleClientID)

	hub := realtime.NewHub()
	resolver := realtime.NewDisplayNameResolver(
		realtime.NewGormProfileStore(db),
		realtime.NewGormIdentityDirectory(db),
	)
	relay := realtime.NewRelay(hub, resolver)

	return &Server{
		app:              app,
		cfg:              cfg,
		db:               db,
		hub:              hub,
		relay:            relay,
		authHandler:      handler.NewAuthHandler(db, jwtManager, googleAuth, cfg.Auth.SecureCookie, cfg.Auth.AccessTokenExpiry),
		userHandler:      handler.NewUserHandler(db),
		boardHandler:     handler.NewBoardHandler(db),
		containerHandler: handler.NewContainerHandler(db),
		drawingHandler:   handler.NewDrawingHandler(db, redis, hub),
		friendHandler:    handler.NewFriendHandler(db, hub, resolver),
		healthHandler:    handler.NewHealthHandler(db, redis, hub),
		jwtManager:       jwtManager,
	}
}

// Hub exposes the realtime hub
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

// SetupMiddleware installs the global middleware chain
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     s.cfg.CORS.AllowHeaders,
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
}

// SetupRoutes registers the REST and websocket routes
func (s *Server) SetupRoutes() {
	s.app.Get("/health", s.healthHandler.Check)

	// brute-force guard on the credential endpoints
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	authGroup := s.app.Group("/auth")
	authGroup.Post("/google", authLimiter, s.authHandler.GoogleLogin)
	authGroup.Post("/refresh", authLimiter, s.authHandler.RefreshToken)
	authGroup.Post("/logout", auth.AuthMiddleware(s.jwtManager), s.authHandler.Logout)
	authGroup.Get("/me", auth.AuthMiddleware(s.jwtManager), s.authHandler.GetMe)
	authGroup.Put("/me", auth.AuthMiddleware(s.jwtManager), s.userHandler.UpdateProfile)

	userGroup := s.app.Group("/api/users", auth.AuthMiddleware(s.jwtManager))
	userGroup.Get("/search", s.userHandler.SearchUsers)

	boardGroup := s.app.Group("/api/boards", auth.AuthMiddleware(s.jwtManager))
	boardGroup.Post("/", s.boardHandler.CreateBoard)
	boardGroup.Get("/", s.boardHandler.GetMyBoards)
	boardGroup.Get("/:boardId", s.boardHandler.GetBoard)
	boardGroup.Put("/:boardId", s.boardHandler.UpdateBoard)
	boardGroup.Delete("/:boardId", s.boardHandler.DeleteBoard)

	boardGroup.Post("/:boardId/containers", s.containerHandler.CreateContainer)
	boardGroup.Put("/:boardId/containers/:containerId", s.containerHandler.UpdateContainer)
	boardGroup.Delete("/:boardId/containers/:containerId", s.containerHandler.DeleteContainer)

	containerGroup := s.app.Group("/api/containers", auth.AuthMiddleware(s.jwtManager))
	containerGroup.Post("/:containerId/items", s.containerHandler.CreateItem)
	containerGroup.Put("/:containerId/items/:itemId", s.containerHandler.UpdateItem)
	containerGroup.Delete("/:containerId/items/:itemId", s.containerHandler.DeleteItem)

	boardGroup.Get("/:boardId/drawing", s.drawingHandler.GetBoardDrawing)
	boardGroup.Post("/:boardId/drawing/strokes", s.drawingHandler.SaveStroke)
	boardGroup.Delete("/:boardId/drawing", s.drawingHandler.ClearBoardDrawing)

	friendGroup := s.app.Group("/api/friends", auth.AuthMiddleware(s.jwtManager))
	friendGroup.Get("/", s.friendHandler.GetFriends)
	friendGroup.Post("/", s.friendHandler.AddFriend)
	friendGroup.Delete("/:friendUid", s.friendHandler.RemoveFriend)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Realtime board endpoint. Browsers cannot set headers on the
	// websocket handshake, so the token rides in the query string with
	// the cookie as fallback.
	s.app.Get("/ws/board", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			token = c.Cookies("access_token")
		}
		if token == "" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		claims, err := s.jwtManager.ValidateAccessToken(token)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		c.Locals("uid", claims.UID)

		return c.Next()
	}, websocket.New(handler.BoardWebSocket(s.hub, s.relay, s.cfg.WebSocket.WriteTimeout), websocket.Config{
		ReadBufferSize:   s.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:  s.cfg.WebSocket.WriteBufferSize,
		HandshakeTimeout: s.cfg.WebSocket.HandshakeTimeout,
	}))
}

// Start runs the server with graceful shutdown on SIGINT/SIGTERM
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Whiteboard backend starting on %s", s.cfg.Server.Port)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws/board", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown stops the server
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}

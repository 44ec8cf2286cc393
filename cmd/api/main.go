// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cofoundry-tw/cofoundry-backend/internal/api/handlers"
	"github.com/cofoundry-tw/cofoundry-backend/internal/api/middleware"
	"github.com/cofoundry-tw/cofoundry-backend/internal/config"
	"github.com/cofoundry-tw/cofoundry-backend/internal/cron"
	"github.com/cofoundry-tw/cofoundry-backend/internal/db"
	"github.com/cofoundry-tw/cofoundry-backend/internal/email"
	"github.com/cofoundry-tw/cofoundry-backend/internal/notification"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/seed"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/cofoundry-tw/cofoundry-backend/internal/socket"
	"github.com/cofoundry-tw/cofoundry-backend/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Database migrations completed")

	// ============================================
	// Initialize PostgreSQL (pgxpool + sqlx)
	// ============================================
	pgDB, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pgDB.Close()

	sqlxDB, err := sqlx.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open sqlx DB: %v", err)
	}
	defer sqlxDB.Close()

	if err := sqlxDB.Ping(); err != nil {
		log.Fatalf("Failed to ping sqlx DB: %v", err)
	}

	log.Println("Connected to PostgreSQL")

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(pgDB.Pool, sqlxDB)
	log.Println("Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v (continuing without cache)", err)
		} else {
			defer redisDB.Close()
			log.Println("Redis cache enabled")
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	var emailQueue *email.EmailQueue
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
			BaseURL:  cfg.FrontendURL,
		})
		emailQueue = email.NewEmailQueue(emailSvc, 2)
		defer emailQueue.Stop()
		log.Println("Email service initialized")
	} else {
		log.Println("Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize Avatar Storage
	// ============================================
	avatarStore, err := storage.NewAvatarStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize avatar storage: %v", err)
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		NotifSvc:    notificationSvc,
		Emails:      emailQueue,
		Broadcaster: broadcaster,
		Avatars:     avatarStore,
		Cache:       redisDB,
	})
	log.Println("All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(
		cfg,
		notificationSvc,
		repos.ApplicationRepo,
		repos.InvitationRepo,
		repos.ProjectRepo,
		repos.NotificationRepo,
	)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestLogger())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      getCacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      getEmailStatus(emailSvc),
		})
	})

	// Uploaded avatars
	r.Static("/uploads", avatarStore.Dir())

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Directory routes (public, auth optional)
		// ============================================
		// Anonymous visitors can browse public profiles and projects;
		// an attached token lets owners see their own private entries.
		directory := api.Group("")
		directory.Use(middleware.OptionalAuthMiddleware(services.Auth))
		{
			directory.GET("/talents", h.Talent.List)
			directory.GET("/talents/:id", h.Talent.Get)
			directory.GET("/projects", h.Project.List)
			directory.GET("/projects/:id", h.Project.Get)
		}

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.PUT("/me", h.User.UpdateCurrentUser)
				users.POST("/me/avatar", h.User.UploadAvatar)
				users.DELETE("/me/avatar", h.User.RemoveAvatar)
			}

			// Project routes
			projects := protected.Group("/projects")
			{
				projects.POST("", h.Project.Create)
				projects.GET("/mine", h.Project.ListMine)
				projects.PUT("/:id", h.Project.Update)
				projects.DELETE("/:id", h.Project.Delete)
				projects.GET("/:id/members", h.Project.ListMembers)
				projects.DELETE("/:id/members/:memberId", h.Project.RemoveMember)
			}

			// Application routes
			applications := protected.Group("/applications")
			{
				applications.POST("", h.Application.Create)
				applications.GET("/sent", h.Application.ListSent)
				applications.GET("/received", h.Application.ListReceived)
				applications.POST("/:id/accept", h.Application.Accept)
				applications.POST("/:id/reject", h.Application.Reject)
				applications.DELETE("/:id", h.Application.Withdraw)
			}

			// Invitation routes
			invitations := protected.Group("/invitations")
			{
				invitations.POST("", h.Invitation.Create)
				invitations.GET("/sent", h.Invitation.ListSent)
				invitations.GET("/received", h.Invitation.ListReceived)
				invitations.POST("/:id/accept", h.Invitation.Accept)
				invitations.POST("/:id/reject", h.Invitation.Reject)
				invitations.DELETE("/:id", h.Invitation.Cancel)
			}

			// Conversation routes
			conversations := protected.Group("/conversations")
			{
				conversations.POST("", h.Message.StartConversation)
				conversations.GET("", h.Message.ListConversations)
				conversations.GET("/unread", h.Message.UnreadCount)
				conversations.GET("/:id/messages", h.Message.ListMessages)
				conversations.POST("/:id/messages", h.Message.Send)
				conversations.POST("/:id/read", h.Message.MarkRead)
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.Count)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.DELETE("/:id", h.Notification.Delete)
				notifications.DELETE("", h.Notification.DeleteAll)
			}
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "disabled"
}

func getEmailStatus(emailSvc *email.Service) string {
	if emailSvc != nil {
		return "configured"
	}
	return "disabled"
}

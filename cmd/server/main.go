package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/flowcanvas/backend/api/handlers"
	"github.com/flowcanvas/backend/internal/activity"
	"github.com/flowcanvas/backend/internal/auth"
	"github.com/flowcanvas/backend/internal/collab"
	"github.com/flowcanvas/backend/internal/db"
	"github.com/flowcanvas/backend/internal/repository"
	"github.com/flowcanvas/backend/internal/ws"
)

func main() {
	// Get configuration from environment
	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "data/collab.db")
	jwtSecret := os.Getenv("COLLAB_JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret"
		log.Println("COLLAB_JWT_SECRET not set, using development secret")
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize activity trail
	activityRepo := repository.NewActivityRepository(database)
	recorder := activity.NewRecorder(activityRepo, 256)
	defer recorder.Close()

	// Initialize collaboration coordinator and gateway
	coordinator := collab.New()
	verifier := auth.NewVerifier(jwtSecret)
	gateway := ws.NewGateway(verifier, coordinator, recorder)
	defer gateway.Router().Close()

	// Initialize handlers
	collabHandler := handlers.NewCollabHandler(gateway, coordinator)
	activityHandler := handlers.NewActivityHandler(activityRepo)

	// Initialize Gin router
	r := gin.Default()

	// Enable CORS for development
	r.Use(corsMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		collabHandler.RegisterRoutes(api)
		activityHandler.RegisterRoutes(api)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		gateway.Router().Close()
		recorder.Close()
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

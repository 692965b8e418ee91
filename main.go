package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"userdir/internal/handlers"
	"userdir/internal/middleware"
	"userdir/internal/repositories"
	"userdir/internal/services"
	"userdir/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":5000")
	viper.SetDefault("MONGODB_URL", "mongodb://localhost:27017")
	viper.SetDefault("DB_NAME", "users")
	viper.SetDefault("COLLECTION_NAME", "usersColl")
	viper.SetDefault("STRICT_STATUS", false)
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	mongoURL := viper.GetString("MONGODB_URL")
	dbName := viper.GetString("DB_NAME")
	collName := viper.GetString("COLLECTION_NAME")
	strictStatus := viper.GetBool("STRICT_STATUS")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// The token signing secret has no default: it must be supplied externally.
	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// --- Initialize User Repository ---
	// MONGODB_URL=memory runs against the in-memory store, which enforces the
	// same schema contract. Useful for local development without a database.
	var userRepo repositories.UserRepository
	if mongoURL == "memory" {
		log.Println("Using in-memory user store")
		userRepo = repositories.NewMemoryUserRepository()
	} else {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("Error disconnecting from MongoDB: %v", err)
			}
		}()
		if err := client.Ping(ctx, nil); err != nil {
			log.Fatalf("Failed to ping MongoDB: %v", err)
		}

		mongoRepo := repositories.NewMongoUserRepository(client.Database(dbName), collName)
		if err := mongoRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to provision users collection: %v", err)
		}
		userRepo = mongoRepo
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Failed to initialize RabbitMQ client, continuing without event publishing: %v", err)
		} else {
			mqClient = client
			defer mqClient.Close()
		}
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, jwtSecret)
	userService := services.NewUserService(userRepo, authService, mqClient)

	// Seed the default admin record if absent. Idempotent.
	if err := userService.EnsureAdmin(ctx); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	userHandler := handlers.NewUserHandler(userService, authService, strictStatus)
	userHandler.RegisterRoutes(app, middleware.AdminRequired(authService, strictStatus))

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

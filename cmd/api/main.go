package main

import (
	"context"
	"log"
	"os"
	"time"

	"pet_portrait_go_backend/cmd/api/config"
	"pet_portrait_go_backend/internal/api"
	"pet_portrait_go_backend/internal/auth"
	"pet_portrait_go_backend/internal/database"
	"pet_portrait_go_backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zlog.With().Str("service", "pet-portrait-api").Logger()

	genaiAPIKey := os.Getenv("GOOGLE_AI_STUDIO_API_KEY")
	if genaiAPIKey == "" {
		log.Fatal("GOOGLE_AI_STUDIO_API_KEY is not set in the environment")
	}

	ctx := context.Background()
	cfg := config.NewConfig()

	database.InitDB()

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(genaiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}
	defer genaiClient.Close()

	// Initialize internal services
	accountServiceDB := services.NewAccountServiceDB(database.DB)
	usageServiceDB := services.NewUsageServiceDB(database.DB)
	orderServiceDB := services.NewOrderServiceDB(database.DB)
	supportServiceDB := services.NewSupportServiceDB(database.DB)

	accessService := services.NewAccessService(accountServiceDB, cfg.BootstrapAdminEmails, cfg.DefaultDailyLimit)
	quotaService := services.NewQuotaService(usageServiceDB)
	styler := services.NewGenAIStyler(genaiClient, cfg.GenAIModel)
	generationService := services.NewGenerationService(
		styler,
		quotaService,
		usageServiceDB,
		cfg.AnonymousDailyLimit,
		cfg.AdminDailyLimit,
		cfg.MaxImageBytes,
		cfg.GenerationTimeout,
	)
	orderService := services.NewOrderService(orderServiceDB)
	supportService := services.NewSupportService(supportServiceDB)

	r := gin.Default()

	// CORS middleware configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, generationService, orderService, supportService, accessService, cfg.MaxImageBytes)
	api.SetupAdminRoutes(r, accessService, supportService, usageServiceDB)
	auth.SetupRoutes(r, accessService)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

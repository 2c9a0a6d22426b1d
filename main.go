package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"write-on-backend/handlers"
	"write-on-backend/middleware"
	"write-on-backend/models"
	"write-on-backend/services"
	"write-on-backend/utils"
	"write-on-backend/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20MB — cover/profile images only
	})

	app.Use(logger.New())

	// 🔐 Optional gateway token — no-op unless SERVICE_TOKEN is set
	app.Use(middleware.ServiceTokenMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.CampaignParticipant{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	scoreAPIURL := os.Getenv("SCORE_API_URL")
	if scoreAPIURL == "" {
		scoreAPIURL = "https://api.writeon.space"
	}

	scoreClient := services.NewScoreClient(scoreAPIURL)
	campaignService := services.NewCampaignService(db)
	submissionService := services.NewSubmissionService(db, scoreClient)
	userService := services.NewUserService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ⛓️ Optional: verify campaign-creation tx receipts in the background
	if rpcURL := os.Getenv("CHAIN_RPC_URL"); rpcURL != "" {
		txVerifier, err := workers.NewTxVerifyClient(db, rpcURL)
		if err != nil {
			log.Fatal("failed to connect to chain RPC:", err)
		}
		go workers.PollReceipts(ctx, txVerifier, 30*time.Second)
		log.Println("✅ Campaign tx receipt polling running (every 30s)")
	} else {
		log.Println("⚠️  CHAIN_RPC_URL not set — campaign tx receipts will not be verified")
	}

	campaignService.StartStatusScheduler()

	handlers.SetupCampaignRoutes(app, campaignService, submissionService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupUploadRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Campaign status scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}

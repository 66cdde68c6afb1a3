package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aimage-backend/config"
	"aimage-backend/controller"
	"aimage-backend/dao"
	"aimage-backend/logic"
	"aimage-backend/middleware"
	"aimage-backend/models"
	"aimage-backend/pkg"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Initialize config
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run main.go <config.yaml>")
	}
	configFile := os.Args[1]
	if err := config.LoadConfig(configFile); err != nil {
		log.Fatalf("Failed to load config from %s: %v", configFile, err)
	}

	// Initialize database
	db, err := gorm.Open(postgres.Open(config.GlobalConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db.AutoMigrate(&models.User{}, &models.CoinTransaction{}, &models.Image{})

	// Initialize blob storage
	blobs, err := pkg.NewDiskStore(config.GlobalConfig.Storage.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	// One shared rate gate for all outbound provider calls
	gate := pkg.NewRateGate(
		config.GlobalConfig.RateLimit.PerSecond,
		config.GlobalConfig.RateLimit.Burst,
		config.GlobalConfig.AcquireTimeout(),
	)

	// Provider client wrapped with retry + the shared gate
	stability := pkg.NewStabilityClient(
		config.GlobalConfig.Provider.APIKey,
		config.GlobalConfig.Provider.BaseURL,
		config.GlobalConfig.Provider.Engine,
	)
	generator := pkg.NewRetryingGenerator(
		stability,
		gate,
		config.GlobalConfig.Provider.MaxAttempts,
		config.GlobalConfig.BaseDelay(),
	)

	// Initialize DAOs
	userDAO := dao.NewUserDAO(db)
	ledgerDAO := dao.NewLedgerDAO(db)
	generationDAO := dao.NewGenerationDAO(db)
	imageDAO := dao.NewImageDAO(db)

	// Initialize Logics
	userLogic := logic.NewUserLogic(userDAO)
	coinLogic := logic.NewCoinLogic(ledgerDAO, config.GlobalConfig.Coins.AdReward)
	imageLogic := logic.NewImageLogic(imageDAO, blobs)
	generationLogic := logic.NewGenerationLogic(
		ledgerDAO,
		generationDAO,
		generator,
		blobs,
		config.GlobalConfig.Coins.CostPerImage,
		config.GlobalConfig.Provider.MaxSamples,
		config.GlobalConfig.Provider.Engine,
	)

	// Initialize Controllers
	userCtrl := controller.NewUserController(userLogic)
	coinCtrl := controller.NewCoinController(coinLogic)
	imageCtrl := controller.NewImageController(generationLogic, imageLogic)

	// Setup Gin router
	r := gin.Default()
	r.POST("/auth/register", userCtrl.Register)
	r.POST("/auth/login", userCtrl.Login)
	r.GET("/user", middleware.Auth, userCtrl.GetUser)
	r.PUT("/user", middleware.Auth, userCtrl.UpdateUser)
	r.POST("/coin/buy", middleware.Auth, coinCtrl.BuyCoins)
	r.POST("/coin/earn", middleware.Auth, coinCtrl.EarnCoins)
	r.POST("/coin/deduct", middleware.Auth, coinCtrl.DeductCoins)
	r.GET("/coin/balance", middleware.Auth, coinCtrl.GetBalance)
	r.GET("/coin/history", middleware.Auth, coinCtrl.GetHistory)
	r.POST("/image/generate", middleware.Auth, imageCtrl.GenerateImage)
	r.GET("/image/history", middleware.Auth, imageCtrl.GetHistory)
	r.GET("/image/:id", middleware.Auth, imageCtrl.GetImage)
	r.DELETE("/image/:id", middleware.Auth, imageCtrl.DeleteImage)
	// bearer possession of the artifact id is the access control here
	r.GET("/download/:id", imageCtrl.DownloadImage)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Run server with graceful shutdown
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GlobalConfig.Server.Port),
		Handler: r,
	}

	go func() {
		log.Printf("Server running on :%d", config.GlobalConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)

	log.Println("Server stopped gracefully")
}

package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"invoice-analytics-backend/internal/config"
	"invoice-analytics-backend/internal/logger"
	"invoice-analytics-backend/internal/models"
	"invoice-analytics-backend/internal/routes"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		mainLog := logger.WithComponent("main")
		mainLog.Info().Msg("no .env file found, relying on system env")
	}
	logger.Setup()

	db := config.InitDB()

	db.AutoMigrate(
		&models.ImportBatch{},
		&models.InvoiceRecord{},
		&models.BatchSnapshot{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db)

	r.Run(":8080")
}

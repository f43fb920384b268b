package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "invoice-analytics-backend/internal/handlers"
	"invoice-analytics-backend/internal/repository"
	service "invoice-analytics-backend/internal/services/dashboard"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	invoiceRepo := repository.NewInvoiceRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	dashboardService := service.NewService(invoiceRepo, batchRepo, snapshotRepo)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Batch routes
	batches := api.Group("/batches")
	batches.POST("/upload", dashboardHandler.UploadBatch)
	batches.GET("", dashboardHandler.ListBatches)
	batches.GET("/:batchId", dashboardHandler.GetBatchProgress)
	batches.GET("/:batchId/stats", dashboardHandler.GetBatchStats)
	batches.POST("/:batchId/snapshot", dashboardHandler.BackfillSnapshot)
	batches.DELETE("/:batchId", dashboardHandler.DeleteBatch)

	// Dashboard routes
	dash := api.Group("/dashboard")
	dash.GET("/comparison", dashboardHandler.GetComparison)
	dash.GET("/trend", dashboardHandler.GetTrend)
	dash.GET("/state-trends", dashboardHandler.GetStateTrends)

	// Invoice query surface
	invoices := api.Group("/invoices")
	{
		invoices.GET("", dashboardHandler.ListInvoices)
		invoices.GET("/aging/:bucket", dashboardHandler.ListInvoicesForBucket)
	}
}

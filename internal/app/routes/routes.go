package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/printq/internal/app/controllers"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/middleware"
	"github.com/yigit/printq/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	walletController *controllers.WalletController,
	jobController *controllers.JobController,
	printerController *controllers.PrinterController,
	userController *controllers.UserController,
	settingsController *controllers.SettingsController,
	maintenanceController *controllers.MaintenanceController,
	jobFeed *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
	maxUploadBytes int64,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.RegisterStudent)
		auth.POST("/register/admin", authController.RegisterAdmin)
		auth.POST("/login", authController.Login)
	}
	v1.GET("/settings", settingsController.GetSettings)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	students := authenticated.Group("")
	students.Use(authMiddleware.RoleRequired(models.RoleStudent))

	admins := authenticated.Group("/admin")
	admins.Use(authMiddleware.RoleRequired(models.RoleAdmin))

	authenticated.GET("/users/me", userController.GetProfile)
	students.PATCH("/users/me/preferences", userController.UpdatePreferences)

	wallet := students.Group("/wallet")
	{
		wallet.POST("/topup", walletController.TopUp)
		wallet.GET("/balance", walletController.GetBalance)
		wallet.GET("/transactions", walletController.GetTransactions)
	}

	// Multipart overhead is allowed on top of the document itself
	students.POST("/jobs", middleware.BodyLimit(maxUploadBytes+1<<20), jobController.SubmitJob)
	students.GET("/jobs", jobController.ListMyJobs)
	students.GET("/jobs/history", jobController.GetHistory)
	authenticated.GET("/jobs/:id", jobController.GetJob)

	printers := authenticated.Group("/printers")
	{
		printers.GET("", printerController.ListPrinters)
		printers.GET("/:id", printerController.GetPrinter)
	}

	{
		admins.GET("/jobs", jobController.ListAllJobs)
		admins.POST("/jobs/bulk-approve", jobController.BulkApproveJobs)
		admins.POST("/jobs/:id/approve", jobController.ApproveJob)
		admins.POST("/jobs/:id/reject", jobController.RejectJob)
		admins.POST("/jobs/:id/complete", jobController.CompleteJob)
		admins.DELETE("/jobs/:id", jobController.DeleteJob)

		admins.POST("/printers", printerController.CreatePrinter)
		admins.PATCH("/printers/:id", printerController.UpdatePrinter)

		admins.GET("/users", userController.ListUsers)
		admins.GET("/users/students/:id", userController.GetStudent)

		admins.PUT("/settings/pricing", settingsController.UpdatePricing)

		admins.POST("/maintenance/low-balance", maintenanceController.LowBalanceCheck)
		admins.POST("/maintenance/cleanup", maintenanceController.CleanupJobs)
		admins.GET("/maintenance/printer-health", maintenanceController.PrinterHealth)
	}

	// Live job feed for the admin dashboard; browsers pass the token as ?token=
	authenticated.GET("/ws/jobs", authMiddleware.RoleRequired(models.RoleAdmin), jobFeed.HandleJobFeed)

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}

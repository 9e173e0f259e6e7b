// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/config"
	"github.com/sipeka/sipeka-backend/internal/handlers"
	"github.com/sipeka/sipeka-backend/internal/middleware"
	"github.com/sipeka/sipeka-backend/internal/services"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	availabilityService := services.NewAvailabilityService(db)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	vehicleService := services.NewVehicleService(db)
	loanService := services.NewLoanService(db, availabilityService)
	returnService := services.NewReturnService(db, loanService)
	reportService := services.NewReportService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, availabilityService)
	loanHandler := handlers.NewLoanHandler(loanService, storageService)
	returnHandler := handlers.NewReturnHandler(returnService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Vehicle routes
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", middleware.OptionalAuth(), vehicleHandler.GetVehicles)
			vehicles.GET("/available", vehicleHandler.GetAvailableVehicles)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.GET("/:id/availability", vehicleHandler.CheckAvailability)

			// Fleet management is admin-only
			protected := vehicles.Group("")
			protected.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				protected.POST("", vehicleHandler.CreateVehicle)
				protected.PUT("/:id", vehicleHandler.UpdateVehicle)
				protected.DELETE("/:id", vehicleHandler.DeleteVehicle)
			}
		}

		// Loan routes
		loans := v1.Group("/loans")
		loans.Use(middleware.AuthRequired())
		{
			loans.POST("", middleware.LoanSubmissionRateLimit(), loanHandler.CreateLoan)
			loans.GET("", loanHandler.GetLoans)
			loans.GET("/history", loanHandler.GetLoanHistory)
			loans.GET("/:id", loanHandler.GetLoan)
			loans.PUT("/:id/approve", middleware.AdminRequired(), loanHandler.ApproveLoan)
			loans.PUT("/:id/reject", middleware.AdminRequired(), loanHandler.RejectLoan)
		}

		// Return routes
		returns := v1.Group("/returns")
		returns.Use(middleware.AuthRequired())
		{
			returns.POST("", returnHandler.RecordReturn)
			returns.GET("", returnHandler.GetReturns)
			returns.GET("/:id", returnHandler.GetReturn)
		}

		// Borrower routes
		borrowers := v1.Group("/borrowers")
		borrowers.Use(middleware.AuthRequired())
		{
			borrowers.POST("", userHandler.CreateBorrower)
			borrowers.GET("", userHandler.GetBorrowers)
			borrowers.GET("/:id", userHandler.GetBorrower)
			borrowers.POST("/sync", middleware.AdminRequired(), userHandler.SyncBorrowers)
		}

		// Reporting routes
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			reports.GET("/usage", reportHandler.GetUsageReport)
		}

		dashboard := v1.Group("/dashboard")
		dashboard.Use(middleware.AuthRequired())
		{
			dashboard.GET("/stats", reportHandler.GetDashboardStats)
		}

		// Admin user management
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			users.GET("", userHandler.GetUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", cfg.Upload.LocalDir)
	}

	return r
}

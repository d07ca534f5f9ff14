// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/scholarship-escrow/internal/config"
	"github.com/javajoker/scholarship-escrow/internal/handlers"
	"github.com/javajoker/scholarship-escrow/internal/middleware"
	"github.com/javajoker/scholarship-escrow/internal/services"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

const version = "1.0.0"

func Initialize(cfg *config.Config, chain *services.BlockchainService) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(cfg, chain)
	scholarshipService := services.NewScholarshipService(chain)
	upkeepService := services.NewUpkeepService(chain)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(chain)
	scholarshipHandler := handlers.NewScholarshipHandler(scholarshipService)
	upkeepHandler := handlers.NewUpkeepHandler(upkeepService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server))
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"version":     version,
			"persistence": chain.Store().Enabled(),
		})
	})

	v1 := r.Group("/v1")
	v1.Use(middleware.AuditLogMiddleware(chain.Store()))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/token", authHandler.IssueToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetIdentity)
		}

		// Public reads
		v1.GET("/ledger", adminHandler.GetLedgerStatus)
		v1.GET("/roles/:address", adminHandler.GetRole)
		v1.GET("/companies/:address", adminHandler.GetCompany)
		v1.GET("/balances/:address", adminHandler.GetBalance)
		v1.GET("/events", upkeepHandler.GetEvents)

		scholarships := v1.Group("/scholarships")
		{
			scholarships.GET("", scholarshipHandler.GetScholarships)
			scholarships.GET("/index/:index", scholarshipHandler.GetScholarshipByIndex)
			scholarships.GET("/:address", scholarshipHandler.GetScholarship)
			scholarships.GET("/:address/applications/:student", scholarshipHandler.GetApplication)

			protected := scholarships.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", scholarshipHandler.CreateScholarship)
				protected.PUT("/:address", scholarshipHandler.UpdateDetails)
				protected.POST("/:address/apply", scholarshipHandler.Apply)
				protected.PUT("/:address/approve", scholarshipHandler.ApproveStudent)
				protected.PUT("/:address/milestones/complete", scholarshipHandler.CompleteMilestone)
			}
		}

		upkeep := v1.Group("/upkeep")
		{
			upkeep.GET("/check", upkeepHandler.CheckUpkeep)
			upkeep.GET("/config", upkeepHandler.GetConfig)
			upkeep.GET("/runs", upkeepHandler.GetRuns)

			// Owner checks happen in the scheduler itself
			protected := upkeep.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/perform", upkeepHandler.PerformUpkeep)
				protected.POST("/manual", upkeepHandler.ManualTrigger)
				protected.POST("/batch", upkeepHandler.BatchTrigger)
				protected.PUT("/config/gas-limits", upkeepHandler.UpdateGasLimits)
				protected.PUT("/config/ledger", upkeepHandler.UpdateLedgerAddress)
				protected.PUT("/config/limits", upkeepHandler.UpdateLimits)
				protected.POST("/withdraw", upkeepHandler.Withdraw)
			}
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.OperatorRequired(chain.Operator()))
		{
			admin.POST("/roles", adminHandler.AssignRole)
			admin.POST("/companies/verify", adminHandler.VerifyCompany)
			admin.PUT("/registry", adminHandler.UpdateRegistry)
			admin.POST("/faucet", adminHandler.Faucet)
		}
	}

	return r
}

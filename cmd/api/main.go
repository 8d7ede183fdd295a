package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"rental-portal/internal/audit"
	"rental-portal/internal/billing"
	"rental-portal/internal/cleanup"
	"rental-portal/internal/config"
	"rental-portal/internal/database"
	"rental-portal/internal/handlers"
	"rental-portal/internal/history"
	"rental-portal/internal/lease"
	"rental-portal/internal/payments"
	"rental-portal/internal/ratelimit"
	"rental-portal/internal/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := logrus.New()

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/portal.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Infof("Loaded configuration from %s", configPath)
	}

	configureLogger(log, appConfig)

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	var db *database.DB
	if dbType == "postgres" {
		log.Info("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres
		db, err = database.NewPostgres(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portString(pgCfg.Port), "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "portal_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "portal_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "portal_db"),
			getEnvOrConfig(pgCfg.SSLMode, "DB_SSLMODE", "disable"),
		)
	} else {
		log.Info("Using MySQL")
		mysqlCfg := appConfig.Database.MySQL
		db, err = database.NewMySQL(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portString(mysqlCfg.Port), "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "portal_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "portal_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "portal_db"),
		)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Core services
	historySvc := history.NewService(db.DB())
	auditSink := audit.NewLogSink(log)
	lifecycle := lease.NewService(db, historySvc, auditSink, log)
	scheduleSvc := billing.NewScheduleService(db.DB(), auditSink, log)
	assessor := billing.NewAssessor(db.DB(), log)
	recorder := payments.NewGormRecorder(db.DB())
	autopay := billing.NewProcessor(db.DB(), recorder, auditSink, log)
	cycle := billing.NewCycle(scheduleSvc, assessor, autopay, log)
	cleanupSvc := cleanup.NewService(db.DB(), log)

	// Rate limiter for the manual trigger endpoints
	rateLimiter := ratelimit.NewLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)
	log.Infof("Rate limiter initialized: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	// Daily lifecycle sweep and billing cycle
	appScheduler := scheduler.NewScheduler(lifecycle, cycle, appConfig, log)
	if err := appScheduler.Start(); err != nil {
		log.Warnf("Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID", "X-User-Role"},
		AllowCredentials: true,
	}))

	leaseHandler := handlers.NewLeaseHandler(db, lifecycle, historySvc)
	billingHandler := handlers.NewBillingHandler(db, scheduleSvc, assessor, autopay, appScheduler)
	adminHandler := handlers.NewAdminHandler(db.DB(), historySvc, cleanupSvc, log)

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	{
		api.POST("/leases", leaseHandler.Create)
		api.GET("/leases/:id", leaseHandler.Get)
		api.GET("/leases/:id/history", leaseHandler.History)
		api.PUT("/leases/:id/status", leaseHandler.UpdateStatus)

		api.POST("/leases/:id/renewal-offers", leaseHandler.CreateRenewalOffer)
		api.POST("/leases/:id/renewal-offers/:offerId/respond", leaseHandler.RespondToRenewalOffer)
		api.POST("/leases/:id/notices", leaseHandler.SubmitNotice)
		api.POST("/leases/:id/notices/record", leaseHandler.RecordNotice)

		api.PUT("/leases/:id/schedule", billingHandler.UpsertSchedule)
		api.DELETE("/leases/:id/schedule", billingHandler.DeactivateSchedule)
		api.PUT("/leases/:id/autopay", billingHandler.ConfigureAutopay)
		api.DELETE("/leases/:id/autopay", billingHandler.DisableAutopay)

		api.POST("/screening/score", billingHandler.ScreenApplicant)
		api.GET("/ratelimit/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, rateLimiter.Stats())
		})
	}

	// Admin API routes (requires authentication in production)
	admin := r.Group("/api/admin")
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/changes/recent", adminHandler.GetRecentChanges)

		admin.POST("/billing/run", rateLimitMiddleware(rateLimiter), billingHandler.TriggerRun)
		admin.POST("/billing/late-fees/:invoiceId/waive", billingHandler.WaiveLateFee)

		admin.POST("/cleanup/run", rateLimitMiddleware(rateLimiter), adminHandler.RunCleanup)
		admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)
	}
	log.Info("Admin API routes registered at /api/admin/*")

	port := getEnv("PORT", "8084")
	log.Infof("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	if cfg.Logging.JSONFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

// rateLimitMiddleware enforces request limits on the triggering endpoints
func rateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
				"stats":   limiter.Stats(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

func portString(port int) string {
	if port <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", port)
}

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"eventops/internal/caching"
	"eventops/internal/handlers"
	"eventops/internal/jobs"
	"eventops/internal/jobs/background"
	"eventops/internal/middleware"
	"eventops/internal/repositories"
	"eventops/internal/services"
	"eventops/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Token verification: JWKS endpoint or shared secret
	jwksURL := os.Getenv("JWKS_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	keyFunc, err := middleware.NewKeyfunc(jwksURL, jwtSecret)
	if err != nil {
		log.Fatalf("Failed to configure token verification: %v", err)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	// Create repositories
	itemRepo := repositories.NewItemRepo(pool)
	schemaRepo := repositories.NewAttributeSchemaRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	conversionRepo := repositories.NewUnitConversionRepo(pool)
	policyRepo := repositories.NewPolicyRepo(pool)
	ledgerRepo := repositories.NewLedgerRepo(pool)
	onHandRepo := repositories.NewOnHandRepo(pool)
	reservationRepo := repositories.NewReservationRepo(pool)
	auditRepo := repositories.NewAuditLogsRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	validator := services.NewSchemaValidator(schemaRepo)
	converter := services.NewUnitConverter(conversionRepo)
	policyEngine := services.NewPolicyEngine(policyRepo)
	itemCatalog := services.NewItemCatalog(itemRepo, schemaRepo, validator, cacheSvc)
	ledger := services.NewTransactionLedger(pool, ledgerRepo, onHandRepo, itemRepo, locationRepo, reservationRepo, converter, policyEngine, cacheSvc, storageSvc)
	reservationManager := services.NewReservationManager(pool, reservationRepo, itemRepo, locationRepo)
	projection := services.NewOnHandProjection(pool, onHandRepo, ledgerRepo, itemRepo, cacheSvc)
	exportSvc := services.NewExportService(onHandRepo, storageSvc)

	// Background jobs
	alertSvc := jobs.NewOnHandAlertService(onHandRepo, itemRepo, locationRepo, policyRepo)
	scheduler := background.NewJobScheduler(projection, alertSvc, exportSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop background jobs: %v", err)
		}
	}()

	// Create handlers
	itemHandlers := handlers.NewItemHandlers(itemCatalog, projection)
	transactionHandlers := handlers.NewTransactionHandlers(ledger)
	reservationHandlers := handlers.NewReservationHandlers(reservationManager)
	locationHandlers := handlers.NewLocationHandlers(locationRepo)
	schemaHandlers := handlers.NewSchemaHandlers(schemaRepo)
	policyHandlers := handlers.NewPolicyHandlers(policyRepo)
	conversionHandlers := handlers.NewConversionHandlers(conversionRepo)
	onHandHandlers := handlers.NewOnHandHandlers(projection, onHandRepo)
	auditHandlers := handlers.NewAuditLogsHandlers(auditRepo)
	jobHandlers := handlers.NewJobHandlers(scheduler)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Version middleware
	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		KeyFunc: keyFunc,
		SuccessHandler: func(c echo.Context) {
			middleware.AttachPostedBy(c)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))

	auditMiddleware := middleware.NewAuditMiddleware(auditRepo)
	inventory := protected.Group("/inventory")
	inventory.Use(auditMiddleware.AuditMutations())

	// Item catalog routes
	inventory.GET("/items", itemHandlers.ListItems)
	inventory.POST("/items", itemHandlers.CreateItem)
	inventory.GET("/items/:id", itemHandlers.GetItem)
	inventory.PATCH("/items/:id", itemHandlers.PatchItem)
	inventory.GET("/items/:id/summary", itemHandlers.ItemSummary)

	// Ledger routes
	inventory.GET("/transactions", transactionHandlers.ListTransactions)
	inventory.POST("/transactions", transactionHandlers.PostTransaction)
	inventory.GET("/transactions/:id/source-doc", transactionHandlers.GetSourceDoc)

	// Reservation routes
	inventory.GET("/reservations", reservationHandlers.ListReservations)
	inventory.POST("/reservations", reservationHandlers.CreateReservation)
	inventory.PATCH("/reservations/:id", reservationHandlers.UpdateReservation)

	// On-hand projection routes
	inventory.GET("/onhand", onHandHandlers.GetOnHand)
	inventory.POST("/onhand/refresh", onHandHandlers.RefreshOnHand)

	// Configuration routes
	inventory.GET("/locations", locationHandlers.ListLocations)
	inventory.POST("/locations", locationHandlers.CreateLocation)
	inventory.GET("/schemas", schemaHandlers.ListSchemas)
	inventory.POST("/schemas", schemaHandlers.CreateSchema)
	inventory.GET("/schemas/:id", schemaHandlers.GetSchema)
	inventory.GET("/policies", policyHandlers.ListPolicies)
	inventory.PUT("/policies", policyHandlers.UpsertPolicy)
	inventory.GET("/conversions", conversionHandlers.ListConversions)
	inventory.POST("/conversions", conversionHandlers.CreateConversion)

	// Operational routes
	protected.GET("/audit-logs", auditHandlers.ListAuditLogs)
	protected.GET("/jobs/status", jobHandlers.GetJobStatus)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("🚀 Eventops inventory server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

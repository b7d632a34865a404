package main

import (
	"net/http"

	"circuit-service/internal/handler"
	"circuit-service/internal/membership"
	mid "circuit-service/internal/middleware"
	"circuit-service/pkg/config"
	"circuit-service/pkg/database"
	"circuit-service/pkg/jwtutil"
	"circuit-service/pkg/logger"
	"circuit-service/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting circuit-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Membership directory client for counterparty address checks
	handler.SetDirectory(membership.NewClient(&appConfig.Membership, log))
	log.Info("Membership directory client initialized",
		zap.String("base_url", appConfig.Membership.BaseURL))

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Circuit class API routes - auth middleware validates the JWT and
	// extracts the tenant claims
	classAPI := e.Group("/api/circuit-classes", mid.AuthMiddleware)
	classAPI.GET("", handler.ListCircuitClasses)
	classAPI.GET("/:id", handler.GetCircuitClass)
	classAPI.POST("", handler.CreateCircuitClass)
	classAPI.PUT("/:id", handler.UpdateCircuitClass)
	classAPI.PATCH("/:id", handler.PatchCircuitClass)
	classAPI.DELETE("/:id", handler.DeleteCircuitClass)

	// Circuit API routes
	circuitAPI := e.Group("/api/circuits", mid.AuthMiddleware)
	circuitAPI.GET("", handler.ListCircuits)
	circuitAPI.GET("/:id", handler.GetCircuit)
	circuitAPI.POST("", handler.CreateCircuit)
	circuitAPI.PUT("/:id", handler.UpdateCircuit)
	circuitAPI.PATCH("/:id", handler.PatchCircuit)
	circuitAPI.DELETE("/:id", handler.DeleteCircuit)

	// Reference data and property search
	e.GET("/api/property-types", handler.ListPropertyTypes, mid.AuthMiddleware)
	e.GET("/api/circuit-properties/:term", handler.SearchCircuitProperties, mid.AuthMiddleware)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/circuitcraft/academy-admin/docs"
	"github.com/circuitcraft/academy-admin/internal/infrastructure/http/handlers"
)

// RegisterOps mounts the operational endpoints on e: health checks, the
// Prometheus scrape endpoint and the Swagger UI. None of them require auth.
func RegisterOps(e *echo.Echo, db *mongo.Database, rdb *redis.Client) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(
		handlers.MongoPinger{DB: db},
		handlers.RedisPinger{Client: rdb},
	)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

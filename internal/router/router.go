package router

import (
	"time"

	"weighbridge_backend/internal/handlers"
	"weighbridge_backend/internal/middleware"
	"weighbridge_backend/internal/repositories"
	"weighbridge_backend/internal/services"
	"weighbridge_backend/pkg/locks"

	"github.com/gin-gonic/gin"
)

// entityLockTimeout bounds how long an operation waits for a per-ticket or
// per-stockpile lock before failing with a retryable lock-timeout error.
const entityLockTimeout = 5 * time.Second

// Setup wires the store through services and handlers onto the engine. With
// authRequired=false (disconnected edge deployments) the JWT and role gates
// are replaced with pass-throughs.
func Setup(engine *gin.Engine, store repositories.Store, authRequired bool) {
	ticketLocks := locks.NewKeyedMutex(entityLockTimeout)
	stockpileLocks := locks.NewKeyedMutex(entityLockTimeout)

	ticketService := services.NewTicketService(store, ticketLocks, stockpileLocks)
	stockService := services.NewStockService(store, stockpileLocks)
	alertService := services.NewAlertService(store)
	orderService := services.NewOrderService(store)

	ticketHandler := handlers.NewTicketHandler(ticketService)
	stockHandler := handlers.NewStockHandler(stockService)
	alertHandler := handlers.NewAlertHandler(alertService)
	orderHandler := handlers.NewOrderHandler(orderService)

	operatorGate := middleware.AllowAll()
	supervisorGate := middleware.AllowAll()

	apiV1 := engine.Group("/api/v1")
	if authRequired {
		apiV1.Use(middleware.AuthMiddleware())
		operatorGate = middleware.RoleAuthMiddleware("admin", "supervisor", "operator")
		supervisorGate = middleware.RoleAuthMiddleware("admin", "supervisor")
	}

	SetupTicketRoutes(apiV1, ticketHandler, operatorGate)
	SetupStockRoutes(apiV1, stockHandler, supervisorGate)
	SetupAlertRoutes(apiV1, alertHandler, operatorGate)
	SetupOrderRoutes(apiV1, orderHandler, supervisorGate)
}

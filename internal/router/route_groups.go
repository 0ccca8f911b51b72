package router

import (
	"weighbridge_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes sets up the weighing ticket routes.
func SetupTicketRoutes(apiGroup *gin.RouterGroup, ticketHandler *handlers.TicketHandler, writeGate gin.HandlerFunc) {
	ticketRoutes := apiGroup.Group("/tickets")
	{
		ticketRoutes.POST("", writeGate, ticketHandler.CreateTicket)
		ticketRoutes.POST("/:id/tare", writeGate, ticketHandler.CaptureTare)
		ticketRoutes.POST("/:id/gross", writeGate, ticketHandler.CaptureGross)
		ticketRoutes.POST("/:id/finalize", writeGate, ticketHandler.FinalizeTicket)
		ticketRoutes.POST("/:id/void", writeGate, ticketHandler.VoidTicket)
		ticketRoutes.POST("/:id/synced", ticketHandler.MarkTicketSynced)
		ticketRoutes.GET("", ticketHandler.GetTickets)
		ticketRoutes.GET("/:id", ticketHandler.GetTicketByID)
	}
}

// SetupStockRoutes sets up the ledger and stockpile projection routes.
func SetupStockRoutes(apiGroup *gin.RouterGroup, stockHandler *handlers.StockHandler, writeGate gin.HandlerFunc) {
	stockRoutes := apiGroup.Group("/stock")
	{
		stockRoutes.POST("/adjustments", writeGate, stockHandler.CreateAdjustment)
		stockRoutes.POST("/transfers", writeGate, stockHandler.CreateTransfer)
		stockRoutes.GET("/movements", stockHandler.GetMovements)
		stockRoutes.POST("/movements/:id/synced", stockHandler.MarkMovementSynced)
	}

	stockpileRoutes := apiGroup.Group("/stockpiles")
	{
		stockpileRoutes.GET("", stockHandler.GetStockpiles)
		stockpileRoutes.GET("/:id", stockHandler.GetStockpileByID)
	}
}

// SetupAlertRoutes sets up the stock alert routes.
func SetupAlertRoutes(apiGroup *gin.RouterGroup, alertHandler *handlers.AlertHandler, writeGate gin.HandlerFunc) {
	alertRoutes := apiGroup.Group("/alerts")
	{
		alertRoutes.POST("/:id/acknowledge", writeGate, alertHandler.AcknowledgeAlert)
		alertRoutes.POST("/:id/resolve", writeGate, alertHandler.ResolveAlert)
		alertRoutes.GET("", alertHandler.GetAlerts)
		alertRoutes.GET("/:id", alertHandler.GetAlertByID)
	}
}

// SetupOrderRoutes sets up the order seeding and read routes.
func SetupOrderRoutes(apiGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, writeGate gin.HandlerFunc) {
	orderRoutes := apiGroup.Group("/orders")
	{
		orderRoutes.POST("", writeGate, orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
	}
}

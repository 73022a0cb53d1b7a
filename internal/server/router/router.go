package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. webhook and
// metrics may be nil, in which case their routes are not served.
func New(handler *handlers.InventoryHandler, webhook *handlers.WebhookHandler, metrics http.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/send-message", webhook.SendMessage)
	}

	api := r.Group("/api")
	{
		api.GET("/products", handler.ListProducts)
		api.PUT("/products", handler.SaveProduct)
		api.GET("/products/low-stock", handler.LowStock)
		api.GET("/products/barcode/:barcode", handler.GetByBarcode)
		api.POST("/products/import", handler.ImportProducts)
		api.GET("/products/export", handler.ExportProducts)

		api.POST("/catalog/refresh", handler.Refresh)
		api.GET("/backend/status", handler.BackendStatus)

		api.GET("/order", handler.GetOrder)
		api.POST("/order/items", handler.AddOrderItem)
		api.PATCH("/order/items/:productId", handler.UpdateOrderItem)
		api.DELETE("/order/items/:productId", handler.RemoveOrderItem)
		api.DELETE("/order", handler.ClearOrder)
		api.POST("/order/submit", handler.SubmitOrder)

		api.GET("/stocktake", handler.GetStocktake)
		api.POST("/stocktake/items", handler.AddStocktakeItem)
		api.PATCH("/stocktake/items/:productId", handler.UpdateStocktakeItem)
		api.DELETE("/stocktake/items/:productId", handler.RemoveStocktakeItem)
		api.DELETE("/stocktake", handler.ClearStocktake)
		api.POST("/stocktake/submit", handler.SubmitStocktake)

		api.GET("/purchase-orders", handler.ListPurchaseOrders)
		api.POST("/purchase-orders/:id/receive", handler.ReceivePurchaseOrder)

		api.GET("/suppliers", handler.ListSuppliers)
		api.POST("/suppliers", handler.SaveSupplier)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

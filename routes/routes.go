package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/controllers"
)

// RegisterSyncRoutes sets up catalog and inventory sync routes.
func RegisterSyncRoutes(r *gin.Engine, sc *controllers.SyncController) {
	sync := r.Group("/sync")

	sync.POST("/catalog", sc.EnqueueCatalogSync)
	sync.GET("/jobs/:id", sc.GetSyncJob)

	// Synchronous variants (internal/admin): run in the request and
	// return the summary directly.
	sync.POST("/catalog/run", sc.RunCatalogSync)
	sync.POST("/inventory", sc.RunInventoryReconcile)
}

// RegisterOrderRoutes sets up dropship order dispatch routes.
func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController) {
	orders := r.Group("/orders")

	orders.POST("/dispatch", oc.DispatchOrder)
	orders.GET("/:id/mappings", oc.GetOrderMappings)
}

// RegisterWebhookRoutes sets up inbound provider notification routes.
func RegisterWebhookRoutes(r *gin.Engine, wc *controllers.WebhookController) {
	webhooks := r.Group("/webhooks")

	webhooks.POST("/:provider/orders", wc.OrderStatus)
}

// RegisterProviderRoutes sets up provider health routes.
func RegisterProviderRoutes(r *gin.Engine, pc *controllers.ProviderController) {
	providerRoutes := r.Group("/providers")

	providerRoutes.GET("/health", pc.Health)
}

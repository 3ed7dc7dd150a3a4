package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
)

type ProviderController struct {
	registry *providers.Registry
}

func NewProviderController(registry *providers.Registry) *ProviderController {
	return &ProviderController{registry: registry}
}

// Health reports the health of every configured provider adapter.
func (ctrl *ProviderController) Health(c *gin.Context) {
	statuses := make(map[string]providers.Health)
	for _, name := range ctrl.registry.Names() {
		prov, err := ctrl.registry.Get(name)
		if err != nil {
			continue
		}
		statuses[name] = prov.CheckHealth(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"providers": statuses})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ledgerlens/internal/config"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db       *sqlx.DB
	prompts  *config.PromptStore
	provider string
	model    string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, prompts *config.PromptStore, provider, model string) *HealthHandler {
	return &HealthHandler{db: db, prompts: prompts, provider: provider, model: model}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"provider":            h.provider,
		"model":               h.model,
		"available_templates": h.prompts.Names(),
	})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

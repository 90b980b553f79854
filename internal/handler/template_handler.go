package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerlens/internal/config"
)

// TemplateHandler exposes the prompt template catalog.
type TemplateHandler struct {
	prompts *config.PromptStore
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(prompts *config.PromptStore) *TemplateHandler {
	return &TemplateHandler{prompts: prompts}
}

// List handles GET /api/v1/templates
// @Summary List prompt templates
// @Description List the available extraction prompt templates with their descriptions
// @Tags templates
// @Produce json
// @Success 200 {object} Response{data=TemplateListResponse} "Available templates"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security ApiKeyAuth
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	RespondOK(c, gin.H{
		"templates": h.prompts.Available(),
		"names":     h.prompts.Names(),
	})
}

// Reload handles POST /api/v1/templates/reload
// @Summary Reload prompt templates
// @Description Re-read the prompt template file without restarting the server
// @Tags templates
// @Produce json
// @Success 200 {object} Response{data=MessageResponse} "Templates reloaded"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 500 {object} ErrorResponseBody "Template file unreadable"
// @Security ApiKeyAuth
// @Router /templates/reload [post]
func (h *TemplateHandler) Reload(c *gin.Context) {
	if err := h.prompts.Reload(); err != nil {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] templateHandler.Reload: %v", requestID, err)
		RespondError(c, http.StatusInternalServerError, "RELOAD_FAILED", "failed to reload prompt templates")
		return
	}
	RespondOK(c, gin.H{
		"message":   "Configuration reloaded successfully",
		"templates": h.prompts.Names(),
	})
}

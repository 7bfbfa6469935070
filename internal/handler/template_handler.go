package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/marksheet-builder/internal/response"
	"github.com/stemsi/marksheet-builder/internal/service"
)

// TemplateHandler serves the class selector options.
type TemplateHandler struct {
	templateService *service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// ListTemplates godoc
// GET /api/v1/users/:user_id/templates
// Lists the distinct template names of the user's students. Backend
// failures are logged and produce an empty list.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	names := h.templateService.TemplateNames(c.Request.Context(), c.Param("user_id"))
	response.Success(c, http.StatusOK, gin.H{"templates": names})
}

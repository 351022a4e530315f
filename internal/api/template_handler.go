package api

import (
	"alcyxob/coach-plans/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type TemplateHandler struct {
	templateService service.PlanTemplateService
	logger          zerolog.Logger
}

func NewTemplateHandler(templateService service.PlanTemplateService, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, logger: logger}
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateService.ListPlanTemplates(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateInput
	if !bindJSON(c, &req) {
		return
	}
	tpl, err := h.templateService.CreatePlanTemplate(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	tpl, err := h.templateService.GetPlanTemplate(c.Request.Context(), identityFromContext(c), templateID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	var req service.UpdateTemplateInput
	if !bindJSON(c, &req) {
		return
	}
	tpl, err := h.templateService.UpdatePlanTemplate(c.Request.Context(), identityFromContext(c), templateID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	if err := h.templateService.DeletePlanTemplate(c.Request.Context(), identityFromContext(c), templateID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

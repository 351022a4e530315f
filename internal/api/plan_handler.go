package api

import (
	"alcyxob/coach-plans/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PlanHandler serves plans and their clone operations.
type PlanHandler struct {
	planService service.PlanService
	logger      zerolog.Logger
}

func NewPlanHandler(planService service.PlanService, logger zerolog.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, logger: logger}
}

// CreatePlan godoc
// @Summary Create a plan with its full day tree for a client
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan body service.CreatePlanInput true "Plan header and days"
// @Success 201 {object} domain.Plan
// @Failure 400 {object} ErrorResponse "Invalid tree or unknown reference"
// @Failure 403 {object} ErrorResponse
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req service.CreatePlanInput
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.planService.CreatePlan(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), identityFromContext(c), planID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ListMyPlans returns the calling client's plans.
func (h *PlanHandler) ListMyPlans(c *gin.Context) {
	plans, err := h.planService.ListMyPlans(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	var req service.UpdatePlanInput
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.planService.UpdatePlan(c.Request.Context(), identityFromContext(c), planID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) PublishPlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	plan, err := h.planService.PublishPlan(c.Request.Context(), identityFromContext(c), planID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), identityFromContext(c), planID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicatePlan godoc
// @Summary Copy a plan's full tree into a new draft plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param planId path string true "Source plan ID"
// @Param overrides body service.DuplicatePlanInput true "New title, optional client and dates"
// @Success 201 {object} domain.Plan
// @Router /plans/{planId}/duplicate [post]
func (h *PlanHandler) DuplicatePlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	var req service.DuplicatePlanInput
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.planService.DuplicatePlan(c.Request.Context(), identityFromContext(c), planID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// CreatePlanFromTemplate instantiates a template for a client.
func (h *PlanHandler) CreatePlanFromTemplate(c *gin.Context) {
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	var req service.FromTemplateInput
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.planService.CreatePlanFromTemplate(c.Request.Context(), identityFromContext(c), templateID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// ExportPlan writes the plan as JSON to object storage and returns a
// short-lived download URL. Answers 503 when no bucket is configured.
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	export, err := h.planService.ExportPlan(c.Request.Context(), identityFromContext(c), planID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, export)
}

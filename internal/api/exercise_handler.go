package api

import (
	"alcyxob/coach-plans/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CatalogHandler serves the exercise catalog, section templates and
// progression types.
type CatalogHandler struct {
	exerciseService service.ExerciseService
	catalogService  service.CatalogService
	logger          zerolog.Logger
}

func NewCatalogHandler(exerciseService service.ExerciseService, catalogService service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{exerciseService: exerciseService, catalogService: catalogService, logger: logger}
}

type RenameSectionRequest struct {
	Name string `json:"name" binding:"required"`
}

// --- Exercises ---

func (h *CatalogHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

func (h *CatalogHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), identityFromContext(c), exerciseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// CreateExercise godoc
// @Summary Add an exercise to the global catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Param exercise body service.CreateExerciseInput true "Exercise details"
// @Success 201 {object} domain.Exercise
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /exercises [post]
func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	var req service.CreateExerciseInput
	if !bindJSON(c, &req) {
		return
	}
	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// --- Sections ---

func (h *CatalogHandler) ListSections(c *gin.Context) {
	sections, err := h.catalogService.ListSections(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

func (h *CatalogHandler) CreateSection(c *gin.Context) {
	var req service.CreateSectionInput
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.catalogService.CreateSection(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// RenameSection updates the section name. Existing day snapshots keep the old one.
func (h *CatalogHandler) RenameSection(c *gin.Context) {
	sectionID, ok := pathObjectID(c, "sectionId")
	if !ok {
		return
	}
	var req RenameSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.catalogService.RenameSection(c.Request.Context(), identityFromContext(c), sectionID, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

// --- Progression types ---

func (h *CatalogHandler) ListProgressionTypes(c *gin.Context) {
	types, err := h.catalogService.ListProgressionTypes(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *CatalogHandler) CreateProgressionType(c *gin.Context) {
	var req service.CreateProgressionTypeInput
	if !bindJSON(c, &req) {
		return
	}
	pt, err := h.catalogService.CreateProgressionType(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, pt)
}

func (h *CatalogHandler) UpdateProgressionType(c *gin.Context) {
	ptID, ok := pathObjectID(c, "progressionTypeId")
	if !ok {
		return
	}
	var req service.UpdateProgressionTypeInput
	if !bindJSON(c, &req) {
		return
	}
	pt, err := h.catalogService.UpdateProgressionType(c.Request.Context(), identityFromContext(c), ptID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}

func (h *CatalogHandler) DeleteProgressionType(c *gin.Context) {
	ptID, ok := pathObjectID(c, "progressionTypeId")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteProgressionType(c.Request.Context(), identityFromContext(c), ptID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package api

import (
	"alcyxob/coach-plans/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ClientHandler serves the coach's client roster.
type ClientHandler struct {
	clientService service.ClientService
	planService   service.PlanService
	logger        zerolog.Logger
}

func NewClientHandler(clientService service.ClientService, planService service.PlanService, logger zerolog.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, planService: planService, logger: logger}
}

// ListClients godoc
// @Summary List the calling coach's clients, sorted by name
// @Tags Clients
// @Produce json
// @Success 200 {array} domain.ClientSummary
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.ListClientsForCoach(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// CreateClient godoc
// @Summary Add a user to the calling coach's roster
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body service.CreateClientInput true "User id or email, plus optional docId and notes"
// @Success 201 {object} domain.ClientSummary
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "Already a client, or a coach"
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientInput
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	clientID, ok := pathObjectID(c, "clientId")
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), identityFromContext(c), clientID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	clientID, ok := pathObjectID(c, "clientId")
	if !ok {
		return
	}
	var req service.UpdateClientInput
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), identityFromContext(c), clientID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// ListClientPlans returns plan summaries for one client, newest number first.
func (h *ClientHandler) ListClientPlans(c *gin.Context) {
	clientID, ok := pathObjectID(c, "clientId")
	if !ok {
		return
	}
	plans, err := h.planService.ListPlansForClient(c.Request.Context(), identityFromContext(c), clientID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

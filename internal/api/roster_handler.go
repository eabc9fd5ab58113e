package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tidalpower/fitness-studio/internal/service"
)

// RosterHandler serves a trainer's client list.
type RosterHandler struct {
	rosterService service.RosterService
}

func NewRosterHandler(rosterService service.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster by email
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse
// @Failure 403 {object} gin.H "User is not a client"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 409 {object} gin.H "Client already has a trainer"
// @Router /trainer/clients [post]
func (h *RosterHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	client, err := h.rosterService.AddClientByEmail(c.Request.Context(), p.UserID, req.ClientEmail)
	if err != nil {
		respondError(c, err, "Failed to add client.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary List the trainer's clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainer/clients [get]
func (h *RosterHandler) GetManagedClients(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	clients, err := h.rosterService.GetManagedClients(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err, "Failed to retrieve managed clients.")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

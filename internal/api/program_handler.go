package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tidalpower/fitness-studio/internal/service"
)

type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

type SlotRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	WeekNumber int    `json:"weekNumber" binding:"required,gt=0"`
	DayNumber  int    `json:"dayNumber" binding:"required,min=1,max=7"`
}

type CreateProgramRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	TotalWeeks  int           `json:"totalWeeks" binding:"required,gt=0"`
	Slots       []SlotRequest `json:"slots" binding:"dive"`
}

type AssignProgramRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Notes    string `json:"notes"`
}

func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	slots := make([]service.SlotInput, 0, len(req.Slots))
	for _, s := range req.Slots {
		id, ok := optionalObjectID(c, s.TemplateID, "templateId")
		if !ok {
			return
		}
		slots = append(slots, service.SlotInput{TemplateID: id, WeekNumber: s.WeekNumber, DayNumber: s.DayNumber})
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	def, err := h.programService.CreateProgram(c.Request.Context(), p, req.Name, req.Description, req.TotalWeeks, slots)
	if err != nil {
		respondError(c, err, "Failed to create program.")
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	def, err := h.programService.GetProgram(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve program.")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	defs, err := h.programService.ListPrograms(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err, "Failed to list programs.")
		return
	}
	c.JSON(http.StatusOK, defs)
}

// AssignProgram godoc
// @Summary Put a client on a program, starting at week 1 day 1
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param body body AssignProgramRequest true "Client to assign"
// @Success 201 {object} domain.ProgramAssignment
// @Router /programs/{id}/assignments [post]
func (h *ProgramHandler) AssignProgram(c *gin.Context) {
	programID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req AssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := optionalObjectID(c, req.ClientID, "clientId")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	a, err := h.programService.AssignProgram(c.Request.Context(), p, programID, clientID, req.Notes)
	if err != nil {
		respondError(c, err, "Failed to assign program.")
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListAssignments returns a client's assignments; clients omit ?clientId=.
func (h *ProgramHandler) ListAssignments(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := optionalObjectID(c, c.Query("clientId"), "clientId")
	if !ok {
		return
	}
	if clientID.IsZero() {
		clientID = p.UserID
	}
	list, err := h.programService.ListAssignments(c.Request.Context(), p, clientID)
	if err != nil {
		respondError(c, err, "Failed to list assignments.")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProgramHandler) AdvanceAssignment(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	a, err := h.programService.AdvanceAssignment(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, "Failed to advance assignment.")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *ProgramHandler) GetTimeline(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	tl, err := h.programService.GetTimeline(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, "Failed to build timeline.")
		return
	}
	c.JSON(http.StatusOK, tl)
}

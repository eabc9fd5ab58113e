package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tidalpower/fitness-studio/internal/metrics"
	"tidalpower/fitness-studio/internal/service"
)

// SessionHandler serves workout sessions, set logging and exercise bests.
type SessionHandler struct {
	sessionService service.SessionService
	loc            *time.Location
	metrics        *metrics.Manager
}

func NewSessionHandler(sessionService service.SessionService, loc *time.Location, mm *metrics.Manager) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, loc: loc, metrics: mm}
}

type AssignWorkoutRequest struct {
	Date       string `json:"date" binding:"required"`
	TemplateID string `json:"templateId" binding:"required"`
}

type StartSessionRequest struct {
	ClientID   string `json:"clientId"`
	TemplateID string `json:"templateId" binding:"required"`
	Date       string `json:"date"`
}

type SetEntryRequest struct {
	SetNumber int     `json:"setNumber" binding:"required,gt=0"`
	Reps      int     `json:"reps"`
	WeightLbs float64 `json:"weightLbs"`
	Notes     string  `json:"notes"`
}

type SubmitSetsRequest struct {
	// ExerciseIndex is the exercise the batch was entered for.
	ExerciseIndex *int              `json:"exerciseIndex" binding:"required,gte=0"`
	Sets          []SetEntryRequest `json:"sets" binding:"required,min=1,dive"`
}

type ClassifyRequest struct {
	ClientID  string   `json:"clientId"`
	SessionID string   `json:"sessionId"`
	Reps      *int     `json:"reps"`
	WeightLbs *float64 `json:"weightLbs"`
}

// AssignWorkout attaches a template to one occurrence of a class.
func (h *SessionHandler) AssignWorkout(c *gin.Context) {
	classID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req AssignWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	date, ok := parseDate(c, req.Date, "date", h.loc)
	if !ok {
		return
	}
	templateID, ok := optionalObjectID(c, req.TemplateID, "templateId")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	session, err := h.sessionService.AssignTemplateToClass(c.Request.Context(), p, classID, date, templateID)
	if err != nil {
		respondError(c, err, "Failed to assign workout.")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// StartSession creates an ad-hoc session for a client. Clients omit clientId.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := optionalObjectID(c, req.ClientID, "clientId")
	if !ok {
		return
	}
	if clientID.IsZero() {
		clientID = p.UserID
	}
	templateID, ok := optionalObjectID(c, req.TemplateID, "templateId")
	if !ok {
		return
	}
	date := time.Now().In(h.loc)
	if req.Date != "" {
		if date, ok = parseDate(c, req.Date, "date", h.loc); !ok {
			return
		}
	}

	session, err := h.sessionService.StartClientSession(c.Request.Context(), p, clientID, templateID, date)
	if err != nil {
		respondError(c, err, "Failed to start session.")
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	from, ok := parseDate(c, c.Query("from"), "from", h.loc)
	if !ok {
		return
	}
	to, ok := parseDate(c, c.Query("to"), "to", h.loc)
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	sessions, err := h.sessionService.ListSessions(c.Request.Context(), p, from, to)
	if err != nil {
		respondError(c, err, "Failed to list sessions.")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	session, err := h.sessionService.GetSession(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, "Failed to retrieve session.")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) GetMatrix(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	view, err := h.sessionService.GetMatrix(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, "Failed to build set matrix.")
		return
	}
	c.JSON(http.StatusOK, view)
}

func setBatchOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, service.ErrStaleBatch):
		return "stale"
	case errors.Is(err, service.ErrInvalidSets):
		return "invalid"
	case errors.Is(err, service.ErrSessionComplete):
		return "complete"
	}
	return "rejected"
}

// SubmitSets godoc
// @Summary Log every set of the current exercise and move to the next
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param batch body SubmitSetsRequest true "Sets for the current exercise"
// @Success 200 {object} domain.WorkoutSession
// @Failure 400 {object} gin.H "Sets not numbered 1..n or negative values"
// @Failure 409 {object} gin.H "Session already moved past exerciseIndex"
// @Router /workout-sessions/{id}/sets [post]
func (h *SessionHandler) SubmitSets(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req SubmitSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	entries := make([]service.SetEntry, 0, len(req.Sets))
	for _, s := range req.Sets {
		entries = append(entries, service.SetEntry{SetNumber: s.SetNumber, Reps: s.Reps, WeightLbs: s.WeightLbs, Notes: s.Notes})
	}

	session, err := h.sessionService.SubmitSets(c.Request.Context(), p, id, *req.ExerciseIndex, entries)
	h.metrics.CounterSetBatches.WithLabelValues(setBatchOutcome(err)).Inc()
	if err != nil {
		respondError(c, err, "Failed to log sets.")
		return
	}
	h.metrics.CounterSetsLogged.Add(float64(len(entries)))
	c.JSON(http.StatusOK, session)
}

// ExerciseBest returns personal records and the previous session's best for
// an exercise. Staff pass ?clientId=; ?sessionId= excludes the session in
// progress.
func (h *SessionHandler) ExerciseBest(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	clientID, ok := optionalObjectID(c, c.Query("clientId"), "clientId")
	if !ok {
		return
	}
	sessionID, ok := optionalObjectID(c, c.Query("sessionId"), "sessionId")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	best, err := h.sessionService.ExerciseBest(c.Request.Context(), p, exerciseID, clientID, sessionID)
	if err != nil {
		respondError(c, err, "Failed to compute exercise best.")
		return
	}
	c.JSON(http.StatusOK, best)
}

// ClassifySet reports whether an entered set is a PR, an overload or neither.
func (h *SessionHandler) ClassifySet(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := optionalObjectID(c, req.ClientID, "clientId")
	if !ok {
		return
	}
	sessionID, ok := optionalObjectID(c, req.SessionID, "sessionId")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	indicator, best, err := h.sessionService.ClassifySet(c.Request.Context(), p, exerciseID, clientID, sessionID, req.Reps, req.WeightLbs)
	if err != nil {
		respondError(c, err, "Failed to classify set.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"indicator": indicator, "best": best})
}

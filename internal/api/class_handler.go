package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tidalpower/fitness-studio/internal/service"
)

// ClassHandler serves class definitions and the studio calendar.
type ClassHandler struct {
	classService service.ClassService
}

func NewClassHandler(classService service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

type ClassRequest struct {
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category"`
	InstructorID string `json:"instructorId"`
	DaysOfWeek   []int  `json:"daysOfWeek" binding:"omitempty,dive,min=0,max=6"`
	// DayOfWeek is accepted from older clients that send a single day.
	DayOfWeek       *int   `json:"dayOfWeek" binding:"omitempty,min=0,max=6"`
	StartTime       string `json:"startTime" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,gt=0"`
	MaxCapacity     int    `json:"maxCapacity" binding:"required,gt=0"`
	PriceCents      int64  `json:"priceCents" binding:"gte=0"`
	IsActive        *bool  `json:"isActive"`
}

func (h *ClassHandler) bindClass(c *gin.Context) (service.ClassInput, bool) {
	var req ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return service.ClassInput{}, false
	}
	instructorID, ok := optionalObjectID(c, req.InstructorID, "instructorId")
	if !ok {
		return service.ClassInput{}, false
	}
	return service.ClassInput{
		Name:            req.Name,
		Category:        req.Category,
		InstructorID:    instructorID,
		DaysOfWeek:      req.DaysOfWeek,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		MaxCapacity:     req.MaxCapacity,
		PriceCents:      req.PriceCents,
		IsActive:        req.IsActive,
	}, true
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	in, ok := h.bindClass(c)
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	def, err := h.classService.CreateClass(c.Request.Context(), p, in)
	if err != nil {
		respondError(c, err, "Failed to create class.")
		return
	}
	c.JSON(http.StatusCreated, def)
}

// ListClasses returns active classes; staff may add ?includeInactive=true.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	includeInactive := c.Query("includeInactive") == "true" && p.CanManageStudio()
	defs, err := h.classService.ListClasses(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err, "Failed to list classes.")
		return
	}
	c.JSON(http.StatusOK, defs)
}

func (h *ClassHandler) GetClass(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	def, err := h.classService.GetClass(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve class.")
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	in, ok := h.bindClass(c)
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	def, err := h.classService.UpdateClass(c.Request.Context(), p, id, in)
	if err != nil {
		respondError(c, err, "Failed to update class.")
		return
	}
	c.JSON(http.StatusOK, def)
}

// DeactivateClass hides a class from the calendar; classes are never hard
// deleted.
func (h *ClassHandler) DeactivateClass(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.classService.DeactivateClass(c.Request.Context(), p, id); err != nil {
		respondError(c, err, "Failed to deactivate class.")
		return
	}
	c.Status(http.StatusNoContent)
}

// dateQuery reads ?date=YYYY-MM-DD, defaulting to today in the studio zone.
func (h *ClassHandler) dateQuery(c *gin.Context) (time.Time, bool) {
	loc := h.classService.Location()
	raw := c.Query("date")
	if raw == "" {
		return time.Now().In(loc), true
	}
	return parseDate(c, raw, "date", loc)
}

func (h *ClassHandler) DaySchedule(c *gin.Context) {
	date, ok := h.dateQuery(c)
	if !ok {
		return
	}
	day, err := h.classService.DaySchedule(c.Request.Context(), date)
	if err != nil {
		respondError(c, err, "Failed to build day schedule.")
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *ClassHandler) WeekSchedule(c *gin.Context) {
	date, ok := h.dateQuery(c)
	if !ok {
		return
	}
	days, err := h.classService.WeekSchedule(c.Request.Context(), date)
	if err != nil {
		respondError(c, err, "Failed to build week schedule.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *ClassHandler) MonthSchedule(c *gin.Context) {
	now := time.Now().In(h.classService.Location())
	year, month := now.Year(), int(now.Month())
	var err error
	if raw := c.Query("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			abortWithError(c, http.StatusBadRequest, "year must be a number")
			return
		}
	}
	if raw := c.Query("month"); raw != "" {
		if month, err = strconv.Atoi(raw); err != nil {
			abortWithError(c, http.StatusBadRequest, "month must be a number")
			return
		}
	}

	grid, err := h.classService.MonthSchedule(c.Request.Context(), year, time.Month(month))
	if err != nil {
		respondError(c, err, "Failed to build month schedule.")
		return
	}
	c.JSON(http.StatusOK, grid)
}

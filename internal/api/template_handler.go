package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/service"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

type TemplateExerciseRequest struct {
	ExerciseID string  `json:"exerciseId" binding:"required"`
	Name       string  `json:"name"`
	Sets       int     `json:"sets" binding:"required,gt=0"`
	Reps       int     `json:"reps" binding:"gte=0"`
	WeightLbs  float64 `json:"weightLbs" binding:"gte=0"`
}

type CreateTemplateRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Exercises   []TemplateExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exercises := make([]domain.TemplateExercise, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		id, ok := optionalObjectID(c, e.ExerciseID, "exerciseId")
		if !ok {
			return
		}
		exercises = append(exercises, domain.TemplateExercise{
			ExerciseID: id,
			Name:       e.Name,
			Sets:       e.Sets,
			Reps:       e.Reps,
			WeightLbs:  e.WeightLbs,
		})
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	tpl, err := h.templateService.CreateTemplate(c.Request.Context(), p, req.Name, req.Description, exercises)
	if err != nil {
		respondError(c, err, "Failed to create template.")
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templateService.GetTemplate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve template.")
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// ListTemplates returns the caller's templates.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	templates, err := h.templateService.ListTemplates(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err, "Failed to list templates.")
		return
	}
	c.JSON(http.StatusOK, templates)
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/service"
)

type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// ExerciseRequest is the body for creating or replacing an exercise.
type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MuscleGroup string `json:"muscleGroup"`
	Equipment   string `json:"equipment"`
	Difficulty  string `json:"difficulty" binding:"omitempty,oneof=Novice Medium Advanced"`
}

func (r ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:        r.Name,
		Description: r.Description,
		MuscleGroup: r.MuscleGroup,
		Equipment:   r.Equipment,
		Difficulty:  r.Difficulty,
	}
}

type ExerciseResponse struct {
	ID          string    `json:"id"`
	TrainerID   string    `json:"trainerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MuscleGroup string    `json:"muscleGroup,omitempty"`
	Equipment   string    `json:"equipment,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	HasVideo    bool      `json:"hasVideo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmVideoRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		TrainerID:   ex.TrainerID.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		MuscleGroup: ex.MuscleGroup,
		Equipment:   ex.Equipment,
		Difficulty:  ex.Difficulty,
		HasVideo:    ex.VideoObjectKey != "",
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// CreateExercise godoc
// @Summary Create a library exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), p.UserID, req.input())
	if err != nil {
		respondError(c, err, "Failed to create exercise.")
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetTrainerExercises lists the caller's own exercise library.
func (h *ExerciseHandler) GetTrainerExercises(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.GetExercisesByTrainer(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err, "Failed to retrieve exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), p.UserID, id, req.input())
	if err != nil {
		respondError(c, err, "Failed to update exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), p.UserID, id); err != nil {
		respondError(c, err, "Failed to delete exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestVideoUpload godoc
// @Summary Get a presigned URL for uploading an exercise demo video
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param body body VideoUploadRequest true "Video content type"
// @Success 200 {object} service.VideoUpload
// @Failure 415 {object} gin.H "Not a supported video type"
// @Failure 503 {object} gin.H "Video storage not configured"
// @Router /exercises/{id}/video/upload-url [post]
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	upload, err := h.exerciseService.RequestVideoUpload(c.Request.Context(), p.UserID, id, req.ContentType)
	if err != nil {
		respondError(c, err, "Failed to prepare video upload.")
		return
	}
	c.JSON(http.StatusOK, upload)
}

func (h *ExerciseHandler) ConfirmVideoUpload(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ConfirmVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.ConfirmVideoUpload(c.Request.Context(), p.UserID, id, req.ObjectKey)
	if err != nil {
		respondError(c, err, "Failed to attach video.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) GetVideoURL(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	url, err := h.exerciseService.GetVideoURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to generate video URL.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

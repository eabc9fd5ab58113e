package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/service"
)

const dateLayout = "2006-01-02"

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrAuthenticationFailed, http.StatusUnauthorized},

	{service.ErrAccessDenied, http.StatusForbidden},
	{service.ErrExerciseAccessDenied, http.StatusForbidden},
	{service.ErrClassAccessDenied, http.StatusForbidden},
	{service.ErrClientNotManaged, http.StatusForbidden},
	{service.ErrClientNotRole, http.StatusForbidden},

	{service.ErrClientNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrClassNotFound, http.StatusNotFound},
	{service.ErrBookingNotFound, http.StatusNotFound},
	{service.ErrSessionNotFound, http.StatusNotFound},
	{service.ErrTemplateNotFound, http.StatusNotFound},
	{service.ErrProgramNotFound, http.StatusNotFound},
	{service.ErrAssignmentNotFound, http.StatusNotFound},
	{service.ErrNoVideo, http.StatusNotFound},

	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrClientAlreadyAssigned, http.StatusConflict},
	{service.ErrClassFull, http.StatusConflict},
	{service.ErrAlreadyBooked, http.StatusConflict},
	{service.ErrBookingClosed, http.StatusConflict},
	{service.ErrBookingNotActive, http.StatusConflict},
	{service.ErrSessionExists, http.StatusConflict},
	{service.ErrSessionComplete, http.StatusConflict},
	{service.ErrStaleBatch, http.StatusConflict},
	{service.ErrStaleAssignment, http.StatusConflict},
	{service.ErrAssignmentCompleted, http.StatusConflict},

	{service.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
	{service.ErrStorageDisabled, http.StatusServiceUnavailable},

	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrInvalidSets, http.StatusBadRequest},
	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrClassNotScheduled, http.StatusUnprocessableEntity},
	{service.ErrSessionHasNoClient, http.StatusUnprocessableEntity},
}

// statusFor maps a service error to its HTTP status; 500 if unknown.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Unknown errors are logged
// and replaced by fallback so internals never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		abortWithError(c, status, fallback)
		return
	}
	abortWithError(c, status, err.Error())
}

// principalOrAbort fetches the caller; on failure the request is aborted.
func principalOrAbort(c *gin.Context) (domain.Principal, bool) {
	p, ok := getPrincipal(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
	}
	return p, ok
}

func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalObjectID parses raw when set; an empty raw yields NilObjectID.
func optionalObjectID(c *gin.Context, raw, name string) (primitive.ObjectID, bool) {
	if raw == "" {
		return primitive.NilObjectID, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseDate reads a YYYY-MM-DD value in loc.
func parseDate(c *gin.Context, raw, name string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

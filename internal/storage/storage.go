package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage issues short-lived URLs against an object store so clients can
// upload and stream exercise demo videos without proxying through the API.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a URL accepting a single PUT of
	// contentType at objectKey.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

var videoExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
}

// IsVideoContentType reports whether contentType is accepted for demo videos.
func IsVideoContentType(contentType string) bool {
	_, ok := videoExtensions[strings.ToLower(contentType)]
	return ok
}

// ExerciseVideoKey builds a fresh object key for an exercise demo video,
// e.g. "exercises/<exerciseID>/<uuid>.mp4".
func ExerciseVideoKey(exerciseID string, contentType string) string {
	ext := videoExtensions[strings.ToLower(contentType)]
	return path.Join("exercises", exerciseID, fmt.Sprintf("%s%s", uuid.NewString(), ext))
}

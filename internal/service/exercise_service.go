package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
	"tidalpower/fitness-studio/internal/storage"
)

var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("validation failed")
	ErrStorageDisabled      = errors.New("video storage is not configured")
	ErrUnsupportedMedia     = errors.New("unsupported video content type")
	ErrNoVideo              = errors.New("exercise has no demo video")
)

// ExerciseInput carries the editable fields of an exercise.
type ExerciseInput struct {
	Name        string
	Description string
	MuscleGroup string
	Equipment   string
	Difficulty  string
}

// VideoUpload is a presigned PUT target for an exercise demo video.
type VideoUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error

	RequestVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*VideoUpload, error)
	ConfirmVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error)
	GetVideoURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
	urlExpiry    time.Duration
}

// NewExerciseService builds the exercise library service. fileStorage may be
// nil, in which case the video operations return ErrStorageDisabled.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		urlExpiry:    storage.DefaultPresignedURLExpiry,
	}
}

func (in ExerciseInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}
	return nil
}

func (s *exerciseService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		TrainerID:   trainerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		MuscleGroup: in.MuscleGroup,
		Equipment:   in.Equipment,
		Difficulty:  in.Difficulty,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID cannot be nil")
	}
	return s.exerciseRepo.GetByTrainerID(ctx, trainerID)
}

// owned loads an exercise and checks trainerID owns it.
func (s *exerciseService) owned(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if exercise.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	exercise, err := s.owned(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, err
	}

	exercise.Name = strings.TrimSpace(in.Name)
	exercise.Description = in.Description
	exercise.MuscleGroup = in.MuscleGroup
	exercise.Equipment = in.Equipment
	exercise.Difficulty = in.Difficulty

	if err = s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// DeleteExercise removes an exercise and, best effort, its demo video.
func (s *exerciseService) DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	exercise, err := s.owned(ctx, trainerID, exerciseID)
	if err != nil {
		return err
	}
	if err = s.exerciseRepo.Delete(ctx, exerciseID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	s.deleteVideo(ctx, exercise.VideoObjectKey)
	return nil
}

func (s *exerciseService) RequestVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*VideoUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if !storage.IsVideoContentType(contentType) {
		return nil, ErrUnsupportedMedia
	}
	if _, err := s.owned(ctx, trainerID, exerciseID); err != nil {
		return nil, err
	}

	key := storage.ExerciseVideoKey(exerciseID.Hex(), contentType)
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		return nil, err
	}
	return &VideoUpload{
		UploadURL: url,
		ObjectKey: key,
		ExpiresAt: time.Now().UTC().Add(s.urlExpiry),
	}, nil
}

// ConfirmVideoUpload points the exercise at a freshly uploaded object. The
// key must be one issued for this exercise.
func (s *exerciseService) ConfirmVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if !strings.HasPrefix(objectKey, "exercises/"+exerciseID.Hex()+"/") {
		return nil, fmt.Errorf("%w: object key does not belong to this exercise", ErrValidationFailed)
	}
	exercise, err := s.owned(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, err
	}

	previous := exercise.VideoObjectKey
	exercise.VideoObjectKey = objectKey
	if err = s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	if previous != objectKey {
		s.deleteVideo(ctx, previous)
	}
	return exercise, nil
}

func (s *exerciseService) GetVideoURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	if s.fileStorage == nil {
		return "", ErrStorageDisabled
	}
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return "", err
	}
	if exercise.VideoObjectKey == "" {
		return "", ErrNoVideo
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoObjectKey, s.urlExpiry)
}

func (s *exerciseService) deleteVideo(ctx context.Context, key string) {
	if key == "" || s.fileStorage == nil {
		return
	}
	if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
		log.WithError(err).WithField("key", key).Warn("orphaned exercise video")
	}
}

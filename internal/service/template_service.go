package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
)

var ErrTemplateNotFound = errors.New("workout template not found")

type TemplateService interface {
	CreateTemplate(ctx context.Context, caller domain.Principal, name, description string, exercises []domain.TemplateExercise) (*domain.WorkoutTemplate, error)
	GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
}

type templateService struct {
	templateRepo repository.TemplateRepository
	exerciseRepo repository.ExerciseRepository
}

func NewTemplateService(templateRepo repository.TemplateRepository, exerciseRepo repository.ExerciseRepository) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		exerciseRepo: exerciseRepo,
	}
}

// CreateTemplate stores a template after checking every exercise exists.
// Exercise names default to the library name; a blank template name becomes
// domain.DefaultTemplateName.
func (s *templateService) CreateTemplate(ctx context.Context, caller domain.Principal, name, description string, exercises []domain.TemplateExercise) (*domain.WorkoutTemplate, error) {
	if !caller.CanManageStudio() {
		return nil, ErrAccessDenied
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%w: a template needs at least one exercise", ErrValidationFailed)
	}

	planned := make([]domain.TemplateExercise, 0, len(exercises))
	for i, te := range exercises {
		if te.Sets <= 0 {
			return nil, fmt.Errorf("%w: exercise %d needs at least one set", ErrValidationFailed, i+1)
		}
		if te.Reps < 0 || te.WeightLbs < 0 {
			return nil, fmt.Errorf("%w: exercise %d has negative reps or weight", ErrValidationFailed, i+1)
		}
		ex, err := s.exerciseRepo.GetByID(ctx, te.ExerciseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrExerciseNotFound, te.ExerciseID.Hex())
			}
			return nil, err
		}
		if strings.TrimSpace(te.Name) == "" {
			te.Name = ex.Name
		}
		planned = append(planned, te)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultTemplateName
	}
	tpl := &domain.WorkoutTemplate{
		TrainerID:   caller.UserID,
		Name:        name,
		Description: description,
		Exercises:   planned,
	}
	if _, err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (s *templateService) ListTemplates(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	return s.templateRepo.GetByTrainerID(ctx, trainerID)
}

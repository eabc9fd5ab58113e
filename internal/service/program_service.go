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
	"tidalpower/fitness-studio/internal/program"
	"tidalpower/fitness-studio/internal/repository"
)

var (
	ErrProgramNotFound     = errors.New("program not found")
	ErrAssignmentNotFound  = errors.New("program assignment not found")
	ErrAssignmentCompleted = errors.New("program assignment is already completed")
	ErrStaleAssignment     = errors.New("assignment was advanced concurrently; reload and retry")
)

// SlotInput places a template on a program day.
type SlotInput struct {
	TemplateID primitive.ObjectID
	WeekNumber int
	DayNumber  int
}

// AssignmentTimeline is an assignment with its rendered program timeline.
type AssignmentTimeline struct {
	Assignment  *domain.ProgramAssignment `json:"assignment"`
	ProgramName string                    `json:"programName"`
	Timeline    program.Timeline          `json:"timeline"`
}

type ProgramService interface {
	CreateProgram(ctx context.Context, caller domain.Principal, name, description string, totalWeeks int, slots []SlotInput) (*domain.ProgramDefinition, error)
	GetProgram(ctx context.Context, id primitive.ObjectID) (*domain.ProgramDefinition, error)
	ListPrograms(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramDefinition, error)

	AssignProgram(ctx context.Context, caller domain.Principal, programID, clientID primitive.ObjectID, notes string) (*domain.ProgramAssignment, error)
	ListAssignments(ctx context.Context, caller domain.Principal, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error)
	AdvanceAssignment(ctx context.Context, caller domain.Principal, assignmentID primitive.ObjectID) (*domain.ProgramAssignment, error)
	GetTimeline(ctx context.Context, caller domain.Principal, assignmentID primitive.ObjectID) (*AssignmentTimeline, error)
}

type programService struct {
	programRepo  repository.ProgramRepository
	templateRepo repository.TemplateRepository
	userRepo     repository.UserRepository
	now          func() time.Time
}

func NewProgramService(
	programRepo repository.ProgramRepository,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
) ProgramService {
	return &programService{
		programRepo:  programRepo,
		templateRepo: templateRepo,
		userRepo:     userRepo,
		now:          time.Now,
	}
}

// CreateProgram validates slot positions against totalWeeks and copies each
// template's name onto its slot.
func (s *programService) CreateProgram(ctx context.Context, caller domain.Principal, name, description string, totalWeeks int, slots []SlotInput) (*domain.ProgramDefinition, error) {
	if !caller.CanManageStudio() {
		return nil, ErrAccessDenied
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: program name is required", ErrValidationFailed)
	}
	if totalWeeks <= 0 {
		return nil, fmt.Errorf("%w: total weeks must be positive", ErrValidationFailed)
	}

	ids := make([]primitive.ObjectID, 0, len(slots))
	for _, in := range slots {
		ids = append(ids, in.TemplateID)
	}
	templates, err := s.templateRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(templates))
	for _, t := range templates {
		names[t.ID] = t.Name
	}

	resolved := make([]domain.ProgramTemplateSlot, 0, len(slots))
	for _, in := range slots {
		templateName, ok := names[in.TemplateID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, in.TemplateID.Hex())
		}
		if strings.TrimSpace(templateName) == "" {
			templateName = domain.DefaultTemplateName
		}
		slot := domain.ProgramTemplateSlot{
			TemplateID:   in.TemplateID,
			TemplateName: templateName,
			WeekNumber:   in.WeekNumber,
			DayNumber:    in.DayNumber,
		}
		if !program.ValidSlot(slot, totalWeeks) {
			return nil, fmt.Errorf("%w: slot week %d day %d outside a %d-week program",
				ErrValidationFailed, in.WeekNumber, in.DayNumber, totalWeeks)
		}
		resolved = append(resolved, slot)
	}

	def := &domain.ProgramDefinition{
		TrainerID:   caller.UserID,
		Name:        name,
		Description: description,
		TotalWeeks:  totalWeeks,
		Slots:       resolved,
	}
	if _, err = s.programRepo.Create(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *programService) GetProgram(ctx context.Context, id primitive.ObjectID) (*domain.ProgramDefinition, error) {
	def, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return def, nil
}

func (s *programService) ListPrograms(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramDefinition, error) {
	return s.programRepo.GetByTrainerID(ctx, trainerID)
}

func (s *programService) AssignProgram(ctx context.Context, caller domain.Principal, programID, clientID primitive.ObjectID, notes string) (*domain.ProgramAssignment, error) {
	if !caller.CanManageStudio() {
		return nil, ErrAccessDenied
	}
	if _, err := requireClient(ctx, s.userRepo, caller, clientID); err != nil {
		return nil, err
	}
	def, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if def.TotalWeeks <= 0 {
		return nil, fmt.Errorf("%w: program has no weeks", ErrValidationFailed)
	}

	a := &domain.ProgramAssignment{
		ProgramID:   def.ID,
		ClientID:    clientID,
		TrainerID:   caller.UserID,
		CurrentWeek: 1,
		CurrentDay:  1,
		TotalWeeks:  def.TotalWeeks,
		Notes:       notes,
	}
	if _, err = s.programRepo.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *programService) ListAssignments(ctx context.Context, caller domain.Principal, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	if _, err := requireClient(ctx, s.userRepo, caller, clientID); err != nil {
		return nil, err
	}
	return s.programRepo.ListAssignmentsByClient(ctx, clientID)
}

// visibleAssignment loads an assignment the caller may see: its client, the
// client's trainer, or an admin.
func (s *programService) visibleAssignment(ctx context.Context, caller domain.Principal, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	a, err := s.programRepo.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if _, err = requireClient(ctx, s.userRepo, caller, a.ClientID); err != nil {
		return nil, err
	}
	return a, nil
}

// AdvanceAssignment moves the client one day forward. Reaching the final day
// of the final week marks the assignment completed.
func (s *programService) AdvanceAssignment(ctx context.Context, caller domain.Principal, assignmentID primitive.ObjectID) (*domain.ProgramAssignment, error) {
	if !caller.CanManageStudio() {
		return nil, ErrAccessDenied
	}
	a, err := s.visibleAssignment(ctx, caller, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.CompletedAt != nil {
		return nil, ErrAssignmentCompleted
	}

	next, completed := program.Advance(program.Position{Week: a.CurrentWeek, Day: a.CurrentDay}, a.TotalWeeks)
	var completedAt *time.Time
	if completed {
		t := s.now().UTC()
		completedAt = &t
	}

	err = s.programRepo.UpdatePosition(ctx, a.ID, a.CurrentWeek, a.CurrentDay, next.Week, next.Day, completedAt)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrStaleAssignment
		}
		log.WithError(err).WithField("assignment_id", a.ID.Hex()).Error("advance assignment")
		return nil, err
	}

	a.CurrentWeek, a.CurrentDay = next.Week, next.Day
	a.CompletedAt = completedAt
	return a, nil
}

func (s *programService) GetTimeline(ctx context.Context, caller domain.Principal, assignmentID primitive.ObjectID) (*AssignmentTimeline, error) {
	a, err := s.visibleAssignment(ctx, caller, assignmentID)
	if err != nil {
		return nil, err
	}
	def, err := s.GetProgram(ctx, a.ProgramID)
	if err != nil {
		return nil, err
	}
	return &AssignmentTimeline{
		Assignment:  a,
		ProgramName: def.Name,
		Timeline:    program.Build(a.TotalWeeks, def.Slots, program.Position{Week: a.CurrentWeek, Day: a.CurrentDay}),
	}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
	"tidalpower/fitness-studio/internal/schedule"
)

var (
	ErrClassNotFound     = errors.New("class not found")
	ErrClassAccessDenied = errors.New("only the instructor or an admin may change this class")
)

// ClassInput is the writable shape of a class definition. DayOfWeek is the
// legacy single-day field and is folded into DaysOfWeek on write.
type ClassInput struct {
	Name            string
	Category        string
	InstructorID    primitive.ObjectID
	DaysOfWeek      []int
	DayOfWeek       *int
	StartTime       string
	DurationMinutes int
	MaxCapacity     int
	PriceCents      int64
	IsActive        *bool
}

type ClassService interface {
	CreateClass(ctx context.Context, caller domain.Principal, in ClassInput) (*domain.ClassDefinition, error)
	GetClass(ctx context.Context, id primitive.ObjectID) (*domain.ClassDefinition, error)
	ListClasses(ctx context.Context, includeInactive bool) ([]domain.ClassDefinition, error)
	UpdateClass(ctx context.Context, caller domain.Principal, id primitive.ObjectID, in ClassInput) (*domain.ClassDefinition, error)
	DeactivateClass(ctx context.Context, caller domain.Principal, id primitive.ObjectID) error

	DaySchedule(ctx context.Context, date time.Time) (schedule.CalendarDay, error)
	WeekSchedule(ctx context.Context, date time.Time) ([]schedule.CalendarDay, error)
	MonthSchedule(ctx context.Context, year int, month time.Month) (schedule.MonthGrid, error)
	Location() *time.Location
}

type classService struct {
	classRepo   repository.ClassRepository
	sessionRepo repository.WorkoutSessionRepository
	loc         *time.Location
}

func NewClassService(classRepo repository.ClassRepository, sessionRepo repository.WorkoutSessionRepository, loc *time.Location) ClassService {
	if loc == nil {
		loc = time.UTC
	}
	return &classService{
		classRepo:   classRepo,
		sessionRepo: sessionRepo,
		loc:         loc,
	}
}

func (s *classService) Location() *time.Location {
	return s.loc
}

// normalizeDays merges the legacy single day into the list, drops duplicates
// and sorts. Any index outside 0..6 is an error.
func normalizeDays(days []int, legacy *int) ([]int, error) {
	out := slices.Clone(days)
	if len(out) == 0 && legacy != nil {
		out = []int{*legacy}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one weekday is required", ErrValidationFailed)
	}
	for _, d := range out {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: weekday %d out of range 0-6", ErrValidationFailed, d)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (in ClassInput) apply(def *domain.ClassDefinition) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: class name is required", ErrValidationFailed)
	}
	days, err := normalizeDays(in.DaysOfWeek, in.DayOfWeek)
	if err != nil {
		return err
	}
	if _, _, err := schedule.ParseClock(in.StartTime); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if in.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidationFailed)
	}
	if in.MaxCapacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidationFailed)
	}
	if in.PriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidationFailed)
	}

	def.Name = strings.TrimSpace(in.Name)
	def.Category = in.Category
	def.DaysOfWeek = days
	def.DayOfWeek = nil
	def.StartTime = in.StartTime
	def.DurationMinutes = in.DurationMinutes
	def.MaxCapacity = in.MaxCapacity
	def.PriceCents = in.PriceCents
	if in.IsActive != nil {
		def.IsActive = *in.IsActive
	}
	if in.InstructorID != primitive.NilObjectID {
		def.InstructorID = in.InstructorID
	}
	return nil
}

func (s *classService) CreateClass(ctx context.Context, caller domain.Principal, in ClassInput) (*domain.ClassDefinition, error) {
	if !caller.CanManageStudio() {
		return nil, ErrClassAccessDenied
	}
	def := &domain.ClassDefinition{IsActive: true, InstructorID: caller.UserID}
	if err := in.apply(def); err != nil {
		return nil, err
	}
	if caller.Role == domain.RoleTrainer && def.InstructorID != caller.UserID {
		return nil, ErrClassAccessDenied
	}
	if _, err := s.classRepo.Create(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *classService) GetClass(ctx context.Context, id primitive.ObjectID) (*domain.ClassDefinition, error) {
	def, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return def, nil
}

func (s *classService) ListClasses(ctx context.Context, includeInactive bool) ([]domain.ClassDefinition, error) {
	return s.classRepo.List(ctx, !includeInactive)
}

func (s *classService) editable(ctx context.Context, caller domain.Principal, id primitive.ObjectID) (*domain.ClassDefinition, error) {
	if !caller.CanManageStudio() {
		return nil, ErrClassAccessDenied
	}
	def, err := s.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == domain.RoleTrainer && def.InstructorID != caller.UserID {
		return nil, ErrClassAccessDenied
	}
	return def, nil
}

func (s *classService) UpdateClass(ctx context.Context, caller domain.Principal, id primitive.ObjectID, in ClassInput) (*domain.ClassDefinition, error) {
	def, err := s.editable(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err = in.apply(def); err != nil {
		return nil, err
	}
	if caller.Role == domain.RoleTrainer && def.InstructorID != caller.UserID {
		return nil, ErrClassAccessDenied
	}
	if err = s.classRepo.Update(ctx, def); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return def, nil
}

func (s *classService) DeactivateClass(ctx context.Context, caller domain.Principal, id primitive.ObjectID) error {
	if _, err := s.editable(ctx, caller, id); err != nil {
		return err
	}
	if err := s.classRepo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return nil
}

// load fetches active classes and the sessions dated within [from, to).
func (s *classService) load(ctx context.Context, from, to time.Time) ([]domain.ClassDefinition, []domain.WorkoutSession, error) {
	defs, err := s.classRepo.List(ctx, true)
	if err != nil {
		log.WithError(err).Error("list classes for calendar")
		return nil, nil, err
	}
	sessions, err := s.sessionRepo.ListInRange(ctx, from, to)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"from": from, "to": to}).Error("list sessions for calendar")
		return nil, nil, err
	}
	return defs, sessions, nil
}

func (s *classService) DaySchedule(ctx context.Context, date time.Time) (schedule.CalendarDay, error) {
	from := schedule.StartOfDay(date, s.loc)
	defs, sessions, err := s.load(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return schedule.CalendarDay{}, err
	}
	return schedule.ExpandDay(from, defs, sessions, s.loc), nil
}

func (s *classService) WeekSchedule(ctx context.Context, date time.Time) ([]schedule.CalendarDay, error) {
	from, to := schedule.WeekRange(date, s.loc)
	defs, sessions, err := s.load(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return schedule.ExpandWeek(from, defs, sessions, s.loc), nil
}

func (s *classService) MonthSchedule(ctx context.Context, year int, month time.Month) (schedule.MonthGrid, error) {
	if month < time.January || month > time.December {
		return schedule.MonthGrid{}, fmt.Errorf("%w: month %d out of range", ErrValidationFailed, month)
	}
	from, to := schedule.MonthRange(year, month, s.loc)
	defs, sessions, err := s.load(ctx, from, to)
	if err != nil {
		return schedule.MonthGrid{}, err
	}
	return schedule.ExpandMonth(year, month, defs, sessions, s.loc), nil
}

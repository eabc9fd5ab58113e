package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
	"tidalpower/fitness-studio/internal/schedule"
	"tidalpower/fitness-studio/internal/workoutlog"
)

var (
	ErrSessionNotFound    = errors.New("workout session not found")
	ErrSessionExists      = errors.New("a workout is already assigned to this class occurrence")
	ErrSessionHasNoClient = errors.New("sets can only be logged on a client session")
	ErrSessionComplete    = errors.New("every exercise in this session is already logged")
	ErrStaleBatch         = errors.New("session moved on; reload the current exercise")
	ErrInvalidSets        = errors.New("invalid set batch")
)

// SetEntry is one row of a submitted batch.
type SetEntry struct {
	SetNumber int
	Reps      int
	WeightLbs float64
	Notes     string
}

// MatrixView is the exercise currently being logged, pre-filled with the plan.
type MatrixView struct {
	SessionID      primitive.ObjectID      `json:"sessionId"`
	ExerciseIndex  int                     `json:"exerciseIndex"`
	TotalExercises int                     `json:"totalExercises"`
	Completed      bool                    `json:"completed"`
	Exercise       *domain.SessionExercise `json:"exercise,omitempty"`
	Sets           []domain.WorkoutSetLog  `json:"sets"`
	Best           *domain.ExerciseBest    `json:"best,omitempty"`
}

type SessionService interface {
	AssignTemplateToClass(ctx context.Context, caller domain.Principal, classID primitive.ObjectID, date time.Time, templateID primitive.ObjectID) (*domain.WorkoutSession, error)
	StartClientSession(ctx context.Context, caller domain.Principal, clientID, templateID primitive.ObjectID, date time.Time) (*domain.WorkoutSession, error)
	GetSession(ctx context.Context, caller domain.Principal, id primitive.ObjectID) (*domain.WorkoutSession, error)
	// ListSessions returns sessions in [from, to]. Admins see every session,
	// trainers class sessions and those of their roster clients.
	ListSessions(ctx context.Context, caller domain.Principal, from, to time.Time) ([]domain.WorkoutSession, error)

	GetMatrix(ctx context.Context, caller domain.Principal, id primitive.ObjectID) (*MatrixView, error)
	// SubmitSets logs one exercise's sets. expectedExercise is the index the
	// caller built the batch for.
	SubmitSets(ctx context.Context, caller domain.Principal, id primitive.ObjectID, expectedExercise int, sets []SetEntry) (*domain.WorkoutSession, error)

	ExerciseBest(ctx context.Context, caller domain.Principal, exerciseID, clientID, currentSessionID primitive.ObjectID) (*domain.ExerciseBest, error)
	ClassifySet(ctx context.Context, caller domain.Principal, exerciseID, clientID, currentSessionID primitive.ObjectID, reps *int, weight *float64) (workoutlog.Indicator, *domain.ExerciseBest, error)
}

type sessionService struct {
	sessionRepo  repository.WorkoutSessionRepository
	classRepo    repository.ClassRepository
	templateRepo repository.TemplateRepository
	userRepo     repository.UserRepository
	loc          *time.Location
}

func NewSessionService(
	sessionRepo repository.WorkoutSessionRepository,
	classRepo repository.ClassRepository,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
	loc *time.Location,
) SessionService {
	if loc == nil {
		loc = time.UTC
	}
	return &sessionService{
		sessionRepo:  sessionRepo,
		classRepo:    classRepo,
		templateRepo: templateRepo,
		userRepo:     userRepo,
		loc:          loc,
	}
}

func (s *sessionService) template(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

// plannedExercises copies a template's exercises into a session, giving each
// its own ID so logs stay attached even if the template later changes.
func plannedExercises(tpl *domain.WorkoutTemplate) []domain.SessionExercise {
	out := make([]domain.SessionExercise, 0, len(tpl.Exercises))
	for _, te := range tpl.Exercises {
		out = append(out, domain.SessionExercise{
			ID:               primitive.NewObjectID(),
			ExerciseID:       te.ExerciseID,
			Name:             te.Name,
			PlannedSets:      te.Sets,
			PlannedReps:      te.Reps,
			PlannedWeightLbs: te.WeightLbs,
		})
	}
	return out
}

func (s *sessionService) AssignTemplateToClass(ctx context.Context, caller domain.Principal, classID primitive.ObjectID, date time.Time, templateID primitive.ObjectID) (*domain.WorkoutSession, error) {
	if !caller.CanManageStudio() {
		return nil, ErrAccessDenied
	}
	def, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	day := schedule.StartOfDay(date, s.loc)
	if !schedule.OccursOn(def, day) {
		return nil, ErrClassNotScheduled
	}

	existing, err := s.sessionRepo.FindForOccurrence(ctx, classID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if _, ok := schedule.FindSession(classID, day, existing, s.loc); ok {
		return nil, ErrSessionExists
	}

	tpl, err := s.template(ctx, templateID)
	if err != nil {
		return nil, err
	}

	session := &domain.WorkoutSession{
		ClassID:         &classID,
		TrainerID:       caller.UserID,
		TemplateID:      &tpl.ID,
		SessionDate:     day,
		WorkoutTypeName: tpl.Name,
		Exercises:       plannedExercises(tpl),
	}
	if _, err = s.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSessionExists
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) StartClientSession(ctx context.Context, caller domain.Principal, clientID, templateID primitive.ObjectID, date time.Time) (*domain.WorkoutSession, error) {
	client, err := requireClient(ctx, s.userRepo, caller, clientID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.template(ctx, templateID)
	if err != nil {
		return nil, err
	}

	trainerID := caller.UserID
	if caller.Role == domain.RoleClient {
		trainerID = tpl.TrainerID
		if client.TrainerID != nil {
			trainerID = *client.TrainerID
		}
	}
	session := &domain.WorkoutSession{
		ClientID:        &clientID,
		TrainerID:       trainerID,
		TemplateID:      &tpl.ID,
		SessionDate:     schedule.StartOfDay(date, s.loc),
		WorkoutTypeName: tpl.Name,
		Exercises:       plannedExercises(tpl),
	}
	if _, err = s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns a session visible to caller. Client sessions follow the
// same access rule as every client-scoped operation; class sessions are
// visible to staff only.
func (s *sessionService) GetSession(ctx context.Context, caller domain.Principal, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.ClientID == nil {
		if !caller.CanManageStudio() {
			return nil, ErrAccessDenied
		}
		return session, nil
	}
	if _, err = requireClient(ctx, s.userRepo, caller, *session.ClientID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, caller domain.Principal, from, to time.Time) ([]domain.WorkoutSession, error) {
	if !caller.CanManageStudio() {
		return nil, ErrAccessDenied
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range ends before it starts", ErrValidationFailed)
	}
	// to is inclusive
	sessions, err := s.sessionRepo.ListInRange(ctx, schedule.StartOfDay(from, s.loc), schedule.StartOfDay(to, s.loc).AddDate(0, 0, 1))
	if err != nil || caller.Role == domain.RoleAdmin {
		return sessions, err
	}

	roster, err := s.userRepo.GetClientsByTrainerID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	managed := make(map[primitive.ObjectID]bool, len(roster))
	for _, c := range roster {
		managed[c.ID] = true
	}
	visible := make([]domain.WorkoutSession, 0, len(sessions))
	for _, session := range sessions {
		if session.ClientID == nil || managed[*session.ClientID] {
			visible = append(visible, session)
		}
	}
	return visible, nil
}

func (s *sessionService) GetMatrix(ctx context.Context, caller domain.Principal, id primitive.ObjectID) (*MatrixView, error) {
	session, err := s.GetSession(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	logger := workoutlog.NewLogger(session, s.sessionRepo)
	view := &MatrixView{
		SessionID:      session.ID,
		ExerciseIndex:  logger.CurrentIndex(),
		TotalExercises: len(session.Exercises),
		Completed:      logger.Done(),
		Sets:           []domain.WorkoutSetLog{},
	}
	m, ok := logger.Current()
	if !ok {
		return view, nil
	}
	ex := m.Exercise()
	view.Exercise = &ex
	view.Sets = m.Sets()

	if session.ClientID != nil {
		best, err := s.computeBest(ctx, ex.ExerciseID, *session.ClientID, session.ID, session.SessionDate)
		if err != nil {
			return nil, err
		}
		view.Best = best
	}
	return view, nil
}

func (s *sessionService) SubmitSets(ctx context.Context, caller domain.Principal, id primitive.ObjectID, expectedExercise int, sets []SetEntry) (*domain.WorkoutSession, error) {
	session, err := s.GetSession(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if session.ClientID == nil {
		return nil, ErrSessionHasNoClient
	}
	if session.IsComplete() {
		return nil, ErrSessionComplete
	}
	if session.CurrentExercise != expectedExercise {
		return nil, ErrStaleBatch
	}

	current := session.Exercises[session.CurrentExercise]
	batch := make([]domain.WorkoutSetLog, 0, len(sets))
	for _, e := range sets {
		batch = append(batch, domain.WorkoutSetLog{
			SessionExerciseID: current.ID,
			ExerciseID:        current.ExerciseID,
			SetNumber:         e.SetNumber,
			RepsCompleted:     e.Reps,
			WeightUsedLbs:     e.WeightLbs,
			Notes:             e.Notes,
		})
	}

	logger := workoutlog.NewLogger(session, s.sessionRepo)
	if err = logger.Submit(ctx, batch); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrStaleBatch
		case errors.Is(err, workoutlog.ErrSessionComplete):
			return nil, ErrSessionComplete
		case errors.Is(err, workoutlog.ErrEmptyBatch),
			errors.Is(err, workoutlog.ErrSetNumbering),
			errors.Is(err, workoutlog.ErrNegativeValue),
			errors.Is(err, workoutlog.ErrWrongExercise):
			return nil, fmt.Errorf("%w: %w", ErrInvalidSets, err)
		}
		log.WithError(err).WithField("session_id", id.Hex()).Error("append set logs")
		return nil, err
	}

	session.SetLogs = logger.Logged()
	session.CurrentExercise = logger.CurrentIndex()
	if logger.Done() {
		now := time.Now().UTC()
		session.CompletedAt = &now
	}
	return session, nil
}

// resolveClient decides whose history to read: clients always read their own.
func (s *sessionService) resolveClient(ctx context.Context, caller domain.Principal, clientID primitive.ObjectID) (primitive.ObjectID, error) {
	if caller.Role == domain.RoleClient {
		return caller.UserID, nil
	}
	if _, err := requireClient(ctx, s.userRepo, caller, clientID); err != nil {
		return primitive.NilObjectID, err
	}
	return clientID, nil
}

func (s *sessionService) computeBest(ctx context.Context, exerciseID, clientID, currentSessionID primitive.ObjectID, asOf time.Time) (*domain.ExerciseBest, error) {
	history, err := s.sessionRepo.ListByClientExercise(ctx, clientID, exerciseID)
	if err != nil {
		return nil, err
	}
	return workoutlog.ComputeBest(exerciseID, clientID, history, currentSessionID, asOf), nil
}

func (s *sessionService) ExerciseBest(ctx context.Context, caller domain.Principal, exerciseID, clientID, currentSessionID primitive.ObjectID) (*domain.ExerciseBest, error) {
	clientID, err := s.resolveClient(ctx, caller, clientID)
	if err != nil {
		return nil, err
	}
	var asOf time.Time
	if !currentSessionID.IsZero() {
		current, err := s.GetSession(ctx, caller, currentSessionID)
		if err != nil {
			return nil, err
		}
		asOf = current.SessionDate
	}
	return s.computeBest(ctx, exerciseID, clientID, currentSessionID, asOf)
}

func (s *sessionService) ClassifySet(ctx context.Context, caller domain.Principal, exerciseID, clientID, currentSessionID primitive.ObjectID, reps *int, weight *float64) (workoutlog.Indicator, *domain.ExerciseBest, error) {
	best, err := s.ExerciseBest(ctx, caller, exerciseID, clientID, currentSessionID)
	if err != nil {
		return workoutlog.IndicatorNone, nil, err
	}
	return workoutlog.Classify(best, reps, weight), best, nil
}

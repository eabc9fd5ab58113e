package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID] = &cp
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) AddClientIDToTrainer(_ context.Context, trainerID, clientID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.users[trainerID]
	if !ok || t.Role != domain.RoleTrainer {
		return repository.ErrNotFound
	}
	t.ClientIDs = append(t.ClientIDs, clientID)
	return nil
}

func (r *fakeUserRepo) GetClientsByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if u.TrainerID != nil && *u.TrainerID == trainerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetTrainerForClient(_ context.Context, clientID, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.users[clientID]
	if !ok || c.Role != domain.RoleClient {
		return repository.ErrNotFound
	}
	c.TrainerID = &trainerID
	return nil
}

// add stores a user directly and returns its principal.
func (r *fakeUserRepo) add(role domain.Role, trainer *primitive.ObjectID) domain.Principal {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &domain.User{ID: primitive.NewObjectID(), Role: role, TrainerID: trainer, Email: primitive.NewObjectID().Hex() + "@studio.test"}
	r.users[u.ID] = u
	return domain.Principal{UserID: u.ID, Role: role}
}

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: map[primitive.ObjectID]domain.Exercise{}}
}

func (r *fakeExerciseRepo) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = primitive.NewObjectID()
	r.exercises[e.ID] = *e
	return e.ID, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *fakeExerciseRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Exercise{}
	for _, e := range r.exercises {
		if e.TrainerID == trainerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, e *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[e.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[e.ID] = *e
	return nil
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok || e.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

type fakeClassRepo struct {
	mu      sync.Mutex
	classes map[primitive.ObjectID]domain.ClassDefinition
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{classes: map[primitive.ObjectID]domain.ClassDefinition{}}
}

func (r *fakeClassRepo) Create(_ context.Context, c *domain.ClassDefinition) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.classes[c.ID] = *c
	return c.ID, nil
}

func (r *fakeClassRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ClassDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeClassRepo) List(_ context.Context, activeOnly bool) ([]domain.ClassDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ClassDefinition{}
	for _, c := range r.classes {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeClassRepo) Update(_ context.Context, c *domain.ClassDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.classes[c.ID] = *c
	return nil
}

func (r *fakeClassRepo) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsActive = active
	r.classes[id] = c
	return nil
}

type occurrenceKey struct {
	classID primitive.ObjectID
	date    int64
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]domain.Booking
	taken    map[occurrenceKey]int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: map[primitive.ObjectID]domain.Booking{},
		taken:    map[occurrenceKey]int{},
	}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.bookings {
		if other.Status == domain.BookingBooked && other.ClassID == b.ClassID &&
			other.ClientID == b.ClientID && other.Date.Equal(b.Date) {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	b.ID = primitive.NewObjectID()
	r.bookings[b.ID] = *b
	return b.ID, nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBookingRepo) ReserveSpot(_ context.Context, classID primitive.ObjectID, date time.Time, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := occurrenceKey{classID, date.Unix()}
	if r.taken[key] >= capacity {
		return repository.ErrConflict
	}
	r.taken[key]++
	return nil
}

func (r *fakeBookingRepo) ReleaseSpot(_ context.Context, classID primitive.ObjectID, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := occurrenceKey{classID, date.Unix()}
	if r.taken[key] > 0 {
		r.taken[key]--
	}
	return nil
}

func (r *fakeBookingRepo) spotsTaken(classID primitive.ObjectID, date time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.taken[occurrenceKey{classID, date.Unix()}]
}

func (r *fakeBookingRepo) FindActive(_ context.Context, classID, clientID primitive.ObjectID, date time.Time) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ClassID == classID && b.ClientID == clientID && b.Date.Equal(date) && b.Status == domain.BookingBooked {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBookingRepo) ListByClient(_ context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Booking{}
	for _, b := range r.bookings {
		if b.ClientID == clientID && !b.Date.Before(from) && b.Date.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Status == status {
		return repository.ErrConflict
	}
	b.Status = status
	r.bookings[id] = b
	return nil
}

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[primitive.ObjectID]domain.WorkoutSession
	appendErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[primitive.ObjectID]domain.WorkoutSession{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ClassID != nil {
		for _, other := range r.sessions {
			if other.ClassID != nil && *other.ClassID == *s.ClassID && other.SessionDate.Equal(s.SessionDate) {
				return primitive.NilObjectID, repository.ErrConflict
			}
		}
	}
	s.ID = primitive.NewObjectID()
	s.CreatedAt = time.Now().UTC()
	r.sessions[s.ID] = *s
	return s.ID, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.SetLogs = append([]domain.WorkoutSetLog(nil), s.SetLogs...)
	return &s, nil
}

func (r *fakeSessionRepo) ListInRange(_ context.Context, from, to time.Time) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WorkoutSession{}
	for _, s := range r.sessions {
		if !s.SessionDate.Before(from) && s.SessionDate.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindForOccurrence(_ context.Context, classID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WorkoutSession{}
	for _, s := range r.sessions {
		if s.ClassID != nil && *s.ClassID == classID && !s.SessionDate.Before(from) && s.SessionDate.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListByClientExercise(_ context.Context, clientID, exerciseID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WorkoutSession{}
	for _, s := range r.sessions {
		if s.ClientID == nil || *s.ClientID != clientID {
			continue
		}
		for _, l := range s.SetLogs {
			if l.ExerciseID == exerciseID {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) AppendSetLogs(_ context.Context, id primitive.ObjectID, expected int, logs []domain.WorkoutSetLog, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.CurrentExercise != expected {
		return repository.ErrConflict
	}
	s.SetLogs = append(s.SetLogs, logs...)
	s.CurrentExercise++
	if completed {
		now := time.Now().UTC()
		s.CompletedAt = &now
	}
	r.sessions[id] = s
	return nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[primitive.ObjectID]domain.WorkoutTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[primitive.ObjectID]domain.WorkoutTemplate{}}
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = primitive.NewObjectID()
	r.templates[t.ID] = *t
	return t.ID, nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTemplateRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WorkoutTemplate{}
	for _, id := range ids {
		if t, ok := r.templates[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WorkoutTemplate{}
	for _, t := range r.templates {
		if t.TrainerID == trainerID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeProgramRepo struct {
	mu          sync.Mutex
	programs    map[primitive.ObjectID]domain.ProgramDefinition
	assignments map[primitive.ObjectID]domain.ProgramAssignment
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{
		programs:    map[primitive.ObjectID]domain.ProgramDefinition{},
		assignments: map[primitive.ObjectID]domain.ProgramAssignment{},
	}
}

func (r *fakeProgramRepo) Create(_ context.Context, p *domain.ProgramDefinition) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.programs[p.ID] = *p
	return p.ID, nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgramDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProgramRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.ProgramDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ProgramDefinition{}
	for _, p := range r.programs {
		if p.TrainerID == trainerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) CreateAssignment(_ context.Context, a *domain.ProgramAssignment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = primitive.NewObjectID()
	r.assignments[a.ID] = *a
	return a.ID, nil
}

func (r *fakeProgramRepo) GetAssignment(_ context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeProgramRepo) ListAssignmentsByClient(_ context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ProgramAssignment{}
	for _, a := range r.assignments {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) UpdatePosition(_ context.Context, id primitive.ObjectID, fromWeek, fromDay, toWeek, toDay int, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if a.CurrentWeek != fromWeek || a.CurrentDay != fromDay {
		return repository.ErrConflict
	}
	a.CurrentWeek, a.CurrentDay = toWeek, toDay
	if completedAt != nil {
		a.CompletedAt = completedAt
	}
	r.assignments[id] = a
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://s3.test/put/" + key + "?ct=" + contentType, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

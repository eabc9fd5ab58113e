package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
)

type bookingFixture struct {
	svc      *bookingService
	users    *fakeUserRepo
	bookings *fakeBookingRepo
	class   *domain.ClassDefinition
	trainer domain.Principal
	monday  time.Time
}

func newBookingFixture(t *testing.T, capacity int) *bookingFixture {
	t.Helper()
	users := newFakeUserRepo()
	classes := newFakeClassRepo()
	trainer := users.add(domain.RoleTrainer, nil)

	def := &domain.ClassDefinition{
		Name:            "Evening Strength",
		InstructorID:    trainer.UserID,
		DaysOfWeek:      []int{1},
		StartTime:       "18:00",
		DurationMinutes: 60,
		MaxCapacity:     capacity,
		IsActive:        true,
	}
	_, err := classes.Create(context.Background(), def)
	require.NoError(t, err)

	bookings := newFakeBookingRepo()
	svc := NewBookingService(bookings, classes, users, time.UTC).(*bookingService)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	return &bookingFixture{
		svc:      svc,
		users:    users,
		bookings: bookings,
		class:    def,
		trainer:  trainer,
		monday:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
}

func TestBookClass_CapacityAndDuplicates(t *testing.T) {
	f := newBookingFixture(t, 2)
	ctx := context.Background()
	c1 := f.users.add(domain.RoleClient, nil)
	c2 := f.users.add(domain.RoleClient, nil)
	c3 := f.users.add(domain.RoleClient, nil)

	b1, err := f.svc.BookClass(ctx, c1, f.class.ID, f.monday.Add(15*time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, f.monday, b1.Date)
	assert.Equal(t, domain.BookingBooked, b1.Status)

	_, err = f.svc.BookClass(ctx, c1, f.class.ID, f.monday, nil)
	assert.ErrorIs(t, err, ErrAlreadyBooked)

	_, err = f.svc.BookClass(ctx, c2, f.class.ID, f.monday, nil)
	require.NoError(t, err)

	_, err = f.svc.BookClass(ctx, c3, f.class.ID, f.monday, nil)
	assert.ErrorIs(t, err, ErrClassFull)

	cancelled, err := f.svc.CancelBooking(ctx, c1, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)

	_, err = f.svc.CancelBooking(ctx, c1, b1.ID)
	assert.ErrorIs(t, err, ErrBookingNotActive)

	_, err = f.svc.BookClass(ctx, c3, f.class.ID, f.monday, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, f.bookings.spotsTaken(f.class.ID, f.monday))
}

func TestBookClass_ConcurrentBookingsRespectCapacity(t *testing.T) {
	const capacity, clients = 3, 12
	f := newBookingFixture(t, capacity)
	ctx := context.Background()

	callers := make([]domain.Principal, clients)
	for i := range callers {
		callers[i] = f.users.add(domain.RoleClient, nil)
	}

	var (
		wg             sync.WaitGroup
		mu             sync.Mutex
		booked, full   int
		unexpectedErrs []error
	)
	for _, caller := range callers {
		wg.Add(1)
		go func(caller domain.Principal) {
			defer wg.Done()
			_, err := f.svc.BookClass(ctx, caller, f.class.ID, f.monday, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, ErrClassFull):
				full++
			default:
				unexpectedErrs = append(unexpectedErrs, err)
			}
		}(caller)
	}
	wg.Wait()

	assert.Empty(t, unexpectedErrs)
	assert.Equal(t, capacity, booked)
	assert.Equal(t, clients-capacity, full)
	assert.Equal(t, capacity, f.bookings.spotsTaken(f.class.ID, f.monday))
}

func TestBookClass_ConcurrentDuplicateReleasesSpot(t *testing.T) {
	f := newBookingFixture(t, 5)
	ctx := context.Background()
	client := f.users.add(domain.RoleClient, nil)

	errs := make([]error, 4)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.BookClass(ctx, client, f.class.ID, f.monday, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyBooked)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.bookings.spotsTaken(f.class.ID, f.monday))
}

func TestBookClass_Rejections(t *testing.T) {
	f := newBookingFixture(t, 5)
	ctx := context.Background()
	client := f.users.add(domain.RoleClient, nil)

	_, err := f.svc.BookClass(ctx, client, f.class.ID, f.monday.AddDate(0, 0, 1), nil)
	assert.ErrorIs(t, err, ErrClassNotScheduled)

	_, err = f.svc.BookClass(ctx, client, primitive.NewObjectID(), f.monday, nil)
	assert.ErrorIs(t, err, ErrClassNotFound)

	f.svc.now = func() time.Time { return f.monday.Add(18 * time.Hour) }
	_, err = f.svc.BookClass(ctx, client, f.class.ID, f.monday, nil)
	assert.ErrorIs(t, err, ErrBookingClosed)
}

func TestBookClass_OnBehalfOfClient(t *testing.T) {
	f := newBookingFixture(t, 5)
	ctx := context.Background()
	mine := f.users.add(domain.RoleClient, &f.trainer.UserID)
	theirs := f.users.add(domain.RoleClient, nil)

	b, err := f.svc.BookClass(ctx, f.trainer, f.class.ID, f.monday, &mine.UserID)
	require.NoError(t, err)
	assert.Equal(t, mine.UserID, b.ClientID)

	_, err = f.svc.BookClass(ctx, f.trainer, f.class.ID, f.monday, &theirs.UserID)
	assert.ErrorIs(t, err, ErrClientNotManaged)

	_, err = f.svc.BookClass(ctx, theirs, f.class.ID, f.monday, &mine.UserID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.CancelBooking(ctx, theirs, b.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	outsider := f.users.add(domain.RoleTrainer, nil)
	_, err = f.svc.CancelBooking(ctx, outsider, b.ID)
	assert.ErrorIs(t, err, ErrClientNotManaged)

	list, err := f.svc.ListBookings(ctx, mine, mine.UserID, f.monday, f.monday)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

package service

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
	"tidalpower/fitness-studio/internal/schedule"
)

var (
	ErrClassNotScheduled = errors.New("class does not run on that date")
	ErrClassFull         = errors.New("class is full")
	ErrAlreadyBooked     = errors.New("client already booked this class")
	ErrBookingClosed     = errors.New("class has already started")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingNotActive  = errors.New("booking is already cancelled")
)

type BookingService interface {
	// BookClass reserves a spot in the occurrence of classID on date. Clients
	// book for themselves; trainers and admins pass the client to book for.
	BookClass(ctx context.Context, caller domain.Principal, classID primitive.ObjectID, date time.Time, clientID *primitive.ObjectID) (*domain.Booking, error)
	CancelBooking(ctx context.Context, caller domain.Principal, bookingID primitive.ObjectID) (*domain.Booking, error)
	ListBookings(ctx context.Context, caller domain.Principal, clientID primitive.ObjectID, from, to time.Time) ([]domain.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	classRepo   repository.ClassRepository
	userRepo    repository.UserRepository
	loc         *time.Location
	now         func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	classRepo repository.ClassRepository,
	userRepo repository.UserRepository,
	loc *time.Location,
) BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingService{
		bookingRepo: bookingRepo,
		classRepo:   classRepo,
		userRepo:    userRepo,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *bookingService) BookClass(ctx context.Context, caller domain.Principal, classID primitive.ObjectID, date time.Time, clientID *primitive.ObjectID) (*domain.Booking, error) {
	target := caller.UserID
	if clientID != nil {
		target = *clientID
	}
	if _, err := requireClient(ctx, s.userRepo, caller, target); err != nil {
		return nil, err
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
	occ := schedule.NewOccurrence(*def, day, s.loc)
	if !s.now().Before(occ.StartsAt) {
		return nil, ErrBookingClosed
	}

	if _, err = s.bookingRepo.FindActive(ctx, classID, target, day); err == nil {
		return nil, ErrAlreadyBooked
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err = s.bookingRepo.ReserveSpot(ctx, classID, day, def.MaxCapacity); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrClassFull
		}
		return nil, err
	}

	booking := &domain.Booking{
		ClassID:  classID,
		ClientID: target,
		Date:     day,
		Status:   domain.BookingBooked,
	}
	if _, err = s.bookingRepo.Create(ctx, booking); err != nil {
		s.releaseSpot(ctx, classID, day)
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"class_id":  classID.Hex(),
		"client_id": target.Hex(),
		"date":      day.Format(time.DateOnly),
	}).Info("class booked")
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, caller domain.Principal, bookingID primitive.ObjectID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if _, err = requireClient(ctx, s.userRepo, caller, booking.ClientID); err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingBooked {
		return nil, ErrBookingNotActive
	}

	if err = s.bookingRepo.UpdateStatus(ctx, bookingID, domain.BookingCancelled); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrBookingNotActive
		}
		return nil, err
	}
	s.releaseSpot(ctx, booking.ClassID, booking.Date)
	booking.Status = domain.BookingCancelled
	return booking, nil
}

func (s *bookingService) releaseSpot(ctx context.Context, classID primitive.ObjectID, day time.Time) {
	if err := s.bookingRepo.ReleaseSpot(ctx, classID, day); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"class_id": classID.Hex(),
			"date":     day.Format(time.DateOnly),
		}).Error("failed to release class spot")
	}
}

func (s *bookingService) ListBookings(ctx context.Context, caller domain.Principal, clientID primitive.ObjectID, from, to time.Time) ([]domain.Booking, error) {
	if _, err := requireClient(ctx, s.userRepo, caller, clientID); err != nil {
		return nil, err
	}
	// to is inclusive
	return s.bookingRepo.ListByClient(ctx, clientID, schedule.StartOfDay(from, s.loc), schedule.StartOfDay(to, s.loc).AddDate(0, 0, 1))
}

package service

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
)

var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
	ErrAccessDenied          = errors.New("access denied")
)

// RosterService links clients to the trainer who coaches them.
type RosterService interface {
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
}

type rosterService struct {
	userRepo repository.UserRepository
}

func NewRosterService(userRepo repository.UserRepository) RosterService {
	return &rosterService{userRepo: userRepo}
}

// AddClientByEmail attaches an unassigned client to trainerID. Adding a client
// the trainer already manages is a no-op.
func (s *rosterService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	clientEmail = strings.ToLower(strings.TrimSpace(clientEmail))
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}

	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			client.PasswordHash = ""
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	if err = s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
		return nil, err
	}
	if err = s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"trainer_id": trainerID.Hex(),
			"client_id":  client.ID.Hex(),
		}).Error("client added to roster but trainer not set on client")
		return nil, err
	}

	client.TrainerID = &trainerID
	client.PasswordHash = ""
	return client, nil
}

func (s *rosterService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// requireClient loads clientID and checks that the caller may act for them:
// admins for any client, trainers only for clients on their roster, clients
// only for themselves.
func requireClient(ctx context.Context, users repository.UserRepository, caller domain.Principal, clientID primitive.ObjectID) (*domain.User, error) {
	if caller.Role == domain.RoleClient && caller.UserID != clientID {
		return nil, ErrAccessDenied
	}
	client, err := users.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}
	if caller.Role == domain.RoleTrainer && (client.TrainerID == nil || *client.TrainerID != caller.UserID) {
		return nil, ErrClientNotManaged
	}
	return client, nil
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a studio account: admin, trainer or client.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Trainer only: clients managed by this trainer.
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// Client only: the trainer managing this client, if any.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// Principal is the authenticated caller, resolved once per request by the auth
// middleware and handed explicitly to the services that need it.
type Principal struct {
	UserID primitive.ObjectID
	Role   Role
}

// CanManageStudio reports whether the caller may edit classes and programs.
func (p Principal) CanManageStudio() bool {
	return p.Role == RoleAdmin || p.Role == RoleTrainer
}

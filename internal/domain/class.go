package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassDefinition is a recurring studio class. Occurrences are never stored;
// they are derived from DaysOfWeek and StartTime for whatever range is viewed.
type ClassDefinition struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	InstructorID primitive.ObjectID `bson:"instructorId" json:"instructorId"`
	// DaysOfWeek holds weekday indexes, 0=Sunday..6=Saturday.
	DaysOfWeek []int `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"`
	// DayOfWeek is the single-day field older records were written with.
	DayOfWeek       *int      `bson:"dayOfWeek,omitempty" json:"dayOfWeek,omitempty"`
	StartTime       string    `bson:"startTime" json:"startTime"` // "HH:MM"
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	MaxCapacity     int       `bson:"maxCapacity" json:"maxCapacity"`
	PriceCents      int64     `bson:"priceCents" json:"priceCents"`
	IsActive        bool      `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Weekdays returns the days this class runs on. An empty DaysOfWeek falls back
// to the legacy DayOfWeek; out-of-range indexes are dropped.
func (c *ClassDefinition) Weekdays() []time.Weekday {
	days := c.DaysOfWeek
	if len(days) == 0 && c.DayOfWeek != nil {
		days = []int{*c.DayOfWeek}
	}
	weekdays := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		weekdays = append(weekdays, time.Weekday(d))
	}
	return weekdays
}

// BookingStatus tracks whether a client still holds a spot in an occurrence.
type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking reserves a spot for a client in one concrete class occurrence.
type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClassID   primitive.ObjectID `bson:"classId" json:"classId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	Date      time.Time          `bson:"date" json:"date"` // local midnight of the occurrence day
	Status    BookingStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

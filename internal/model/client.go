package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a travel-agency customer. Clients referenced by at least one
// booking are protected against deletion (financial audit requirement);
// the repository enforces this before issuing the delete.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Email     *string
	Phone     *string `gorm:"type:varchar(40)"`
	Passport  *string `gorm:"type:varchar(20)"`
	CreatedAt time.Time

	Bookings []Booking `gorm:"foreignKey:ClientID"`
}

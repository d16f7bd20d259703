package model

import (
	"time"

	"github.com/google/uuid"
)

// VisaApplication holds the client-submitted visa dossier for one booking.
// The unique index on BookingID is the integrity guard for the public
// form: two near-simultaneous submissions race on the insert and the
// second writer must fall back to the update path.
//
// Only passport number and photo are mandatory; everything else is
// optional so the agency can collect details progressively. Which fields
// the public form shows is driven by Booking.VisaFormConfig.
type VisaApplication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	PassportNumber string  `gorm:"type:varchar(50);not null"`
	PhotoPath      string  `gorm:"not null"`
	FullName       *string `gorm:"type:varchar(200)"`

	DOB                *time.Time `gorm:"type:date"`
	Nationality        *string    `gorm:"type:varchar(100)"`
	PassportIssueDate  *time.Time `gorm:"type:date"`
	PassportExpiryDate *time.Time `gorm:"type:date"`

	Phone   *string `gorm:"type:varchar(50)"`
	Email   *string
	Address *string `gorm:"type:text"`

	TravelReason  *string    `gorm:"type:varchar(200)"`
	DepartureDate *time.Time `gorm:"type:date"`
	ReturnDate    *time.Time `gorm:"type:date"`
	Itinerary     *string    `gorm:"type:text"`

	// AccommodationType: "hotel" | "host"
	AccommodationType *string `gorm:"type:varchar(20)"`
	HostName          *string `gorm:"type:varchar(200)"`
	HostAddress       *string `gorm:"type:text"`
	HotelName         *string `gorm:"type:varchar(200)"`
	HotelAddress      *string `gorm:"type:text"`

	EmergencyContact *string `gorm:"type:text"`

	ConsentAccurate bool `gorm:"not null;default:false"`
	ConsentData     bool `gorm:"not null;default:false"`

	SubmittedAt time.Time
	UpdatedAt   time.Time

	Booking *Booking `gorm:"foreignKey:BookingID"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is an airline, hotel, tour operator or visa processing center
// the agency buys services from.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Contact   *string
	CreatedAt time.Time

	Expenses []Expense `gorm:"foreignKey:SupplierID"`
}

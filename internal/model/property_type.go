package model

import (
	"time"
)

// PropertyType is reference data describing the value kinds a Property
// definition may take. The rows are seeded once at startup and never
// mutated by tenants.
type PropertyType struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(250);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

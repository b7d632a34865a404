package model

import (
	"time"

	"gorm.io/gorm"
)

// Property is one typed, keyed field definition in a CircuitClass schema.
// Rows are tombstoned, not removed, when a schema is replaced so that
// stored Circuit property maps keep a historical definition to point at.
type Property struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	CircuitClassID uint           `json:"circuit_class_id" gorm:"index;not null"`
	PropertyTypeID uint           `json:"property_type_id" gorm:"not null"`
	PropertyType   PropertyType   `json:"property_type" gorm:"foreignKey:PropertyTypeID"`
	Key            string         `json:"key" gorm:"type:varchar(250);not null;index"`
	Required       bool           `json:"required" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

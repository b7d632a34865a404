package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Circuit is a concrete record conforming to one CircuitClass schema.
// Properties is a denormalized snapshot validated at write time against the
// schema current at that moment; it is never revalidated when the schema
// evolves afterwards.
type Circuit struct {
	ID                       uint              `json:"id" gorm:"primarykey"`
	AddressID                uint              `json:"address_id" gorm:"index;not null;uniqueIndex:idx_circuit_addr_refnum,where:deleted_at IS NULL"`
	CircuitClassID           uint              `json:"circuit_class_id" gorm:"index;not null"`
	CircuitClass             CircuitClass      `json:"circuit_class" gorm:"foreignKey:CircuitClassID"`
	CustomerAddressID        *uint             `json:"customer_address_id" gorm:"index"`
	ServiceProviderAddressID *uint             `json:"service_provider_address_id" gorm:"index"`
	Bandwidth                *int              `json:"bandwidth"`
	Description              string            `json:"description" gorm:"type:text"`
	GroupName                string            `json:"group_name" gorm:"type:varchar(250);index"`
	HandOffPoint             string            `json:"hand_off_point" gorm:"type:varchar(20)"`
	Reference                string            `json:"reference" gorm:"type:varchar(100);index"`
	ReferenceNumber          int               `json:"reference_number" gorm:"not null;index;uniqueIndex:idx_circuit_addr_refnum,where:deleted_at IS NULL"`
	InstallDate              time.Time         `json:"install_date" gorm:"not null;index"`
	DecommissionDate         *time.Time        `json:"decommission_date" gorm:"index"`
	Properties               datatypes.JSONMap `json:"properties" gorm:"type:jsonb"`
	CreatedAt                time.Time         `json:"created_at"`
	UpdatedAt                time.Time         `json:"updated_at"`
	DeletedAt                gorm.DeletedAt    `json:"deleted_at,omitempty" gorm:"index"`
}

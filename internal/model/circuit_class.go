package model

import (
	"time"

	"gorm.io/gorm"
)

// CircuitClass is a tenant-owned named schema grouping a set of typed
// property definitions. Name is unique per member among non-deleted rows.
type CircuitClass struct {
	ID       uint   `json:"id" gorm:"primarykey"`
	MemberID uint   `json:"member_id" gorm:"index;not null"`
	Name     string `json:"name" gorm:"type:varchar(250);not null;index"`

	// Properties holds the current (non-deleted) schema. The default gorm
	// scope already excludes tombstoned rows on preload.
	Properties []Property `json:"properties" gorm:"foreignKey:CircuitClassID"`

	// Derived counts, populated on read.
	TotalCircuits   int64 `json:"total_circuits" gorm:"-"`
	TotalProperties int64 `json:"total_properties" gorm:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// PropertyKeys returns the keys of the current schema in stored order.
func (cc *CircuitClass) PropertyKeys() []string {
	keys := make([]string, 0, len(cc.Properties))
	for _, p := range cc.Properties {
		keys = append(keys, p.Key)
	}
	return keys
}

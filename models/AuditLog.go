package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is a write-once record of one state-changing action on one
// order. It keeps a copy of the order token as it existed at the time of
// the action, plus its own signed audit token; no field is ever mutated.
type AuditLog struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrderID        uint           `json:"orderID" gorm:"index;not null"`
	ActorID        uint           `json:"actorID" gorm:"index;not null"`
	Actor          User           `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:RESTRICT"`
	Action         string         `json:"action" gorm:"size:50;index"`
	OrderTokenCopy string         `json:"orderTokenCopy" gorm:"type:text"`
	OrderTokenJTI  string         `json:"orderTokenJTI" gorm:"size:36"`
	AuditToken     string         `json:"auditToken" gorm:"type:text"`
	AuditTokenJTI  string         `json:"auditTokenJTI" gorm:"size:36"`
	OldValues      datatypes.JSON `json:"oldValues"`
	NewValues      datatypes.JSON `json:"newValues"`
	CreatedAt      time.Time      `json:"createdAt"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Order lifecycle states. "used" is a reserved terminal state: nothing in
// the current flow transitions into it, it exists for a future single-scan
// consumption mode.
const (
	StatusPending   = "pending"
	StatusInUse     = "in_use"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
	StatusUsed      = "used"
)

// Closing reasons written on terminal transitions.
const (
	ReasonTitularPresente    = "titular_presente"
	ReasonFamiliarAutorizado = "familiar_autorizado"
	ReasonAusenciaTitular    = "ausencia_titular"
	ReasonFamiliarAusente    = "familiar_ausente"
	ReasonMenorDeEdad        = "menor_de_edad"
)

type ServiceOrder struct {
	gorm.Model
	UUID           string     `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	TechnicianID   uint       `json:"technicianID" gorm:"index;not null"`
	Technician     User       `json:"-" gorm:"foreignKey:TechnicianID;constraint:OnDelete:RESTRICT"`
	TechnicianName string     `json:"technicianName" gorm:"size:150"` // snapshot at creation, never updated
	Token          string     `json:"-" gorm:"type:text;not null"`
	TokenHash      string     `json:"-" gorm:"size:64;not null"`
	TokenJTI       string     `json:"tokenJTI" gorm:"size:36"`
	Status         string     `json:"status" gorm:"size:12;default:pending;index"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	ClosingReason  string     `json:"closingReason" gorm:"size:64"`
	ClosingNotes   string     `json:"closingNotes" gorm:"type:text"`
	ClosedAt       *time.Time `json:"closedAt"`
	Evidences      []Evidence `json:"evidences,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Audits         []AuditLog `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Open reports whether the order can still accept guarded transitions.
func (o *ServiceOrder) Open() bool {
	return o.Status == StatusPending || o.Status == StatusInUse
}

// ExpiredAt reports whether the order's deadline is strictly in the past.
// An operation at exactly expires_at still succeeds.
func (o *ServiceOrder) ExpiredAt(now time.Time) bool {
	return o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}

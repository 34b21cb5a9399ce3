package models

import (
	"time"
)

// Evidence kinds, fixed enumeration.
const (
	EvidenceHomePhoto   = "foto_domicilio"
	EvidenceSignedDoc   = "doc_firmado"
	EvidenceIdentityDoc = "doc_identidad"
)

// Evidence is an uploaded artifact tied to exactly one order. Rows are
// append-only: never updated, removed only by cascade when the order goes.
type Evidence struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"orderID" gorm:"index;not null"`
	Kind      string    `json:"kind" gorm:"size:32;not null"`
	FileRef   string    `json:"fileRef" gorm:"size:255;not null"`
	FileHash  string    `json:"fileHash" gorm:"size:64;not null"` // sha256 of the exact stored bytes
	CreatedAt time.Time `json:"createdAt"`
}

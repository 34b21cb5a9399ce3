package services

import (
	"encoding/json"

	"github.com/elchavez14/Valiacion-de-qr/models"
	"github.com/elchavez14/Valiacion-de-qr/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditTrail appends write-once, token-backed records of state-changing
// actions. Entries are never updated or deleted by application logic.
type AuditTrail struct {
	Clock Clock
}

// Append mints a fresh audit token embedding actor, order, action and the
// two snapshots, then persists the entry carrying a copy of the order's
// token and jti as they exist right now. Runs inside the caller's
// transaction so the entry commits with the action it records.
func (a *AuditTrail) Append(tx *gorm.DB, actor *models.User, order *models.ServiceOrder, action string, old, new map[string]interface{}) (*models.AuditLog, error) {
	now := a.Clock.Now()

	auditToken, auditJTI, err := utils.SignAuditToken(actor.ID, actor.Role, order.ID, action, old, new, now)
	if err != nil {
		return nil, err
	}

	oldJSON, err := marshalSnapshot(old)
	if err != nil {
		return nil, err
	}
	newJSON, err := marshalSnapshot(new)
	if err != nil {
		return nil, err
	}

	entry := models.AuditLog{
		OrderID:        order.ID,
		ActorID:        actor.ID,
		Action:         action,
		OrderTokenCopy: order.Token,
		OrderTokenJTI:  order.TokenJTI,
		AuditToken:     auditToken,
		AuditTokenJTI:  auditJTI,
		OldValues:      oldJSON,
		NewValues:      newJSON,
		CreatedAt:      now,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns the order's entries newest-first.
func (a *AuditTrail) List(db *gorm.DB, orderID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := db.Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func marshalSnapshot(m map[string]interface{}) (datatypes.JSON, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

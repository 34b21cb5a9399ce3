package services

import (
	"github.com/elchavez14/Valiacion-de-qr/models"
)

// CanOperate answers "may this actor act on this order right now?" for
// technician operations: active, technician role, and assigned owner.
// Expiry is deliberately not checked here; it is a property of the order
// in time, evaluated by the lifecycle.
func CanOperate(actor *models.User, order *models.ServiceOrder) bool {
	if actor == nil || order == nil || !actor.IsActive() {
		return false
	}
	return actor.Role == models.RoleTechnician && actor.ID == order.TechnicianID
}

// IsAdmin gates administrative actions. No ownership constraint.
func IsAdmin(actor *models.User) bool {
	return actor != nil && actor.IsActive() && actor.Role == models.RoleAdmin
}

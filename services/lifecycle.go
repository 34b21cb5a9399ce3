package services

import (
	"errors"
	"time"

	"github.com/elchavez14/Valiacion-de-qr/models"
	"github.com/elchavez14/Valiacion-de-qr/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The order token defaults to one hour of validity when the caller requests
// no duration.
const defaultOrderTTL = time.Hour

var openStates = []string{models.StatusPending, models.StatusInUse}

var failJustifications = map[string]bool{
	models.ReasonAusenciaTitular: true,
	models.ReasonFamiliarAusente: true,
	models.ReasonMenorDeEdad:     true,
}

// Duration is the caller-requested order validity, summed across units.
type Duration struct {
	Seconds int `json:"seconds"`
	Minutes int `json:"minutes"`
	Hours   int `json:"hours"`
	Days    int `json:"days"`
}

func (d Duration) Span() time.Duration {
	return time.Duration(d.Seconds)*time.Second +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Days)*24*time.Hour
}

// FailInput carries the technician's closing submission for the failure
// path: the pasted order token, an enumerated justification, the mandatory
// home photo, and optional notes.
type FailInput struct {
	Token         string
	Justification string
	HomePhoto     EvidenceFile
	Notes         string
}

// SucceedInput carries the success path submission: the order token,
// whether the titular was present, the signed document, the identity
// document, and optional notes.
type SucceedInput struct {
	Token          string
	TitularPresent bool
	SignedDoc      EvidenceFile
	IDDoc          EvidenceFile
	Notes          string
}

// OrderLifecycle owns the order state machine and its guards. All
// coordination happens through the database; terminal transitions use a
// guarded UPDATE so two racing closes cannot both win.
type OrderLifecycle struct {
	DB    *gorm.DB
	Clock Clock
	Audit *AuditTrail
}

func NewOrderLifecycle(db *gorm.DB, clock Clock) *OrderLifecycle {
	return &OrderLifecycle{DB: db, Clock: clock, Audit: &AuditTrail{Clock: clock}}
}

// Create issues a new pending order for the technician and mints its
// bearer token. Admin only. The order uuid is generated up front so the
// token is signed once, with its final claims.
func (l *OrderLifecycle) Create(actor *models.User, technicianID uint, technicianName string, dur Duration) (*models.ServiceOrder, error) {
	if !IsAdmin(actor) {
		return nil, &AuthorizationError{Reason: "admin role required"}
	}

	var tech models.User
	err := l.DB.Where("id = ? AND role = ?", technicianID, models.RoleTechnician).First(&tech).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "technician", ID: technicianID}
	}
	if err != nil {
		return nil, err
	}
	if !tech.IsActive() {
		return nil, &ValidationError{Field: "technician_id", Reason: "technician is inactive"}
	}

	now := l.Clock.Now()
	span := dur.Span()
	if span <= 0 {
		span = defaultOrderTTL
	}
	expiresAt := now.Add(span)

	order := models.ServiceOrder{
		UUID:           uuid.NewString(),
		TechnicianID:   tech.ID,
		TechnicianName: technicianName,
		Status:         models.StatusPending,
		ExpiresAt:      &expiresAt,
	}
	order.CreatedAt = now

	err = l.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// The numeric id is database-assigned, so signing happens after
		// the insert; still a single signing pass with the final claims.
		token, jti, err := utils.SignOrderToken(order.ID, order.UUID, tech.ID, now, expiresAt)
		if err != nil {
			return err
		}
		order.Token = token
		order.TokenHash = utils.SHA256Hex(token)
		order.TokenJTI = jti
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"token":      order.Token,
			"token_hash": order.TokenHash,
			"token_jti":  order.TokenJTI,
		}).Error; err != nil {
			return err
		}

		_, err = l.Audit.Append(tx, actor, &order, "create_order", nil, map[string]interface{}{
			"status":          order.Status,
			"technician_id":   tech.ID,
			"technician_name": technicianName,
			"expires_at":      expiresAt.Format(time.RFC3339),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Start marks the order as in use when the technician actually begins.
func (l *OrderLifecycle) Start(actor *models.User, orderID uint) (*models.ServiceOrder, error) {
	order, err := l.load(orderID)
	if err != nil {
		return nil, err
	}
	if !CanOperate(actor, order) {
		return nil, &AuthorizationError{Reason: "only the assigned technician may operate this order"}
	}
	if err := l.forceExpireIfOverdue(order); err != nil {
		return nil, err
	}
	if !order.Open() {
		return nil, &StateError{Op: "start", Current: order.Status}
	}

	prev := order.Status
	err = l.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ServiceOrder{}).
			Where("id = ? AND status IN ?", order.ID, openStates).
			Update("status", models.StatusInUse)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return l.concurrentStateError(tx, order.ID, "start")
		}
		order.Status = models.StatusInUse

		_, err := l.Audit.Append(tx, actor, order, "start",
			map[string]interface{}{"status": prev},
			map[string]interface{}{"status": models.StatusInUse})
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Fail closes the order as failed: justification + home photo + the order
// token. Evidence rows, the status flip, closing metadata and both audit
// entries commit in one transaction.
func (l *OrderLifecycle) Fail(actor *models.User, orderID uint, in FailInput) (*models.ServiceOrder, error) {
	if !failJustifications[in.Justification] {
		return nil, &ValidationError{Field: "justification", Reason: "unrecognized code"}
	}
	in.HomePhoto.Kind = models.EvidenceHomePhoto
	return l.close(actor, orderID, "fail", models.StatusFailed, in.Token, in.Justification, in.Notes,
		[]EvidenceFile{in.HomePhoto})
}

// Succeed closes the order as completed: signed document + identity
// document + the order token.
func (l *OrderLifecycle) Succeed(actor *models.User, orderID uint, in SucceedInput) (*models.ServiceOrder, error) {
	reason := models.ReasonFamiliarAutorizado
	if in.TitularPresent {
		reason = models.ReasonTitularPresente
	}
	in.SignedDoc.Kind = models.EvidenceSignedDoc
	in.IDDoc.Kind = models.EvidenceIdentityDoc
	return l.close(actor, orderID, "succeed", models.StatusCompleted, in.Token, reason, in.Notes,
		[]EvidenceFile{in.SignedDoc, in.IDDoc})
}

func (l *OrderLifecycle) close(actor *models.User, orderID uint, op, terminal, token, reason, notes string, files []EvidenceFile) (*models.ServiceOrder, error) {
	order, err := l.load(orderID)
	if err != nil {
		return nil, err
	}
	if !CanOperate(actor, order) {
		return nil, &AuthorizationError{Reason: "only the assigned technician may operate this order"}
	}
	if err := l.forceExpireIfOverdue(order); err != nil {
		return nil, err
	}
	if !order.Open() {
		return nil, &StateError{Op: op, Current: order.Status}
	}

	// Token mismatch must not alter order state and must create no rows.
	if utils.SHA256Hex(token) != order.TokenHash {
		return nil, &TokenError{Reason: "token hash mismatch"}
	}

	prev := order.Status
	now := l.Clock.Now()
	err = l.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ServiceOrder{}).
			Where("id = ? AND status IN ?", order.ID, openStates).
			Updates(map[string]interface{}{
				"status":         terminal,
				"closing_reason": reason,
				"closing_notes":  notes,
				"closed_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return l.concurrentStateError(tx, order.ID, op)
		}
		order.Status = terminal
		order.ClosingReason = reason
		order.ClosingNotes = notes
		order.ClosedAt = &now

		if _, err := RecordEvidence(tx, actor, order, files, l.Audit); err != nil {
			return err
		}

		_, err := l.Audit.Append(tx, actor, order, op,
			map[string]interface{}{"status": prev},
			map[string]interface{}{
				"status":         terminal,
				"closing_reason": reason,
				"closing_notes":  notes,
				"closed_at":      now.Format(time.RFC3339),
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ValidateToken checks a pasted token against the order: signature must
// verify and its hash must equal the stored one. Read-only.
func (l *OrderLifecycle) ValidateToken(actor *models.User, orderID uint, token string) (bool, *models.ServiceOrder, error) {
	order, err := l.load(orderID)
	if err != nil {
		return false, nil, err
	}
	if !CanOperate(actor, order) {
		return false, nil, &AuthorizationError{Reason: "only the assigned technician may operate this order"}
	}

	if _, err := utils.VerifyOrderToken(token); err != nil {
		return false, order, nil
	}
	return utils.SHA256Hex(token) == order.TokenHash, order, nil
}

// ListAudit returns the order's audit trail, newest-first. Admin only.
func (l *OrderLifecycle) ListAudit(actor *models.User, orderID uint) ([]models.AuditLog, error) {
	if !IsAdmin(actor) {
		return nil, &AuthorizationError{Reason: "admin role required"}
	}
	if _, err := l.load(orderID); err != nil {
		return nil, err
	}
	return l.Audit.List(l.DB, orderID)
}

// List returns all orders for admins, own orders for technicians.
func (l *OrderLifecycle) List(actor *models.User) ([]models.ServiceOrder, error) {
	q := l.DB.Order("id DESC")
	switch {
	case IsAdmin(actor):
	case actor != nil && actor.Role == models.RoleTechnician:
		q = q.Where("technician_id = ?", actor.ID)
	default:
		return nil, &AuthorizationError{Reason: "unknown role"}
	}
	var orders []models.ServiceOrder
	err := q.Find(&orders).Error
	return orders, err
}

// Get returns one order with its evidences; technicians see only their own.
func (l *OrderLifecycle) Get(actor *models.User, orderID uint) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := l.DB.Preload("Evidences").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}
	if !IsAdmin(actor) && !CanOperate(actor, &order) {
		return nil, &AuthorizationError{Reason: "not your order"}
	}
	return &order, nil
}

func (l *OrderLifecycle) load(orderID uint) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := l.DB.First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// forceExpireIfOverdue converges an overdue order onto expired and reports
// ExpiryError. Idempotent: repeated calls keep reporting ExpiryError while
// leaving status expired. The lazy path here and the eager sweeper path
// produce the same terminal state, so their ordering does not matter.
func (l *OrderLifecycle) forceExpireIfOverdue(order *models.ServiceOrder) error {
	now := l.Clock.Now()
	if !order.ExpiredAt(now) {
		return nil
	}
	if order.Open() {
		if err := l.DB.Model(&models.ServiceOrder{}).
			Where("id = ? AND status IN ?", order.ID, openStates).
			Update("status", models.StatusExpired).Error; err != nil {
			return err
		}
		order.Status = models.StatusExpired
	}
	if order.Status == models.StatusExpired {
		return &ExpiryError{ExpiredAt: *order.ExpiresAt}
	}
	// Closed before the deadline passed; the state guard reports it.
	return nil
}

// concurrentStateError reloads the row after a guarded UPDATE matched
// nothing: another request won the transition first.
func (l *OrderLifecycle) concurrentStateError(tx *gorm.DB, orderID uint, op string) error {
	var current models.ServiceOrder
	if err := tx.First(&current, orderID).Error; err != nil {
		return err
	}
	return &StateError{Op: op, Current: current.Status}
}

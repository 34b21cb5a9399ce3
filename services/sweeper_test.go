package services

import (
	"strings"
	"testing"
	"time"

	"github.com/elchavez14/Valiacion-de-qr/models"
)

func TestSweeperExpiresOverdueOrders(t *testing.T) {
	l, clock := newTestLifecycle(t)
	admin, tech, other := seedUsers(t, l.DB)

	pending, _ := l.Create(admin, tech.ID, tech.FullName, Duration{Minutes: 10})
	inUse, _ := l.Create(admin, tech.ID, tech.FullName, Duration{Minutes: 10})
	l.Start(tech, inUse.ID)
	longLived, _ := l.Create(admin, other.ID, other.FullName, Duration{Days: 1})
	closed, _ := l.Create(admin, tech.ID, tech.FullName, Duration{Minutes: 10})
	if _, err := l.Fail(tech, closed.ID, FailInput{
		Token:         closed.Token,
		Justification: models.ReasonAusenciaTitular,
		HomePhoto:     EvidenceFile{Filename: "x.jpg", Content: strings.NewReader("x")},
	}); err != nil {
		t.Fatalf("close seed order: %v", err)
	}

	clock.Advance(11 * time.Minute)
	sweeper := NewSweeper(l.DB, clock, time.Minute)

	count, err := sweeper.ExpireOverdue()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if count != 2 {
		t.Errorf("expired %d orders, want 2", count)
	}

	for _, id := range []uint{pending.ID, inUse.ID} {
		var o models.ServiceOrder
		l.DB.First(&o, id)
		if o.Status != models.StatusExpired {
			t.Errorf("order %d status = %s, want expired", id, o.Status)
		}
	}

	var untouched models.ServiceOrder
	l.DB.First(&untouched, longLived.ID)
	if untouched.Status != models.StatusPending {
		t.Errorf("long-lived order swept early: %s", untouched.Status)
	}
	var terminal models.ServiceOrder
	l.DB.First(&terminal, closed.ID)
	if terminal.Status != models.StatusFailed {
		t.Errorf("terminal order touched by sweeper: %s", terminal.Status)
	}

	// Idempotent: a second pass with no new orders changes nothing.
	count, err = sweeper.ExpireOverdue()
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if count != 0 {
		t.Errorf("second sweep expired %d orders, want 0", count)
	}
}

func TestSweeperWritesNoAuditEntries(t *testing.T) {
	l, clock := newTestLifecycle(t)
	admin, tech, _ := seedUsers(t, l.DB)

	order, _ := l.Create(admin, tech.ID, tech.FullName, Duration{Minutes: 5})
	before := auditCount(t, l.DB, order.ID)

	clock.Advance(6 * time.Minute)
	if _, err := NewSweeper(l.DB, clock, time.Minute).ExpireOverdue(); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := auditCount(t, l.DB, order.ID); got != before {
		t.Errorf("sweeper appended audit entries: %d -> %d", before, got)
	}
}

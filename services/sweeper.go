package services

import (
	"context"
	"log"
	"time"

	"github.com/elchavez14/Valiacion-de-qr/models"
	"gorm.io/gorm"
)

// Sweeper forcibly expires overdue open orders on a fixed interval,
// independent of request traffic. The transition is monotone and
// idempotent, so it is safe to run concurrently with itself and with the
// lazy per-request expiry check.
type Sweeper struct {
	DB       *gorm.DB
	Clock    Clock
	Interval time.Duration
}

func NewSweeper(db *gorm.DB, clock Clock, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{DB: db, Clock: clock, Interval: interval}
}

// ExpireOverdue transitions every open order whose deadline is strictly in
// the past to expired, in one bulk update. No audit entry is written for
// this automated transition; forced expiries stay visible through the
// returned count.
func (s *Sweeper) ExpireOverdue() (int64, error) {
	res := s.DB.Model(&models.ServiceOrder{}).
		Where("status IN ? AND expires_at < ?", openStates, s.Clock.Now()).
		Update("status", models.StatusExpired)
	return res.RowsAffected, res.Error
}

// Run blocks on a ticker until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.ExpireOverdue()
			if err != nil {
				log.Println("sweeper: expire pass failed:", err)
				continue
			}
			if count > 0 {
				log.Printf("sweeper: expired %d overdue orders", count)
			}
		}
	}
}

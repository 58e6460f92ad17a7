package services

import (
	"context"
	"log"
	"time"
)

// Sweeper runs the expired-hold sweep on an interval so abandoned
// reservations release their rooms even when nobody reads them. Reads stay
// correct without it; the sweep only keeps the ledger tidy.
type Sweeper struct {
	engine   *ReservationEngine
	clock    Clock
	interval time.Duration
}

func NewSweeper(engine *ReservationEngine, clock Clock, interval time.Duration) *Sweeper {
	return &Sweeper{engine: engine, clock: clock, interval: interval}
}

// Run blocks until ctx is cancelled. A non-positive interval disables the
// sweep entirely.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := s.engine.SweepExpired(s.clock.Now())
			if err != nil {
				log.Println("sweep expired reservations:", err)
				continue
			}
			if len(swept) > 0 {
				log.Printf("swept %d expired reservations", len(swept))
			}
		}
	}
}

package holds

import (
	"context"
	"log"
	"time"
)

// Sweeper drives the expiry sweep on a ticker. Scheduling lives here; the
// sweep semantics live in the service so they can also be triggered over the
// internal HTTP endpoint.
type Sweeper struct {
	service  Service
	interval time.Duration
	done     chan struct{}
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
	log.Printf("Started hold sweeper with %v interval", s.interval)
}

func (s *Sweeper) Stop() {
	close(s.done)
	log.Println("Hold sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.service.SweepExpired(ctx); err != nil {
				log.Printf("Error sweeping expired holds: %v", err)
			}
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

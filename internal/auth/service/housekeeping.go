package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

// HousekeepingService periodically deletes expired TOTP challenges and
// OAuth link requests.
type HousekeepingService struct {
	Challenges store.Challenges
	Logger     *slog.Logger
	Interval   time.Duration
	Clock      Clock

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. If interval is 0 or
// negative, it defaults to 1 hour.
func NewHousekeepingService(challenges store.Challenges, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Challenges: challenges,
		Logger:     logger,
		Interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start runs cleanup once, then on every tick, in the background.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes everything that has expired and reports how many records
// went.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Challenges.DeleteExpired(ctx, s.Clock.now())
	if err != nil {
		s.Logger.Error("failed to delete expired challenges", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", n)
	return n
}

package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"groupchat/api/internal/repository"
)

// Scheduler runs the periodic token-registry cleanup. Expired rows no
// longer influence validation, so removing them is pure housekeeping.
type Scheduler struct {
	cron   *cron.Cron
	tokens *repository.TokenRegistry
	log    zerolog.Logger
}

func NewScheduler(tokens *repository.TokenRegistry, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		tokens: tokens,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.tokens == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", s.purgeExpiredTokens); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits up to five seconds for a running job
// to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.tokens.PurgeExpired(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("token purge failed")
		return
	}
	s.log.Info().Int64("purged", purged).Msg("expired tokens purged")
}

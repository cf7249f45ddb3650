package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionSweeper drops idle admission form sessions
type SessionSweeper interface {
	Sweep(idleFor time.Duration) int
}

// TokenPurger deletes refresh tokens that can no longer be used
type TokenPurger interface {
	PurgeRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// JanitorService periodically evicts idle admission form sessions and
// purges expired or revoked refresh tokens
type JanitorService struct {
	sessions SessionSweeper
	tokens   TokenPurger
	interval time.Duration
	idleFor  time.Duration
	logger   zerolog.Logger
}

func NewJanitorService(sessions SessionSweeper, tokens TokenPurger, interval, idleFor time.Duration, logger zerolog.Logger) *JanitorService {
	return &JanitorService{
		sessions: sessions,
		tokens:   tokens,
		interval: interval,
		idleFor:  idleFor,
		logger:   logger,
	}
}

// Start runs until ctx is cancelled
func (j *JanitorService) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info().Dur("interval", j.interval).Msg("Janitor started")

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("Janitor stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass
func (j *JanitorService) RunOnce(ctx context.Context) {
	if removed := j.sessions.Sweep(j.idleFor); removed > 0 {
		j.logger.Debug().Int("sessions", removed).Msg("Evicted idle admission sessions")
	}

	if j.tokens == nil {
		return
	}
	purged, err := j.tokens.PurgeRefreshTokens(ctx, time.Now())
	if err != nil {
		j.logger.Error().Err(err).Msg("Failed to purge refresh tokens")
		return
	}
	if purged > 0 {
		j.logger.Debug().Int64("tokens", purged).Msg("Purged refresh tokens")
	}
}

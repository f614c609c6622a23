// Package scheduler runs the periodic background jobs of the import service.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/domain/orders"
)

// HistoryExpiryConfig holds configuration for the history expiry sweep
type HistoryExpiryConfig struct {
	// CheckInterval is how often to look for stale processing records
	CheckInterval time.Duration
	// MaxAge is how long a processing record may wait for a confirm before it
	// is considered abandoned. This should match the import session TTL.
	MaxAge time.Duration
	// BatchSize caps how many records one sweep expires
	BatchSize int
}

// DefaultHistoryExpiryConfig returns default expiry sweep configuration
func DefaultHistoryExpiryConfig() HistoryExpiryConfig {
	return HistoryExpiryConfig{
		CheckInterval: 5 * time.Minute,
		MaxAge:        time.Hour,
		BatchSize:     100,
	}
}

// HistoryStore is the slice of the history repository the sweep needs
type HistoryStore interface {
	FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*orders.ImportHistory, error)
	Save(ctx context.Context, history *orders.ImportHistory) error
}

// HistoryExpirySweeper expires import history records whose session lapsed
// without a confirm. Session stores drop expired sessions on their own; this
// sweep moves the matching history records out of the processing state so the
// history list reflects that the run was abandoned.
type HistoryExpirySweeper struct {
	config    HistoryExpiryConfig
	histories HistoryStore
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewHistoryExpirySweeper creates a new history expiry sweeper
func NewHistoryExpirySweeper(
	config HistoryExpiryConfig,
	histories HistoryStore,
	logger *zap.Logger,
) *HistoryExpirySweeper {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultHistoryExpiryConfig().CheckInterval
	}
	if config.MaxAge <= 0 {
		config.MaxAge = DefaultHistoryExpiryConfig().MaxAge
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultHistoryExpiryConfig().BatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryExpirySweeper{
		config:    config,
		histories: histories,
		logger:    logger,
	}
}

// Start starts the background sweep loop
func (s *HistoryExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("History expiry sweeper started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Duration("max_age", s.config.MaxAge),
	)

	return nil
}

// Stop stops the sweep loop and waits for an in-flight sweep to finish
func (s *HistoryExpirySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("History expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *HistoryExpirySweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep expires one batch of stale processing records. It returns the number
// of records expired.
func (s *HistoryExpirySweeper) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.config.MaxAge)
	stale, err := s.histories.FindStaleProcessing(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		s.logger.Error("Failed to load stale import histories", zap.Error(err))
		return 0
	}

	expired := 0
	for _, history := range stale {
		if err := history.Expire(); err != nil {
			s.logger.Warn("Skipping import history that cannot expire",
				zap.String("history_id", history.ID.String()),
				zap.String("status", string(history.Status)),
				zap.Error(err),
			)
			continue
		}
		if err := s.histories.Save(ctx, history); err != nil {
			s.logger.Error("Failed to save expired import history",
				zap.String("history_id", history.ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("Expired abandoned import runs", zap.Int("count", expired))
	}
	return expired
}

package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appRealty "github.com/realty/backend/internal/application/realty"
	"github.com/realty/backend/internal/domain/realty"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/trade"
)

// LockSweeperConfig holds lock sweeper configuration
type LockSweeperConfig struct {
	CheckInterval time.Duration
	Timeout       time.Duration
}

// DefaultLockSweeperConfig returns default lock sweeper configuration
func DefaultLockSweeperConfig() LockSweeperConfig {
	return LockSweeperConfig{
		CheckInterval: 5 * time.Minute,
		Timeout:       24 * time.Hour,
	}
}

// LockSweeper releases reservation locks whose holding order was cancelled,
// deleted, or abandoned past the configured timeout
type LockSweeper struct {
	config       LockSweeperConfig
	propertyRepo realty.PropertyRepository
	orderRepo    trade.ReservationOrderRepository
	sync         *appRealty.MirrorSyncService
	logger       *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewLockSweeper creates a new lock sweeper
func NewLockSweeper(
	config LockSweeperConfig,
	propertyRepo realty.PropertyRepository,
	orderRepo trade.ReservationOrderRepository,
	syncService *appRealty.MirrorSyncService,
	logger *zap.Logger,
) *LockSweeper {
	return &LockSweeper{
		config:       config,
		propertyRepo: propertyRepo,
		orderRepo:    orderRepo,
		sync:         syncService,
		logger:       logger.Named("lock_sweeper"),
	}
}

// Start starts the background sweep loop
func (s *LockSweeper) Start(ctx context.Context) error {
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
	go s.loop(ctx)

	s.logger.Info("Lock sweeper started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Duration("timeout", s.config.Timeout),
	)

	return nil
}

// Stop gracefully stops the sweeper
func (s *LockSweeper) Stop(ctx context.Context) error {
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
		s.logger.Info("Lock sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Lock sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *LockSweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("Lock sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep releases stale locks in a single pass
// Exported so operators can trigger it outside the schedule
func (s *LockSweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.config.Timeout)

	stale, err := s.propertyRepo.FindLockedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	s.logger.Info("Found stale reservation locks", zap.Int("count", len(stale)))

	for _, property := range stale {
		if err := s.release(ctx, property); err != nil {
			s.logger.Error("Failed to release stale lock",
				zap.String("property_id", property.ID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// release clears the lock on one property and reverts it when the
// holding order no longer claims it
func (s *LockSweeper) release(ctx context.Context, property *realty.Property) error {
	holderID := *property.LockedByOrderID

	holder, err := s.orderRepo.FindByID(ctx, holderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	holderGone := holder == nil || !holder.Status.IsActive()

	property.ForceReleaseLock()

	// An order that disappeared or was cancelled cannot complete the
	// reservation, so the unit goes back on the market
	if holderGone || holder.Status == trade.OrderStatusDraft {
		if property.State == realty.PropertyStateInProgress {
			if err := property.MarkAvailable(); err != nil {
				return err
			}
		}
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return err
	}

	s.logger.Warn("Released stale reservation lock",
		zap.String("property_id", property.ID.String()),
		zap.String("property_code", property.Code),
		zap.String("order_id", holderID.String()),
		zap.Bool("holder_gone", holderGone),
	)

	return s.sync.SyncPropertyToListing(ctx, property, appRealty.OriginProperty)
}

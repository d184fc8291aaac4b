package usecase

import (
	"context"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
)

// OfflineSyncMessage is recorded in the sync state when a sync is requested without connectivity or user.
const OfflineSyncMessage = "Impossible de synchroniser hors ligne"

// SyncOutcome describes what a sync request did.
type SyncOutcome string

const (
	SyncOutcomeSynced   SyncOutcome = "synced"
	SyncOutcomeFailed   SyncOutcome = "failed"
	SyncOutcomeBusy     SyncOutcome = "busy"
	SyncOutcomeRejected SyncOutcome = "rejected"
	SyncOutcomeNone     SyncOutcome = "none"
)

// SyncMetrics records sync outcomes.
type SyncMetrics interface {
	ObserveSync(outcome string, duration time.Duration)
}

// SyncOptions configures a SyncCoordinator.
type SyncOptions struct {
	Timeout time.Duration
	// IdleTTL evicts coordinators not looked up for that long. Zero keeps them until Release.
	IdleTTL time.Duration
}

// SyncCoordinator reconciles one user session with the remote store on connectivity changes.
// At most one sync runs at a time; requests made while syncing are no-ops.
type SyncCoordinator struct {
	userID  string
	syncer  port.Syncer
	toasts  port.ToastSink
	events  port.EventPublisher
	metrics SyncMetrics
	logger  *zap.Logger
	now     func() time.Time
	timeout time.Duration

	mu        sync.Mutex
	mounted   bool
	online    bool
	syncing   bool
	lastSync  *time.Time
	syncError *string
}

// NewSyncCoordinator constructs a coordinator bound to a user session.
func NewSyncCoordinator(userID string, syncer port.Syncer, toasts port.ToastSink, events port.EventPublisher, metrics SyncMetrics, logger *zap.Logger, opts SyncOptions) *SyncCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncCoordinator{
		userID:  userID,
		syncer:  syncer,
		toasts:  toasts,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		timeout: opts.Timeout,
	}
}

// WithClock overrides the coordinator clock for deterministic testing.
func (c *SyncCoordinator) WithClock(clock func() time.Time) *SyncCoordinator {
	if clock != nil {
		c.now = clock
	}
	return c
}

// Mount records the initial connectivity of the session and syncs if already online.
func (c *SyncCoordinator) Mount(ctx context.Context, online bool) SyncOutcome {
	c.mu.Lock()
	c.mounted = true
	c.online = online
	c.mu.Unlock()

	if !online || c.userID == "" {
		return SyncOutcomeNone
	}
	return c.Sync(ctx)
}

// SetOnline applies a connectivity signal. Going online triggers a sync; going offline only flips the flag.
// The first signal of a session is treated as the mount.
func (c *SyncCoordinator) SetOnline(ctx context.Context, online bool) SyncOutcome {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return c.Mount(ctx, online)
	}
	wasOnline := c.online
	c.online = online
	c.mu.Unlock()

	if !online || wasOnline || c.userID == "" {
		return SyncOutcomeNone
	}

	c.logger.Info("connectivity restored, starting sync", zap.String("user_id", c.userID))
	return c.Sync(ctx)
}

// ForceSync runs a user-requested sync regardless of the automatic trigger history.
func (c *SyncCoordinator) ForceSync(ctx context.Context) SyncOutcome {
	return c.Sync(ctx)
}

// Sync reconciles pending state with the remote store.
func (c *SyncCoordinator) Sync(ctx context.Context) SyncOutcome {
	c.mu.Lock()
	if !c.online || c.userID == "" {
		msg := OfflineSyncMessage
		c.syncError = &msg
		c.mu.Unlock()
		c.observe(SyncOutcomeRejected, 0)
		return SyncOutcomeRejected
	}
	if c.syncing {
		c.mu.Unlock()
		return SyncOutcomeBusy
	}
	c.syncing = true
	c.mu.Unlock()

	started := c.now()
	syncCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		syncCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	report, err := c.syncer.SyncAll(syncCtx, c.userID)
	finished := c.now()

	c.mu.Lock()
	if err != nil {
		msg := err.Error()
		c.syncError = &msg
	} else {
		c.lastSync = &finished
		c.syncError = nil
	}
	c.syncing = false
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("sync failed", zap.String("user_id", c.userID), zap.Error(err))
		c.toast(ctx, domain.Toast{
			UserID:  c.userID,
			Type:    domain.ToastError,
			Title:   "Erreur de synchronisation",
			Message: err.Error(),
		})
		c.publish(ctx, report, err.Error(), finished)
		c.observe(SyncOutcomeFailed, finished.Sub(started))
		return SyncOutcomeFailed
	}

	c.logger.Info("sync completed",
		zap.String("user_id", c.userID),
		zap.Int("applied", report.Applied),
		zap.Int("dropped", report.Dropped),
	)
	c.toast(ctx, domain.Toast{
		UserID:  c.userID,
		Type:    domain.ToastSuccess,
		Title:   "Synchronisation réussie",
		Message: "Vos données sont à jour",
	})
	c.publish(ctx, report, "", finished)
	c.observe(SyncOutcomeSynced, finished.Sub(started))
	return SyncOutcomeSynced
}

func (c *SyncCoordinator) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing
}

// State returns the current sync status.
func (c *SyncCoordinator) State() domain.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := domain.SyncState{IsOnline: c.online, IsSyncing: c.syncing}
	if c.lastSync != nil {
		ts := *c.lastSync
		state.LastSync = &ts
	}
	if c.syncError != nil {
		msg := *c.syncError
		state.SyncError = &msg
	}
	return state
}

func (c *SyncCoordinator) toast(ctx context.Context, toast domain.Toast) {
	if c.toasts != nil {
		c.toasts.Toast(ctx, toast)
	}
}

func (c *SyncCoordinator) publish(ctx context.Context, report domain.SyncReport, errMsg string, at time.Time) {
	if c.events == nil {
		return
	}
	event := domain.SyncCompletedEvent{
		EventID:     uuid.NewString(),
		UserID:      c.userID,
		Applied:     report.Applied,
		Dropped:     report.Dropped,
		Error:       errMsg,
		CompletedAt: at,
	}
	if err := c.events.PublishSyncCompleted(ctx, event); err != nil {
		c.logger.Warn("publish sync event", zap.String("user_id", c.userID), zap.Error(err))
	}
}

func (c *SyncCoordinator) observe(outcome SyncOutcome, d time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveSync(string(outcome), d)
	}
}

// SyncRegistry keeps one coordinator per user. Coordinators are keyed by user rather than by
// session because the pending queue is per user: one coordinator per user serialises replays.
type SyncRegistry struct {
	syncer  port.Syncer
	toasts  port.ToastSink
	events  port.EventPublisher
	metrics SyncMetrics
	logger  *zap.Logger
	opts    SyncOptions
	now     func() time.Time

	coordinators *sessionCache[*SyncCoordinator]
}

// NewSyncRegistry constructs a registry sharing the supplied collaborators.
// Coordinators idle for longer than opts.IdleTTL are dropped on a later lookup.
func NewSyncRegistry(syncer port.Syncer, toasts port.ToastSink, events port.EventPublisher, metrics SyncMetrics, logger *zap.Logger, opts SyncOptions) *SyncRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &SyncRegistry{
		syncer:  syncer,
		toasts:  toasts,
		events:  events,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
	r.coordinators = newSessionCache(opts.IdleTTL, func() time.Time { return r.now() }, (*SyncCoordinator).busy)
	return r
}

// WithClock overrides the registry clock used for idle eviction.
func (r *SyncRegistry) WithClock(clock func() time.Time) *SyncRegistry {
	if clock != nil {
		r.now = clock
	}
	return r
}

// For returns the coordinator of the user's session, creating it on first use.
func (r *SyncRegistry) For(userID string) *SyncCoordinator {
	return r.coordinators.get(userID, func() *SyncCoordinator {
		return NewSyncCoordinator(userID, r.syncer, r.toasts, r.events, r.metrics, r.logger, r.opts)
	})
}

// Release ends the session state of a user.
func (r *SyncRegistry) Release(userID string) {
	r.coordinators.release(userID)
}

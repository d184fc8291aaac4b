package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

type syncerStub struct {
	mu      sync.Mutex
	calls   int
	err     error
	report  domain.SyncReport
	started chan struct{}
	release chan struct{}
}

func (s *syncerStub) SyncAll(ctx context.Context, userID string) (domain.SyncReport, error) {
	s.mu.Lock()
	s.calls++
	started, release := s.started, s.release
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.SyncReport{}, ctx.Err()
		}
	}
	return s.report, s.err
}

func (s *syncerStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type syncMetricsStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *syncMetricsStub) ObserveSync(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func newTestCoordinator(t *testing.T, userID string, syncer *syncerStub, toasts *toastSinkStub) *SyncCoordinator {
	t.Helper()
	return NewSyncCoordinator(userID, syncer, toasts, &eventPublisherStub{}, &syncMetricsStub{}, zaptest.NewLogger(t), SyncOptions{Timeout: time.Second})
}

func TestSyncCoordinator_MountOnlineSyncsOnce(t *testing.T) {
	syncer := &syncerStub{report: domain.SyncReport{Applied: 2}}
	toasts := &toastSinkStub{}
	c := newTestCoordinator(t, "u1", syncer, toasts)

	if got := c.Mount(context.Background(), true); got != SyncOutcomeSynced {
		t.Fatalf("expected synced outcome, got %s", got)
	}
	if syncer.callCount() != 1 {
		t.Fatalf("expected one sync, got %d", syncer.callCount())
	}

	state := c.State()
	if !state.IsOnline || state.IsSyncing || state.LastSync == nil || state.SyncError != nil {
		t.Fatalf("unexpected state after successful sync: %+v", state)
	}
	if toasts.count() != 1 || toasts.toasts[0].Type != domain.ToastSuccess {
		t.Fatalf("expected one success toast, got %+v", toasts.toasts)
	}
}

func TestSyncCoordinator_MountOfflineDoesNothing(t *testing.T) {
	syncer := &syncerStub{}
	c := newTestCoordinator(t, "u1", syncer, &toastSinkStub{})

	if got := c.Mount(context.Background(), false); got != SyncOutcomeNone {
		t.Fatalf("expected no sync, got %s", got)
	}
	if syncer.callCount() != 0 {
		t.Fatalf("expected no store call")
	}
}

func TestSyncCoordinator_OfflineSyncIsRejected(t *testing.T) {
	syncer := &syncerStub{}
	toasts := &toastSinkStub{}
	c := newTestCoordinator(t, "u1", syncer, toasts)
	c.Mount(context.Background(), false)

	if got := c.Sync(context.Background()); got != SyncOutcomeRejected {
		t.Fatalf("expected rejected outcome, got %s", got)
	}
	if syncer.callCount() != 0 {
		t.Fatalf("expected no store call while offline")
	}
	state := c.State()
	if state.SyncError == nil || *state.SyncError != OfflineSyncMessage {
		t.Fatalf("expected offline error, got %+v", state.SyncError)
	}
	if toasts.count() != 0 {
		t.Fatalf("expected no toast on offline rejection")
	}
}

func TestSyncCoordinator_NoUserIsRejected(t *testing.T) {
	syncer := &syncerStub{}
	c := newTestCoordinator(t, "", syncer, &toastSinkStub{})

	if got := c.Mount(context.Background(), true); got != SyncOutcomeNone {
		t.Fatalf("expected mount without user to skip sync, got %s", got)
	}
	if got := c.Sync(context.Background()); got != SyncOutcomeRejected {
		t.Fatalf("expected rejected outcome, got %s", got)
	}
	if syncer.callCount() != 0 {
		t.Fatalf("expected no store call without user")
	}
}

func TestSyncCoordinator_ReconnectTriggersExactlyOneSync(t *testing.T) {
	syncer := &syncerStub{}
	c := newTestCoordinator(t, "u1", syncer, &toastSinkStub{})
	ctx := context.Background()

	c.SetOnline(ctx, false)
	if got := c.SetOnline(ctx, true); got != SyncOutcomeSynced {
		t.Fatalf("expected sync on reconnect, got %s", got)
	}
	if got := c.SetOnline(ctx, true); got != SyncOutcomeNone {
		t.Fatalf("expected repeated online signal to be ignored, got %s", got)
	}
	if syncer.callCount() != 1 {
		t.Fatalf("expected exactly one sync, got %d", syncer.callCount())
	}
}

func TestSyncCoordinator_GoingOfflineOnlyFlipsFlag(t *testing.T) {
	syncer := &syncerStub{}
	c := newTestCoordinator(t, "u1", syncer, &toastSinkStub{})
	ctx := context.Background()

	c.Mount(ctx, true)
	if got := c.SetOnline(ctx, false); got != SyncOutcomeNone {
		t.Fatalf("expected no sync when going offline, got %s", got)
	}
	if c.State().IsOnline {
		t.Fatalf("expected offline state")
	}
	if syncer.callCount() != 1 {
		t.Fatalf("expected only the mount sync, got %d", syncer.callCount())
	}
}

func TestSyncCoordinator_ConcurrentSyncIsNoop(t *testing.T) {
	syncer := &syncerStub{started: make(chan struct{}, 1), release: make(chan struct{})}
	toasts := &toastSinkStub{}
	c := newTestCoordinator(t, "u1", syncer, toasts)
	c.mu.Lock()
	c.mounted, c.online = true, true
	c.mu.Unlock()

	done := make(chan SyncOutcome, 1)
	go func() { done <- c.Sync(context.Background()) }()
	<-syncer.started

	if !c.State().IsSyncing {
		t.Fatalf("expected syncing state while the store call is pending")
	}
	if got := c.ForceSync(context.Background()); got != SyncOutcomeBusy {
		t.Fatalf("expected busy outcome, got %s", got)
	}

	close(syncer.release)
	if got := <-done; got != SyncOutcomeSynced {
		t.Fatalf("expected first sync to complete, got %s", got)
	}
	if syncer.callCount() != 1 {
		t.Fatalf("expected a single store call, got %d", syncer.callCount())
	}
	if toasts.count() != 1 {
		t.Fatalf("expected a single toast, got %d", toasts.count())
	}
}

func TestSyncCoordinator_FailureKeepsLastSync(t *testing.T) {
	syncer := &syncerStub{}
	toasts := &toastSinkStub{}
	metrics := &syncMetricsStub{}
	events := &eventPublisherStub{}
	c := NewSyncCoordinator("u1", syncer, toasts, events, metrics, zaptest.NewLogger(t), SyncOptions{})
	ctx := context.Background()

	c.Mount(ctx, true)
	first := c.State().LastSync
	if first == nil {
		t.Fatalf("expected last sync after first run")
	}

	syncer.mu.Lock()
	syncer.err = errors.New("unavailable")
	syncer.mu.Unlock()

	if got := c.ForceSync(ctx); got != SyncOutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", got)
	}
	state := c.State()
	if state.SyncError == nil || *state.SyncError != "unavailable" {
		t.Fatalf("expected sync error to be recorded, got %+v", state.SyncError)
	}
	if state.LastSync == nil || !state.LastSync.Equal(*first) {
		t.Fatalf("expected last sync to be unchanged on failure")
	}
	if toasts.count() != 2 || toasts.toasts[1].Type != domain.ToastError {
		t.Fatalf("expected error toast, got %+v", toasts.toasts)
	}
	if len(events.synced) != 2 || events.synced[1].Error != "unavailable" {
		t.Fatalf("expected failed sync event, got %+v", events.synced)
	}
	if len(metrics.outcomes) != 2 || metrics.outcomes[1] != string(SyncOutcomeFailed) {
		t.Fatalf("unexpected metrics %v", metrics.outcomes)
	}
}

func TestSyncRegistry_ReusesCoordinator(t *testing.T) {
	r := NewSyncRegistry(&syncerStub{}, nil, nil, nil, zaptest.NewLogger(t), SyncOptions{})
	a := r.For("u1")
	if r.For("u1") != a {
		t.Fatalf("expected same coordinator for the same user")
	}
	r.Release("u1")
	if r.For("u1") == a {
		t.Fatalf("expected fresh coordinator after release")
	}
}

func TestSyncRegistry_EvictsIdleCoordinators(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := NewSyncRegistry(&syncerStub{}, nil, nil, nil, zaptest.NewLogger(t), SyncOptions{IdleTTL: time.Hour}).
		WithClock(func() time.Time { return now })

	idle := r.For("idle")
	active := r.For("active")

	now = now.Add(40 * time.Minute)
	if r.For("active") != active {
		t.Fatalf("expected recently used coordinator to be kept")
	}

	now = now.Add(30 * time.Minute)
	if r.For("active") != active {
		t.Fatalf("expected coordinator looked up within the ttl to be kept")
	}
	if r.For("idle") == idle {
		t.Fatalf("expected coordinator idle past the ttl to be replaced")
	}
}

func TestSyncRegistry_KeepsSyncingCoordinator(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := NewSyncRegistry(&syncerStub{}, nil, nil, nil, zaptest.NewLogger(t), SyncOptions{IdleTTL: time.Hour}).
		WithClock(func() time.Time { return now })

	c := r.For("u1")
	c.mu.Lock()
	c.syncing = true
	c.mu.Unlock()

	now = now.Add(2 * time.Hour)
	r.For("other")
	if r.For("u1") != c {
		t.Fatalf("expected a coordinator that is syncing to survive eviction")
	}
}

package pushbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

const (
	// FallbackTag groups notifications that carry no intervention id.
	FallbackTag = "gestihotel-notification"

	ActionView  = "view"
	ActionClose = "close"

	dataInterventionID = "interventionId"
	dataURL            = "url"
	dataPriority       = "priority"

	outcomeShown     = "shown"
	outcomeDiscarded = "discarded"
	outcomeClicked   = "clicked"
	outcomeClosed    = "closed"

	shownCacheTTL = 24 * time.Hour
)

var (
	urgentVibration  = []int{200, 100, 200}
	defaultVibration = []int{100}
)

// Notifier renders and dismisses OS-level notifications on the recipient's devices.
type Notifier interface {
	ShowNotification(ctx context.Context, notification domain.Notification) error
	CloseNotification(ctx context.Context, userID, tag string) error
}

// Clients enumerates and drives the open application windows of one user.
type Clients interface {
	MatchAll(ctx context.Context, userID string) ([]domain.ClientWindow, error)
	Focus(ctx context.Context, windowID string) error
	Navigate(ctx context.Context, windowID, target string) error
	OpenWindow(ctx context.Context, userID, target string) error
}

// CacheStore keeps named groups of cached resources.
type CacheStore interface {
	Put(ctx context.Context, group, name string, value []byte, ttl time.Duration) error
	Groups(ctx context.Context, prefix string) ([]string, error)
	DeleteGroup(ctx context.Context, group string) (int64, error)
}

// Metrics counts notification outcomes.
type Metrics interface {
	ObserveNotification(outcome string)
}

// Options carries the static presentation and cache settings of a bridge deployment.
type Options struct {
	AppName      string
	Icon         string
	Badge        string
	Origin       string
	CachePrefix  string
	CacheVersion string
}

// Bridge turns push messages into notifications and routes notification clicks to windows.
type Bridge struct {
	notifier Notifier
	clients  Clients
	cache    CacheStore
	metrics  Metrics
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
}

// New constructs a Bridge. cache and metrics may be nil.
func New(notifier Notifier, clients Clients, cache CacheStore, metrics Metrics, logger *zap.Logger, opts Options) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.AppName == "" {
		opts.AppName = "GestiHôtel"
	}
	return &Bridge{
		notifier: notifier,
		clients:  clients,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// CacheGroup is the name of the cache group owned by the running version.
func (b *Bridge) CacheGroup() string {
	return b.opts.CachePrefix + "-" + b.opts.CacheVersion
}

// BuildNotification renders a push message. It reports false when the message has no notification section.
func (b *Bridge) BuildNotification(msg domain.PushMessage) (domain.Notification, bool) {
	if msg.Notification == nil {
		return domain.Notification{}, false
	}

	title := msg.Notification.Title
	if title == "" {
		title = b.opts.AppName
	}
	icon := msg.Notification.Icon
	if icon == "" {
		icon = b.opts.Icon
	}

	n := domain.Notification{
		UserID:  msg.UserID,
		Title:   title,
		Body:    msg.Notification.Body,
		Icon:    icon,
		Badge:   b.opts.Badge,
		Vibrate: defaultVibration,
		Actions: []domain.NotificationAction{
			{Action: ActionView, Title: "Voir"},
			{Action: ActionClose, Title: "Fermer"},
		},
		Data:      msg.Data,
		Timestamp: b.now().UTC(),
	}

	if id := msg.Data[dataInterventionID]; id != "" {
		n.Tag = "intervention-" + id
	} else {
		// Untagged notifications share one slot; renotify so a replacement still alerts.
		n.Tag = FallbackTag
		n.Renotify = true
	}
	n.ID = n.Tag

	if msg.Data[dataPriority] == string(domain.PriorityUrgent) {
		n.RequireInteraction = true
		n.Vibrate = urgentVibration
	}
	return n, true
}

// HandlePush displays the notification carried by msg on the recipient's devices.
// Messages without a recipient or without a notification are dropped.
func (b *Bridge) HandlePush(ctx context.Context, msg domain.PushMessage) error {
	if msg.UserID == "" {
		b.logger.Debug("discard push message without recipient")
		b.observe(outcomeDiscarded)
		return nil
	}
	n, ok := b.BuildNotification(msg)
	if !ok {
		b.logger.Debug("discard push message without notification", zap.Int("data_keys", len(msg.Data)))
		b.observe(outcomeDiscarded)
		return nil
	}

	if err := b.notifier.ShowNotification(ctx, n); err != nil {
		return fmt.Errorf("show notification %s: %w", n.Tag, err)
	}
	b.observe(outcomeShown)
	b.remember(ctx, n)

	b.logger.Info("notification shown",
		zap.String("user_id", n.UserID),
		zap.String("tag", n.Tag),
		zap.Bool("require_interaction", n.RequireInteraction),
	)
	return nil
}

// HandleNotificationEvent dispatches a device interaction to the click or close handler.
func (b *Bridge) HandleNotificationEvent(ctx context.Context, event domain.NotificationEvent) error {
	switch event.Kind {
	case domain.NotificationEventClick:
		return b.HandleClick(ctx, event)
	case domain.NotificationEventClose:
		return b.HandleClose(ctx, event)
	default:
		b.logger.Debug("discard unknown notification event", zap.String("kind", string(event.Kind)))
		return nil
	}
}

// HandleClick dismisses the notification and brings one of the recipient's windows to its deep link.
// Windows of other users are never touched.
func (b *Bridge) HandleClick(ctx context.Context, event domain.NotificationEvent) error {
	userID := event.UserID
	if userID == "" {
		userID = event.Notification.UserID
	}
	if userID == "" {
		b.logger.Debug("discard click without recipient", zap.String("tag", event.Notification.Tag))
		return nil
	}
	b.observe(outcomeClicked)

	if err := b.notifier.CloseNotification(ctx, userID, event.Notification.Tag); err != nil {
		b.logger.Warn("failed to dismiss notification", zap.String("tag", event.Notification.Tag), zap.Error(err))
	}
	if event.Action == ActionClose {
		return nil
	}

	target := TargetURL(event.Notification.Data)

	windows, err := b.clients.MatchAll(ctx, userID)
	if err != nil {
		b.logger.Warn("failed to enumerate windows", zap.Error(err))
		windows = nil
	}

	for _, w := range windows {
		if w.UserID != userID || !b.sameOrigin(w.URL) {
			continue
		}
		if err := b.clients.Focus(ctx, w.ID); err != nil {
			b.logger.Warn("failed to focus window", zap.String("window_id", w.ID), zap.Error(err))
			continue
		}
		if err := b.clients.Navigate(ctx, w.ID, target); err != nil {
			b.logger.Warn("in-place navigation failed", zap.String("window_id", w.ID), zap.String("target", target), zap.Error(err))
		}
		return nil
	}

	if err := b.clients.OpenWindow(ctx, userID, target); err != nil {
		return fmt.Errorf("open window at %s: %w", target, err)
	}
	return nil
}

// HandleInterventionAssigned notifies every assignee of an intervention except the user who assigned it.
func (b *Bridge) HandleInterventionAssigned(ctx context.Context, event domain.InterventionAssignedEvent) error {
	body := event.MissionSummary
	if body == "" {
		body = "Une intervention vous a été assignée"
	}

	var errs []error
	seen := make(map[string]struct{}, len(event.AssigneeIDs))
	for _, userID := range event.AssigneeIDs {
		if userID == "" || userID == event.AssignedBy {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		msg := domain.PushMessage{
			UserID: userID,
			Notification: &domain.PushNotificationPayload{
				Title: "Nouvelle intervention assignée",
				Body:  body,
			},
			Data: map[string]string{
				dataInterventionID: event.InterventionID,
				dataPriority:       string(event.Priority),
			},
		}
		if err := b.HandlePush(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify assignee %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

// HandleClose records a dismissed notification.
func (b *Bridge) HandleClose(_ context.Context, event domain.NotificationEvent) error {
	b.observe(outcomeClosed)
	b.logger.Info("notification closed", zap.String("tag", event.Notification.Tag))
	return nil
}

// Activate removes cache groups left behind by previous bridge versions.
func (b *Bridge) Activate(ctx context.Context) error {
	if b.cache == nil || b.opts.CachePrefix == "" {
		return nil
	}

	// Only "<prefix>-<version>" groups belong to the bridge; other keys under the prefix do not.
	convention := b.opts.CachePrefix + "-"
	groups, err := b.cache.Groups(ctx, convention)
	if err != nil {
		return fmt.Errorf("list cache groups: %w", err)
	}

	current := b.CacheGroup()
	for _, group := range groups {
		if group == current || !strings.HasPrefix(group, convention) {
			continue
		}
		deleted, err := b.cache.DeleteGroup(ctx, group)
		if err != nil {
			return fmt.Errorf("delete cache group %s: %w", group, err)
		}
		b.logger.Info("stale cache group deleted", zap.String("group", group), zap.Int64("keys", deleted))
	}
	return nil
}

// TargetURL computes the in-app deep link for notification data.
func TargetURL(data map[string]string) string {
	if id := data[dataInterventionID]; id != "" {
		return "/?intervention=" + url.QueryEscape(id)
	}
	if u := data[dataURL]; u != "" {
		return u
	}
	return "/"
}

func (b *Bridge) sameOrigin(raw string) bool {
	if b.opts.Origin == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	origin, err := url.Parse(b.opts.Origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, origin.Scheme) && strings.EqualFold(u.Host, origin.Host)
}

func (b *Bridge) remember(ctx context.Context, n domain.Notification) {
	if b.cache == nil || b.opts.CachePrefix == "" {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := b.cache.Put(ctx, b.CacheGroup(), "notification:"+n.UserID+":"+n.Tag, payload, shownCacheTTL); err != nil {
		b.logger.Warn("failed to cache notification", zap.String("tag", n.Tag), zap.Error(err))
	}
}

func (b *Bridge) observe(outcome string) {
	if b.metrics != nil {
		b.metrics.ObserveNotification(outcome)
	}
}

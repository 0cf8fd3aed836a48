package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/notify"
	"CampusResponseAPI/internal/repository"
	"CampusResponseAPI/internal/websocket"
)

// FeedSink receives the fresh snapshot after every change-driven reload.
// Satisfied by the websocket hub.
type FeedSink interface {
	Broadcast(msgType string, payload interface{})
}

// FeedSnapshot is the staff-visible view: the loaded set partitioned by
// status. Pending and completed are disjoint and together cover every
// loaded alert.
type FeedSnapshot struct {
	Filter    string         `json:"filter"`
	Pending   []models.Alert `json:"pending"`
	Completed []models.Alert `json:"completed"`
	LoadedAt  time.Time      `json:"loaded_at"`
}

// Feed maintains the in-memory ordered view of alerts for staff. The store
// stays the single source of truth: the feed never patches its view from a
// notification payload, it refetches. One live subscription per instance.
type Feed struct {
	repo     repository.IAlertRepository
	notifier *notify.Notifier
	sink     FeedSink
	log      *logger.Logger

	mu         sync.Mutex
	filter     string
	alerts     []models.Alert
	handle     notify.Handle
	subscribed bool
}

func NewFeed(repo repository.IAlertRepository, notifier *notify.Notifier, sink FeedSink, log *logger.Logger) *Feed {
	return &Feed{
		repo:     repo,
		notifier: notifier,
		sink:     sink,
		log:      log,
		filter:   models.FilterAll,
	}
}

// Load refetches the view with the current filter, newest first, each alert
// joined to its submitter. On failure the view empties rather than retaining
// a stale set presented as fresh.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	filter := f.filter
	f.mu.Unlock()

	alerts, err := f.repo.List(ctx, filter)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.alerts = nil
		return &models.PersistenceError{Op: "load feed", Err: err}
	}

	f.alerts = alerts
	return nil
}

// SetFilter changes the predicate used by subsequent loads. It does not
// touch the live subscription.
func (f *Feed) SetFilter(filter string) error {
	if filter != models.FilterAll && !models.ValidAlertType(filter) {
		return fmt.Errorf("unknown feed filter %q", filter)
	}

	f.mu.Lock()
	f.filter = filter
	f.mu.Unlock()
	return nil
}

// Filter returns the current display filter.
func (f *Feed) Filter() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

// Subscribe opens the live channel on the alert table. Any row-level change
// triggers a full reload with the current filter, then a snapshot broadcast.
// Subscribing an already-subscribed feed keeps the existing channel.
func (f *Feed) Subscribe() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subscribed {
		return
	}

	f.handle = f.notifier.Subscribe(repository.TableAlerts, f.refresh)
	f.subscribed = true
}

// Unsubscribe releases the live channel. Idempotent; must be called when the
// feed's owner is torn down, or the channel leaks for the process lifetime.
func (f *Feed) Unsubscribe() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.subscribed {
		return
	}

	f.notifier.Unsubscribe(f.handle)
	f.handle = notify.Handle{}
	f.subscribed = false
}

// refresh is the change-notification callback: coarse invalidate-and-
// refetch, never incremental patching. Coalesced signals are fine because
// every refetch reads the current consistent state.
func (f *Feed) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := f.Load(ctx); err != nil {
		f.log.Error("Feed refresh failed: %v", err)
		return
	}

	if f.sink != nil {
		f.sink.Broadcast(websocket.TypeFeedSnapshot, f.Snapshot())
	}
}

// Snapshot partitions the loaded set by status.
func (f *Feed) Snapshot() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := FeedSnapshot{
		Filter:    f.filter,
		Pending:   []models.Alert{},
		Completed: []models.Alert{},
		LoadedAt:  time.Now(),
	}

	for _, a := range f.alerts {
		if a.Status == models.StatusCompleted {
			snap.Completed = append(snap.Completed, a)
		} else {
			snap.Pending = append(snap.Pending, a)
		}
	}

	return snap
}

// Alerts returns a copy of the loaded set in feed order.
func (f *Feed) Alerts() []models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Alert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Notifier is a table-keyed change feed. Subscribers register a callback
// against a table name and receive a payload-free "something changed" signal
// after every committed mutation on that table. Signals carry no row data;
// subscribers are expected to refetch.
type Notifier struct {
	mu   sync.RWMutex
	subs map[string]map[string]*subscription
	wg   sync.WaitGroup
}

type subscription struct {
	table  string
	signal chan struct{}
	done   chan struct{}
}

// Handle identifies one active subscription.
type Handle struct {
	id    string
	table string
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[string]map[string]*subscription),
	}
}

// Subscribe registers fn against table. Each subscription runs its own
// delivery goroutine; back-to-back signals coalesce, so fn observes
// at-least-one invocation per mutation rather than exactly one.
func (n *Notifier) Subscribe(table string, fn func()) Handle {
	sub := &subscription{
		table:  table,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	id := uuid.NewString()

	n.mu.Lock()
	if n.subs[table] == nil {
		n.subs[table] = make(map[string]*subscription)
	}
	n.subs[table][id] = sub
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			select {
			case <-sub.done:
				return
			case <-sub.signal:
				fn()
			}
		}
	}()

	return Handle{id: id, table: table}
}

// Unsubscribe releases the subscription. Safe to call more than once and
// with a zero handle.
func (n *Notifier) Unsubscribe(h Handle) {
	if h.id == "" {
		return
	}

	n.mu.Lock()
	sub, ok := n.subs[h.table][h.id]
	if ok {
		delete(n.subs[h.table], h.id)
		close(sub.done)
	}
	n.mu.Unlock()
}

// Publish signals every subscriber of table. Never blocks: a subscriber with
// a pending signal simply coalesces.
func (n *Notifier) Publish(table string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, sub := range n.subs[table] {
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount reports the active subscriptions on table.
func (n *Notifier) SubscriberCount(table string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[table])
}

// Close tears down every subscription and waits for delivery goroutines to
// exit.
func (n *Notifier) Close() {
	n.mu.Lock()
	for table, subs := range n.subs {
		for id, sub := range subs {
			close(sub.done)
			delete(subs, id)
		}
		delete(n.subs, table)
	}
	n.mu.Unlock()

	n.wg.Wait()
}

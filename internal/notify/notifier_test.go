package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := NewNotifier()
	defer n.Close()

	h := n.Subscribe("alerts", func() {})
	if n.SubscriberCount("alerts") != 1 {
		t.Errorf("expected 1 subscriber, got %d", n.SubscriberCount("alerts"))
	}

	n.Unsubscribe(h)
	if n.SubscriberCount("alerts") != 0 {
		t.Errorf("expected 0 subscribers, got %d", n.SubscriberCount("alerts"))
	}

	// Unsubscribing again must be harmless.
	n.Unsubscribe(h)
	n.Unsubscribe(Handle{})
}

func TestNotifier_PublishDelivers(t *testing.T) {
	n := NewNotifier()
	defer n.Close()

	called := make(chan struct{}, 1)
	h := n.Subscribe("alerts", func() {
		select {
		case called <- struct{}{}:
		default:
		}
	})
	defer n.Unsubscribe(h)

	n.Publish("alerts")

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestNotifier_TableIsolation(t *testing.T) {
	n := NewNotifier()
	defer n.Close()

	var count atomic.Int32
	h := n.Subscribe("profiles", func() { count.Add(1) })
	defer n.Unsubscribe(h)

	n.Publish("alerts")
	time.Sleep(50 * time.Millisecond)

	if count.Load() != 0 {
		t.Errorf("profiles subscriber saw %d alerts notifications", count.Load())
	}
}

func TestNotifier_CoalescesBursts(t *testing.T) {
	n := NewNotifier()
	defer n.Close()

	var count atomic.Int32
	release := make(chan struct{})
	h := n.Subscribe("alerts", func() {
		count.Add(1)
		<-release
	})
	defer n.Unsubscribe(h)

	// First publish occupies the callback; the rest land while it is busy
	// and must collapse into at most one more delivery.
	for i := 0; i < 10; i++ {
		n.Publish("alerts")
	}
	close(release)
	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got < 1 || got > 2 {
		t.Errorf("expected 1-2 coalesced deliveries, got %d", got)
	}
}

func TestNotifier_PublishNeverBlocks(t *testing.T) {
	n := NewNotifier()
	defer n.Close()

	// Subscriber stuck in its callback until the test releases it.
	block := make(chan struct{})
	h := n.Subscribe("alerts", func() {
		<-block
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			n.Publish("alerts")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stuck subscriber")
	}

	close(block)
	n.Unsubscribe(h)
}

func TestNotifier_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	n := NewNotifier()
	defer n.Close()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := n.Subscribe("alerts", func() {})
			n.Publish("alerts")
			n.Unsubscribe(h)
		}()
	}

	wg.Wait()

	if n.SubscriberCount("alerts") != 0 {
		t.Errorf("expected 0 subscribers after cleanup, got %d", n.SubscriberCount("alerts"))
	}
}

func TestNotifier_Close(t *testing.T) {
	n := NewNotifier()

	for i := 0; i < 5; i++ {
		n.Subscribe("alerts", func() {})
	}
	n.Subscribe("profiles", func() {})

	n.Close()

	if n.SubscriberCount("alerts") != 0 || n.SubscriberCount("profiles") != 0 {
		t.Error("expected all subscriptions released after Close")
	}
}

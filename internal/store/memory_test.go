package store

import (
	"sync"
	"testing"
	"time"
)

func sample(metric int64) Sample {
	return Sample{
		Label:     "Sold seats",
		Target:    "Box Office",
		URL:       "https://example.com/seats",
		Metric:    metric,
		CheckedAt: time.Now(),
	}
}

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore(10)
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	// should start empty
	if _, ok := store.Latest(); ok {
		t.Error("Latest() should report no sample before the first update")
	}
	if len(store.History()) != 0 {
		t.Errorf("History() = %v items, want 0", len(store.History()))
	}
}

func TestNewMemoryStore_DefaultCap(t *testing.T) {
	store := NewMemoryStore(0)
	if store.cap != DefaultHistoryCap {
		t.Errorf("cap = %v, want %v", store.cap, DefaultHistoryCap)
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore(10)

	store.Update(sample(5))

	latest, ok := store.Latest()
	if !ok {
		t.Fatal("Latest() should report a sample after Update")
	}
	if latest.Metric != 5 {
		t.Errorf("Latest().Metric = %v, want 5", latest.Metric)
	}
	if latest.Target != "Box Office" {
		t.Errorf("Latest().Target = %v, want %v", latest.Target, "Box Office")
	}

	history := store.History()
	if len(history) != 1 {
		t.Fatalf("History() = %v items, want 1", len(history))
	}
}

func TestMemoryStore_LatestOverwrites(t *testing.T) {
	store := NewMemoryStore(10)

	store.Update(sample(3))
	store.Update(sample(5))

	latest, _ := store.Latest()
	if latest.Metric != 5 {
		t.Errorf("Latest().Metric = %v, want 5", latest.Metric)
	}
}

func TestMemoryStore_HistoryOrder(t *testing.T) {
	store := NewMemoryStore(10)

	store.Update(sample(1))
	store.Update(sample(2))
	store.Update(sample(3))

	history := store.History()
	if len(history) != 3 {
		t.Fatalf("History() = %v items, want 3", len(history))
	}
	for i, want := range []int64{1, 2, 3} {
		if history[i].Metric != want {
			t.Errorf("History()[%d].Metric = %v, want %v", i, history[i].Metric, want)
		}
	}
}

func TestMemoryStore_HistoryEviction(t *testing.T) {
	store := NewMemoryStore(3)

	for i := int64(1); i <= 5; i++ {
		store.Update(sample(i))
	}

	history := store.History()
	if len(history) != 3 {
		t.Fatalf("History() = %v items, want 3", len(history))
	}

	// oldest entries evicted, newest kept in order
	for i, want := range []int64{3, 4, 5} {
		if history[i].Metric != want {
			t.Errorf("History()[%d].Metric = %v, want %v", i, history[i].Metric, want)
		}
	}
}

func TestMemoryStore_HistoryIsSnapshot(t *testing.T) {
	store := NewMemoryStore(10)
	store.Update(sample(1))

	history := store.History()
	history[0].Metric = 99

	fresh := store.History()
	if fresh[0].Metric != 1 {
		t.Errorf("History()[0].Metric = %v after mutating a snapshot, want 1", fresh[0].Metric)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore(10)

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	// update should send to subscriber
	go func() {
		store.Update(sample(7))
	}()

	select {
	case s := <-ch:
		if s.Metric != 7 {
			t.Errorf("received Metric = %v, want 7", s.Metric)
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore(10)

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	// update should fanout to all subscribers
	go func() {
		store.Update(sample(1))
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore(10)

	ch := store.Subscribe()
	store.Unsubscribe(ch)

	// channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_UnsubscribeStopsDelivery(t *testing.T) {
	store := NewMemoryStore(10)

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()

	// unsubscribe ch1
	store.Unsubscribe(ch1)

	// update should only go to ch2
	go func() {
		store.Update(sample(1))
	}()

	select {
	case <-ch2:
		// expected
	case <-time.After(1 * time.Second):
		t.Error("ch2 should still receive updates")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore(10)

	// create a subscriber but don't read from it
	_ = store.Subscribe()

	// create another subscriber that reads
	ch2 := store.Subscribe()

	done := make(chan bool)

	go func() {
		// this should not block even though ch1 is not being read
		for i := 0; i < 200; i++ {
			store.Update(sample(int64(i)))
		}
		done <- true
	}()

	// drain ch2
	go func() {
		for range ch2 {
		}
	}()

	select {
	case <-done:
		// expected - updates completed without blocking
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(50)

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	// concurrent updates
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.Update(sample(int64(id*numUpdates + j)))
			}
		}(i)
	}

	// concurrent reads
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_, _ = store.Latest()
				_ = store.History()
			}
		}()
	}

	// concurrent subscribe/unsubscribe
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	if len(store.History()) != 50 {
		t.Errorf("History() = %v items after %v updates, want cap 50",
			len(store.History()), numGoroutines*numUpdates)
	}
}

func TestMemoryStore_ErrorSample(t *testing.T) {
	store := NewMemoryStore(10)

	msg := "request failed: connection refused"
	s := sample(0)
	s.Error = &msg
	store.Update(s)

	latest, ok := store.Latest()
	if !ok {
		t.Fatal("Latest() should report a sample after a failed cycle")
	}
	if latest.Error == nil {
		t.Fatal("Latest().Error = nil, want failure message")
	}
	if *latest.Error != msg {
		t.Errorf("Latest().Error = %v, want %v", *latest.Error, msg)
	}
}

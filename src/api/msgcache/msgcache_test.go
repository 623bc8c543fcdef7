package msgcache

import (
	"sync"
	"testing"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

func TestObserveReportsDuplicates(t *testing.T) {
	c := New(8)
	id := messaging.NewMessageID()

	if c.Observe(id) {
		t.Fatal("first Observe reported a duplicate")
	}
	if !c.Observe(id) {
		t.Fatal("second Observe missed the duplicate")
	}
	if !c.Contains(id) {
		t.Fatal("Contains missed an observed id")
	}
	if c.Contains(messaging.NewMessageID()) {
		t.Fatal("Contains reported an unseen id")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestEvictsOldestFirst(t *testing.T) {
	const capacity = 4
	c := New(capacity)
	ids := make([]messaging.MessageID, capacity+2)
	for i := range ids {
		ids[i] = messaging.NewMessageID()
		c.Observe(ids[i])
	}

	if c.Len() != capacity {
		t.Fatalf("Len = %d, want %d", c.Len(), capacity)
	}
	for i, id := range ids {
		want := i >= len(ids)-capacity
		if got := c.Contains(id); got != want {
			t.Errorf("Contains(ids[%d]) = %v, want %v", i, got, want)
		}
	}
	if c.Observe(ids[0]) {
		t.Fatal("evicted id still reported as seen")
	}
}

func TestStaleCopiesAreCountedNotDropped(t *testing.T) {
	c := New(2)
	first := messaging.NewMessageID()
	c.Observe(first)
	c.Observe(messaging.NewMessageID())
	c.Observe(messaging.NewMessageID())

	if c.Contains(first) {
		t.Fatal("first id should have left the window")
	}
	if c.Observe(first) {
		t.Fatal("an id outside the window was reported as a duplicate")
	}
	if got := c.Stale(); got != 1 {
		t.Fatalf("Stale = %d, want 1", got)
	}
	if !c.Observe(first) {
		t.Fatal("re-observed id is back in the window")
	}
	if got := c.Stale(); got != 1 {
		t.Fatalf("Stale = %d after an in-window duplicate, want 1", got)
	}
}

func TestHistoryRollsOver(t *testing.T) {
	c := New(1)
	var last messaging.MessageID
	for i := 0; i < 10*historyFactor; i++ {
		last = messaging.NewMessageID()
		if c.Observe(last) {
			t.Fatalf("fresh id %d reported as a duplicate", i)
		}
	}
	if c.Len() != 1 || !c.Contains(last) {
		t.Fatalf("window lost the newest id: len %d", c.Len())
	}
	if c.history.Count() > c.historyLimit {
		t.Fatalf("history holds %d ids, limit %d", c.history.Count(), c.historyLimit)
	}
}

func TestDefaultCapacity(t *testing.T) {
	c := New(0)
	if c.capacity != DefaultCapacity {
		t.Fatalf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
}

func TestConcurrentObserve(t *testing.T) {
	c := New(1024)
	id := messaging.NewMessageID()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.Observe(id) {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if fresh != 1 {
		t.Fatalf("%d goroutines saw the id first, want 1", fresh)
	}
}

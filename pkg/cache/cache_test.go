package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCacheGetHitMissStaleRefresh(t *testing.T) {
	c := New(Options{TTL: 20 * time.Millisecond, StaleWhileRevalidate: 50 * time.Millisecond, MaxEntries: 10}, MetricsHooks{})

	var mu sync.Mutex
	callCount := 0
	refreshCalled := make(chan struct{}, 1)
	loader := func(_ context.Context, _ string) (interface{}, bool, error) {
		mu.Lock()
		callCount++
		count := callCount
		mu.Unlock()
		if count == 2 {
			refreshCalled <- struct{}{}
		}
		return count, true, nil
	}

	val, ok, err := c.Get(context.Background(), "profile:3621", loader)
	if err != nil || !ok || val.(int) != 1 {
		t.Fatalf("expected first load, got %v %v %v", val, ok, err)
	}

	val, ok, err = c.Get(context.Background(), "profile:3621", loader)
	if err != nil || !ok || val.(int) != 1 {
		t.Fatalf("expected cache hit, got %v %v %v", val, ok, err)
	}

	time.Sleep(25 * time.Millisecond)
	val, ok, err = c.Get(context.Background(), "profile:3621", loader)
	if err != nil || !ok || val.(int) != 1 {
		t.Fatalf("expected stale value, got %v %v %v", val, ok, err)
	}

	select {
	case <-refreshCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected background refresh to run")
	}

	time.Sleep(10 * time.Millisecond)
	val, ok = c.Peek("profile:3621")
	if !ok || val.(int) != 2 {
		t.Fatalf("expected refreshed value, got %v %v", val, ok)
	}
}

func TestCacheNegativeTTL(t *testing.T) {
	c := New(Options{TTL: 50 * time.Millisecond, NegativeTTL: 30 * time.Millisecond, MaxEntries: 10}, MetricsHooks{})

	var mu sync.Mutex
	callCount := 0
	loadErr := errors.New("identity not found")
	loader := func(_ context.Context, _ string) (interface{}, bool, error) {
		mu.Lock()
		callCount++
		mu.Unlock()
		return nil, false, loadErr
	}

	_, ok, err := c.Get(context.Background(), "profile:999999", loader)
	if ok || !errors.Is(err, loadErr) {
		t.Fatalf("expected load failure, got ok=%v err=%v", ok, err)
	}

	_, ok, err = c.Get(context.Background(), "profile:999999", loader)
	if ok || !errors.Is(err, loadErr) {
		t.Fatalf("expected cached negative, got ok=%v err=%v", ok, err)
	}

	mu.Lock()
	count := callCount
	mu.Unlock()
	if count != 1 {
		t.Fatalf("expected single load with negative caching, got %d", count)
	}
}

func TestCacheSingleflightDedupe(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 10}, MetricsHooks{})

	var mu sync.Mutex
	callCount := 0
	release := make(chan struct{})
	loader := func(_ context.Context, _ string) (interface{}, bool, error) {
		mu.Lock()
		callCount++
		mu.Unlock()
		<-release
		return "profile", true, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.Get(context.Background(), "profile:194", loader)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if callCount != 1 {
		t.Fatalf("expected concurrent gets to share one load, got %d", callCount)
	}
}

func TestCacheEviction(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 2}, MetricsHooks{})

	c.store("a", 1, true, nil)
	c.store("b", 2, true, nil)
	c.store("c", 3, true, nil)

	if _, ok := c.Peek("a"); ok {
		t.Fatal("expected oldest entry evicted")
	}
	if _, ok := c.Peek("c"); !ok {
		t.Fatal("expected newest entry retained")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 10}, MetricsHooks{})
	c.store("profile:1", "cached", true, nil)
	c.Delete("profile:1")
	if _, ok := c.Peek("profile:1"); ok {
		t.Fatal("expected entry removed")
	}
}

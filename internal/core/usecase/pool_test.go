package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
)

type callCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *callCounter) hit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[id]++
}

func TestRunPoolReturnsEverySuccessExactlyOnce(t *testing.T) {
	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, fmt.Sprintf("doc-%02d", i))
	}

	for _, workers := range []int{1, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			counter := &callCounter{calls: map[string]int{}}
			results := RunPool(context.Background(), ids, workers, func(_ context.Context, id string) (string, bool) {
				counter.hit(id)
				var n int
				fmt.Sscanf(id, "doc-%d", &n)
				if n%3 == 0 {
					return "", false
				}
				return id, true
			})

			if len(results) != 33 {
				t.Fatalf("expected 33 results, got %d", len(results))
			}
			seen := map[string]bool{}
			for _, r := range results {
				if seen[r] {
					t.Fatalf("duplicate result %s", r)
				}
				seen[r] = true
			}
			for _, id := range ids {
				if counter.calls[id] != 1 {
					t.Fatalf("expected exactly one call for %s, got %d", id, counter.calls[id])
				}
			}
			if !sort.StringsAreSorted(results) {
				t.Fatalf("expected results in input order, got %v", results)
			}
		})
	}
}

func TestRunPoolTreatsPanicAsAbsent(t *testing.T) {
	ids := []string{"a", "boom", "c"}
	results := RunPool(context.Background(), ids, 2, func(_ context.Context, id string) (string, bool) {
		if id == "boom" {
			panic("malformed")
		}
		return id, true
	})
	if len(results) != 2 || results[0] != "a" || results[1] != "c" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestRunPoolStopsDispatchingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ids := []string{"a", "b", "c", "d"}

	var mu sync.Mutex
	var called []string
	results := RunPool(ctx, ids, 1, func(workCtx context.Context, id string) (string, bool) {
		mu.Lock()
		called = append(called, id)
		mu.Unlock()
		if id == "a" {
			cancel()
		}
		if workCtx.Err() != nil {
			t.Errorf("in-flight call for %s saw a cancelled context", id)
		}
		return id, true
	})

	if len(called) == 0 || called[0] != "a" {
		t.Fatalf("expected first input to run, got %v", called)
	}
	if len(called) == len(ids) {
		t.Fatalf("expected dispatch to stop after cancel, all inputs ran")
	}
	if len(results) != len(called) {
		t.Fatalf("expected every started call to be collected, got %d of %d", len(results), len(called))
	}
}

func TestRunPoolEmptyInput(t *testing.T) {
	results := RunPool(context.Background(), []string{}, 0, func(context.Context, string) (int, bool) {
		t.Fatalf("worker must not be called")
		return 0, false
	})
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

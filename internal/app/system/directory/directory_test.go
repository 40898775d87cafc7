package directory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/directory"
)

var fixture = []directory.Business{
	{Name: "Mid-Mo Plumbing", Address: "Columbia, MO", Category: "plumbing"},
	{Name: "Tiger Town Electric", Address: "Columbia, MO", Category: "electrician"},
	{Name: "STL Drain Pros", Address: "St. Louis, MO", Category: "plumbing"},
}

func TestStatic_FiltersByTerm(t *testing.T) {
	c := &directory.Static{Businesses: fixture}

	got, err := c.Search(context.Background(), directory.Query{Term: "plumb", MaxResults: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	for _, b := range got {
		if b.Category != "plumbing" {
			t.Errorf("unexpected result %q", b.Name)
		}
	}
}

func TestStatic_FiltersByLocation(t *testing.T) {
	c := &directory.Static{Businesses: fixture}

	got, err := c.Search(context.Background(), directory.Query{
		Term: "plumb", Location: "columbia", MaxResults: 10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Mid-Mo Plumbing" {
		t.Errorf("got %v, want only Mid-Mo Plumbing", got)
	}
}

func TestStatic_TruncatesToMaxResults(t *testing.T) {
	c := &directory.Static{Businesses: fixture}

	got, err := c.Search(context.Background(), directory.Query{MaxResults: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}

func TestStatic_HonorsCancelledContext(t *testing.T) {
	c := &directory.Static{Businesses: fixture}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Search(ctx, directory.Query{MaxResults: 1}); err == nil {
		t.Error("expected error from cancelled context")
	}
}

// flaky fails a fixed number of times before succeeding.
type flaky struct {
	failures int
	calls    int
}

func (f *flaky) Search(ctx context.Context, q directory.Query) ([]directory.Business, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream unavailable")
	}
	return []directory.Business{{Name: "ok"}}, nil
}

func TestWithRetry_RecoversFromTransientFailure(t *testing.T) {
	inner := &flaky{failures: 2}
	c := directory.WithRetry(inner, 3, time.Millisecond)

	got, err := c.Search(context.Background(), directory.Query{MaxResults: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || inner.calls != 3 {
		t.Errorf("got %d results after %d calls, want 1 result after 3 calls", len(got), inner.calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	inner := &flaky{failures: 10}
	c := directory.WithRetry(inner, 3, time.Millisecond)

	if _, err := c.Search(context.Background(), directory.Query{MaxResults: 1}); err == nil {
		t.Fatal("expected error once attempts are exhausted")
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want 3", inner.calls)
	}
}

func TestWithRetry_StopsOnCancelledContext(t *testing.T) {
	inner := &flaky{failures: 10}
	c := directory.WithRetry(inner, 5, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Search(ctx, directory.Query{MaxResults: 1}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline error, got %v", err)
	}
	if inner.calls >= 5 {
		t.Errorf("retries continued past cancellation: %d calls", inner.calls)
	}
}

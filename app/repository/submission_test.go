package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crumble-bakery/signup-service/app/repository"
)

const (
	testKeyPrefix      = "crumbleBakery"
	testSubmissionsKey = "crumbleBakery_emailSubmissions"
	testRateLimitKey   = "crumbleBakery_rateLimiting"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*repository.SubmissionStore, *repository.MemoryKV, *fakeClock) {
	t.Helper()

	kv := repository.NewMemoryKV()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := repository.NewSubmissionStore(kv, testKeyPrefix, 5*time.Minute, 3, repository.WithNow(clock.Now))
	return store, kv, clock
}

// failingKV simulates an unavailable storage backend.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("storage unavailable")
}

func (failingKV) Delete(context.Context, string) error {
	return errors.New("storage unavailable")
}

func (failingKV) Close() error { return nil }

func TestWasSubmittedNormalizes(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	store.RecordSubmission(ctx, "  User@Example.COM ")

	if !store.WasSubmitted(ctx, "user@example.com") {
		t.Fatal("expected lower-cased email to match")
	}
	if !store.WasSubmitted(ctx, "USER@EXAMPLE.COM") {
		t.Fatal("expected upper-cased lookup to match")
	}
	if store.WasSubmitted(ctx, "other@example.com") {
		t.Fatal("did not expect unrelated email to match")
	}
}

func TestWasSubmittedIdempotent(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	first := store.WasSubmitted(ctx, "someone@example.com")
	second := store.WasSubmitted(ctx, "someone@example.com")
	if first != second {
		t.Fatalf("expected identical results, got %v then %v", first, second)
	}
}

func TestRecordSubmissionPersistsLowerCased(t *testing.T) {
	store, kv, _ := newTestStore(t)
	ctx := context.Background()

	store.RecordSubmission(ctx, "First@Example.com")
	store.RecordSubmission(ctx, "second@example.com")
	store.RecordSubmission(ctx, "FIRST@example.com") // duplicate after normalization

	value, ok, err := kv.Get(ctx, testSubmissionsKey)
	if err != nil || !ok {
		t.Fatalf("expected submissions entry, ok=%v err=%v", ok, err)
	}
	if value != `["first@example.com","second@example.com"]` {
		t.Fatalf("unexpected stored submissions: %s", value)
	}

	submissions := store.Submissions(ctx)
	if len(submissions) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(submissions))
	}
	if submissions[0].Email != "first@example.com" || submissions[0].Position != 1 {
		t.Errorf("unexpected first submission: %+v", submissions[0])
	}
	if submissions[1].Email != "second@example.com" || submissions[1].Position != 2 {
		t.Errorf("unexpected second submission: %+v", submissions[1])
	}
}

func TestRateLimitAfterMaxAttempts(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	if store.IsRateLimited(ctx) {
		t.Fatal("fresh store must not be rate limited")
	}

	store.RecordAttempt(ctx)
	store.RecordAttempt(ctx)
	if store.IsRateLimited(ctx) {
		t.Fatal("two attempts must not trigger the limit")
	}

	store.RecordAttempt(ctx)
	if !store.IsRateLimited(ctx) {
		t.Fatal("three attempts within the window must trigger the limit")
	}
}

func TestRateLimitWindowExpiryClearsState(t *testing.T) {
	store, kv, clock := newTestStore(t)
	ctx := context.Background()

	store.RecordAttempt(ctx)
	store.RecordAttempt(ctx)
	store.RecordAttempt(ctx)
	if !store.IsRateLimited(ctx) {
		t.Fatal("expected rate limit after three attempts")
	}

	clock.Advance(5*time.Minute + time.Second)

	if store.IsRateLimited(ctx) {
		t.Fatal("expected expired window to lift the limit")
	}
	if _, ok, _ := kv.Get(ctx, testRateLimitKey); ok {
		t.Fatal("expected expired rate limit state to be cleared from storage")
	}
}

// Each recorded attempt refreshes the window start, so attempts spread out
// over more than the window length still accumulate as long as no gap
// exceeds it. This sliding behavior is deliberate and load-bearing.
func TestRecordAttemptRefreshesWindowStart(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	store.RecordAttempt(ctx)
	clock.Advance(4 * time.Minute)
	store.RecordAttempt(ctx)
	clock.Advance(4 * time.Minute)
	store.RecordAttempt(ctx)

	// Eight minutes since the first attempt, but each attempt reset the
	// clock, so the window is still live and the limit applies.
	if !store.IsRateLimited(ctx) {
		t.Fatal("expected limit: window start is refreshed on every attempt")
	}

	state := store.RateLimitState(ctx)
	if state == nil {
		t.Fatal("expected rate limit state to be present")
	}
	if state.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", state.Attempts)
	}
	if !state.WindowStart().Equal(clock.Now()) {
		t.Fatalf("expected window start %v, got %v", clock.Now(), state.WindowStart())
	}
}

func TestRetryAfter(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	if got := store.RetryAfter(ctx); got != 0 {
		t.Fatalf("expected zero retry-after with no state, got %v", got)
	}

	store.RecordAttempt(ctx)
	clock.Advance(2 * time.Minute)

	if got := store.RetryAfter(ctx); got != 3*time.Minute {
		t.Fatalf("expected 3m retry-after, got %v", got)
	}
}

func TestStorageFailuresFailOpen(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := repository.NewSubmissionStore(failingKV{}, testKeyPrefix, 5*time.Minute, 3, repository.WithNow(clock.Now))
	ctx := context.Background()

	if store.WasSubmitted(ctx, "anyone@example.com") {
		t.Fatal("read failure must read as not submitted")
	}
	if store.IsRateLimited(ctx) {
		t.Fatal("read failure must read as not rate limited")
	}

	// Write failures are swallowed; none of these may panic or error.
	store.RecordSubmission(ctx, "anyone@example.com")
	store.RecordAttempt(ctx)

	if got := store.Submissions(ctx); len(got) != 0 {
		t.Fatalf("expected no submissions from a failing backend, got %d", len(got))
	}
}

func TestCorruptEntriesReadAsEmpty(t *testing.T) {
	store, kv, _ := newTestStore(t)
	ctx := context.Background()

	if err := kv.Set(ctx, testSubmissionsKey, "{not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := kv.Set(ctx, testRateLimitKey, "[]"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if store.WasSubmitted(ctx, "anyone@example.com") {
		t.Fatal("corrupt submissions must read as empty")
	}
	if store.IsRateLimited(ctx) {
		t.Fatal("corrupt rate limit state must read as absent")
	}
}

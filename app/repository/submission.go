package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/crumble-bakery/signup-service/app/entity"

	"github.com/sirupsen/logrus"
)

const (
	submissionsKeySuffix = "_emailSubmissions"
	rateLimitKeySuffix   = "_rateLimiting"
)

// SubmissionStore tracks accepted signups and the global attempt counter on
// top of a KV backend. Storage problems never propagate: reads degrade to
// "empty" and writes are best-effort, so a broken backend can only lose
// durability, never break a signup.
type SubmissionStore struct {
	kv          KV
	keyPrefix   string
	window      time.Duration
	maxAttempts int
	now         func() time.Time
}

type SubmissionStoreOption func(*SubmissionStore)

// WithNow overrides the store's clock. Tests use it to drive the rate-limit
// window deterministically.
func WithNow(now func() time.Time) SubmissionStoreOption {
	return func(s *SubmissionStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSubmissionStore(kv KV, keyPrefix string, window time.Duration, maxAttempts int, opts ...SubmissionStoreOption) *SubmissionStore {
	s := &SubmissionStore{
		kv:          kv,
		keyPrefix:   keyPrefix,
		window:      window,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SubmissionStore) submissionsKey() string {
	return s.keyPrefix + submissionsKeySuffix
}

func (s *SubmissionStore) rateLimitKey() string {
	return s.keyPrefix + rateLimitKeySuffix
}

// normalizeEmail lower-cases and trims an email before storage and
// comparison. Every entry in the persisted set has this form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// WasSubmitted reports whether the email was previously accepted. A storage
// failure reads as "not submitted".
func (s *SubmissionStore) WasSubmitted(ctx context.Context, email string) bool {
	submissions := s.loadSubmissions(ctx)
	normalized := normalizeEmail(email)
	for _, stored := range submissions {
		if stored == normalized {
			return true
		}
	}
	return false
}

// RecordSubmission appends the normalized email to the persisted set.
// Durability is best-effort: write failures are logged and swallowed.
func (s *SubmissionStore) RecordSubmission(ctx context.Context, email string) {
	submissions := s.loadSubmissions(ctx)
	normalized := normalizeEmail(email)
	for _, stored := range submissions {
		if stored == normalized {
			return
		}
	}

	data, err := json.Marshal(append(submissions, normalized))
	if err != nil {
		logrus.WithError(err).Warn("Failed to encode submissions")
		return
	}
	if err := s.kv.Set(ctx, s.submissionsKey(), string(data)); err != nil {
		logrus.WithError(err).Warn("Failed to persist submission")
	}
}

// Submissions lists every accepted signup in append order.
func (s *SubmissionStore) Submissions(ctx context.Context) []entity.Submission {
	stored := s.loadSubmissions(ctx)
	submissions := make([]entity.Submission, 0, len(stored))
	for i, email := range stored {
		submissions = append(submissions, entity.Submission{Email: email, Position: i + 1})
	}
	return submissions
}

// IsRateLimited reports whether the attempt budget for the current window is
// exhausted. An expired window is cleared from storage as a side effect.
func (s *SubmissionStore) IsRateLimited(ctx context.Context) bool {
	state := s.RateLimitState(ctx)
	if state == nil {
		return false
	}

	if s.now().Sub(state.WindowStart()) > s.window {
		if err := s.kv.Delete(ctx, s.rateLimitKey()); err != nil {
			logrus.WithError(err).Warn("Failed to clear expired rate limit state")
		}
		return false
	}

	return state.Attempts >= s.maxAttempts
}

// RecordAttempt increments the attempt counter and refreshes the window
// start to now. Refreshing on every call extends the effective lockout; the
// signup page has always behaved this way and callers depend on it.
func (s *SubmissionStore) RecordAttempt(ctx context.Context) {
	state := s.RateLimitState(ctx)
	if state == nil {
		state = &entity.RateLimitState{}
	}

	state.Attempts++
	state.SetWindowStart(s.now())

	data, err := json.Marshal(state)
	if err != nil {
		logrus.WithError(err).Warn("Failed to encode rate limit state")
		return
	}
	if err := s.kv.Set(ctx, s.rateLimitKey(), string(data)); err != nil {
		logrus.WithError(err).Warn("Failed to persist rate limit state")
	}
}

// RateLimitState returns the stored attempt counter, or nil when absent or
// unreadable.
func (s *SubmissionStore) RateLimitState(ctx context.Context) *entity.RateLimitState {
	value, ok, err := s.kv.Get(ctx, s.rateLimitKey())
	if err != nil {
		logrus.WithError(err).Warn("Failed to read rate limit state; treating as absent")
		return nil
	}
	if !ok {
		return nil
	}

	var state entity.RateLimitState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		logrus.WithError(err).Warn("Corrupt rate limit state; treating as absent")
		return nil
	}
	return &state
}

// RetryAfter returns how long until the current rate-limit window expires,
// or zero when no window is active.
func (s *SubmissionStore) RetryAfter(ctx context.Context) time.Duration {
	state := s.RateLimitState(ctx)
	if state == nil {
		return 0
	}

	remaining := s.window - s.now().Sub(state.WindowStart())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *SubmissionStore) loadSubmissions(ctx context.Context) []string {
	value, ok, err := s.kv.Get(ctx, s.submissionsKey())
	if err != nil {
		logrus.WithError(err).Warn("Failed to read submissions; treating as empty")
		return nil
	}
	if !ok {
		return nil
	}

	var submissions []string
	if err := json.Unmarshal([]byte(value), &submissions); err != nil {
		logrus.WithError(err).Warn("Corrupt submissions entry; treating as empty")
		return nil
	}
	return submissions
}

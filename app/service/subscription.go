package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/crumble-bakery/signup-service/config"
)

var (
	ErrRateLimited       = errors.New("too many signup attempts")
	ErrAlreadySubscribed = errors.New("email is already subscribed")
	ErrNetworkFailure    = errors.New("network error during signup")
)

const subscribeSuccessMessage = "Thank you for subscribing! We'll let you know the moment we launch."

type submissionStore interface {
	WasSubmitted(ctx context.Context, email string) bool
	RecordSubmission(ctx context.Context, email string)
	IsRateLimited(ctx context.Context) bool
	RecordAttempt(ctx context.Context)
	RetryAfter(ctx context.Context) time.Duration
}

type SubscribeResult struct {
	Email   string
	Message string
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, email string) (*SubscribeResult, error)
	RetryAfter(ctx context.Context) time.Duration
}

// Sleeper suspends for the simulated network round-trip. It returns early
// with the context's error if the caller gives up on the signup.
type Sleeper func(ctx context.Context, d time.Duration) error

type SubscriptionServiceOption func(*subscriptionService)

type subscriptionService struct {
	store       submissionStore
	latency     time.Duration
	failureRate float64
	sleep       Sleeper
	randFloat   func() float64
}

func NewSubscriptionService(store submissionStore, cfg config.SignupConfig, opts ...SubscriptionServiceOption) SubscriptionService {
	svc := &subscriptionService{
		store:       store,
		latency:     cfg.SimulatedLatency,
		failureRate: cfg.FailureRate,
		sleep:       defaultSleeper,
		randFloat:   rand.Float64,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithSleeper(sleep Sleeper) SubscriptionServiceOption {
	return func(s *subscriptionService) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

func WithRandFloat(randFloat func() float64) SubscriptionServiceOption {
	return func(s *subscriptionService) {
		if randFloat != nil {
			s.randFloat = randFloat
		}
	}
}

// Subscribe runs the signup pipeline: rate-limit check, attempt accounting,
// duplicate detection, the simulated round-trip, the random failure branch,
// and finally the submission record.
func (s *subscriptionService) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	limited := s.store.IsRateLimited(ctx)

	// The attempt counts even when it is about to be rejected, for rate
	// limiting and duplicates alike.
	s.store.RecordAttempt(ctx)

	if limited {
		return nil, ErrRateLimited
	}

	if s.store.WasSubmitted(ctx, email) {
		return nil, ErrAlreadySubscribed
	}

	// Simulated network latency; the sole suspension point in the pipeline.
	if err := s.sleep(ctx, s.latency); err != nil {
		return nil, err
	}

	if s.randFloat() < s.failureRate {
		return nil, ErrNetworkFailure
	}

	// A failed store write still yields success: durability is best-effort.
	s.store.RecordSubmission(ctx, email)

	return &SubscribeResult{
		Email:   NormalizeEmail(email),
		Message: subscribeSuccessMessage,
	}, nil
}

func (s *subscriptionService) RetryAfter(ctx context.Context) time.Duration {
	return s.store.RetryAfter(ctx)
}

func defaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

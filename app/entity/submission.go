package entity

import "time"

// RateLimitState is the persisted attempt counter shared by all signups.
// Timestamp is the window start in epoch milliseconds, matching the wire
// format of the crumbleBakery_rateLimiting storage key.
type RateLimitState struct {
	Timestamp int64 `json:"timestamp"`
	Attempts  int   `json:"attempts"`
}

func (s *RateLimitState) WindowStart() time.Time {
	return time.UnixMilli(s.Timestamp)
}

func (s *RateLimitState) SetWindowStart(t time.Time) {
	s.Timestamp = t.UnixMilli()
}

// Submission is a single accepted signup as exposed to admin consumers.
// Only the normalized email is persisted; position is derived from the
// append-only order of the stored set.
type Submission struct {
	Email    string `json:"email"`
	Position int    `json:"position"`
}

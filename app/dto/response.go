package dto

import "github.com/crumble-bakery/signup-service/app/entity"

type SubscribeResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

type SubmissionsResponse struct {
	Total       int                 `json:"total"`
	Submissions []entity.Submission `json:"submissions"`
}

type StatsResponse struct {
	TotalSubmissions int    `json:"total_submissions"`
	RateLimited      bool   `json:"rate_limited"`
	Attempts         int    `json:"attempts"`
	WindowStart      string `json:"window_start,omitempty"`
}

type ErrorResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code,omitempty"`
	RetryAfterSeconds int64  `json:"retry_after_seconds,omitempty"`
}

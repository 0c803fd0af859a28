package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/crumble-bakery/signup-service/app/dto"
	"github.com/crumble-bakery/signup-service/app/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type submissionReader interface {
	Submissions(ctx context.Context) []entity.Submission
	IsRateLimited(ctx context.Context) bool
	RateLimitState(ctx context.Context) *entity.RateLimitState
}

type AdminController struct {
	store submissionReader
}

func NewAdminController(store submissionReader) *AdminController {
	return &AdminController{store: store}
}

func (c *AdminController) ListSubmissions(ctx echo.Context) error {
	submissions := c.store.Submissions(ctx.Request().Context())

	logrus.WithField("total", len(submissions)).Info("Admin listed submissions")
	return ctx.JSON(http.StatusOK, dto.SubmissionsResponse{
		Total:       len(submissions),
		Submissions: submissions,
	})
}

func (c *AdminController) Stats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	stats := dto.StatsResponse{
		TotalSubmissions: len(c.store.Submissions(reqCtx)),
		RateLimited:      c.store.IsRateLimited(reqCtx),
	}
	if state := c.store.RateLimitState(reqCtx); state != nil {
		stats.Attempts = state.Attempts
		stats.WindowStart = state.WindowStart().UTC().Format(time.RFC3339)
	}

	return ctx.JSON(http.StatusOK, stats)
}

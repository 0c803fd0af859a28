package controller

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/crumble-bakery/signup-service/app/dto"
	"github.com/crumble-bakery/signup-service/app/service"
	"github.com/crumble-bakery/signup-service/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type SignupController struct {
	subscriptionService service.SubscriptionService
}

func NewSignupController(subscriptionService service.SubscriptionService) *SignupController {
	return &SignupController{subscriptionService: subscriptionService}
}

func (c *SignupController) Subscribe(ctx echo.Context) error {
	req, err := types.NewSubscribeRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind subscribe request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if result := service.ValidateEmail(req.Email); !result.Valid {
		logrus.WithField("reason", result.Reason.Code()).Debug("Subscribe validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: result.Reason.Message(),
			Code:  result.Reason.Code(),
		})
	}

	logrus.WithField("email", req.Email).Info("Subscribe request received")
	result, err := c.subscriptionService.Subscribe(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			retryAfter := c.subscriptionService.RetryAfter(ctx.Request().Context())
			seconds := int64(math.Ceil(retryAfter.Seconds()))
			logrus.WithField("email", req.Email).Warn("Subscribe failed: rate limited")
			ctx.Response().Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			return ctx.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:             "too many signup attempts, please try again later",
				Code:              "RATE_LIMITED",
				RetryAfterSeconds: seconds,
			})
		}
		if errors.Is(err, service.ErrAlreadySubscribed) {
			logrus.WithField("email", req.Email).Warn("Subscribe failed: already subscribed")
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{
				Error: "this email is already subscribed",
				Code:  "ALREADY_SUBSCRIBED",
			})
		}
		if errors.Is(err, service.ErrNetworkFailure) {
			logrus.WithField("email", req.Email).Warn("Subscribe failed: network error")
			return ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{
				Error: "something went wrong, please try again",
				Code:  "NETWORK_ERROR",
			})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Subscribe failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("email", result.Email).Info("Subscription recorded")
	return ctx.JSON(http.StatusCreated, dto.SubscribeResponse{
		Email:   result.Email,
		Message: result.Message,
	})
}

// Validate backs the form's as-you-type check. It always answers 200; the
// verdict is in the body.
func (c *SignupController) Validate(ctx echo.Context) error {
	req, err := types.NewSubscribeRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind validate request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	result := service.ValidateEmail(req.Email)
	if result.Valid {
		return ctx.JSON(http.StatusOK, dto.ValidationResponse{Valid: true})
	}

	return ctx.JSON(http.StatusOK, dto.ValidationResponse{
		Valid:   false,
		Reason:  result.Reason.Code(),
		Message: result.Reason.Message(),
	})
}

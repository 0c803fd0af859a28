package types

import (
	"github.com/labstack/echo/v4"
)

// SubscribeRequest is the form payload for both the subscribe and validate
// endpoints. Email content rules live in the validator, not here.
type SubscribeRequest struct {
	Email string `json:"email"`
}

func NewSubscribeRequestFromContext(ctx echo.Context) (*SubscribeRequest, error) {
	var body SubscribeRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

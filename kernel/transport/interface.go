package transport

import (
	"context"
	"fmt"

	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
)

// Client is the request/response side of the launchpad API. Every call is a single attempt.
type Client interface {
	RocketState(ctx context.Context) (model.RocketState, error)
	LaunchpadState(ctx context.Context) (model.LaunchpadState, error)
	Pressure(ctx context.Context) (float64, error)
	WaterVolume(ctx context.Context) (float64, error)
	Send(ctx context.Context, action model.ActionID, params model.Params) error
}

// PushSource yields the launchpad's ordered push stream. The channel is closed when the
// connection ends.
type PushSource interface {
	Subscribe(ctx context.Context) (<-chan model.Envelope, error)
}

// StatusError is a non-2xx response from the launchpad.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("launchpad returned %d: %s", e.Code, e.Message)
}

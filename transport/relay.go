package transport

import (
	"context"

	goRelay "github.com/MrEthical07/goRelay"
)

// Relay is the part of *goRelay.Engine the adapters use.
type Relay interface {
	Submit(ctx context.Context, msg goRelay.Message) (<-chan goRelay.Response, bool)
}

// Package domain defines the venue gateway contract: the concrete
// dispatch.VenueSink implementation used in front mode, extended with an
// asynchronous response channel the coordinator drains one message at a
// time.
package domain

import (
	dispatch "github.com/wyfcoding/exchangecore/internal/dispatch/domain"
)

// Gateway is a dispatch.VenueSink that also exposes the inbound stream of
// venue responses. The coordinator calls ForwardOrder/ForwardCancel while
// holding its lock. Responses() is drained by a separate goroutine that
// hands each response to the coordinator, which takes the same lock, so a
// response is never processed concurrently with a forward.
type Gateway interface {
	dispatch.VenueSink
	Responses() <-chan dispatch.VenueResponse
	Close() error
}

// Package grpcgateway is the front-mode venue.domain.Gateway
// implementation: it dials the downstream venue over google.golang.org/grpc
// using the retry/backoff/keepalive client factory from pkg/grpcclient,
// and exchanges JSON frames via the codec in this package instead of
// protobuf-generated stubs.
package grpcgateway

import (
	"context"

	"google.golang.org/grpc"

	dispatch "github.com/wyfcoding/exchangecore/internal/dispatch/domain"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
	"github.com/wyfcoding/exchangecore/pkg/grpcclient"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

const (
	methodForwardOrder     = "/venue.Gateway/ForwardOrder"
	methodForwardCancel    = "/venue.Gateway/ForwardCancel"
	methodStreamResponses  = "/venue.Gateway/StreamResponses"
	responsesChannelBuffer = 256
)

// Client is a venuedomain.Gateway dialed over gRPC.
type Client struct {
	conn      *grpc.ClientConn
	responses chan dispatch.VenueResponse
	cancel    context.CancelFunc
}

// Dial connects to the venue and starts draining its response stream in
// the background. The returned Client implements venuedomain.Gateway.
func Dial(cfg grpcclient.ClientConfig) (*Client, error) {
	conn, err := grpcclient.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:      conn,
		responses: make(chan dispatch.VenueResponse, responsesChannelBuffer),
		cancel:    cancel,
	}
	go c.drainResponses(ctx)
	return c, nil
}

// ForwardOrder implements dispatch.VenueSink.
func (c *Client) ForwardOrder(order matching.Order) error {
	req := orderWire{
		ClOrderID:     order.ClOrderID,
		Market:        order.Market,
		SecurityID:    order.SecurityID,
		Side:          order.Side,
		Price:         order.Price,
		Qty:           order.Qty,
		ShareholderID: order.ShareholderID,
	}
	var ack ackWire
	return c.conn.Invoke(context.Background(), methodForwardOrder, req, &ack, grpc.CallContentSubtype(codecName))
}

// ForwardCancel implements dispatch.VenueSink.
func (c *Client) ForwardCancel(cancel matching.CancelOrder) error {
	req := cancelWire{
		ClOrderID:     cancel.ClOrderID,
		OrigClOrderID: cancel.OrigClOrderID,
		Market:        cancel.Market,
		SecurityID:    cancel.SecurityID,
		ShareholderID: cancel.ShareholderID,
		Side:          cancel.Side,
	}
	var ack ackWire
	return c.conn.Invoke(context.Background(), methodForwardCancel, req, &ack, grpc.CallContentSubtype(codecName))
}

// Responses implements venuedomain.Gateway.
func (c *Client) Responses() <-chan dispatch.VenueResponse {
	return c.responses
}

// Close implements venuedomain.Gateway.
func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close()
}

// drainResponses runs a long-lived server-streaming call against the
// venue and decodes each frame into a dispatch.VenueResponse, pushed onto
// the channel the coordinator drains on its own loop. This is the one
// goroutine in the system that is not single-threaded-cooperative: it
// only ever writes to a channel, never touches engine/guard state itself.
func (c *Client) drainResponses(ctx context.Context) {
	desc := &grpc.StreamDesc{StreamName: "StreamResponses", ServerStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, methodStreamResponses, grpc.CallContentSubtype(codecName))
	if err != nil {
		logger.Error(ctx, "venue response stream failed to open", "error", err)
		return
	}

	for {
		var frame venueResponseWire
		if err := stream.RecvMsg(&frame); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "venue response stream ended", "error", err)
			return
		}
		c.responses <- frame.toDomain()
	}
}

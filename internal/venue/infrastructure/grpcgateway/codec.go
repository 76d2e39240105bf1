package grpcgateway

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is registered with google.golang.org/grpc/encoding and
// selected per-call via grpc.CallContentSubtype, so the venue connection
// exchanges plain JSON frames instead of protobuf-generated messages. The
// frames are the orderWire/cancelWire/venueResponseWire types in wire.go:
// they use internal/wire's field names, but sides travel in domain form
// (BUY/SELL) rather than B/S.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

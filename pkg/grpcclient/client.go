// Package grpcclient provides a gRPC client factory for the downstream
// venue connection: retry, backoff, keepalive and interceptor wiring.
package grpcclient

import (
	"context"
	"time"

	"github.com/wyfcoding/exchangecore/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// ClientConfig configures a venue gRPC client connection.
type ClientConfig struct {
	Target            string
	ConnTimeout       int
	RequestTimeout    int
	MaxRetries        int
	RetryDelay        int
	EnableKeepalive   bool
	KeepaliveInterval int
}

// NewClient dials the venue. The dial does not wait for the connection to
// become ready; gRPC connects in the background and calls wait for it.
func NewClient(cfg ClientConfig) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(100*1024*1024), // 100MB
			grpc.MaxCallSendMsgSize(100*1024*1024), // 100MB
		),
	}

	if cfg.ConnTimeout > 0 {
		opts = append(opts, grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  100 * time.Millisecond,
				MaxDelay:   time.Duration(cfg.ConnTimeout) * time.Second,
				Multiplier: 1.6,
				Jitter:     0.2,
			},
			MinConnectTimeout: time.Duration(cfg.ConnTimeout) * time.Second,
		}))
	}

	if cfg.EnableKeepalive {
		opts = append(opts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                time.Duration(cfg.KeepaliveInterval) * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}))
	}

	// interceptors for retry and timeout
	opts = append(opts,
		grpc.WithUnaryInterceptor(unaryClientInterceptor(cfg)),
		grpc.WithStreamInterceptor(streamClientInterceptor(cfg)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnTimeout)*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx, cfg.Target, opts...)
	if err != nil {
		logger.Error(ctx, "failed to dial venue", "target", cfg.Target, "error", err)
		return nil, err
	}

	logger.Info(ctx, "venue connection established", "target", cfg.Target)
	return conn, nil
}

// unaryClientInterceptor retries unary calls on transient venue errors.
func unaryClientInterceptor(cfg ClientConfig) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.RequestTimeout)*time.Second)
			defer cancel()
		}

		start := time.Now()
		logger.Debug(ctx, "venue call started", "method", method)

		var lastErr error
		for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
			err := invoker(ctx, method, req, reply, cc, opts...)
			if err == nil {
				logger.Debug(ctx, "venue call succeeded", "method", method, "duration", time.Since(start))
				return nil
			}

			lastErr = err
			st, ok := status.FromError(err)
			if !ok {
				break
			}

			if !shouldRetry(st.Code()) || attempt >= cfg.MaxRetries {
				break
			}

			select {
			case <-time.After(time.Duration(cfg.RetryDelay) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		logger.Error(ctx, "venue call failed", "method", method, "duration", time.Since(start), "error", lastErr)
		return lastErr
	}
}

// streamClientInterceptor applies the same request timeout to stream calls.
func streamClientInterceptor(cfg ClientConfig) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		if cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.RequestTimeout)*time.Second)
			defer cancel()
		}

		logger.Debug(ctx, "venue stream started", "method", method)
		return streamer(ctx, desc, cc, method, opts...)
	}
}

func shouldRetry(code codes.Code) bool {
	switch code {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

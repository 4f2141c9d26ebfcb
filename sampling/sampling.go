// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package sampling delegates text generation to the connected MCP client.
//
// The server has no model of its own. A [Client] sends a composed
// [mcp.CreateMessageParams] to the client's sampling capability exactly once,
// waits for the answer, and [Text] reduces the answer to a string.
package sampling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yasomaru/mcp-tool-demo/internal/metrics"
)

// ErrUnavailable reports that no sampling capability is reachable for the
// current invocation, for example when a tool is called outside an MCP session.
var ErrUnavailable = errors.New("sampling capability unavailable")

// A Sampler asks a model owned by the MCP client to generate a message.
// [*mcp.ServerSession] is a Sampler.
type Sampler interface {
	CreateMessage(ctx context.Context, params *mcp.CreateMessageParams) (*mcp.CreateMessageResult, error)
}

// TracerName names the tracer used for sampling spans.
const TracerName = "github.com/yasomaru/mcp-tool-demo/sampling"

type Option func(*Client)

// WithLogger sets the logger used when the context carries none.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request counts and latencies in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer for sampling spans. The default is the global
// provider's tracer named [TracerName].
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// A Client sends sampling requests. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		logger: zerolog.Nop(),
		tracer: otel.Tracer(TracerName),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send issues params to s on behalf of tool and waits for the reply.
//
// The request is sent once; a failed request is not retried. Cancelling ctx
// abandons the pending request.
func (c *Client) Send(ctx context.Context, tool string, s Sampler, params *mcp.CreateMessageParams) (*mcp.CreateMessageResult, error) {
	if s == nil {
		return nil, fmt.Errorf("%s: %w", tool, ErrUnavailable)
	}
	log := c.loggerFor(ctx)

	ctx, span := c.tracer.Start(ctx, "sampling/createMessage",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("mcp.tool", tool),
			attribute.Int("mcp.sampling.messages", len(params.Messages)),
			attribute.Int64("mcp.sampling.max_tokens", params.MaxTokens),
		))
	defer span.End()

	log.Debug().
		Str("tool", tool).
		Int("messages", len(params.Messages)).
		Int64("max_tokens", params.MaxTokens).
		Msg("sending sampling request")

	start := time.Now()
	res, err := s.CreateMessage(ctx, params)
	elapsed := time.Since(start)
	c.metrics.Sampling(tool, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).
			Str("tool", tool).
			Dur("elapsed", elapsed).
			Msg("sampling request failed")
		return nil, fmt.Errorf("%s: sampling request failed: %w", tool, err)
	}
	if res != nil {
		span.SetAttributes(attribute.String("mcp.sampling.model", res.Model))
		log.Debug().
			Str("tool", tool).
			Str("model", res.Model).
			Str("stop_reason", res.StopReason).
			Dur("elapsed", elapsed).
			Msg("sampling request completed")
	}
	return res, nil
}

// Sample sends params like [Client.Send] and returns the reply as text.
func (c *Client) Sample(ctx context.Context, tool string, s Sampler, params *mcp.CreateMessageParams) (string, error) {
	res, err := c.Send(ctx, tool, s, params)
	if err != nil {
		return "", err
	}
	return Text(res), nil
}

func (c *Client) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &c.logger
}

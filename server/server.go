// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package server assembles the MCP server: tools, the HTML document resource
// template, and logging and rate-limiting middleware.
//
// A server is built once with [New] and handed to a transport, either
// [mcp.Server.Run] with stdio or [NewHTTPHandler] for streamable HTTP.
package server

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/yasomaru/mcp-tool-demo/internal/config"
	"github.com/yasomaru/mcp-tool-demo/internal/logging"
	"github.com/yasomaru/mcp-tool-demo/internal/metrics"
	"github.com/yasomaru/mcp-tool-demo/internal/ratelimit"
	"github.com/yasomaru/mcp-tool-demo/tools"
)

// Name is the implementation name reported to clients.
const Name = "mcp-tool-demo"

// Version is set at build time.
var Version = "v0.1.0"

const instructions = `greet returns a greeting. generate_story and query_html ask your model to write the answer through sampling, so this client must support sampling/createMessage. query_html reads a local HTML file by path.`

// Options configures [New]. The zero value is usable.
type Options struct {
	Logger zerolog.Logger
	// Metrics, if non-nil, records tool, sampling and document metrics.
	Metrics *metrics.Metrics
	// MaxDocumentBytes caps the HTML embedded in query_html prompts; 0 means no cap.
	MaxDocumentBytes int
	// RateLimit is the sustained number of tool calls per second; 0 disables limiting.
	RateLimit float64
	RateBurst int
	// RateScope selects the requests RateLimit applies to. The zero value
	// limits tools/call only.
	RateScope config.RateScope
	// KeepAlive, if non-zero, pings idle clients at this interval.
	KeepAlive time.Duration
	// TracerProvider, if non-nil, records sampling spans instead of the
	// global provider.
	TracerProvider trace.TracerProvider
}

// New returns a server with every tool and the document resource template.
func New(opts Options) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, &mcp.ServerOptions{
		Instructions: instructions,
		KeepAlive:    opts.KeepAlive,
	})
	// The first middleware added runs first, so rejected calls are still logged.
	s.AddReceivingMiddleware(logging.ReceivingMiddleware(opts.Logger))
	if opts.RateLimit > 0 {
		s.AddReceivingMiddleware(rateLimiter(opts))
	}
	s.AddSendingMiddleware(logging.SendingMiddleware(opts.Logger))

	tools.New(&tools.Options{
		Logger:           opts.Logger,
		Metrics:          opts.Metrics,
		MaxDocumentBytes: opts.MaxDocumentBytes,
		TracerProvider:   opts.TracerProvider,
	}).Register(s)
	addDocuments(s, opts.Metrics)
	return s
}

func rateLimiter(opts Options) mcp.Middleware {
	if opts.RateScope == config.RateScopeGlobal {
		return ratelimit.Global(rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst))
	}
	return ratelimit.ToolCalls(opts.RateLimit, opts.RateBurst)
}

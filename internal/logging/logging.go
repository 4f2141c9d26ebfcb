// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logging configures zerolog and provides MCP logging middleware.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error") in the given format.
//
// Servers using the stdio transport must not log to stdout.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	switch format {
	case FormatConsole, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (want %s or %s)", format, FormatConsole, FormatJSON)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ReceivingMiddleware logs every MCP method the server receives.
func ReceivingMiddleware(logger zerolog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			ev := logger.Debug().
				Str("method", method).
				Str("session_id", sessionID(req))
			// Log more for tool calls.
			if ctr, ok := req.(*mcp.CallToolRequest); ok && ctr.Params != nil {
				ev = ev.Str("tool", ctr.Params.Name)
			}
			ev.Msg("MCP method started")

			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)
			if err != nil {
				logger.Error().Err(err).
					Str("method", method).
					Str("session_id", sessionID(req)).
					Dur("duration", duration).
					Msg("MCP method failed")
				return result, err
			}
			ev = logger.Debug().
				Str("method", method).
				Str("session_id", sessionID(req)).
				Dur("duration", duration)
			if ctr, ok := result.(*mcp.CallToolResult); ok {
				ev = ev.Bool("is_error", ctr.IsError)
			}
			ev.Msg("MCP method completed")
			return result, err
		}
	}
}

// SendingMiddleware logs requests the server sends to the client, such as
// sampling requests.
func SendingMiddleware(logger zerolog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			ev := logger.Debug().Str("method", method).Str("session_id", sessionID(req))
			if p, ok := req.GetParams().(*mcp.CreateMessageParams); ok && p != nil {
				ev = ev.Int("messages", len(p.Messages)).Int64("max_tokens", p.MaxTokens)
			}
			ev.Msg("sending MCP request")
			result, err := next(ctx, method, req)
			if err != nil {
				logger.Warn().Err(err).Str("method", method).Msg("MCP request to client failed")
			}
			return result, err
		}
	}
}

func sessionID(req mcp.Request) string {
	if req == nil {
		return ""
	}
	s := req.GetSession()
	if s == nil {
		return ""
	}
	return s.ID()
}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ratelimit provides MCP middleware that rejects requests beyond a rate.
package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"
)

// ErrOverloaded is returned for requests rejected by a limiter.
var ErrOverloaded = errors.New("JSON RPC overloaded")

// Global creates a middleware that applies one limit to every request.
// A request that cannot acquire a token immediately is rejected.
func Global(limiter *rate.Limiter) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if !limiter.Allow() {
				return nil, fmt.Errorf("%s: %w", method, ErrOverloaded)
			}
			return next(ctx, method, req)
		}
	}
}

// PerMethod creates a middleware that limits each listed method separately.
// Methods without a limiter pass through.
func PerMethod(limiters map[string]*rate.Limiter) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if limiter, ok := limiters[method]; ok && !limiter.Allow() {
				return nil, fmt.Errorf("%s: %w", method, ErrOverloaded)
			}
			return next(ctx, method, req)
		}
	}
}

// ToolCalls limits tools/call requests to perSecond with the given burst.
func ToolCalls(perSecond float64, burst int) mcp.Middleware {
	return PerMethod(map[string]*rate.Limiter{
		"tools/call": rate.NewLimiter(rate.Limit(perSecond), burst),
	})
}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config holds the server's runtime configuration.
//
// Values start from [Default], are overridden by MCP_TOOL_DEMO_* environment
// variables, and finally by command-line flags.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by [Config.ApplyEnv].
const EnvPrefix = "MCP_TOOL_DEMO_"

// Mode selects the transport the server runs on.
type Mode string

const (
	// ModeStdio serves a single client over stdin/stdout.
	ModeStdio Mode = "stdio"
	// ModeHTTP serves clients directly over streamable HTTP.
	ModeHTTP Mode = "http"
)

// ParseMode parses a run mode argument.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStdio, ModeHTTP:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeStdio, ModeHTTP)
}

// RateScope selects which requests a rate limit applies to.
type RateScope string

const (
	// RateScopeTools limits tools/call requests only.
	RateScopeTools RateScope = "tools"
	// RateScopeGlobal limits every inbound request.
	RateScopeGlobal RateScope = "global"
)

// ParseRateScope parses a rate limit scope.
func ParseRateScope(s string) (RateScope, error) {
	switch RateScope(s) {
	case RateScopeTools, RateScopeGlobal:
		return RateScope(s), nil
	}
	return "", fmt.Errorf("unknown rate scope %q (want %s or %s)", s, RateScopeTools, RateScopeGlobal)
}

type Config struct {
	Mode Mode
	// Addr is the listen address in HTTP mode.
	Addr      string
	LogLevel  string
	LogFormat string
	// MaxDocumentBytes caps the HTML embedded in analysis prompts; 0 means no cap.
	MaxDocumentBytes int
	// RateLimit is the sustained number of tool calls per second; 0 disables limiting.
	RateLimit float64
	RateBurst int
	RateScope RateScope
	// KeepAlive, if non-zero, pings idle clients at this interval.
	KeepAlive time.Duration
	// TraceEndpoint is an OTLP/HTTP traces URL, such as
	// http://localhost:4318/v1/traces. Empty disables tracing.
	TraceEndpoint   string
	TraceSampleRate float64
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Mode:      ModeStdio,
		Addr:      "localhost:8080",
		LogLevel:  "info",
		LogFormat: "console",
		RateBurst: 10,
		RateScope: RateScopeTools,

		TraceSampleRate: 1,
	}
}

// ApplyEnv overrides c with the environment variables found by lookup,
// typically [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	parse := func(name string, set func(string) error) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
		}
	}

	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("TRACE_ENDPOINT", &c.TraceEndpoint)
	// Each field is assigned only after its value parses.
	parse("MODE", func(v string) error {
		m, err := ParseMode(v)
		if err == nil {
			c.Mode = m
		}
		return err
	})
	parse("RATE_SCOPE", func(v string) error {
		rs, err := ParseRateScope(v)
		if err == nil {
			c.RateScope = rs
		}
		return err
	})
	parse("MAX_DOCUMENT_BYTES", func(v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			c.MaxDocumentBytes = n
		}
		return err
	})
	parse("RATE_LIMIT", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			c.RateLimit = f
		}
		return err
	})
	parse("RATE_BURST", func(v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			c.RateBurst = n
		}
		return err
	})
	parse("KEEPALIVE", func(v string) error {
		d, err := time.ParseDuration(v)
		if err == nil {
			c.KeepAlive = d
		}
		return err
	})
	parse("TRACE_SAMPLE_RATE", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			c.TraceSampleRate = f
		}
		return err
	})
	return errors.Join(errs...)
}

// Validate reports every invalid field of c.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if c.Mode == ModeHTTP && c.Addr == "" {
		errs = append(errs, errors.New("http mode requires a listen address"))
	}
	if c.MaxDocumentBytes < 0 {
		errs = append(errs, fmt.Errorf("max document bytes must not be negative, got %d", c.MaxDocumentBytes))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate burst must be at least 1 when rate limiting, got %d", c.RateBurst))
	}
	if _, err := ParseRateScope(string(c.RateScope)); err != nil {
		errs = append(errs, err)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		errs = append(errs, fmt.Errorf("trace sample rate must be within [0, 1], got %v", c.TraceSampleRate))
	}
	if c.KeepAlive < 0 {
		errs = append(errs, fmt.Errorf("keepalive must not be negative, got %v", c.KeepAlive))
	}
	return errors.Join(errs...)
}

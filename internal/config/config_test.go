// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, ModeStdio, c.Mode)
	assert.Zero(t, c.MaxDocumentBytes, "documents are uncapped by default")
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(env(map[string]string{
		"MCP_TOOL_DEMO_MODE":               "http",
		"MCP_TOOL_DEMO_ADDR":               ":9000",
		"MCP_TOOL_DEMO_LOG_LEVEL":          "debug",
		"MCP_TOOL_DEMO_MAX_DOCUMENT_BYTES": "2048",
		"MCP_TOOL_DEMO_RATE_LIMIT":         "2.5",
		"MCP_TOOL_DEMO_RATE_BURST":         "4",
		"MCP_TOOL_DEMO_KEEPALIVE":          "30s",
		"MCP_TOOL_DEMO_RATE_SCOPE":         "global",
		"MCP_TOOL_DEMO_TRACE_ENDPOINT":     "http://collector:4318/v1/traces",
		"MCP_TOOL_DEMO_TRACE_SAMPLE_RATE":  "0.25",
		"UNRELATED":                        "x",
	}))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Mode:             ModeHTTP,
		Addr:             ":9000",
		LogLevel:         "debug",
		LogFormat:        "console",
		MaxDocumentBytes: 2048,
		RateLimit:        2.5,
		RateBurst:        4,
		RateScope:        RateScopeGlobal,
		KeepAlive:        30 * time.Second,
		TraceEndpoint:    "http://collector:4318/v1/traces",
		TraceSampleRate:  0.25,
	}, c)
}

func TestApplyEnvErrors(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(env(map[string]string{
		"MCP_TOOL_DEMO_MODE":               "carrier-pigeon",
		"MCP_TOOL_DEMO_MAX_DOCUMENT_BYTES": "lots",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCP_TOOL_DEMO_MODE")
	assert.Contains(t, err.Error(), "MCP_TOOL_DEMO_MAX_DOCUMENT_BYTES")
}

func TestApplyEnvKeepsFieldsOnError(t *testing.T) {
	c := Default()
	c.MaxDocumentBytes = 512
	err := c.ApplyEnv(env(map[string]string{
		"MCP_TOOL_DEMO_MODE":               "carrier-pigeon",
		"MCP_TOOL_DEMO_MAX_DOCUMENT_BYTES": "lots",
		"MCP_TOOL_DEMO_RATE_SCOPE":         "galaxy",
		"MCP_TOOL_DEMO_KEEPALIVE":          "soon",
	}))
	require.Error(t, err)
	assert.Equal(t, ModeStdio, c.Mode)
	assert.Equal(t, 512, c.MaxDocumentBytes)
	assert.Equal(t, RateScopeTools, c.RateScope)
	assert.Zero(t, c.KeepAlive)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "ftp" }},
		{"http without addr", func(c *Config) { c.Mode = ModeHTTP; c.Addr = "" }},
		{"negative cap", func(c *Config) { c.MaxDocumentBytes = -1 }},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }},
		{"zero burst", func(c *Config) { c.RateLimit = 1; c.RateBurst = 0 }},
		{"negative keepalive", func(c *Config) { c.KeepAlive = -time.Second }},
		{"bad rate scope", func(c *Config) { c.RateScope = "everything" }},
		{"sample rate above one", func(c *Config) { c.TraceSampleRate = 1.5 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := Default()
			test.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"stdio", "http"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
	_, err := ParseMode("STDIO")
	assert.Error(t, err)
}

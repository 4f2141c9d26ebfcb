// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasomaru/mcp-tool-demo/internal/config"
	"github.com/yasomaru/mcp-tool-demo/internal/metrics"
)

func connect(t *testing.T, s *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, st, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		cs.Close()
		ss.Wait()
	})
	return cs
}

func TestNew(t *testing.T) {
	cs := connect(t, New(Options{Logger: zerolog.Nop()}))
	ctx := context.Background()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"greet", "generate_story", "query_html"}, names)

	templates, err := cs.ListResourceTemplates(ctx, nil)
	require.NoError(t, err)
	require.Len(t, templates.ResourceTemplates, 1)
	assert.Equal(t, DocumentTemplate, templates.ResourceTemplates[0].URITemplate)
}

func TestRateScope(t *testing.T) {
	ctx := context.Background()
	greet := &mcp.CallToolParams{Name: "greet", Arguments: map[string]any{"name": "Ada"}}

	t.Run("tools", func(t *testing.T) {
		cs := connect(t, New(Options{Logger: zerolog.Nop(), RateLimit: 0.001, RateBurst: 1, RateScope: config.RateScopeTools}))
		for range 10 {
			_, err := cs.ListTools(ctx, nil)
			require.NoError(t, err)
		}
		_, err := cs.CallTool(ctx, greet)
		require.NoError(t, err)
		_, err = cs.CallTool(ctx, greet)
		assert.ErrorContains(t, err, "overloaded")
	})

	t.Run("global", func(t *testing.T) {
		// The handshake spends part of the burst.
		cs := connect(t, New(Options{Logger: zerolog.Nop(), RateLimit: 0.001, RateBurst: 4, RateScope: config.RateScopeGlobal}))
		var err error
		for range 10 {
			if _, err = cs.ListTools(ctx, nil); err != nil {
				break
			}
		}
		assert.ErrorContains(t, err, "overloaded")
	})
}

func TestReadDocumentResource(t *testing.T) {
	m := metrics.New(nil)
	cs := connect(t, New(Options{Logger: zerolog.Nop(), Metrics: m}))
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>Title</h1>"), 0o644))
	uri, err := DocumentURI(path)
	require.NoError(t, err)

	res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "<h1>Title</h1>", res.Contents[0].Text)
	assert.Equal(t, "text/html", res.Contents[0].MIMEType)

	missing, err := DocumentURI(filepath.Join(t.TempDir(), "missing.html"))
	require.NoError(t, err)
	_, err = cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: missing})
	assert.Error(t, err)
}

func TestDocumentURI(t *testing.T) {
	uri, err := DocumentURI("/srv/pages/index.html")
	require.NoError(t, err)
	assert.Equal(t, "file:///srv/pages/index.html", uri)

	path, err := DocumentPath(uri)
	require.NoError(t, err)
	assert.Equal(t, "/srv/pages/index.html", path)

	_, err = DocumentPath("https://example.com/index.html")
	assert.Error(t, err)
}

func TestQueryHTMLIsCapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.html")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0o644))

	var prompt string
	s := New(Options{Logger: zerolog.Nop(), MaxDocumentBytes: 10})
	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, st, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "sampling-client"}, &mcp.ClientOptions{
		CreateMessageHandler: func(_ context.Context, req *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
			prompt = req.Params.Messages[0].Content.(*mcp.TextContent).Text
			return &mcp.CreateMessageResult{Content: &mcp.TextContent{Text: "done"}, Model: "m", Role: "assistant"}, nil
		},
	})
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	defer func() {
		cs.Close()
		ss.Wait()
	}()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "query_html",
		Arguments: map[string]any{"html_path": path, "query": "what?"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "done", res.Content[0].(*mcp.TextContent).Text)
	assert.Contains(t, prompt, strings.Repeat("x", 10)+"\n```")
	assert.NotContains(t, prompt, strings.Repeat("x", 11))
	assert.Contains(t, prompt, "truncated")
}

func TestHTTPHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := New(Options{Logger: zerolog.Nop(), Metrics: m})
	ts := httptest.NewServer(NewHTTPHandler(s, reg, zerolog.Nop()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "http-client"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: ts.URL + MCPPath}, nil)
	require.NoError(t, err)
	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "greet", Arguments: map[string]any{"name": "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada! From Python MCP.", res.Content[0].(*mcp.TextContent).Text)
	require.NoError(t, cs.Close())

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `mcp_tool_demo_tool_calls_total{outcome="ok",tool="greet"} 1`)
}

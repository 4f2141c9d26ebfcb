// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yasomaru/mcp-tool-demo/internal/metrics"
	"github.com/yasomaru/mcp-tool-demo/prompt"
	"github.com/yasomaru/mcp-tool-demo/sampling"
)

// recordingSampler answers every request with reply and remembers what it saw.
type recordingSampler struct {
	mu     sync.Mutex
	reply  string
	err    error
	params []*mcp.CreateMessageParams
}

func (s *recordingSampler) CreateMessage(_ context.Context, p *mcp.CreateMessageParams) (*mcp.CreateMessageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = append(s.params, p)
	if s.err != nil {
		return nil, s.err
	}
	return &mcp.CreateMessageResult{Content: &mcp.TextContent{Text: s.reply}, Model: "test-model", Role: "assistant"}, nil
}

func (s *recordingSampler) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.params)
}

func messageText(t *testing.T, p *mcp.CreateMessageParams) string {
	t.Helper()
	if len(p.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(p.Messages))
	}
	if p.Messages[0].Role != "user" {
		t.Errorf("role = %q, want user", p.Messages[0].Role)
	}
	return p.Messages[0].Content.(*mcp.TextContent).Text
}

func TestInvokeGreet(t *testing.T) {
	r := New(nil)
	tests := []struct {
		args map[string]any
		want string
	}{
		{nil, "Hello, World! From Python MCP."},
		{map[string]any{}, "Hello, World! From Python MCP."},
		{map[string]any{"name": "Ada"}, "Hello, Ada! From Python MCP."},
		{map[string]any{"name": ""}, "Hello, ! From Python MCP."},
		{map[string]any{"name": "<Ada & Bob>"}, "Hello, <Ada & Bob>! From Python MCP."},
	}
	for _, test := range tests {
		// Greeting never samples, so a nil sampler is fine.
		got, err := r.Invoke(context.Background(), nil, Invocation{Name: "greet", Arguments: test.args})
		if err != nil {
			t.Fatalf("greet %v: %v", test.args, err)
		}
		if got != test.want {
			t.Errorf("greet %v = %q, want %q", test.args, got, test.want)
		}
	}
}

func TestInvokeGenerateStory(t *testing.T) {
	r := New(nil)
	s := &recordingSampler{reply: "A robot learned to paint."}
	got, err := r.Invoke(context.Background(), s, Invocation{
		Name:      "generate_story",
		Arguments: map[string]any{"topic": "robots"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != s.reply {
		t.Errorf("got %q, want %q", got, s.reply)
	}
	if s.calls() != 1 {
		t.Fatalf("sampler called %d times, want 1", s.calls())
	}
	p := s.params[0]
	if p.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", p.MaxTokens)
	}
	text := messageText(t, p)
	if !strings.Contains(text, "robots") || !strings.Contains(text, prompt.DefaultStyle) {
		t.Errorf("prompt %q should mention the topic and default style", text)
	}
}

func TestInvokeGenerateStoryArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"absent", map[string]any{}, "about a helpful AI assistant in a concise style."},
		{"empty", map[string]any{"topic": "", "style": ""}, "about  in a  style."},
		{"given", map[string]any{"topic": "owls", "style": "noir"}, "about owls in a noir style."},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := &recordingSampler{reply: "ok"}
			if _, err := New(nil).Invoke(context.Background(), s, Invocation{Name: "generate_story", Arguments: test.args}); err != nil {
				t.Fatal(err)
			}
			if text := messageText(t, s.params[0]); !strings.Contains(text, test.want) {
				t.Errorf("prompt %q does not contain %q", text, test.want)
			}
		})
	}
}

func TestInvokeQueryHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	const html = "<html><body><span class=\"price\">$3</span></body></html>"
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	m := metrics.New(nil)
	r := New(&Options{Metrics: m})
	s := &recordingSampler{reply: "| price | span.price |"}

	got, err := r.Invoke(context.Background(), s, Invocation{
		Name:      "query_html",
		Arguments: map[string]any{"html_path": path, "query": "How do I extract the price?"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != s.reply {
		t.Errorf("got %q, want %q", got, s.reply)
	}
	if s.calls() != 1 {
		t.Fatalf("sampler called %d times, want 1", s.calls())
	}
	p := s.params[0]
	if p.MaxTokens != 100000 {
		t.Errorf("MaxTokens = %d, want 100000", p.MaxTokens)
	}
	text := messageText(t, p)
	qi := strings.Index(text, "How do I extract the price?")
	di := strings.Index(text, html)
	if qi < 0 || di < 0 || di < qi {
		t.Errorf("prompt must contain the query, then the document:\n%s", text)
	}
	if n := testutil.ToFloat64(m.DocumentLoads.WithLabelValues("ok")); n != 1 {
		t.Errorf("ok document loads = %v, want 1", n)
	}
}

func TestInvokeQueryHTMLUserErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.html")
	m := metrics.New(nil)
	r := New(&Options{Metrics: m})
	s := &recordingSampler{reply: "unused"}

	got, err := r.Invoke(context.Background(), s, Invocation{
		Name:      "query_html",
		Arguments: map[string]any{"html_path": missing, "query": "anything"},
	})
	if err != nil {
		t.Fatalf("missing file should not be an invocation error: %v", err)
	}
	if want := "File not found: " + missing; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = r.Invoke(context.Background(), s, Invocation{
		Name:      "query_html",
		Arguments: map[string]any{"html_path": dir, "query": "anything"},
	})
	if err != nil {
		t.Fatalf("directory should not be an invocation error: %v", err)
	}
	if !strings.Contains(got, "directory") {
		t.Errorf("got %q, want a directory message", got)
	}

	if s.calls() != 0 {
		t.Errorf("sampler called %d times, want 0", s.calls())
	}
	if n := testutil.ToFloat64(m.ToolCalls.WithLabelValues("query_html", metrics.OutcomeUserError)); n != 2 {
		t.Errorf("user error count = %v, want 2", n)
	}
}

func TestInvokeErrors(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	hostErr := errors.New("sampling refused")

	tests := []struct {
		name    string
		sampler sampling.Sampler
		inv     Invocation
		want    error
	}{
		{"unknown tool", nil, Invocation{Name: "nope"}, ErrUnknownTool},
		{"bad type", nil, Invocation{Name: "greet", Arguments: map[string]any{"name": 5}}, ErrInvalidArguments},
		{"missing query", nil, Invocation{Name: "query_html", Arguments: map[string]any{"html_path": "x"}}, ErrInvalidArguments},
		{"missing path", nil, Invocation{Name: "query_html", Arguments: map[string]any{"query": "x"}}, ErrInvalidArguments},
		{"no sampler", nil, Invocation{Name: "generate_story"}, sampling.ErrUnavailable},
		{"sampler fails", &recordingSampler{err: hostErr}, Invocation{Name: "generate_story"}, hostErr},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := r.Invoke(ctx, test.sampler, test.inv)
			if !errors.Is(err, test.want) {
				t.Errorf("got %v, want %v", err, test.want)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	var names []string
	for _, k := range Kinds {
		got, ok := ParseKind(k.Name())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.Name(), got, ok)
		}
		tool := k.Tool()
		if tool.Name != k.Name() || tool.Description == "" || tool.InputSchema == nil {
			t.Errorf("incomplete tool definition for %v: %+v", k, tool)
		}
		names = append(names, k.String())
	}
	if diff := cmp.Diff([]string{"greet", "generate_story", "query_html"}, names); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if _, ok := ParseKind("Greet"); ok {
		t.Error("ParseKind should be case sensitive")
	}
}

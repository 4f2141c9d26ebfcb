// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package toolclient drives the tool server from the client side: it starts
// the server, checks that it exposes the expected tools, and calls them.
package toolclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// ErrNoGreet is returned by Start when the server does not list a greet tool.
var ErrNoGreet = errors.New(`server did not expose a "greet" tool`)

// A Dialer returns a fresh transport to the server each time it is called.
type Dialer func(ctx context.Context) (mcp.Transport, error)

// CommandDialer runs command with args and speaks MCP over its stdin/stdout.
func CommandDialer(command string, args ...string) Dialer {
	return func(ctx context.Context) (mcp.Transport, error) {
		return &mcp.CommandTransport{Command: exec.Command(command, args...)}, nil
	}
}

// StreamableDialer connects to a server's streamable HTTP endpoint.
func StreamableDialer(endpoint string) Dialer {
	return func(ctx context.Context) (mcp.Transport, error) {
		return &mcp.StreamableClientTransport{Endpoint: endpoint}, nil
	}
}

type Options struct {
	Logger zerolog.Logger
	// CreateMessageHandler answers the server's sampling requests. If nil,
	// the client does not advertise sampling and the server's generating
	// tools report an error.
	CreateMessageHandler func(context.Context, *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error)
}

// A Client holds at most one session to the server, opened on first use.
type Client struct {
	dial   Dialer
	client *mcp.Client
	logger zerolog.Logger

	mu      sync.Mutex
	session *mcp.ClientSession
}

func New(dial Dialer, opts Options) *Client {
	impl := &mcp.Implementation{Name: "mcp-tool-client", Version: "v0.1.0"}
	return &Client{
		dial:   dial,
		client: mcp.NewClient(impl, &mcp.ClientOptions{CreateMessageHandler: opts.CreateMessageHandler}),
		logger: opts.Logger,
	}
}

// Start connects to the server if not already connected.
func (c *Client) Start(ctx context.Context) error {
	_, err := c.start(ctx)
	return err
}

func (c *Client) start(ctx context.Context) (*mcp.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}
	t, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Msg("starting MCP server")
	cs, err := c.client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to server: %w", err)
	}
	if err := checkGreet(ctx, cs); err != nil {
		_ = cs.Close()
		return nil, err
	}
	c.logger.Info().Msg("MCP server connected")
	c.session = cs
	return cs, nil
}

func checkGreet(ctx context.Context, cs *mcp.ClientSession) error {
	res, err := cs.ListTools(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}
	for _, t := range res.Tools {
		if t.Name == "greet" {
			return nil
		}
	}
	return ErrNoGreet
}

// Close ends the current session, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	c.logger.Info().Msg("MCP server disconnected")
	return err
}

// Tools lists the tools the server exposes.
func (c *Client) Tools(ctx context.Context) ([]*mcp.Tool, error) {
	cs, err := c.start(ctx)
	if err != nil {
		return nil, err
	}
	res, err := cs.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	return res.Tools, nil
}

// A Reply is the text of a tool result.
type Reply struct {
	Text    string
	IsError bool
}

// Call invokes the named tool. If the session has been closed underneath it,
// Call reconnects once and retries.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (*Reply, error) {
	res, err := c.call(ctx, name, args)
	if isClosed(err) {
		c.logger.Warn().Err(err).Msg("session closed, reconnecting")
		_ = c.Close()
		res, err = c.call(ctx, name, args)
	}
	if err != nil {
		return nil, err
	}
	return &Reply{Text: ResultText(res), IsError: res.IsError}, nil
}

func (c *Client) call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	cs, err := c.start(ctx)
	if err != nil {
		return nil, err
	}
	return cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
}

// Greet calls the greet tool.
func (c *Client) Greet(ctx context.Context, name string) (*Reply, error) {
	return c.Call(ctx, "greet", map[string]any{"name": name})
}

func isClosed(err error) bool {
	return errors.Is(err, mcp.ErrConnectionClosed) || errors.Is(err, io.EOF)
}

// ResultText returns the first text part of res. Without one, it returns the
// JSON of the structured content, or of the content list.
func ResultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	var v any = res.Content
	if res.StructuredContent != nil {
		v = res.StructuredContent
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

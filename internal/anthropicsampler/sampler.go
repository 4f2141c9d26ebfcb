// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package anthropicsampler answers MCP sampling requests with the Anthropic
// Messages API. It runs on the client side of an MCP connection.
package anthropicsampler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = anthropic.ModelClaude3_7SonnetLatest

// DefaultMaxTokens is the default ceiling on requested output tokens.
const DefaultMaxTokens = 8192

// ErrUnsupportedContent is returned for sampling messages that are not text.
var ErrUnsupportedContent = errors.New("unsupported sampling content")

type Options struct {
	Model anthropic.Model
	// MaxTokens caps the maxTokens of incoming requests, which may exceed what
	// the model can produce. Zero means DefaultMaxTokens.
	MaxTokens int64
	Logger    zerolog.Logger
}

// A Sampler turns sampling requests into Anthropic messages.
type Sampler struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    zerolog.Logger
}

func New(client anthropic.Client, opts Options) *Sampler {
	s := &Sampler{
		client:    client,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		logger:    opts.Logger,
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.maxTokens <= 0 {
		s.maxTokens = DefaultMaxTokens
	}
	return s
}

// Handle has the signature of [mcp.ClientOptions.CreateMessageHandler].
func (s *Sampler) Handle(ctx context.Context, req *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
	return s.CreateMessage(ctx, req.Params)
}

// CreateMessage generates one assistant message for p.
func (s *Sampler) CreateMessage(ctx context.Context, p *mcp.CreateMessageParams) (*mcp.CreateMessageResult, error) {
	params, err := s.messageParams(p)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("model", string(params.Model)).
		Int("messages", len(params.Messages)).
		Int64("max_tokens", params.MaxTokens).
		Msg("calling Anthropic Messages API")

	msg, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return &mcp.CreateMessageResult{
		Content:    &mcp.TextContent{Text: b.String()},
		Model:      string(msg.Model),
		Role:       "assistant",
		StopReason: stopReason(msg.StopReason),
	}, nil
}

func (s *Sampler) messageParams(p *mcp.CreateMessageParams) (anthropic.MessageNewParams, error) {
	if p == nil || len(p.Messages) == 0 {
		return anthropic.MessageNewParams{}, errors.New("sampling request has no messages")
	}
	msgs := make([]anthropic.MessageParam, 0, len(p.Messages))
	for i, m := range p.Messages {
		if m == nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("message %d: %w: missing message", i, ErrUnsupportedContent)
		}
		tc, ok := m.Content.(*mcp.TextContent)
		if !ok || tc == nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("message %d: %w: %T", i, ErrUnsupportedContent, m.Content)
		}
		block := anthropic.NewTextBlock(tc.Text)
		if m.Role == "assistant" {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	maxTokens := p.MaxTokens
	if maxTokens <= 0 || maxTokens > s.maxTokens {
		maxTokens = s.maxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if p.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.SystemPrompt}}
	}
	if p.Temperature != 0 {
		params.Temperature = anthropic.Float(p.Temperature)
	}
	if len(p.StopSequences) > 0 {
		params.StopSequences = p.StopSequences
	}
	return params, nil
}

// stopReason maps Anthropic stop reasons to their MCP spellings.
func stopReason(r anthropic.StopReason) string {
	switch r {
	case anthropic.StopReasonEndTurn:
		return "endTurn"
	case anthropic.StopReasonMaxTokens:
		return "maxTokens"
	case anthropic.StopReasonStopSequence:
		return "stopSequence"
	}
	return string(r)
}

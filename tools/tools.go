// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package tools implements the greet, generate_story and query_html tools.
//
// A [Registry] runs tool invocations either in-process, with [Registry.Invoke],
// or on behalf of MCP clients once added to an [mcp.Server] with
// [Registry.Register]. Both paths share one dispatch, so results are identical.
//
// Local failures, such as a missing HTML file, are reported as the tool's text
// result. A missing or failing sampling capability is returned as an error.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yasomaru/mcp-tool-demo/document"
	"github.com/yasomaru/mcp-tool-demo/internal/metrics"
	"github.com/yasomaru/mcp-tool-demo/prompt"
	"github.com/yasomaru/mcp-tool-demo/sampling"
)

var (
	// ErrUnknownTool is returned when invoking a tool name outside the served set.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when arguments do not match a tool's schema.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// An Invocation is one named tool call.
type Invocation struct {
	Name      string
	Arguments map[string]any
}

// Options configures a Registry.
type Options struct {
	Logger zerolog.Logger
	// Metrics, if non-nil, records tool outcomes and document loads.
	Metrics *metrics.Metrics
	// Sampling sends generation requests. If nil, a client sharing Logger,
	// Metrics and TracerProvider is created.
	Sampling *sampling.Client
	// TracerProvider, if non-nil, replaces the global provider for sampling
	// spans.
	TracerProvider trace.TracerProvider
	// MaxDocumentBytes caps the HTML embedded in query_html prompts. Zero
	// means no cap.
	MaxDocumentBytes int
}

// A Registry dispatches tool invocations. It is safe for concurrent use.
type Registry struct {
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	sampling *sampling.Client
	composer prompt.Composer
}

// New returns a Registry. opts may be nil.
func New(opts *Options) *Registry {
	if opts == nil {
		opts = &Options{Logger: zerolog.Nop()}
	}
	sc := opts.Sampling
	if sc == nil {
		sopts := []sampling.Option{sampling.WithLogger(opts.Logger), sampling.WithMetrics(opts.Metrics)}
		if opts.TracerProvider != nil {
			sopts = append(sopts, sampling.WithTracer(opts.TracerProvider.Tracer(sampling.TracerName)))
		}
		sc = sampling.NewClient(sopts...)
	}
	return &Registry{
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		sampling: sc,
		composer: prompt.Composer{MaxDocumentBytes: opts.MaxDocumentBytes},
	}
}

// Register adds every tool to server.
func (r *Registry) Register(server *mcp.Server) {
	for _, k := range Kinds {
		mcp.AddTool(server, k.Tool(), r.handler(k))
	}
}

func (r *Registry) handler(k Kind) mcp.ToolHandlerFor[map[string]any, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		var s sampling.Sampler
		if req != nil && req.Session != nil {
			s = req.Session
		}
		text, err := r.run(ctx, k, s, args)
		if err != nil {
			return nil, nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	}
}

// Invoke runs inv in-process. s is the sampling capability used by the
// generating tools; it may be nil for tools that never sample.
func (r *Registry) Invoke(ctx context.Context, s sampling.Sampler, inv Invocation) (string, error) {
	k, ok := ParseKind(inv.Name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, inv.Name)
	}
	return r.run(ctx, k, s, inv.Arguments)
}

func (r *Registry) run(ctx context.Context, k Kind, s sampling.Sampler, args map[string]any) (string, error) {
	log := r.logger.With().
		Str("tool", k.Name()).
		Str("invocation_id", uuid.NewString()).
		Logger()
	ctx = log.WithContext(ctx)

	log.Debug().Msg("tool invoked")
	text, outcome, err := r.dispatch(ctx, k, s, args)
	r.metrics.ToolCall(k.Name(), outcome)
	switch outcome {
	case metrics.OutcomeError:
		log.Error().Err(err).Msg("tool failed")
	case metrics.OutcomeUserError:
		log.Warn().Str("result", text).Msg("tool reported a user error")
	default:
		log.Debug().Int("result_bytes", len(text)).Msg("tool completed")
	}
	return text, err
}

// dispatch runs the tool body. Exactly one arm exists per Kind.
func (r *Registry) dispatch(ctx context.Context, k Kind, s sampling.Sampler, args map[string]any) (string, string, error) {
	fail := func(err error) (string, string, error) {
		return "", metrics.OutcomeError, fmt.Errorf("%s: %w", k.Name(), err)
	}
	switch k {
	case Greet:
		a := greetArgs{Name: prompt.DefaultName}
		if err := decode(args, &a); err != nil {
			return fail(err)
		}
		return prompt.Greeting(a.Name), metrics.OutcomeOK, nil

	case GenerateStory:
		a := storyArgs{Topic: prompt.DefaultTopic, Style: prompt.DefaultStyle}
		if err := decode(args, &a); err != nil {
			return fail(err)
		}
		text, err := r.sampling.Sample(ctx, k.Name(), s, prompt.Story(a.Topic, a.Style))
		if err != nil {
			return "", metrics.OutcomeError, err
		}
		return text, metrics.OutcomeOK, nil

	case QueryHTML:
		var a queryHTMLArgs
		if err := decode(args, &a, "html_path", "query"); err != nil {
			return fail(err)
		}
		doc := document.Load(a.HTMLPath)
		r.metrics.DocumentLoad(doc.Status.String())
		if doc.Status != document.OK {
			return doc.Message(), metrics.OutcomeUserError, nil
		}
		zerolog.Ctx(ctx).Debug().
			Str("path", doc.Path).
			Int64("bytes", doc.Size).
			Msg("document loaded")
		text, err := r.sampling.Sample(ctx, k.Name(), s, r.composer.HTMLQuery(a.Query, doc.Text))
		if err != nil {
			return "", metrics.OutcomeError, err
		}
		return text, metrics.OutcomeOK, nil
	}
	return fail(ErrUnknownTool)
}

// decode converts args into v, after checking that each required key is present.
// Fields of v whose keys are absent from args keep their values.
func decode(args map[string]any, v any, required ...string) error {
	for _, key := range required {
		if _, ok := args[key]; !ok {
			return fmt.Errorf("%w: missing required argument %q", ErrInvalidArguments, key)
		}
	}
	if len(args) == 0 {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

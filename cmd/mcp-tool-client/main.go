// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// The mcp-tool-client command calls the tool server's tools from a terminal.
// It answers the server's sampling requests with the Anthropic Messages API
// when ANTHROPIC_API_KEY is set, reading a .env file in the working directory
// if present.
//
//	mcp-tool-client greet Ada
//	mcp-tool-client story --topic "a lighthouse" --style noir
//	mcp-tool-client query-html ./page.html "What is the title?"
//
// By default it starts the server as a subprocess over stdio. --url connects
// to a running HTTP server instead, and --in-process runs the tools without
// any server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yasomaru/mcp-tool-demo/internal/anthropicsampler"
	"github.com/yasomaru/mcp-tool-demo/internal/logging"
	"github.com/yasomaru/mcp-tool-demo/internal/toolclient"
	"github.com/yasomaru/mcp-tool-demo/prompt"
	"github.com/yasomaru/mcp-tool-demo/sampling"
	"github.com/yasomaru/mcp-tool-demo/tools"
)

const apiKeyEnv = "ANTHROPIC_API_KEY"

// errToolFailed is returned after printing a tool's error result.
var errToolFailed = errors.New("tool reported an error")

type flags struct {
	server    string
	url       string
	inProcess bool
	model     string
	maxTokens int64
	logLevel  string
}

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var fl flags
	root := &cobra.Command{
		Use:          "mcp-tool-client",
		Short:        "Call the mcp-tool-demo tools",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&fl.server, "server", "mcp-tool-demo", "server command, started with the stdio argument")
	pf.StringVar(&fl.url, "url", "", "streamable HTTP endpoint of a running server, instead of --server")
	pf.BoolVar(&fl.inProcess, "in-process", false, "run the tools in this process without a server")
	pf.StringVar(&fl.model, "model", string(anthropicsampler.DefaultModel), "Anthropic model used for sampling")
	pf.Int64Var(&fl.maxTokens, "max-tokens", anthropicsampler.DefaultMaxTokens, "ceiling on sampled output tokens")
	pf.StringVar(&fl.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		&cobra.Command{
			Use:   "tools",
			Short: "List the server's tools",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return listTools(cmd.Context(), cmd.OutOrStdout(), fl)
			},
		},
		&cobra.Command{
			Use:   "greet [name]",
			Short: "Call greet",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := prompt.DefaultName
				if len(args) == 1 {
					name = args[0]
				}
				inv := tools.Invocation{Name: tools.Greet.Name(), Arguments: map[string]any{"name": name}}
				return call(cmd.Context(), cmd.OutOrStdout(), fl, inv)
			},
		},
		storyCmd(&fl),
		&cobra.Command{
			Use:   "query-html <path> <query>",
			Short: "Call query_html on a local HTML file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				inv := tools.Invocation{
					Name:      tools.QueryHTML.Name(),
					Arguments: map[string]any{"html_path": args[0], "query": args[1]},
				}
				return call(cmd.Context(), cmd.OutOrStdout(), fl, inv)
			},
		},
	)
	return root
}

func storyCmd(fl *flags) *cobra.Command {
	var topic, style string
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Call generate_story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := map[string]any{}
			if cmd.Flags().Changed("topic") {
				args["topic"] = topic
			}
			if cmd.Flags().Changed("style") {
				args["style"] = style
			}
			inv := tools.Invocation{Name: tools.GenerateStory.Name(), Arguments: args}
			return call(cmd.Context(), cmd.OutOrStdout(), *fl, inv)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "story topic")
	cmd.Flags().StringVar(&style, "style", "", "story style")
	return cmd
}

func newLogger(fl flags) (zerolog.Logger, error) {
	return logging.New(os.Stderr, fl.logLevel, logging.FormatConsole)
}

// newSampler returns nil when no API key is configured.
func newSampler(fl flags, logger zerolog.Logger) *anthropicsampler.Sampler {
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		logger.Warn().Msgf("%s is not set; tools that need sampling will fail", apiKeyEnv)
		return nil
	}
	return anthropicsampler.New(anthropic.NewClient(option.WithAPIKey(key)), anthropicsampler.Options{
		Model:     anthropic.Model(fl.model),
		MaxTokens: fl.maxTokens,
		Logger:    logger,
	})
}

func newClient(fl flags, logger zerolog.Logger, s *anthropicsampler.Sampler) *toolclient.Client {
	dial := toolclient.CommandDialer(fl.server, "stdio")
	if fl.url != "" {
		dial = toolclient.StreamableDialer(fl.url)
	}
	opts := toolclient.Options{Logger: logger}
	if s != nil {
		opts.CreateMessageHandler = s.Handle
	}
	return toolclient.New(dial, opts)
}

func listTools(ctx context.Context, w io.Writer, fl flags) error {
	logger, err := newLogger(fl)
	if err != nil {
		return err
	}
	if fl.inProcess {
		for _, k := range tools.Kinds {
			t := k.Tool()
			fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
		}
		return nil
	}
	c := newClient(fl, logger, nil)
	defer c.Close()
	ts, err := c.Tools(ctx)
	if err != nil {
		return err
	}
	for _, t := range ts {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
	}
	return nil
}

func call(ctx context.Context, w io.Writer, fl flags, inv tools.Invocation) error {
	logger, err := newLogger(fl)
	if err != nil {
		return err
	}
	var s *anthropicsampler.Sampler
	if inv.Name != tools.Greet.Name() {
		s = newSampler(fl, logger)
	}

	if fl.inProcess {
		r := tools.New(&tools.Options{Logger: logger})
		var sampler sampling.Sampler
		if s != nil {
			sampler = s
		}
		text, err := r.Invoke(ctx, sampler, inv)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, text)
		return nil
	}

	c := newClient(fl, logger, s)
	defer c.Close()
	reply, err := remote(ctx, c, inv)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, reply.Text)
	if reply.IsError {
		return errToolFailed
	}
	return nil
}

func remote(ctx context.Context, c *toolclient.Client, inv tools.Invocation) (*toolclient.Reply, error) {
	if name, ok := inv.Arguments["name"].(string); ok && inv.Name == tools.Greet.Name() {
		return c.Greet(ctx, name)
	}
	return c.Call(ctx, inv.Name, inv.Arguments)
}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// The mcp-tool-demo command runs the tool server.
//
//	mcp-tool-demo [stdio|http] [flags]
//
// With no mode, or with "stdio", it serves one client over stdin/stdout. With
// "http" it serves streamable HTTP on --addr, along with /healthz and /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yasomaru/mcp-tool-demo/internal/config"
	"github.com/yasomaru/mcp-tool-demo/internal/logging"
	"github.com/yasomaru/mcp-tool-demo/internal/metrics"
	"github.com/yasomaru/mcp-tool-demo/internal/tracing"
	"github.com/yasomaru/mcp-tool-demo/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.LookupEnv).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	defaults := config.Default()
	cmd := &cobra.Command{
		Use:          "mcp-tool-demo [stdio|http]",
		Short:        "Serve the greet, generate_story and query_html MCP tools",
		Version:      server.Version,
		Args:         cobra.MaximumNArgs(1),
		ValidArgs:    []string{string(config.ModeStdio), string(config.ModeHTTP)},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args, lookup)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.String("addr", defaults.Addr, "listen address in http mode")
	f.String("log-level", defaults.LogLevel, "log level (trace, debug, info, warn, error)")
	f.String("log-format", defaults.LogFormat, "log format (console, json)")
	f.Int("max-document-bytes", defaults.MaxDocumentBytes, "cap on HTML embedded in query_html prompts, 0 for no cap")
	f.Float64("rate-limit", defaults.RateLimit, "limited requests per second, 0 to disable")
	f.Int("rate-burst", defaults.RateBurst, "request burst size when rate limiting")
	f.String("rate-scope", string(defaults.RateScope), "requests the rate limit applies to (tools, global)")
	f.Duration("keepalive", defaults.KeepAlive, "ping interval for idle clients, 0 to disable")
	f.String("trace-endpoint", defaults.TraceEndpoint, "OTLP/HTTP traces URL, empty to disable tracing")
	f.Float64("trace-sample-rate", defaults.TraceSampleRate, "fraction of new traces to sample")
	return cmd
}

// loadConfig layers defaults, environment and explicitly set flags.
func loadConfig(cmd *cobra.Command, args []string, lookup func(string) (string, bool)) (config.Config, error) {
	cfg := config.Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}
	if len(args) == 1 {
		mode, err := config.ParseMode(args[0])
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}

	f := cmd.Flags()
	var errs []error
	set := func(name string, apply func() error) {
		if f.Changed(name) {
			errs = append(errs, apply())
		}
	}
	set("addr", func() (err error) { cfg.Addr, err = f.GetString("addr"); return })
	set("log-level", func() (err error) { cfg.LogLevel, err = f.GetString("log-level"); return })
	set("log-format", func() (err error) { cfg.LogFormat, err = f.GetString("log-format"); return })
	set("max-document-bytes", func() (err error) { cfg.MaxDocumentBytes, err = f.GetInt("max-document-bytes"); return })
	set("rate-limit", func() (err error) { cfg.RateLimit, err = f.GetFloat64("rate-limit"); return })
	set("rate-burst", func() (err error) { cfg.RateBurst, err = f.GetInt("rate-burst"); return })
	set("rate-scope", func() error {
		v, err := f.GetString("rate-scope")
		if err != nil {
			return err
		}
		cfg.RateScope, err = config.ParseRateScope(v)
		return err
	})
	set("keepalive", func() (err error) { cfg.KeepAlive, err = f.GetDuration("keepalive"); return })
	set("trace-endpoint", func() (err error) { cfg.TraceEndpoint, err = f.GetString("trace-endpoint"); return })
	set("trace-sample-rate", func() (err error) { cfg.TraceSampleRate, err = f.GetFloat64("trace-sample-rate"); return })
	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config) error {
	// stdout carries the protocol in stdio mode, so logs always go to stderr.
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tp, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:       cfg.TraceEndpoint,
		ServiceName:    server.Name,
		ServiceVersion: server.Version,
		SampleRate:     cfg.TraceSampleRate,
	})
	if err != nil {
		return err
	}
	opts := server.Options{
		Logger:           logger,
		Metrics:          metrics.New(reg),
		MaxDocumentBytes: cfg.MaxDocumentBytes,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
		RateScope:        cfg.RateScope,
		KeepAlive:        cfg.KeepAlive,
	}
	if tp != nil {
		opts.TracerProvider = tp
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("trace provider shutdown failed")
			}
		}()
		logger.Info().Str("endpoint", cfg.TraceEndpoint).Float64("sample_rate", cfg.TraceSampleRate).Msg("tracing enabled")
	}
	s := server.New(opts)
	logger.Info().Str("mode", string(cfg.Mode)).Str("version", server.Version).Msg("starting server")

	switch cfg.Mode {
	case config.ModeHTTP:
		return serveHTTP(ctx, s, reg, cfg.Addr, logger)
	default:
		if err := s.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}
}

func serveHTTP(ctx context.Context, s *mcp.Server, reg *prometheus.Registry, addr string, logger zerolog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewHTTPHandler(s, reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("path", server.MCPPath).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

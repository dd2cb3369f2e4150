// Command envconfigs prints the platform configuration resolved from the environment.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cleitonmarx/envconfigs"
	"github.com/cleitonmarx/envconfigs/config"
	"github.com/cleitonmarx/envconfigs/internal/logging"
	"github.com/cleitonmarx/envconfigs/introspection/mermaid"
)

const (
	formatYAML    = "yaml"
	formatJSON    = "json"
	formatMermaid = "mermaid"
	formatHTML    = "html"

	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, config.NewEnvVarProvider()); err != nil {
		fmt.Fprintln(os.Stderr, "envconfigs:", err)
		os.Exit(1)
	}
}

type cli struct {
	app *kingpin.Application

	file     *string
	logLevel *string

	show        *kingpin.CmdClause
	showFormat  *string
	showSecrets *bool

	get        *kingpin.CmdClause
	getKey     *string
	getSecrets *bool

	jobEnv *kingpin.CmdClause

	trace       *kingpin.CmdClause
	traceFormat *string
	traceServe  *string
}

func newCLI() *cli {
	c := &cli{app: kingpin.New("envconfigs", "Inspect the platform configuration resolved from the environment.")}
	c.file = c.app.Flag("file", "YAML file of KEY: value settings consulted when a variable is not set in the environment").String()
	c.logLevel = c.app.Flag("log-level", "Log level written to stderr").Default("warn").Enum("debug", "info", "warn", "error")

	c.show = c.app.Command("show", "Print every setting")
	c.showFormat = c.show.Flag("format", "Output format").Default(formatYAML).Enum(formatYAML, formatJSON)
	c.showSecrets = c.show.Flag("show-secrets", "Print secret values instead of masking them").Bool()

	c.get = c.app.Command("get", "Print the raw value of one key")
	c.getKey = c.get.Arg("key", "Configuration key").Required().String()
	c.getSecrets = c.get.Flag("show-secrets", "Print secret values instead of masking them").Bool()

	c.jobEnv = c.app.Command("job-env", "Print the environment passed to job containers as KEY=VALUE lines")

	c.trace = c.app.Command("trace", "Resolve every setting and print which keys were read, from where, and how")
	c.traceFormat = c.trace.Flag("format", "Output format").Default(formatYAML).Enum(formatYAML, formatJSON, formatMermaid, formatHTML)
	c.traceServe = c.trace.Flag("serve", "Serve the access graph over HTTP on this address instead of printing it").String()
	return c
}

func run(ctx context.Context, args []string, stdout io.Writer, env config.Provider) error {
	c := newCLI()
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(*c.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	provider, err := c.provider(env)
	if err != nil {
		return err
	}

	switch command {
	case c.show.FullCommand():
		return runShow(ctx, stdout, envconfigs.New(provider, config.WithLogger(logger)), *c.showFormat, *c.showSecrets)
	case c.get.FullCommand():
		return runGet(ctx, stdout, envconfigs.New(provider, config.WithLogger(logger)), *c.getKey, *c.getSecrets)
	case c.jobEnv.FullCommand():
		return runJobEnv(ctx, stdout, envconfigs.New(provider, config.WithLogger(logger)))
	case c.trace.FullCommand():
		cfg := envconfigs.New(provider, config.WithLogger(logger), config.WithIntrospection())
		return runTrace(ctx, stdout, logger, cfg, *c.traceFormat, *c.traceServe)
	}
	return fmt.Errorf("unknown command %q", command)
}

// provider layers the --file settings under env.
func (c *cli) provider(env config.Provider) (config.Provider, error) {
	if *c.file == "" {
		return env, nil
	}
	file, err := config.NewYAMLFileProvider(*c.file)
	if err != nil {
		return nil, err
	}
	return config.NewCompositeProvider(env, file), nil
}

func runShow(ctx context.Context, w io.Writer, cfg *envconfigs.EnvConfigs, format string, showSecrets bool) error {
	s, err := cfg.Snapshot(ctx)
	if err != nil {
		return err
	}
	if !showSecrets {
		s = s.Redacted()
	}
	return encode(w, format, s)
}

func runGet(ctx context.Context, w io.Writer, cfg *envconfigs.EnvConfigs, key string, showSecrets bool) error {
	value, err := cfg.Resolver().Required(ctx, key)
	if err != nil {
		return err
	}
	if cfg.Resolver().IsSecret(key) && !showSecrets && value != "" {
		value = "*****"
	}
	_, err = fmt.Fprintln(w, value)
	return err
}

func runJobEnv(ctx context.Context, w io.Writer, cfg *envconfigs.EnvConfigs) error {
	env, err := cfg.JobDefaultEnvMap(ctx)
	if err != nil {
		return err
	}
	for _, key := range slices.Sorted(maps.Keys(env)) {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, env[key]); err != nil {
			return err
		}
	}
	return nil
}

func runTrace(ctx context.Context, w io.Writer, logger *zap.Logger, cfg *envconfigs.EnvConfigs, format, addr string) error {
	if _, err := cfg.Snapshot(ctx); err != nil {
		if !errors.Is(err, config.ErrMissing) && !errors.Is(err, config.ErrInvalid) {
			return err
		}
		logger.Warn("configuration is incomplete", zap.Error(err))
	}
	report := cfg.Report()

	if addr != "" {
		return serve(ctx, logger, addr, mermaid.NewGraphHandler("envconfigs", report))
	}

	switch format {
	case formatMermaid:
		_, err := io.WriteString(w, mermaid.GenerateConfigGraph(report))
		return err
	case formatHTML:
		page, err := mermaid.RenderPage("envconfigs", report)
		if err != nil {
			return err
		}
		_, err = w.Write(page)
		return err
	default:
		return encode(w, format, report)
	}
}

func serve(ctx context.Context, logger *zap.Logger, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: shutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving configuration graph", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		return server.Close()
	}
	return nil
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

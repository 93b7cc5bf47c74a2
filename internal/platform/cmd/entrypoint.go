// Package cmd holds the startup plumbing shared by every skirmish command.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/louisbranch/skirmish/internal/platform/config"
	"github.com/louisbranch/skirmish/internal/platform/otel"
	"github.com/louisbranch/skirmish/internal/platform/timeouts"
)

// Command names used for tracing resources and log prefixes.
const (
	ServiceEncounter       = "encounter"
	ServiceScenario        = "scenario"
	ServiceCatalogImporter = "catalog-importer"
)

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// NewLogger returns the operational logger for service, prefixed with its
// upper-cased name, e.g. "[ENCOUNTER] ".
func NewLogger(service string, w io.Writer) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	prefix := ""
	if name := strings.TrimSpace(service); name != "" {
		prefix = "[" + strings.ToUpper(name) + "] "
	}
	return log.New(w, prefix, log.LstdFlags)
}

// SignalContext returns a context canceled on interrupt or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// RunWithTelemetry configures tracing, runs the command and flushes spans
// before returning.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

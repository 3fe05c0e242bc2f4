package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/football-live/internal/app"
	"github.com/riskibarqy/football-live/internal/config"
	"github.com/riskibarqy/football-live/internal/platform/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Service: "football-live-sync",
		Version: cfg.ServiceVersion,
		Env:     cfg.AppEnv,
		Console: true,
	})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	services, err := app.NewServices(cfg, logger)
	if err != nil {
		logger.Error("build services", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	switch cmd {
	case "run":
		result := services.Sync.RunSync(ctx)
		writeJSON(os.Stdout, result)
		if result.Error != "" {
			os.Exit(1)
		}
	case "sources":
		writeJSON(os.Stdout, services.Sources.Diagnose(ctx))
	case "list":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "list requires a source id")
			os.Exit(2)
		}
		items, err := services.Sources.List(ctx, os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "list %s: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		writeJSON(os.Stdout, items)
	case "resolve":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "resolve requires a detail url")
			os.Exit(2)
		}
		result := services.Resolve.Resolve(ctx, os.Args[2])
		writeJSON(os.Stdout, result)
		if !result.OK {
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func writeJSON(w io.Writer, v any) {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
	_, _ = w.Write(append(out, '\n'))
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s <run|sources|list|resolve> [args]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s run\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s sources\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s list streameast\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s resolve https://example.com/match/arsenal-vs-chelsea\n", filepath.Base(os.Args[0]))
}

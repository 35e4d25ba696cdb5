// Command intel analyzes, imports and synthesizes financial transaction data.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/finance-intelligence/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "analyze":
		err = runAnalyze(ctx, cfg, logger, args)
	case "import":
		err = runImport(ctx, cfg, logger, args)
	case "synthesize":
		err = runSynthesize(ctx, cfg, logger, args)
	case "siog-sample":
		err = runSIOGSample(ctx, cfg, logger, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errBatchRejected) {
			logger.Error("command failed", "command", command, "error", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Intelligence CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  intel <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze       Profile a file and propose a field mapping")
	fmt.Println("  import        Clean, convert and validate a file, optionally persisting it")
	fmt.Println("  synthesize    Generate synthetic transactions from a history profile")
	fmt.Println("  siog-sample   Write a synthetic SIOG export")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'intel <command> -h' for more information on a command.")
}

// newLogger writes JSON to stderr so that stdout carries only command output.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

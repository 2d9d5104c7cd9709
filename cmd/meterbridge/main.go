// Package main is the entry point for the meterbridge binary.
// It provides a CLI for validating pipeline configuration and sending
// one-shot telemetry through the publish pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meterbridge/telemetry-go/pkg/client"
	"github.com/meterbridge/telemetry-go/pkg/config"
	"github.com/meterbridge/telemetry-go/pkg/contracts"
	"github.com/meterbridge/telemetry-go/pkg/logging"
	"github.com/meterbridge/telemetry-go/pkg/transport"
)

const defaultConfigPath = "meterbridge.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for meterbridge
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meterbridge",
		Short: "Telemetry publish pipeline CLI",
		Long: `Validate pipeline configuration and send one-shot telemetry records
through the buffer/serialize/publish pipeline.

Example:
  meterbridge send --config meterbridge.yaml --kind event --name deploy.finished`,
	}

	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newSendCmd())
	return rootCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			fmt.Printf("configuration ok: %d endpoint(s)\n", len(cfg.Endpoints))
			return nil
		},
	}
}

func newSendCmd() *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send one telemetry record through the pipeline",
		RunE:  runSend,
	}
	sendCmd.Flags().String("kind", "event", "Record kind (event or trace)")
	sendCmd.Flags().String("name", "", "Event name (kind=event)")
	sendCmd.Flags().String("message", "", "Trace message (kind=trace)")
	sendCmd.Flags().Duration("timeout", 30*time.Second, "Publish timeout")
	return sendCmd
}

func runSend(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	kind, _ := cmd.Flags().GetString("kind")
	name, _ := cmd.Flags().GetString("name")
	message, _ := cmd.Flags().GetString("message")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	logger := logging.New(logging.Config{Level: logLevel, Pretty: true})

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	// Endpoints with use_auth draw their bearer token from the
	// environment; richer providers belong to embedding applications.
	var provider transport.TokenProvider
	if token := os.Getenv("METERBRIDGE_BEARER_TOKEN"); token != "" {
		provider = transport.StaticTokenProvider(token)
	}

	publishers, err := client.PublishersFromConfig(cfg, provider, logger)
	if err != nil {
		return err
	}

	tc, err := client.New(publishers, client.WithLogger(logger))
	if err != nil {
		return err
	}

	now := time.Now()
	switch kind {
	case "event":
		if name == "" {
			return fmt.Errorf("--name is required for kind=event")
		}
		tc.Add(&contracts.Event{
			Common: contracts.Common{Timestamp: now},
			Name:   name,
		})
	case "trace":
		if message == "" {
			return fmt.Errorf("--message is required for kind=trace")
		}
		tc.Add(&contracts.Trace{
			Common:   contracts.Common{Timestamp: now},
			Message:  message,
			Severity: contracts.Severity(contracts.Information),
		})
	default:
		return fmt.Errorf("unsupported kind %q", kind)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := tc.PublishAsync(ctx)
	failed := 0
	for _, res := range results {
		if !res.Success {
			failed++
		}
		logger.Info("publish result",
			"success", res.Success,
			"items", res.ItemCount,
			"status", res.StatusCode,
			"duration", res.Duration)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d publisher(s) failed", failed, len(results))
	}
	return nil
}

package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meterbridge/telemetry-go/pkg/config"
	"github.com/meterbridge/telemetry-go/pkg/transport"
)

// PublishersFromConfig builds one HTTP publisher per configured endpoint.
// Endpoints with use_auth set get the supplied token provider attached;
// configuring use_auth without a provider is a construction error, not a
// silent fallback to key-only mode.
func PublishersFromConfig(cfg *config.Config, provider transport.TokenProvider, logger *slog.Logger) ([]transport.Publisher, error) {
	publishers := make([]transport.Publisher, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		pubCfg := transport.Config{
			EndpointURL:        ep.URL,
			InstrumentationKey: cfg.InstrumentationKey,
			Logger:             logger,
		}
		if ep.UseAuth {
			if provider == nil {
				return nil, fmt.Errorf("endpoint %s: use_auth set but no token provider configured", ep.URL)
			}
			pubCfg.TokenProvider = provider
		}
		pub, err := transport.NewHTTPPublisher(pubCfg)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", ep.URL, err)
		}
		publishers = append(publishers, pub)
	}
	return publishers, nil
}

// ReloadFromFile loads the configuration at path, rebuilds the publisher
// set from it, and swaps it into the client. The previous set stays in
// place when loading or building fails.
func (c *Client) ReloadFromFile(path string, provider transport.TokenProvider, logger *slog.Logger) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	publishers, err := PublishersFromConfig(cfg, provider, logger)
	if err != nil {
		return err
	}
	return c.SwapPublishers(publishers)
}

// WatchConfig starts a configuration watcher that rebuilds the client's
// publisher set whenever the file at path changes. The caller stops the
// returned watcher (or cancels ctx) during shutdown.
func WatchConfig(ctx context.Context, c *Client, path string, provider transport.TokenProvider, logger *slog.Logger) (*config.Watcher, error) {
	w, err := config.NewWatcher(path, func(p string) error {
		return c.ReloadFromFile(p, provider, logger)
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

package main

import (
	"log/slog"

	"github.com/jonathan/parser-service/internal/config"
	"github.com/jonathan/parser-service/internal/daxtra"
	"github.com/jonathan/parser-service/internal/observability"
	"github.com/jonathan/parser-service/internal/service"
	"github.com/jonathan/parser-service/internal/transport"
)

// clientOptions maps the resolved configuration onto the DaXtra client.
func clientOptions(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) daxtra.Options {
	opts := daxtra.Options{
		BaseURL:        cfg.BaseURL,
		Account:        cfg.Account,
		JWTSecret:      cfg.JWTSecret,
		DefaultTimeout: cfg.Timeout(),
		Turbo:          cfg.Turbo,
		TokenTTL:       cfg.TokenTTLDuration(),
		Logger:         logger,
	}
	if metrics != nil {
		opts.TransportOptions = append(opts.TransportOptions, transport.WithObserver(metrics))
	}
	return opts
}

// newParser returns a handle that builds the DaXtra client on first use, so
// the service starts even before its remote credentials are configured.
func newParser(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *service.Lazy {
	return service.NewLazy(func() (service.Parser, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		client, err := daxtra.New(clientOptions(cfg, metrics, logger))
		if err != nil {
			return nil, err
		}
		logger.Info("daxtra client initialised", "base_url", cfg.BaseURL, "turbo", cfg.Turbo)
		return client, nil
	})
}

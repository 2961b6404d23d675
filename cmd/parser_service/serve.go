package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/parser-service/internal/config"
	"github.com/jonathan/parser-service/internal/observability"
	"github.com/jonathan/parser-service/internal/server"
	"github.com/jonathan/parser-service/internal/service"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that accepts document uploads and forwards them to DaXtra CVX.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 3000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger := observability.InitDefault(os.Stderr, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		// The client is built lazily; requests fail until this is fixed.
		logger.Warn("daxtra configuration incomplete", "error", err)
	}

	metrics := observability.NewMetrics()
	parser := newParser(cfg, metrics, logger)

	srv := server.New(server.Config{
		Port:           cfg.Port,
		MaxUploadBytes: cfg.MaxUploadBytes,
		DaXtra: server.DaXtraInfo{
			BaseURL: cfg.BaseURL,
			Account: cfg.Account,
			Turbo:   cfg.Turbo,
		},
	}, server.Services{
		Resumes:     service.NewResumeService(parser),
		Vacancies:   service.NewVacancyService(parser),
		Conversions: service.NewConversionService(parser, logger),
	}, metrics, logger)

	return srv.Start()
}

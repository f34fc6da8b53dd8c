package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zigate/zigated/pkg/db"
	"github.com/zigate/zigated/pkg/device"
	"github.com/zigate/zigated/pkg/device/schema"
	zigatemcp "github.com/zigate/zigated/pkg/mcp"
	"github.com/zigate/zigated/pkg/zigbee"
)

func main() {
	// Logging must go to stderr — stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/zigated/zigated.db)")
	serialPort := flag.String("port", "", "Path to ZiGate serial port (overrides the configured value)")
	flag.Parse()

	ctx := context.Background()

	// Open database
	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	// Run migrations
	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Bootstrap if needed (first run)
	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check bootstrap status")
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := database.Bootstrap(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap database")
		}
		log.Info().Msg("Database bootstrapped successfully")
	}

	// Load configuration
	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Try to connect to the ZiGate dongle; fall back to NullController
	var controller device.Controller

	port := cfg.SerialPort()
	if *serialPort != "" {
		port = *serialPort
	}

	zbController, err := zigbee.NewController(port, cfg.StrictChecksum())
	if err != nil {
		log.Warn().Err(err).Str("port", port).Msg("ZiGate controller unavailable, using null controller")
		controller = device.NewNullController()
	} else {
		controller = zbController
	}

	validator := schema.NewValidator()

	// Create and start MCP server
	mcpServer := zigatemcp.NewServer(controller, validator)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}

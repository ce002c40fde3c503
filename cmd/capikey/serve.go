package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/remiblancher/capikey/internal/api/server"
)

// Serve command flags
var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the key conversion HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /health
  GET  /ready
  POST /api/v1/blob/parse
  POST /api/v1/blob/build
  POST /api/v1/blob/weaken
  GET  /api/v1/layout/{bits}
  POST /api/v1/xml/redact

Environment variables:
  CAPIKEY_PORT    Port to listen on
  CAPIKEY_HOST    Host to bind to

Examples:
  capikey serve --port 8080
  capikey serve --config capikey.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: from config, 8080)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: all interfaces)")
}

// applyServeOverrides applies environment variables and flags over the config.
func applyServeOverrides() {
	if servePort == 0 {
		if v, err := strconv.Atoi(os.Getenv("CAPIKEY_PORT")); err == nil {
			servePort = v
		}
	}
	if serveHost == "" {
		serveHost = os.Getenv("CAPIKEY_HOST")
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeOverrides()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, version, cliLog).Run(ctx)
}

// Command capikey converts RSA keys between CryptoAPI blobs and RSAKeyValue XML.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remiblancher/capikey/internal/config"
	"github.com/remiblancher/capikey/internal/logger"
	"github.com/remiblancher/capikey/pkg/audit"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	auditLogPath string
	configPath   string
	verbose      bool
)

// Loaded in PersistentPreRunE.
var (
	cfg    = config.DefaultConfig()
	cliLog = logger.Nop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "capikey",
	Short: "CryptoAPI RSA key blob toolkit",
	Long: `capikey reads and writes RSA keys in the Microsoft CryptoAPI
PUBLICKEYBLOB / PRIVATEKEYBLOB format and the .NET RSAKeyValue XML format.

Blob files may be raw binary or base64 text.

Examples:
  # Show the blob layout for a 2048-bit key
  capikey layout 2048

  # Convert a private blob to XML
  capikey blob to-xml key.blob --private --out key.xml

  # Convert XML back to a blob
  capikey blob from-xml key.xml --out key.blob

  # Export the public key for OpenSSH
  capikey key export key.blob --format ssh`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = os.Getenv("CAPIKEY_CONFIG")
		}
		loaded := config.DefaultConfig()
		if configPath != "" {
			var err error
			loaded, err = config.Load(configPath)
			if err != nil {
				return err
			}
		}
		cfg = loaded

		logCfg := cfg.Log
		if verbose {
			logCfg.Level = "debug"
		}
		cliLog = logger.New(logCfg)

		// Check for audit log path from environment, then config
		if auditLogPath == "" {
			auditLogPath = os.Getenv("CAPIKEY_AUDIT_LOG")
		}
		if auditLogPath == "" {
			auditLogPath = cfg.Audit.Path
		}
		if auditLogPath != "" {
			if err := audit.InitFile(auditLogPath); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
			cliLog.Debug("audit log enabled", logger.String("path", auditLogPath))
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = cliLog.Sync()
		return audit.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set CAPIKEY_AUDIT_LOG env var)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML config file (or set CAPIKEY_CONFIG env var)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(blobCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(auditCmd)
}

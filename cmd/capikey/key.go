package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	gocose "github.com/veraison/go-cose"

	"github.com/remiblancher/capikey/internal/logger"
	"github.com/remiblancher/capikey/pkg/audit"
	"github.com/remiblancher/capikey/pkg/cosekey"
	"github.com/remiblancher/capikey/pkg/rsakey"
	"github.com/remiblancher/capikey/pkg/sshkey"
	"github.com/remiblancher/capikey/pkg/xmlkey"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Key export commands",
	Long:  `Commands for exporting blob keys to other formats.`,
}

var keyExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a blob key to another format",
	Long: `Export the key held in a blob file.

Formats:
  xml   - RSAKeyValue document
  cose  - COSE_Key (RFC 8230), deterministic CBOR
  ssh   - OpenSSH authorized_keys line (public only)
  pem   - PKIX SubjectPublicKeyInfo (public only)

Examples:
  capikey key export key.blob --format ssh --comment alice@host
  capikey key export key.blob --format cose --alg PS256 --private --out key.cbor`,
	Args: cobra.ExactArgs(1),
	RunE: runKeyExport,
}

var (
	keyExportFormat  string
	keyExportPrivate bool
	keyExportOut     string
	keyExportAlg     string
	keyExportKID     string
	keyExportComment string
)

func init() {
	keyExportCmd.Flags().StringVarP(&keyExportFormat, "format", "f", "xml", "Output format: xml, cose, ssh, pem")
	keyExportCmd.Flags().BoolVar(&keyExportPrivate, "private", false, "Include private parameters (xml, cose)")
	keyExportCmd.Flags().StringVarP(&keyExportOut, "out", "o", "", "Output file (default: stdout)")
	keyExportCmd.Flags().StringVar(&keyExportAlg, "alg", "", "COSE algorithm: PS256, PS384, PS512")
	keyExportCmd.Flags().StringVar(&keyExportKID, "kid", "", "COSE key identifier")
	keyExportCmd.Flags().StringVar(&keyExportComment, "comment", "", "SSH key comment")

	keyCmd.AddCommand(keyExportCmd)
}

// parseCOSEAlgorithm maps an algorithm name to its COSE identifier.
func parseCOSEAlgorithm(name string) (gocose.Algorithm, error) {
	if name == "" {
		return 0, nil
	}
	for _, alg := range cosekey.SupportedAlgorithms {
		if strings.EqualFold(alg.String(), name) {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("unsupported COSE algorithm: %s (use PS256, PS384 or PS512)", name)
}

func runKeyExport(cmd *cobra.Command, args []string) error {
	b, err := decodeBlobFile(args[0])
	if err != nil {
		return err
	}
	// Public blobs export public-only xml and cose whatever was requested.
	private := keyExportPrivate && rsakey.IsPrivate(b.Key)

	var (
		data   []byte
		binary bool
	)
	format := strings.ToLower(keyExportFormat)
	switch format {
	case "xml":
		data, err = xmlkey.Marshal(b.Key, private)
	case "cose":
		var alg gocose.Algorithm
		alg, err = parseCOSEAlgorithm(keyExportAlg)
		if err != nil {
			return err
		}
		data, err = cosekey.Marshal(b.Key, private, cosekey.Params{KeyID: []byte(keyExportKID), Algorithm: alg})
		binary = true
	case "ssh":
		if keyExportPrivate {
			return fmt.Errorf("ssh format carries public keys only")
		}
		data, err = sshkey.MarshalAuthorizedKey(b.Key, keyExportComment)
	case "pem":
		if keyExportPrivate {
			return fmt.Errorf("pem format carries public keys only")
		}
		data, err = rsakey.MarshalPublicPEM(b.Key)
	default:
		return fmt.Errorf("unsupported format: %s (use xml, cose, ssh or pem)", keyExportFormat)
	}
	if err != nil {
		return err
	}

	if err := audit.LogKeyExported(keyExportOut, b.Key, format, private, ""); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	cliLog.Debug("key exported", logger.String("format", format), logger.Bool("private", private))
	return writeOutput(cmd, keyExportOut, data, binary)
}

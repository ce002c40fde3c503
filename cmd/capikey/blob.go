package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/capikey/internal/logger"
	"github.com/remiblancher/capikey/pkg/audit"
	"github.com/remiblancher/capikey/pkg/blob"
	"github.com/remiblancher/capikey/pkg/rsakey"
	"github.com/remiblancher/capikey/pkg/xmlkey"
)

var blobCmd = &cobra.Command{
	Use:   "blob",
	Short: "Key blob commands",
	Long:  `Commands for decoding, encoding and transforming CryptoAPI key blobs.`,
}

var blobInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Display blob header and regions",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlobInspect,
}

var blobToXMLCmd = &cobra.Command{
	Use:   "to-xml <file>",
	Short: "Convert a blob to RSAKeyValue XML",
	Long: `Decode a PUBLICKEYBLOB or PRIVATEKEYBLOB and write it as an
RSAKeyValue document. Private elements are written only with --private.

Examples:
  capikey blob to-xml key.blob
  capikey blob to-xml key.blob --private --out key.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runBlobToXML,
}

var blobFromXMLCmd = &cobra.Command{
	Use:   "from-xml <file>",
	Short: "Convert RSAKeyValue XML to a blob",
	Long: `Decode an RSAKeyValue document and encode it as a key blob.

A document carrying all private elements produces a PRIVATEKEYBLOB
unless --public is given. Without --out the blob is printed as base64.

Examples:
  capikey blob from-xml key.xml --out key.blob
  capikey blob from-xml key.xml --public --out pub.blob`,
	Args: cobra.ExactArgs(1),
	RunE: runBlobFromXML,
}

var blobWeakenCmd = &cobra.Command{
	Use:   "weaken <file>",
	Short: "Rewrite a private blob with a unit exponent",
	Long: `Rewrite a PRIVATEKEYBLOB so that the public exponent, DP, DQ and D
all equal one. The modulus and primes are kept. The result is an identity
key useful for exporting plaintext session keys; it provides no security.

Examples:
  capikey blob weaken key.blob --out weak.blob`,
	Args: cobra.ExactArgs(1),
	RunE: runBlobWeaken,
}

var (
	blobToXMLPrivate bool
	blobToXMLOut     string

	blobFromXMLPublic  bool
	blobFromXMLLenient bool
	blobFromXMLOut     string

	blobWeakenOut string
)

func init() {
	blobToXMLCmd.Flags().BoolVar(&blobToXMLPrivate, "private", false, "Include private elements")
	blobToXMLCmd.Flags().StringVarP(&blobToXMLOut, "out", "o", "", "Output file (default: stdout)")

	blobFromXMLCmd.Flags().BoolVar(&blobFromXMLPublic, "public", false, "Always write a PUBLICKEYBLOB")
	blobFromXMLCmd.Flags().BoolVar(&blobFromXMLLenient, "lenient", false, "Demote keys with partial private elements to public")
	blobFromXMLCmd.Flags().StringVarP(&blobFromXMLOut, "out", "o", "", "Output file (default: base64 on stdout)")

	blobWeakenCmd.Flags().StringVarP(&blobWeakenOut, "out", "o", "", "Output file (required)")
	_ = blobWeakenCmd.MarkFlagRequired("out")

	blobCmd.AddCommand(blobInspectCmd)
	blobCmd.AddCommand(blobToXMLCmd)
	blobCmd.AddCommand(blobFromXMLCmd)
	blobCmd.AddCommand(blobWeakenCmd)
}

// decodeBlobFile reads and decodes path, recording the attempt in the audit log.
func decodeBlobFile(path string) (*blob.Blob, error) {
	data, err := readBlobFile(path)
	if err != nil {
		return nil, err
	}
	b, err := blob.Decode(data)
	if err != nil {
		cliLog.Debug("blob decode failed", logger.String("path", path), logger.Error(err))
		return nil, err
	}
	if err := audit.LogBlobParsed(path, b.Key, "", nil); err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	return b, nil
}

func runBlobInspect(cmd *cobra.Command, args []string) error {
	b, err := decodeBlobFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Type:        %s (%d)\n", b.Header.Type, uint8(b.Header.Type))
	fmt.Fprintf(out, "Version:     %d\n", b.Header.Version)
	fmt.Fprintf(out, "Algorithm:   0x%08x\n", b.Header.AlgID)
	fmt.Fprintf(out, "Magic:       %s\n", b.RSAPubKey.MagicString())
	fmt.Fprintf(out, "Bit length:  %d\n", b.RSAPubKey.BitLength)
	fmt.Fprintf(out, "Size:        %d bytes\n", len(b.Bytes()))
	fmt.Fprintf(out, "Fingerprint: %s\n\n", audit.Fingerprint(b.Key))
	printRegions(cmd, b.Layout(), len(b.Bytes()))
	return nil
}

func runBlobToXML(cmd *cobra.Command, args []string) error {
	b, err := decodeBlobFile(args[0])
	if err != nil {
		return err
	}

	includePrivate := blobToXMLPrivate
	if !cmd.Flags().Changed("private") {
		includePrivate = cfg.XML.IncludePrivate
	}
	// A public blob yields public-only XML whatever was requested.
	private := includePrivate && rsakey.IsPrivate(b.Key)
	doc, err := xmlkey.Marshal(b.Key, private)
	if err != nil {
		return err
	}
	if err := audit.LogKeyExported(blobToXMLOut, b.Key, "xml", private, ""); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	cliLog.Debug("blob converted to xml", logger.BitLength(b.Key.BitLength()), logger.Bool("private", private))
	return writeOutput(cmd, blobToXMLOut, doc, false)
}

func runBlobFromXML(cmd *cobra.Command, args []string) error {
	k, err := readXMLFile(args[0], blobFromXMLLenient)
	if err != nil {
		return err
	}

	private := rsakey.IsPrivate(k) && !blobFromXMLPublic
	data, err := blob.Build(k, private)
	if err != nil {
		return err
	}
	if err := audit.LogBlobBuilt(blobFromXMLOut, k, private, ""); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	cliLog.Debug("blob built", logger.BitLength(k.BitLength()), logger.Bool("private", private))
	return writeOutput(cmd, blobFromXMLOut, data, true)
}

func runBlobWeaken(cmd *cobra.Command, args []string) error {
	b, err := decodeBlobFile(args[0])
	if err != nil {
		return err
	}
	if err := blob.Weaken(b); err != nil {
		return err
	}
	if err := audit.LogKeyWeakened(blobWeakenOut, b.Key, ""); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	cliLog.Warn("private key weakened", logger.Fingerprint(audit.Fingerprint(b.Key)))

	if err := writeOutput(cmd, blobWeakenOut, b.Bytes(), true); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Weak key written to %s\n", blobWeakenOut)
	return nil
}

package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remiblancher/capikey/pkg/blob"
	"github.com/remiblancher/capikey/pkg/rsakey"
	"github.com/remiblancher/capikey/pkg/xmlkey"
)

// readBlobFile reads a key blob stored as raw bytes or as base64 text.
func readBlobFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if len(data) > 0 && (data[0] == byte(blob.PrivateKeyBlob) || data[0] == byte(blob.PublicKeyBlob)) {
		return data, nil
	}
	text := strings.Join(strings.Fields(string(data)), "")
	if decoded, err := base64.StdEncoding.DecodeString(text); err == nil && len(decoded) > 0 {
		return decoded, nil
	}
	return data, nil
}

// writeOutput writes data to path, or to the command output when path is empty.
// Binary data written to the terminal is base64-encoded.
func writeOutput(cmd *cobra.Command, path string, data []byte, binary bool) error {
	if path == "" {
		out := data
		if binary {
			out = []byte(base64.StdEncoding.EncodeToString(data))
		}
		if !bytes.HasSuffix(out, []byte("\n")) {
			out = append(out, '\n')
		}
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}

	perm := os.FileMode(0644)
	if binary {
		perm = 0600
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readXMLFile decodes an RSAKeyValue document. lenient overrides the
// configured strictness.
func readXMLFile(path string, lenient bool) (rsakey.Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read XML key: %w", err)
	}
	return xmlkey.UnmarshalWithOptions(data, xmlkey.Options{Lenient: lenient || !cfg.XML.Strict})
}

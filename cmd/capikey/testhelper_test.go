package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/remiblancher/capikey/pkg/audit"
	"github.com/remiblancher/capikey/pkg/blob"
	"github.com/remiblancher/capikey/pkg/rsakey"
)

// executeCommand executes a Cobra command with the given args and returns output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// testContext holds test resources.
type testContext struct {
	t       *testing.T
	tempDir string
}

// newTestContext creates a new test context with a temp directory and
// resets every command flag.
func newTestContext(t *testing.T) *testContext {
	t.Helper()
	resetAllFlags()
	t.Setenv("CAPIKEY_AUDIT_LOG", "")
	t.Setenv("CAPIKEY_CONFIG", "")
	t.Cleanup(func() { _ = audit.Close() })
	return &testContext{t: t, tempDir: t.TempDir()}
}

// path returns a path within the temp directory.
func (tc *testContext) path(name string) string {
	return filepath.Join(tc.tempDir, name)
}

// writeFile writes content to a file in the temp directory.
func (tc *testContext) writeFile(name, content string) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tc.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}

// readFile reads a file from the temp directory.
func (tc *testContext) readFile(path string) []byte {
	tc.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tc.t.Fatalf("Failed to read %s: %v", path, err)
	}
	return data
}

// writeBlob generates an RSA key and writes it as a blob.
func (tc *testContext) writeBlob(name string, bits int, private bool) (string, *rsakey.PrivateKey) {
	tc.t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		tc.t.Fatalf("Failed to generate RSA key: %v", err)
	}
	k, err := rsakey.FromRSA(priv)
	if err != nil {
		tc.t.Fatalf("FromRSA() error = %v", err)
	}
	data, err := blob.Build(k, private)
	if err != nil {
		tc.t.Fatalf("Build() error = %v", err)
	}
	path := tc.path(name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		tc.t.Fatalf("Failed to write blob: %v", err)
	}
	return path, k
}

// resetAllFlags resets all flags to their default values.
// This is needed because Cobra retains flag values between test runs.
func resetAllFlags() {
	auditLogPath = ""
	configPath = ""
	verbose = false

	blobToXMLPrivate = false
	blobToXMLOut = ""
	blobFromXMLPublic = false
	blobFromXMLLenient = false
	blobFromXMLOut = ""
	blobWeakenOut = ""

	keyExportFormat = "xml"
	keyExportPrivate = false
	keyExportOut = ""
	keyExportAlg = ""
	keyExportKID = ""
	keyExportComment = ""

	servePort = 0
	serveHost = ""

	auditTailNum = 10
	auditShowJSON = false

	for _, cmd := range []*cobra.Command{blobToXMLCmd, blobFromXMLCmd, blobWeakenCmd, keyExportCmd, auditTailCmd} {
		cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}

// =============================================================================
// Assertion Helpers
// =============================================================================

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// assertFileExists verifies that a file exists at the given path.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("file %s does not exist", path)
	}
}

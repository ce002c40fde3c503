package sshkey

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

func TestU_MarshalAuthorizedKey(t *testing.T) {
	rk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	k, err := rsakey.FromRSA(rk)
	if err != nil {
		t.Fatalf("FromRSA() error = %v", err)
	}

	line, err := MarshalAuthorizedKey(k, "capikey@test")
	if err != nil {
		t.Fatalf("MarshalAuthorizedKey() error = %v", err)
	}
	if !strings.HasPrefix(string(line), "ssh-rsa ") || !strings.HasSuffix(string(line), " capikey@test\n") {
		t.Errorf("line = %q", line)
	}

	parsed, comment, _, _, err := ssh.ParseAuthorizedKey(line)
	if err != nil {
		t.Fatalf("ParseAuthorizedKey() error = %v", err)
	}
	if comment != "capikey@test" {
		t.Errorf("comment = %q", comment)
	}
	want, _ := ssh.NewPublicKey(&rk.PublicKey)
	if ssh.FingerprintSHA256(parsed) != ssh.FingerprintSHA256(want) {
		t.Error("fingerprint mismatch")
	}

	fp, err := Fingerprint(k)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if !strings.HasPrefix(fp, "SHA256:") {
		t.Errorf("Fingerprint() = %q", fp)
	}
}

func TestU_PublicKey_Incomplete(t *testing.T) {
	if _, err := PublicKey(&rsakey.PublicKey{}); err == nil {
		t.Error("PublicKey() accepted an empty key")
	}
	if _, err := PublicKey(nil); err == nil {
		t.Error("PublicKey() accepted nil")
	}
}

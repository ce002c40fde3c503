// Package sshkey renders the public half of an RSA key in OpenSSH formats.
package sshkey

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

// PublicKey converts the public half of k to an ssh.PublicKey.
func PublicKey(k rsakey.Key) (ssh.PublicKey, error) {
	if rsakey.IsNil(k) {
		return nil, rsakey.NewKeyError("ssh", rsakey.ErrIncompleteKey)
	}
	pub, err := k.Public().RSA()
	if err != nil {
		return nil, err
	}
	sk, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to SSH public key: %w", err)
	}
	return sk, nil
}

// MarshalAuthorizedKey returns an authorized_keys line for k, with an
// optional trailing comment.
func MarshalAuthorizedKey(k rsakey.Key, comment string) ([]byte, error) {
	sk, err := PublicKey(k)
	if err != nil {
		return nil, err
	}
	line := ssh.MarshalAuthorizedKey(sk)
	if comment == "" {
		return line, nil
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	return append(append(line, ' '), comment+"\n"...), nil
}

// Fingerprint returns the SHA256 fingerprint of k's public half.
func Fingerprint(k rsakey.Key) (string, error) {
	sk, err := PublicKey(k)
	if err != nil {
		return "", err
	}
	return ssh.FingerprintSHA256(sk), nil
}

// Package cosekey encodes RSA keys as COSE_Key structures (RFC 8230).
package cosekey

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	gocose "github.com/veraison/go-cose"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

// KeyTypeRSA is the COSE kty value for RSA keys.
const KeyTypeRSA = 3

// coseKey carries the RFC 8230 RSA key parameters.
type coseKey struct {
	Kty      int64  `cbor:"1,keyasint"`
	Kid      []byte `cbor:"2,keyasint,omitempty"`
	Alg      int64  `cbor:"3,keyasint,omitempty"`
	N        []byte `cbor:"-1,keyasint"`
	E        []byte `cbor:"-2,keyasint"`
	D        []byte `cbor:"-3,keyasint,omitempty"`
	P        []byte `cbor:"-4,keyasint,omitempty"`
	Q        []byte `cbor:"-5,keyasint,omitempty"`
	DP       []byte `cbor:"-6,keyasint,omitempty"`
	DQ       []byte `cbor:"-7,keyasint,omitempty"`
	InverseQ []byte `cbor:"-8,keyasint,omitempty"`
}

// Params are the optional COSE_Key header parameters.
type Params struct {
	KeyID     []byte
	Algorithm gocose.Algorithm
}

// SupportedAlgorithms lists the algorithms accepted for an RSA COSE_Key.
var SupportedAlgorithms = []gocose.Algorithm{
	gocose.AlgorithmPS256,
	gocose.AlgorithmPS384,
	gocose.AlgorithmPS512,
}

func checkAlgorithm(alg gocose.Algorithm) error {
	if alg == 0 {
		return nil
	}
	for _, a := range SupportedAlgorithms {
		if a == alg {
			return nil
		}
	}
	return fmt.Errorf("unsupported COSE algorithm %d for RSA key", int64(alg))
}

// Marshal encodes k in deterministic CBOR. Private parameters are written
// only when includePrivate is set and k is a *rsakey.PrivateKey.
func Marshal(k rsakey.Key, includePrivate bool, params Params) ([]byte, error) {
	if rsakey.IsNil(k) {
		return nil, rsakey.NewKeyError("marshal", rsakey.ErrIncompleteKey)
	}
	if err := checkAlgorithm(params.Algorithm); err != nil {
		return nil, rsakey.NewKeyError("marshal", err)
	}
	pub := k.Public()
	if len(pub.Modulus) == 0 || len(pub.Exponent) == 0 {
		return nil, rsakey.NewKeyError("marshal", rsakey.ErrIncompleteKey)
	}

	ck := coseKey{
		Kty: KeyTypeRSA,
		Kid: params.KeyID,
		Alg: int64(params.Algorithm),
		N:   pub.Modulus,
		E:   pub.Exponent,
	}
	if priv, ok := k.(*rsakey.PrivateKey); ok && includePrivate {
		if err := priv.Validate(); err != nil {
			return nil, err
		}
		ck.D, ck.P, ck.Q = priv.D, priv.P, priv.Q
		ck.DP, ck.DQ, ck.InverseQ = priv.DP, priv.DQ, priv.InverseQ
	}

	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	out, err := em.Marshal(ck)
	if err != nil {
		return nil, rsakey.NewKeyError("marshal", err)
	}
	return out, nil
}

// Unmarshal decodes an RSA COSE_Key. A private key must carry all of
// d, p, q, dP, dQ and qInv.
func Unmarshal(data []byte) (rsakey.Key, Params, error) {
	var ck coseKey
	if err := cbor.Unmarshal(data, &ck); err != nil {
		return nil, Params{}, rsakey.NewKeyError("unmarshal", fmt.Errorf("invalid COSE_Key: %w", err))
	}
	if ck.Kty != KeyTypeRSA {
		return nil, Params{}, rsakey.NewKeyError("unmarshal", fmt.Errorf("kty %d is not RSA", ck.Kty))
	}
	params := Params{KeyID: ck.Kid, Algorithm: gocose.Algorithm(ck.Alg)}
	if err := checkAlgorithm(params.Algorithm); err != nil {
		return nil, Params{}, rsakey.NewKeyError("unmarshal", err)
	}

	pub := &rsakey.PublicKey{Modulus: ck.N, Exponent: ck.E}
	if len(pub.Modulus) == 0 || len(pub.Exponent) == 0 {
		return nil, Params{}, rsakey.NewKeyError("unmarshal", rsakey.ErrIncompleteKey)
	}

	private := [][]byte{ck.D, ck.P, ck.Q, ck.DP, ck.DQ, ck.InverseQ}
	n := 0
	for _, v := range private {
		if len(v) > 0 {
			n++
		}
	}
	switch n {
	case 0:
		return pub, params, nil
	case len(private):
		return &rsakey.PrivateKey{
			PublicKey: *pub,
			P:         ck.P,
			Q:         ck.Q,
			DP:        ck.DP,
			DQ:        ck.DQ,
			InverseQ:  ck.InverseQ,
			D:         ck.D,
		}, params, nil
	default:
		return nil, Params{}, rsakey.NewKeyError("unmarshal", rsakey.ErrIncompleteKey)
	}
}

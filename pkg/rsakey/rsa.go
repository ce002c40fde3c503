package rsakey

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math"
	"math/big"
)

// RSA converts k to a *rsa.PublicKey.
func (k *PublicKey) RSA() (*rsa.PublicKey, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	e := new(big.Int).SetBytes(k.Exponent)
	if !e.IsInt64() || e.Int64() > math.MaxInt32 {
		return nil, NewFieldError("convert", FieldExponent, fmt.Errorf("exponent too large"))
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(k.Modulus),
		E: int(e.Int64()),
	}, nil
}

// RSA converts k to a *rsa.PrivateKey. The CRT values are copied into
// Precomputed; callers that sign or decrypt should call Precompute first.
// No consistency check is made on the key material.
func (k *PrivateKey) RSA() (*rsa.PrivateKey, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	pub, err := k.PublicKey.RSA()
	if err != nil {
		return nil, err
	}

	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(k.D),
		Primes: []*big.Int{
			new(big.Int).SetBytes(k.P),
			new(big.Int).SetBytes(k.Q),
		},
	}
	priv.Precomputed.Dp = new(big.Int).SetBytes(k.DP)
	priv.Precomputed.Dq = new(big.Int).SetBytes(k.DQ)
	priv.Precomputed.Qinv = new(big.Int).SetBytes(k.InverseQ)
	return priv, nil
}

// FromRSAPublic converts a *rsa.PublicKey. The modulus is written at its
// natural byte length, which must be even.
func FromRSAPublic(pub *rsa.PublicKey) (*PublicKey, error) {
	if pub == nil || pub.N == nil {
		return nil, NewFieldError("convert", FieldModulus, ErrIncompleteKey)
	}
	size := pub.Size()
	if size%2 != 0 {
		return nil, NewFieldError("convert", FieldModulus, ErrInvalidKeySize)
	}
	return &PublicKey{
		Modulus:  pub.N.FillBytes(make([]byte, size)),
		Exponent: big.NewInt(int64(pub.E)).Bytes(),
	}, nil
}

// FromRSA converts a two-prime *rsa.PrivateKey into fixed-width fields:
// modulus and D at the modulus length, the CRT values at half of it.
func FromRSA(priv *rsa.PrivateKey) (*PrivateKey, error) {
	if priv == nil {
		return nil, NewKeyError("convert", ErrIncompleteKey)
	}
	if len(priv.Primes) != 2 {
		return nil, NewKeyError("convert", fmt.Errorf("multi-prime keys are not supported (%d primes)", len(priv.Primes)))
	}
	pub, err := FromRSAPublic(&priv.PublicKey)
	if err != nil {
		return nil, err
	}

	size := len(pub.Modulus)
	half := size / 2
	p, q := priv.Primes[0], priv.Primes[1]

	one := big.NewInt(1)
	dp := new(big.Int).Mod(priv.D, new(big.Int).Sub(p, one))
	dq := new(big.Int).Mod(priv.D, new(big.Int).Sub(q, one))
	qinv := new(big.Int).ModInverse(q, p)
	if qinv == nil {
		return nil, NewFieldError("convert", FieldInverseQ, fmt.Errorf("q has no inverse mod p"))
	}

	fields := []struct {
		name string
		v    *big.Int
		n    int
	}{
		{FieldP, p, half},
		{FieldQ, q, half},
		{FieldDP, dp, half},
		{FieldDQ, dq, half},
		{FieldInverseQ, qinv, half},
		{FieldD, priv.D, size},
	}
	out := make([][]byte, len(fields))
	for i, f := range fields {
		if (f.v.BitLen()+7)/8 > f.n {
			return nil, NewFieldError("convert", f.name, ErrFieldTooLong)
		}
		out[i] = f.v.FillBytes(make([]byte, f.n))
	}

	return &PrivateKey{
		PublicKey: *pub,
		P:         out[0],
		Q:         out[1],
		DP:        out[2],
		DQ:        out[3],
		InverseQ:  out[4],
		D:         out[5],
	}, nil
}

// MarshalPublicPEM encodes the public half of k as a PKIX "PUBLIC KEY" PEM block.
func MarshalPublicPEM(k Key) ([]byte, error) {
	if IsNil(k) {
		return nil, NewKeyError("convert", ErrIncompleteKey)
	}
	pub, err := k.Public().RSA()
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

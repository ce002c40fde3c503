// Package rsakey defines the structured RSA key value shared by the blob,
// XML and COSE codecs.
//
// A key is either a *PublicKey (modulus and exponent) or a *PrivateKey
// (modulus, exponent and all six private components). All integers are
// stored as big-endian byte sequences, the same form used by the canonical
// RSAKeyValue XML element.
package rsakey

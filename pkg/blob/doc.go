// Package blob converts between CryptoAPI RSA key blobs (PUBLICKEYBLOB and
// PRIVATEKEYBLOB) and the structured keys of package rsakey.
//
// A blob is a BLOBHEADER, an RSAPUBKEY and the key integers stored
// little-endian at fixed widths derived from the bit length:
//
//	offset  size         field
//	0       1            blob type (6=private, 7=public)
//	1       1            version (2)
//	2       2            reserved
//	4       4            algorithm id
//	8       4            magic ("RSA1" or "RSA2")
//	12      4            bit length
//	16      4            public exponent
//	20      bits/8       modulus
//	...     bits/16 each prime1, prime2, exponent1, exponent2, coefficient
//	...     bits/8       private exponent
//
// The last six regions are present in private blobs only.
package blob

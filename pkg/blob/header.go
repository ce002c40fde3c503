package blob

import "fmt"

// BlobType is the bType byte of BLOBHEADER.
type BlobType byte

const (
	// PrivateKeyBlob is PRIVATEKEYBLOB.
	PrivateKeyBlob BlobType = 0x06
	// PublicKeyBlob is PUBLICKEYBLOB.
	PublicKeyBlob BlobType = 0x07
)

// String implements fmt.Stringer.
func (t BlobType) String() string {
	switch t {
	case PrivateKeyBlob:
		return "PRIVATEKEYBLOB"
	case PublicKeyBlob:
		return "PUBLICKEYBLOB"
	default:
		return fmt.Sprintf("BlobType(%d)", byte(t))
	}
}

const (
	// CurBlobVersion is the version byte written by Build.
	CurBlobVersion = 0x02

	// CalgRSAKeyX is the CALG_RSA_KEYX algorithm identifier.
	CalgRSAKeyX uint32 = 0x0000a400

	// MagicRSA1 is "RSA1" read as a little-endian uint32 (public key).
	MagicRSA1 uint32 = 0x31415352
	// MagicRSA2 is "RSA2" read as a little-endian uint32 (private key).
	MagicRSA2 uint32 = 0x32415352
)

// Header is BLOBHEADER.
type Header struct {
	Type     BlobType
	Version  byte
	Reserved uint16
	AlgID    uint32
}

// RSAPubKey is RSAPUBKEY.
type RSAPubKey struct {
	Magic     uint32
	BitLength uint32
	PubExp    uint32
}

// MagicString renders the magic as its four ASCII characters.
func (h RSAPubKey) MagicString() string {
	b := []byte{byte(h.Magic), byte(h.Magic >> 8), byte(h.Magic >> 16), byte(h.Magic >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", h.Magic)
		}
	}
	return string(b)
}

func magicFor(private bool) uint32 {
	if private {
		return MagicRSA2
	}
	return MagicRSA1
}

func typeFor(private bool) BlobType {
	if private {
		return PrivateKeyBlob
	}
	return PublicKeyBlob
}

package blob

import (
	"encoding/binary"
	"fmt"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

// Blob is a decoded key blob together with its backing buffer.
type Blob struct {
	Header    Header
	RSAPubKey RSAPubKey
	Key       rsakey.Key

	layout *Layout
	raw    []byte
}

// Layout returns the region map the blob was decoded or built with.
func (b *Blob) Layout() *Layout { return b.layout }

// Bytes returns the backing buffer. It is not a copy.
func (b *Blob) Bytes() []byte { return b.raw }

// IsPrivate reports whether the blob holds private key material.
func (b *Blob) IsPrivate() bool { return b.Header.Type == PrivateKeyBlob }

// fieldRegions maps key fields to their blob regions.
var fieldRegions = []struct {
	field  string
	region RegionName
}{
	{rsakey.FieldModulus, RegionModulus},
	{rsakey.FieldExponent, RegionExponent},
	{rsakey.FieldP, RegionPrime1},
	{rsakey.FieldQ, RegionPrime2},
	{rsakey.FieldDP, RegionExponent1},
	{rsakey.FieldDQ, RegionExponent2},
	{rsakey.FieldInverseQ, RegionCoefficient},
	{rsakey.FieldD, RegionPrivateExponent},
}

func regionFor(field string) RegionName {
	for _, fr := range fieldRegions {
		if fr.field == field {
			return fr.region
		}
	}
	panic(fmt.Sprintf("blob: no region for field %q", field))
}

// reverseCopy writes src into dst in reverse byte order, filling
// dst[:len(src)]. Blob integers are little-endian and key fields are
// big-endian; parse and build both go through here.
func reverseCopy(dst, src []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		dst[i] = src[n-1-i]
	}
}

// Parse decodes a PUBLICKEYBLOB or PRIVATEKEYBLOB into a key.
func Parse(data []byte) (rsakey.Key, error) {
	b, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return b.Key, nil
}

// Decode decodes a blob and keeps its headers and a copy of its bytes.
// Trailing bytes past the computed blob size are ignored.
func Decode(data []byte) (*Blob, error) {
	if len(data) < HeaderSize {
		return nil, rsakey.NewFieldError("parse", string(RegionHeader), rsakey.ErrTruncatedData)
	}

	hdr := Header{
		Type:     BlobType(data[offBlobType]),
		Version:  data[offVersion],
		Reserved: binary.LittleEndian.Uint16(data[offReserved:]),
		AlgID:    binary.LittleEndian.Uint32(data[offAlgID:]),
	}
	if hdr.Type != PublicKeyBlob && hdr.Type != PrivateKeyBlob {
		return nil, rsakey.NewKeyError("parse", fmt.Errorf("%w: %d", rsakey.ErrUnsupportedBlobType, byte(hdr.Type)))
	}
	private := hdr.Type == PrivateKeyBlob

	if len(data) < FixedSize {
		return nil, rsakey.NewFieldError("parse", string(RegionPubKeyHeader), rsakey.ErrTruncatedData)
	}
	pk := RSAPubKey{
		Magic:     binary.LittleEndian.Uint32(data[offMagic:]),
		BitLength: binary.LittleEndian.Uint32(data[offBitLength:]),
		PubExp:    binary.LittleEndian.Uint32(data[offPubExp:]),
	}

	layout, err := NewLayout(int(pk.BitLength))
	if err != nil {
		return nil, err
	}
	size := layout.Size(private)
	if len(data) < size {
		return nil, rsakey.NewKeyError("parse",
			fmt.Errorf("%w: need %d bytes for %d-bit %s, have %d", rsakey.ErrTruncatedData, size, pk.BitLength, hdr.Type, len(data)))
	}

	raw := append([]byte(nil), data[:size]...)
	read := func(field string) []byte {
		r := layout.Region(regionFor(field))
		v := make([]byte, r.Length)
		reverseCopy(v, raw[r.Offset:r.End()])
		return v
	}

	pub := rsakey.PublicKey{
		Modulus:  read(rsakey.FieldModulus),
		Exponent: read(rsakey.FieldExponent),
	}
	var key rsakey.Key = &pub
	if private {
		key = &rsakey.PrivateKey{
			PublicKey: pub,
			P:         read(rsakey.FieldP),
			Q:         read(rsakey.FieldQ),
			DP:        read(rsakey.FieldDP),
			DQ:        read(rsakey.FieldDQ),
			InverseQ:  read(rsakey.FieldInverseQ),
			D:         read(rsakey.FieldD),
		}
	}

	return &Blob{
		Header:    hdr,
		RSAPubKey: pk,
		Key:       key,
		layout:    layout,
		raw:       raw,
	}, nil
}

// Build encodes k as a PRIVATEKEYBLOB when asPrivate is set, otherwise as
// a PUBLICKEYBLOB. The bit length is 8 times the modulus length. Fields
// shorter than their region are zero-extended; longer fields fail with
// ErrFieldTooLong. A public-only key cannot be built as private.
func Build(k rsakey.Key, asPrivate bool) ([]byte, error) {
	if rsakey.IsNil(k) {
		return nil, rsakey.NewKeyError("build", rsakey.ErrIncompleteKey)
	}

	var fields []rsakey.NamedField
	if asPrivate {
		priv, ok := k.(*rsakey.PrivateKey)
		if !ok {
			return nil, rsakey.NewKeyError("build", fmt.Errorf("%w: private blob requested for a public key", rsakey.ErrIncompleteKey))
		}
		if err := priv.Validate(); err != nil {
			return nil, err
		}
		fields = priv.Fields()
	} else {
		pub := k.Public()
		if err := pub.Validate(); err != nil {
			return nil, err
		}
		fields = pub.Fields()
	}

	layout, err := NewLayout(k.BitLength())
	if err != nil {
		return nil, err
	}

	buf := make([]byte, layout.Size(asPrivate))
	buf[offBlobType] = byte(typeFor(asPrivate))
	buf[offVersion] = CurBlobVersion
	binary.LittleEndian.PutUint32(buf[offAlgID:], CalgRSAKeyX)
	binary.LittleEndian.PutUint32(buf[offMagic:], magicFor(asPrivate))
	binary.LittleEndian.PutUint32(buf[offBitLength:], uint32(layout.BitLength()))

	for _, f := range fields {
		r := layout.Region(regionFor(f.Name))
		if len(f.Value) > r.Length {
			return nil, rsakey.NewFieldError("build", f.Name,
				fmt.Errorf("%w: %d bytes into %d", rsakey.ErrFieldTooLong, len(f.Value), r.Length))
		}
		reverseCopy(buf[r.Offset:r.End()], f.Value)
	}
	return buf, nil
}

// New builds k into a blob and decodes it back, so that the returned
// Blob's key fields have exactly the widths of their regions.
func New(k rsakey.Key, asPrivate bool) (*Blob, error) {
	data, err := Build(k, asPrivate)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

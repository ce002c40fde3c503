package blob

import (
	"fmt"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

// RegionName identifies a byte region of a key blob.
type RegionName string

// Blob regions, in layout order.
const (
	RegionHeader          RegionName = "header"
	RegionPubKeyHeader    RegionName = "pubKeyHeader"
	RegionExponent        RegionName = "exponent"
	RegionModulus         RegionName = "modulus"
	RegionPrime1          RegionName = "prime1"
	RegionPrime2          RegionName = "prime2"
	RegionExponent1       RegionName = "exponent1"
	RegionExponent2       RegionName = "exponent2"
	RegionCoefficient     RegionName = "coefficient"
	RegionPrivateExponent RegionName = "privateExponent"
)

// Fixed offsets inside the first 20 bytes.
const (
	HeaderSize       = 8
	PubKeyHeaderSize = 12
	ExponentSize     = 4

	offBlobType  = 0
	offVersion   = 1
	offReserved  = 2
	offAlgID     = 4
	offMagic     = 8
	offBitLength = 12
	offPubExp    = 16

	// FixedSize is the header plus RSAPUBKEY, the part common to every blob.
	FixedSize = HeaderSize + PubKeyHeaderSize
)

// Region is a named byte range of a blob.
type Region struct {
	Name   RegionName
	Offset int
	Length int
}

// End returns the offset one past the last byte of r.
func (r Region) End() int { return r.Offset + r.Length }

// Layout is the region map for one bit length.
type Layout struct {
	bitLength int
	regions   []Region
}

// NewLayout computes the region map for bitLength. The exponent region is
// the pubexp field of RSAPUBKEY, so it lies inside pubKeyHeader; every
// other region starts where the previous one ends.
func NewLayout(bitLength int) (*Layout, error) {
	if bitLength <= 0 || bitLength%16 != 0 {
		return nil, rsakey.NewFieldError("layout", fmt.Sprintf("bitLength=%d", bitLength), rsakey.ErrInvalidKeySize)
	}
	byteLen := bitLength / 8
	halfLen := bitLength / 16

	regions := []Region{
		{RegionHeader, 0, HeaderSize},
		{RegionPubKeyHeader, HeaderSize, PubKeyHeaderSize},
		{RegionExponent, offPubExp, ExponentSize},
	}
	off := FixedSize
	for _, r := range []struct {
		name RegionName
		n    int
	}{
		{RegionModulus, byteLen},
		{RegionPrime1, halfLen},
		{RegionPrime2, halfLen},
		{RegionExponent1, halfLen},
		{RegionExponent2, halfLen},
		{RegionCoefficient, halfLen},
		{RegionPrivateExponent, byteLen},
	} {
		regions = append(regions, Region{r.name, off, r.n})
		off += r.n
	}

	return &Layout{bitLength: bitLength, regions: regions}, nil
}

// BitLength returns the bit length the layout was computed for.
func (l *Layout) BitLength() int { return l.bitLength }

// Regions returns all regions in layout order.
func (l *Layout) Regions() []Region {
	return append([]Region(nil), l.regions...)
}

// Region returns the region with the given name.
func (l *Layout) Region(name RegionName) Region {
	for _, r := range l.regions {
		if r.Name == name {
			return r
		}
	}
	panic(fmt.Sprintf("blob: unknown region %q", name))
}

// Size returns the total blob length for a public or private blob.
func (l *Layout) Size(private bool) int {
	if private {
		return l.Region(RegionPrivateExponent).End()
	}
	return l.Region(RegionModulus).End()
}

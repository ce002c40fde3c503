package blob

import "github.com/remiblancher/capikey/pkg/rsakey"

// Weaken overwrites Exponent, DP, DQ and D of a private blob with the
// integer 1, in the key fields and in the backing buffer alike. Field
// and region lengths are kept. The previous values are lost.
//
// With a private exponent of 1 the CryptoAPI import of a session key
// wrapped for this key yields the session key in the clear.
func Weaken(b *Blob) error {
	priv, ok := b.Key.(*rsakey.PrivateKey)
	if !ok || !b.IsPrivate() {
		return rsakey.NewKeyError("weaken", rsakey.ErrNotPrivate)
	}

	targets := []struct {
		field  *[]byte
		region RegionName
	}{
		{&priv.Exponent, RegionExponent},
		{&priv.DP, RegionExponent1},
		{&priv.DQ, RegionExponent2},
		{&priv.D, RegionPrivateExponent},
	}
	for _, t := range targets {
		setOne(*t.field)
		r := b.layout.Region(t.region)
		region := b.raw[r.Offset:r.End()]
		clear(region)
		region[0] = 1
	}

	// The exponent region doubles as RSAPUBKEY.pubexp.
	b.RSAPubKey.PubExp = 1
	return nil
}

// setOne rewrites a big-endian integer in place to the value 1.
func setOne(v []byte) {
	if len(v) == 0 {
		return
	}
	clear(v)
	v[len(v)-1] = 1
}

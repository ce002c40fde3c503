package rsakey

import "bytes"

// Field names, in canonical RSAKeyValue order.
const (
	FieldModulus  = "Modulus"
	FieldExponent = "Exponent"
	FieldP        = "P"
	FieldQ        = "Q"
	FieldDP       = "DP"
	FieldDQ       = "DQ"
	FieldInverseQ = "InverseQ"
	FieldD        = "D"
)

// Key is either a *PublicKey or a *PrivateKey.
type Key interface {
	// Public returns a copy of the public half of the key.
	Public() *PublicKey

	// BitLength is 8 times the modulus byte length.
	BitLength() int

	// Validate reports ErrInvalidKeySize or ErrIncompleteKey for keys that
	// cannot be written to a blob.
	Validate() error

	isKey()
}

// NamedField is a key component paired with its canonical name.
type NamedField struct {
	Name  string
	Value []byte
}

// PublicKey holds the public RSA components as big-endian byte sequences.
type PublicKey struct {
	Modulus  []byte
	Exponent []byte
}

var _ Key = (*PublicKey)(nil)

func (*PublicKey) isKey() {}

// Public returns a copy of k, or nil for a nil key.
func (k *PublicKey) Public() *PublicKey {
	if k == nil {
		return nil
	}
	return &PublicKey{
		Modulus:  clone(k.Modulus),
		Exponent: clone(k.Exponent),
	}
}

// BitLength returns the modulus size in bits.
func (k *PublicKey) BitLength() int {
	if k == nil {
		return 0
	}
	return 8 * len(k.Modulus)
}

// Validate checks that the modulus and exponent are present and that the
// modulus length maps to a bit length that is a multiple of 16.
func (k *PublicKey) Validate() error {
	if k == nil {
		return NewKeyError("validate", ErrIncompleteKey)
	}
	if len(k.Modulus) == 0 {
		return NewFieldError("validate", FieldModulus, ErrIncompleteKey)
	}
	if len(k.Exponent) == 0 {
		return NewFieldError("validate", FieldExponent, ErrIncompleteKey)
	}
	if k.BitLength()%16 != 0 {
		return NewFieldError("validate", FieldModulus, ErrInvalidKeySize)
	}
	return nil
}

// Fields returns Modulus and Exponent in canonical order.
func (k *PublicKey) Fields() []NamedField {
	return []NamedField{
		{FieldModulus, k.Modulus},
		{FieldExponent, k.Exponent},
	}
}

// Equal reports whether both keys hold identical public components.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(k.Modulus, other.Modulus) && bytes.Equal(k.Exponent, other.Exponent)
}

// PrivateKey holds the full RSA key material, including the CRT components.
type PrivateKey struct {
	PublicKey

	P        []byte
	Q        []byte
	DP       []byte
	DQ       []byte
	InverseQ []byte
	D        []byte
}

var _ Key = (*PrivateKey)(nil)

// NewPrivateKey assembles a private key and validates it.
func NewPrivateKey(modulus, exponent, p, q, dp, dq, inverseQ, d []byte) (*PrivateKey, error) {
	k := &PrivateKey{
		PublicKey: PublicKey{Modulus: modulus, Exponent: exponent},
		P:         p,
		Q:         q,
		DP:        dp,
		DQ:        dq,
		InverseQ:  inverseQ,
		D:         d,
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Validate checks the public half and that all six private fields are set.
func (k *PrivateKey) Validate() error {
	if k == nil {
		return NewKeyError("validate", ErrIncompleteKey)
	}
	if err := k.PublicKey.Validate(); err != nil {
		return err
	}
	for _, f := range k.PrivateFields() {
		if len(f.Value) == 0 {
			return NewFieldError("validate", f.Name, ErrIncompleteKey)
		}
	}
	return nil
}

// Public returns a copy of the public half, or nil for a nil key.
func (k *PrivateKey) Public() *PublicKey {
	if k == nil {
		return nil
	}
	return k.PublicKey.Public()
}

// BitLength returns the modulus size in bits.
func (k *PrivateKey) BitLength() int {
	if k == nil {
		return 0
	}
	return k.PublicKey.BitLength()
}

// PrivateFields returns P, Q, DP, DQ, InverseQ and D in canonical order.
func (k *PrivateKey) PrivateFields() []NamedField {
	return []NamedField{
		{FieldP, k.P},
		{FieldQ, k.Q},
		{FieldDP, k.DP},
		{FieldDQ, k.DQ},
		{FieldInverseQ, k.InverseQ},
		{FieldD, k.D},
	}
}

// Fields returns all eight components in canonical order.
func (k *PrivateKey) Fields() []NamedField {
	return append(k.PublicKey.Fields(), k.PrivateFields()...)
}

// Clone returns a deep copy of k.
func (k *PrivateKey) Clone() *PrivateKey {
	return &PrivateKey{
		PublicKey: *k.PublicKey.Public(),
		P:         clone(k.P),
		Q:         clone(k.Q),
		DP:        clone(k.DP),
		DQ:        clone(k.DQ),
		InverseQ:  clone(k.InverseQ),
		D:         clone(k.D),
	}
}

// Equal reports whether both keys hold identical components.
func (k *PrivateKey) Equal(other *PrivateKey) bool {
	if other == nil {
		return false
	}
	a, b := k.Fields(), other.Fields()
	for i := range a {
		if !bytes.Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// IsPrivate reports whether k carries private key material.
func IsPrivate(k Key) bool {
	_, ok := k.(*PrivateKey)
	return ok
}

// IsNil reports whether k is nil or a nil pointer of either variant.
func IsNil(k Key) bool {
	switch v := k.(type) {
	case nil:
		return true
	case *PublicKey:
		return v == nil
	case *PrivateKey:
		return v == nil
	}
	return false
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

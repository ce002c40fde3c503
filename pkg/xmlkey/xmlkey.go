// Package xmlkey converts RSA keys to and from the RSAKeyValue XML element:
//
//	<RSAKeyValue><Modulus>…</Modulus><Exponent>…</Exponent>
//	<P>…</P><Q>…</Q><DP>…</DP><DQ>…</DQ><InverseQ>…</InverseQ><D>…</D></RSAKeyValue>
//
// Every child holds the base64 of a big-endian integer. The private
// children are emitted only when explicitly requested.
package xmlkey

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

// RootElement is the canonical element name.
const RootElement = "RSAKeyValue"

// keyValue fixes the child order of the emitted element.
type keyValue struct {
	XMLName  xml.Name `xml:"RSAKeyValue"`
	Modulus  string   `xml:"Modulus"`
	Exponent string   `xml:"Exponent"`
	P        string   `xml:"P,omitempty"`
	Q        string   `xml:"Q,omitempty"`
	DP       string   `xml:"DP,omitempty"`
	DQ       string   `xml:"DQ,omitempty"`
	InverseQ string   `xml:"InverseQ,omitempty"`
	D        string   `xml:"D,omitempty"`
}

// Marshal renders k as a compact RSAKeyValue element. Private children are
// written only when includePrivate is set and k is a *rsakey.PrivateKey;
// with includePrivate unset no private material is emitted whatever k holds.
func Marshal(k rsakey.Key, includePrivate bool) ([]byte, error) {
	if rsakey.IsNil(k) {
		return nil, rsakey.NewKeyError("marshal", rsakey.ErrIncompleteKey)
	}
	pub := k.Public()
	if len(pub.Modulus) == 0 {
		return nil, rsakey.NewFieldError("marshal", rsakey.FieldModulus, rsakey.ErrIncompleteKey)
	}
	if len(pub.Exponent) == 0 {
		return nil, rsakey.NewFieldError("marshal", rsakey.FieldExponent, rsakey.ErrIncompleteKey)
	}

	enc := base64.StdEncoding.EncodeToString
	v := keyValue{
		Modulus:  enc(pub.Modulus),
		Exponent: enc(pub.Exponent),
	}

	if priv, ok := k.(*rsakey.PrivateKey); ok && includePrivate {
		for _, f := range priv.PrivateFields() {
			if len(f.Value) == 0 {
				return nil, rsakey.NewFieldError("marshal", f.Name, rsakey.ErrIncompleteKey)
			}
		}
		v.P = enc(priv.P)
		v.Q = enc(priv.Q)
		v.DP = enc(priv.DP)
		v.DQ = enc(priv.DQ)
		v.InverseQ = enc(priv.InverseQ)
		v.D = enc(priv.D)
	}

	out, err := xml.Marshal(v)
	if err != nil {
		return nil, rsakey.NewKeyError("marshal", err)
	}
	return out, nil
}

// Options control Unmarshal.
type Options struct {
	// Lenient turns an incomplete private field set into a public key
	// instead of failing with ErrIncompleteKey.
	Lenient bool
}

// Unmarshal decodes an RSAKeyValue element with strict options.
func Unmarshal(data []byte) (rsakey.Key, error) {
	return UnmarshalWithOptions(data, Options{})
}

// UnmarshalWithOptions scans the document for the eight key children by
// local name. Namespaces, prefixes and unknown elements are ignored. A D
// child marks the key as private; in strict mode P, Q, DP, DQ and
// InverseQ must then all be present, and none of them may appear without D.
func UnmarshalWithOptions(data []byte, opts Options) (rsakey.Key, error) {
	values, err := scan(data)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{rsakey.FieldModulus, rsakey.FieldExponent} {
		if len(values[name]) == 0 {
			return nil, rsakey.NewFieldError("unmarshal", name,
				fmt.Errorf("%w: missing element: %w", rsakey.ErrInvalidXML, rsakey.ErrIncompleteKey))
		}
	}
	pub := &rsakey.PublicKey{
		Modulus:  values[rsakey.FieldModulus],
		Exponent: values[rsakey.FieldExponent],
	}

	priv := &rsakey.PrivateKey{
		PublicKey: *pub,
		P:         values[rsakey.FieldP],
		Q:         values[rsakey.FieldQ],
		DP:        values[rsakey.FieldDP],
		DQ:        values[rsakey.FieldDQ],
		InverseQ:  values[rsakey.FieldInverseQ],
		D:         values[rsakey.FieldD],
	}

	var present, missing []string
	for _, f := range priv.PrivateFields() {
		if len(f.Value) == 0 {
			missing = append(missing, f.Name)
		} else {
			present = append(present, f.Name)
		}
	}

	switch {
	case len(missing) == 0:
		return priv, nil
	case len(present) == 0:
		return pub, nil
	case opts.Lenient:
		return pub, nil
	}

	if len(priv.D) == 0 {
		return nil, rsakey.NewFieldError("unmarshal", rsakey.FieldD,
			fmt.Errorf("%w: %s present without D", rsakey.ErrIncompleteKey, strings.Join(present, ", ")))
	}
	return nil, rsakey.NewFieldError("unmarshal", missing[0],
		fmt.Errorf("%w: private key missing %s", rsakey.ErrIncompleteKey, strings.Join(missing, ", ")))
}

var knownFields = map[string]bool{
	rsakey.FieldModulus:  true,
	rsakey.FieldExponent: true,
	rsakey.FieldP:        true,
	rsakey.FieldQ:        true,
	rsakey.FieldDP:       true,
	rsakey.FieldDQ:       true,
	rsakey.FieldInverseQ: true,
	rsakey.FieldD:        true,
}

// scan collects the base64-decoded contents of the known children.
func scan(data []byte) (map[string][]byte, error) {
	values := make(map[string][]byte)
	dec := xml.NewDecoder(bytes.NewReader(data))
	seenElement := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rsakey.NewKeyError("unmarshal", fmt.Errorf("%w: %v", rsakey.ErrInvalidXML, err))
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		seenElement = true
		if !knownFields[se.Name.Local] {
			continue
		}

		var text string
		if err := dec.DecodeElement(&text, &se); err != nil {
			return nil, rsakey.NewFieldError("unmarshal", se.Name.Local, fmt.Errorf("%w: %v", rsakey.ErrInvalidXML, err))
		}
		v, err := decodeBase64(text)
		if err != nil {
			return nil, rsakey.NewFieldError("unmarshal", se.Name.Local, fmt.Errorf("%w: %v", rsakey.ErrInvalidXML, err))
		}
		values[se.Name.Local] = v
	}

	if !seenElement {
		return nil, rsakey.NewKeyError("unmarshal", fmt.Errorf("%w: no elements", rsakey.ErrInvalidXML))
	}
	return values, nil
}

// decodeBase64 accepts standard base64 with embedded whitespace.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(s)
}

// Redact re-encodes an RSAKeyValue document without private children.
func Redact(data []byte) ([]byte, error) {
	k, err := UnmarshalWithOptions(data, Options{Lenient: true})
	if err != nil {
		return nil, err
	}
	return Marshal(k, false)
}

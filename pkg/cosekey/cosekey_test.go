package cosekey

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	gocose "github.com/veraison/go-cose"

	"github.com/remiblancher/capikey/pkg/rsakey"
)

func testKey() *rsakey.PrivateKey {
	return &rsakey.PrivateKey{
		PublicKey: rsakey.PublicKey{Modulus: bytes.Repeat([]byte{0xab}, 64), Exponent: []byte{1, 0, 1}},
		P:         bytes.Repeat([]byte{1}, 32),
		Q:         bytes.Repeat([]byte{2}, 32),
		DP:        bytes.Repeat([]byte{3}, 32),
		DQ:        bytes.Repeat([]byte{4}, 32),
		InverseQ:  bytes.Repeat([]byte{5}, 32),
		D:         bytes.Repeat([]byte{6}, 64),
	}
}

func TestU_Marshal_RoundTrip(t *testing.T) {
	k := testKey()
	params := Params{KeyID: []byte("key-1"), Algorithm: gocose.AlgorithmPS256}

	data, err := Marshal(k, true, params)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, gotParams, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	priv, ok := got.(*rsakey.PrivateKey)
	if !ok || !priv.Equal(k) {
		t.Errorf("Unmarshal() = %T, key differs", got)
	}
	if !bytes.Equal(gotParams.KeyID, params.KeyID) || gotParams.Algorithm != gocose.AlgorithmPS256 {
		t.Errorf("params = %+v", gotParams)
	}
}

func TestU_Marshal_Labels(t *testing.T) {
	data, err := Marshal(testKey(), false, Params{})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var m map[int64]any
	if err := cbor.Unmarshal(data, &m); err != nil {
		t.Fatalf("cbor.Unmarshal() error = %v", err)
	}
	if len(m) != 3 {
		t.Errorf("public COSE_Key has %d entries, want 3 (kty, n, e)", len(m))
	}
	if kty, _ := m[1].(uint64); kty != KeyTypeRSA {
		t.Errorf("kty = %v, want 3", m[1])
	}
	if e, _ := m[-2].([]byte); !bytes.Equal(e, []byte{1, 0, 1}) {
		t.Errorf("e = %v", m[-2])
	}
	for _, label := range []int64{-3, -4, -5, -6, -7, -8} {
		if _, ok := m[label]; ok {
			t.Errorf("public COSE_Key contains private label %d", label)
		}
	}
}

func TestU_Marshal_Deterministic(t *testing.T) {
	a, err := Marshal(testKey(), true, Params{})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	b, _ := Marshal(testKey(), true, Params{})
	if !bytes.Equal(a, b) {
		t.Error("Marshal() is not deterministic")
	}
}

func TestU_Marshal_NilKey(t *testing.T) {
	for _, k := range []rsakey.Key{nil, (*rsakey.PrivateKey)(nil), (*rsakey.PublicKey)(nil)} {
		if _, err := Marshal(k, true, Params{}); !errors.Is(err, rsakey.ErrIncompleteKey) {
			t.Errorf("Marshal(%T) error = %v, want ErrIncompleteKey", k, err)
		}
	}
}

func TestU_Marshal_UnsupportedAlgorithm(t *testing.T) {
	if _, err := Marshal(testKey(), false, Params{Algorithm: gocose.AlgorithmES256}); err == nil {
		t.Error("Marshal() accepted ES256 for an RSA key")
	}
}

func TestU_Unmarshal_Errors(t *testing.T) {
	em, _ := cbor.CoreDetEncOptions().EncMode()
	ec2, _ := em.Marshal(map[int64]any{1: 2, -1: 1})
	partial, _ := em.Marshal(map[int64]any{1: 3, -1: []byte{1, 2}, -2: []byte{3}, -3: []byte{4}})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"garbage", []byte{0xff, 0x00}, nil},
		{"not RSA", ec2, nil},
		{"partial private", partial, rsakey.ErrIncompleteKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, _, err := Unmarshal(tt.data)
			if err == nil {
				t.Fatal("Unmarshal() succeeded")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.want)
			}
			if k != nil {
				t.Error("Unmarshal() returned a key alongside error")
			}
		})
	}
}

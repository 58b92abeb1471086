package crypto

import (
	"testing"

	"github.com/lockvault-io/lockvault/pkg/types"
)

func TestHash_Deterministic(t *testing.T) {
	data := []byte("lockvault hash input")
	h1 := Hash(data)
	h2 := Hash(data)
	if h1 != h2 {
		t.Errorf("Hash is not deterministic: %x != %x", h1, h2)
	}
	if h1.IsZero() {
		t.Error("hash of non-empty input should not be zero")
	}
}

func TestHash_DifferentInputs(t *testing.T) {
	if Hash([]byte("a")) == Hash([]byte("b")) {
		t.Error("different inputs produced the same hash")
	}
}

func TestSignVerify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	digest := Hash([]byte("message"))
	sig, err := key.Sign(digest[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if !VerifySignature(digest[:], sig, key.PublicKey()) {
		t.Error("valid signature failed verification")
	}

	// Wrong digest must not verify.
	other := Hash([]byte("other message"))
	if VerifySignature(other[:], sig, key.PublicKey()) {
		t.Error("signature verified against wrong digest")
	}

	// Wrong key must not verify.
	key2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if VerifySignature(digest[:], sig, key2.PublicKey()) {
		t.Error("signature verified against wrong public key")
	}
}

func TestSign_BadHashLength(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if _, err := key.Sign([]byte("short")); err == nil {
		t.Error("signing a non-32-byte hash should fail")
	}
}

func TestVerifySignature_Garbage(t *testing.T) {
	digest := Hash([]byte("x"))
	if VerifySignature(digest[:], []byte("not a sig"), []byte("not a key")) {
		t.Error("garbage signature verified")
	}
}

func TestPrivateKeyFromBytes_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Serialize())
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	if AddressFromPubKey(restored.PublicKey()) != AddressFromPubKey(key.PublicKey()) {
		t.Error("restored key derives a different address")
	}

	if _, err := PrivateKeyFromBytes([]byte{1, 2, 3}); err == nil {
		t.Error("short key bytes should fail")
	}
}

func TestAddressFromPubKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	addr := AddressFromPubKey(key.PublicKey())
	if addr.IsZero() {
		t.Error("derived address should not be zero")
	}
	if addr == (types.Address{}) {
		t.Error("derived address should not be the zero address")
	}
}

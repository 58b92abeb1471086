package wallet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lockvault-io/lockvault/pkg/crypto"
)

// testMnemonic is the well-known BIP-39 test vector mnemonic.
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// lightParams keeps Argon2id cheap enough for tests.
func lightParams() EncryptionParams {
	return EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1}
}

func TestGenerateMnemonic(t *testing.T) {
	m, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic: %v", err)
	}
	if words := len(strings.Fields(m)); words != 24 {
		t.Errorf("word count = %d, want 24", words)
	}
	if !ValidateMnemonic(m) {
		t.Error("generated mnemonic should validate")
	}

	m2, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic: %v", err)
	}
	if m == m2 {
		t.Error("two generated mnemonics should differ")
	}
}

func TestValidateMnemonic(t *testing.T) {
	if !ValidateMnemonic(testMnemonic) {
		t.Error("known-good mnemonic should validate")
	}
	if ValidateMnemonic("not a real mnemonic at all") {
		t.Error("garbage should not validate")
	}
	if ValidateMnemonic("") {
		t.Error("empty string should not validate")
	}
}

func TestSeedFromMnemonic(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if len(seed) != SeedSize {
		t.Fatalf("seed length = %d, want %d", len(seed), SeedSize)
	}

	// Deterministic.
	seed2, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if !bytes.Equal(seed, seed2) {
		t.Error("same mnemonic should derive same seed")
	}

	// Passphrase changes the seed.
	seed3, err := SeedFromMnemonic(testMnemonic, "hunter2")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if bytes.Equal(seed, seed3) {
		t.Error("passphrase should change the derived seed")
	}

	if _, err := SeedFromMnemonic("bogus words", ""); err == nil {
		t.Error("invalid mnemonic should fail")
	}
}

func TestHDKey_Derivation(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}

	master, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey: %v", err)
	}
	if !master.IsPrivate() {
		t.Error("master key should be private")
	}

	k0, err := master.DeriveAccount(0)
	if err != nil {
		t.Fatalf("DeriveAccount(0): %v", err)
	}
	k1, err := master.DeriveAccount(1)
	if err != nil {
		t.Fatalf("DeriveAccount(1): %v", err)
	}
	if k0.Address() == k1.Address() {
		t.Error("different indexes should yield different addresses")
	}

	// Deterministic across derivations.
	again, err := master.DeriveAccount(0)
	if err != nil {
		t.Fatalf("DeriveAccount(0): %v", err)
	}
	if k0.Address() != again.Address() {
		t.Error("same index should yield same address")
	}

	if len(k0.PrivateKeyBytes()) != 32 {
		t.Errorf("private key length = %d, want 32", len(k0.PrivateKeyBytes()))
	}
	if len(k0.PublicKeyBytes()) != 33 {
		t.Errorf("public key length = %d, want 33", len(k0.PublicKeyBytes()))
	}
}

func TestHDKey_SignerMatchesAddress(t *testing.T) {
	seed, _ := SeedFromMnemonic(testMnemonic, "")
	master, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey: %v", err)
	}
	key, err := master.DeriveAccount(0)
	if err != nil {
		t.Fatalf("DeriveAccount: %v", err)
	}

	signer, err := key.Signer()
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	defer signer.Zero()

	if crypto.AddressFromPubKey(signer.PublicKey()) != key.Address() {
		t.Error("signer public key should derive the HD key's address")
	}

	digest := crypto.Hash([]byte("payload"))
	sig, err := signer.Sign(digest[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !crypto.VerifySignature(digest[:], sig, signer.PublicKey()) {
		t.Error("signature should verify")
	}
}

func TestHDKey_Neuter(t *testing.T) {
	seed, _ := SeedFromMnemonic(testMnemonic, "")
	master, _ := NewMasterKey(seed)
	key, _ := master.DeriveAccount(0)

	pub := key.Neuter()
	if pub.IsPrivate() {
		t.Error("neutered key should not be private")
	}
	if pub.PrivateKeyBytes() != nil {
		t.Error("neutered key should have no private bytes")
	}
	if pub.Address() != key.Address() {
		t.Error("neutered key should keep the same address")
	}
	if _, err := pub.Signer(); err == nil {
		t.Error("neutered key should not produce a signer")
	}
}

func TestNewMasterKey_BadSeed(t *testing.T) {
	if _, err := NewMasterKey([]byte("short")); err == nil {
		t.Error("short seed should fail")
	}
}

func TestEncrypt_RoundTrip(t *testing.T) {
	data := []byte("secret seed material")
	password := []byte("correct horse battery staple")

	encrypted, err := Encrypt(data, password, lightParams())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Contains(encrypted, data) {
		t.Error("ciphertext should not contain plaintext")
	}

	plaintext, err := Decrypt(encrypted, password)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(plaintext, data) {
		t.Errorf("decrypted = %q, want %q", plaintext, data)
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	encrypted, err := Encrypt([]byte("data"), []byte("right"), lightParams())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(encrypted, []byte("wrong")); err == nil {
		t.Error("wrong password should fail")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	password := []byte("pw")
	encrypted, err := Encrypt([]byte("data"), password, lightParams())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	encrypted[len(encrypted)-1] ^= 0xFF
	if _, err := Decrypt(encrypted, password); err == nil {
		t.Error("tampered ciphertext should fail")
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	if _, err := Decrypt([]byte("tiny"), []byte("pw")); err == nil {
		t.Error("truncated input should fail")
	}
}

func TestKeystore_CreateAndLoad(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore: %v", err)
	}

	seed, _ := SeedFromMnemonic(testMnemonic, "")
	password := []byte("pw")

	if err := ks.Create("default", seed, password, lightParams()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !ks.Exists("default") {
		t.Error("wallet should exist after create")
	}

	loaded, err := ks.Load("default", password)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(loaded, seed) {
		t.Error("loaded seed should match original")
	}

	if _, err := ks.Load("default", []byte("wrong")); err == nil {
		t.Error("wrong password should fail")
	}
	if err := ks.Create("default", seed, password, lightParams()); err == nil {
		t.Error("duplicate create should fail")
	}
}

func TestKeystore_Accounts(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore: %v", err)
	}
	seed, _ := SeedFromMnemonic(testMnemonic, "")
	if err := ks.Create("w", seed, []byte("pw"), lightParams()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	entry := AccountEntry{Index: 0, Name: "primary", Address: "0x0102030405060708090a0b0c0d0e0f1011121314"}
	if err := ks.AddAccount("w", entry); err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	// Idempotent re-insert.
	if err := ks.AddAccount("w", entry); err != nil {
		t.Errorf("re-insert should be a no-op: %v", err)
	}
	// Same index, different address conflicts.
	conflict := AccountEntry{Index: 0, Name: "other", Address: "0xffffffffffffffffffffffffffffffffffffffff"}
	if err := ks.AddAccount("w", conflict); err == nil {
		t.Error("conflicting index should fail")
	}

	accounts, err := ks.ListAccounts("w")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "primary" {
		t.Errorf("accounts = %+v", accounts)
	}

	next, err := ks.NextIndex("w")
	if err != nil {
		t.Fatalf("NextIndex: %v", err)
	}
	if next != 1 {
		t.Errorf("next index = %d, want 1", next)
	}
}

func TestKeystore_ListAndDelete(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore: %v", err)
	}
	seed, _ := SeedFromMnemonic(testMnemonic, "")
	for _, name := range []string{"alpha", "beta"} {
		if err := ks.Create(name, seed, []byte("pw"), lightParams()); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("names = %v, want 2 entries", names)
	}

	if err := ks.Delete("alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ks.Exists("alpha") {
		t.Error("deleted wallet should not exist")
	}
	if err := ks.Delete("alpha"); err == nil {
		t.Error("deleting a missing wallet should fail")
	}
}

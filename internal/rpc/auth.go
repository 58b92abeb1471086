package rpc

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/crypto"
	"github.com/lockvault-io/lockvault/pkg/types"
)

// SigningDigest computes the digest a caller signs for a mutating method.
// The digest binds the method name, the caller, every numeric field of the
// request, and the nonce, so a signature cannot be replayed for a different
// method, account, argument set, or a second time.
//
// Layout hashed with BLAKE3: method | account(20) | fields (8 BE each) | nonce (8 BE)
func SigningDigest(method string, account types.Address, nonce uint64, fields ...uint64) types.Hash {
	buf := make([]byte, 0, len(method)+types.AddressSize+8*(len(fields)+1))
	buf = append(buf, method...)
	buf = append(buf, account[:]...)
	for _, f := range fields {
		buf = binary.BigEndian.AppendUint64(buf, f)
	}
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	return crypto.Hash(buf)
}

// nonce store key layout: nonce/<addr(20)> -> last accepted nonce (8 BE)
var prefixNonce = []byte("nonce/")

// NonceStore persists the last accepted nonce per account. Nonces must be
// strictly increasing; a replayed or stale signature fails the check.
type NonceStore struct {
	db storage.DB
}

// NewNonceStore creates a nonce store backed by db.
func NewNonceStore(db storage.DB) *NonceStore {
	return &NonceStore{db: db}
}

func nonceKey(account types.Address) []byte {
	key := make([]byte, len(prefixNonce)+types.AddressSize)
	copy(key, prefixNonce)
	copy(key[len(prefixNonce):], account[:])
	return key
}

// Last returns the last accepted nonce for an account (0 if none).
func (ns *NonceStore) Last(account types.Address) (uint64, error) {
	data, err := ns.db.Get(nonceKey(account))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("malformed nonce record: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// Store records the nonce as the last accepted for the account.
func (ns *NonceStore) Store(account types.Address, nonce uint64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, nonce)
	return ns.db.Put(nonceKey(account), val)
}

// verifyAuth authenticates a mutating request. On success the caller's
// address is returned and the nonce is consumed.
func (s *Server) verifyAuth(method string, auth AuthParams, fields ...uint64) (types.Address, *Error) {
	account, err := types.ParseAddress(auth.Account)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid account: %v", err)}
	}

	pubKey, err := hex.DecodeString(auth.PubKey)
	if err != nil || len(pubKey) != 33 {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "pubkey must be 33-byte hex"}
	}

	// The account must be the address derived from the signing key.
	if crypto.AddressFromPubKey(pubKey) != account {
		return types.Address{}, &Error{Code: CodeUnauthorized, Message: "pubkey does not match account"}
	}

	last, err := s.nonces.Last(account)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInternalError, Message: "nonce lookup failed"}
	}
	if auth.Nonce <= last {
		return types.Address{}, &Error{Code: CodeUnauthorized, Message: fmt.Sprintf("nonce %d already used (last %d)", auth.Nonce, last)}
	}

	sig, err := hex.DecodeString(auth.Signature)
	if err != nil || len(sig) != 64 {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "signature must be 64-byte hex"}
	}

	digest := SigningDigest(method, account, auth.Nonce, fields...)
	if !crypto.VerifySignature(digest[:], sig, pubKey) {
		return types.Address{}, &Error{Code: CodeUnauthorized, Message: "invalid signature"}
	}

	if err := s.nonces.Store(account, auth.Nonce); err != nil {
		return types.Address{}, &Error{Code: CodeInternalError, Message: "nonce store failed"}
	}
	return account, nil
}

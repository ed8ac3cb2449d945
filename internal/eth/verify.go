// Package eth verifies that a wallet address produced a signature over a
// login challenge. Addresses are derived from secp256k1 public keys using
// the standard Ethereum rule, and signatures are checked against the
// personal-message hash of the challenge nonce.
package eth

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveAddress derives the checksummed Ethereum address from a hex-encoded
// uncompressed secp256k1 public key. The optional 0x prefix is accepted.
func DeriveAddress(publicKey string) (string, error) {
	raw, err := decodeHex(publicKey)
	if err != nil {
		return "", err
	}

	pub, err := crypto.UnmarshalPubkey(raw)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifySignature reports whether signature is a valid secp256k1 signature
// over the personal-message hash of nonce, produced by the private key
// behind publicKey, and whether publicKey derives to wallet. The address
// comparison is case-insensitive; the cryptographic check is exact.
//
// The function is pure and returns false on any malformed input. It never
// panics on adversarial data.
func VerifySignature(wallet, signature, publicKey, nonce string) bool {
	derived, err := DeriveAddress(publicKey)
	if err != nil {
		return false
	}
	if !strings.EqualFold(derived, wallet) {
		return false
	}

	sig, err := decodeHex(signature)
	if err != nil {
		return false
	}
	// 65 bytes: R || S || V. The recovery byte is not needed here since the
	// public key is supplied, but wallets always include it.
	if len(sig) != crypto.SignatureLength {
		return false
	}

	pub, err := decodeHex(publicKey)
	if err != nil {
		return false
	}

	hash := accounts.TextHash([]byte(nonce))
	return crypto.VerifySignature(pub, hash, sig[:crypto.RecoveryIDOffset])
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

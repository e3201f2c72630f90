// Package signer signs outbound event envelopes so relayers can verify
// that a notification really came from this gate before acting on it.
// Signing is optional; a gate without a key publishes unsigned envelopes.
package signer

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// eip191Prefix is the personal-message prefix: the digest below is what
// standard wallet tooling produces for a 32-byte message, so relayers can
// verify with off-the-shelf libraries.
const eip191Prefix = "\x19Ethereum Signed Message:\n32"

type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewSigner(privateKeyHex string) (*Signer, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}
	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(*publicKey),
	}, nil
}

// Address is the principal relayers should expect envelopes to verify
// against.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign produces a hex-encoded 65-byte recoverable signature over the
// EIP-191 digest of the payload.
func (s *Signer) Sign(payload []byte) (string, error) {
	sig, err := crypto.Sign(digest(payload).Bytes(), s.key)
	if err != nil {
		return "", fmt.Errorf("sign payload: %v", err)
	}
	return hexutil.Encode(sig), nil
}

// Verify recovers the signing address and compares it to the expected one.
// A malformed signature is an error; a mismatched signer is (false, nil).
func Verify(payload []byte, sigHex string, expected common.Address) (bool, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return false, fmt.Errorf("decode signature: %v", err)
	}
	if len(sig) != crypto.SignatureLength {
		return false, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	pub, err := crypto.SigToPub(digest(payload).Bytes(), sig)
	if err != nil {
		return false, fmt.Errorf("recover signer: %v", err)
	}
	return crypto.PubkeyToAddress(*pub) == expected, nil
}

func digest(payload []byte) common.Hash {
	inner := crypto.Keccak256Hash(payload)
	return crypto.Keccak256Hash([]byte(eip191Prefix), inner.Bytes())
}

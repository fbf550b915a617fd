package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrSignatureMismatch is returned when a signature recovers to another
// address than expected.
var ErrSignatureMismatch = errors.New("signature does not match address")

// signEIP191 signs using EIP-191 (personal_sign). The message is prefixed
// with "\x19Ethereum Signed Message:\n<len>" before hashing. Returns a
// 65-byte signature (R || S || V) with V in {27, 28}.
func signEIP191(privKey *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	sig, err := crypto.Sign(eip191Hash(message), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}
	sig[64] += 27
	return sig, nil
}

// VerifyMessage recovers the signer address from an EIP-191 signature.
func VerifyMessage(message, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(sig))
	}

	recoverSig := make([]byte, 65)
	copy(recoverSig, sig)
	if recoverSig[64] >= 27 {
		recoverSig[64] -= 27
	}

	pubKey, err := crypto.SigToPub(eip191Hash(message), recoverSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifyOwnership checks that sig over message was produced by want. An
// organizer uses it to confirm a winner controls the claimed address.
func VerifyOwnership(message, sig []byte, want common.Address) error {
	got, err := VerifyMessage(message, sig)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: recovered %s, expected %s", ErrSignatureMismatch, got.Hex(), want.Hex())
	}
	return nil
}

// eip191Hash returns the Keccak-256 hash of the EIP-191 prefixed message.
func eip191Hash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	data := append([]byte(prefix), message...)
	return crypto.Keccak256(data)
}

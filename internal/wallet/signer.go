package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrWatchOnly is returned when a signature is requested from a wallet
// without a key.
var ErrWatchOnly = errors.New("wallet is watch-only and cannot sign")

// Signer authorizes outgoing transactions for one account. It never hands
// out key material.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// KeySigner signs with a key held in a KeystoreBackend. The key is fetched
// per signature and not retained.
type KeySigner struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewKeySigner creates a signer for the given wallet.
func NewKeySigner(w *Wallet, ks KeystoreBackend) *KeySigner {
	return &KeySigner{wallet: w, ks: ks}
}

// SignTx signs an EVM transaction with the London signer.
func (s *KeySigner) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	privKey, err := s.key()
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// SignMessage produces an EIP-191 signature of message.
func (s *KeySigner) SignMessage(message []byte) ([]byte, error) {
	privKey, err := s.key()
	if err != nil {
		return nil, err
	}
	return signEIP191(privKey, message)
}

// Address returns the wallet's address.
func (s *KeySigner) Address() common.Address {
	return common.HexToAddress(s.wallet.Address)
}

// Name is the wallet name the signer belongs to.
func (s *KeySigner) Name() string {
	return s.wallet.Name
}

func (s *KeySigner) key() (*ecdsa.PrivateKey, error) {
	if !s.wallet.CanSign() {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, s.wallet.Name)
	}

	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return privKey, nil
}

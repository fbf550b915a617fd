package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/w3raffle/internal/chain"
	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
)

// NewCall describes a call of fn with args. value is the payable amount in
// base units, nil for none.
func NewCall(fn string, value *big.Int, args ...interface{}) Call {
	return Call{Function: fn, Args: args, Value: value}
}

// Write signs and broadcasts a call and returns as soon as the node accepted
// it; the returned transaction then follows its receipt in the background.
//
// The transaction is never nil. When the write fails before broadcast it is
// already Failed and the same error is returned.
func (a *Adapter) Write(ctx context.Context, call Call) (*txstatus.PendingTransaction, error) {
	h, herr := a.Handle()
	if herr == nil {
		if m, ok := h.abi.Methods[call.Function]; ok {
			call.Selector = Selector(m.Sig)
		}
	}
	tx := txstatus.NewPendingTransaction(call)

	fail := func(err error) (*txstatus.PendingTransaction, error) {
		a.log.Warnw("write failed", "function", call.Function, "error", err)
		tx.Fail(err)
		return tx, err
	}
	if herr != nil {
		return fail(herr)
	}

	signed, err := a.prepare(ctx, h, call)
	if err != nil {
		return fail(err)
	}
	if err := a.backend.SendTransaction(ctx, signed); err != nil {
		return fail(fmt.Errorf("%w: broadcasting %s: %w", ErrWriteFailed, call.Function, err))
	}

	hash := signed.Hash()
	tx.Advance(txstatus.Event{Phase: txstatus.PhaseSubmitted, Hash: hash})
	a.receipts.Attach(a.observeCtx, tx, hash)
	a.log.Infow("transaction submitted", "function", call.Function, "hash", hash.Hex())
	return tx, nil
}

// prepare encodes, dry-runs, prices and signs a call.
func (a *Adapter) prepare(ctx context.Context, h *Handle, call Call) (*types.Transaction, error) {
	method, ok := h.abi.Methods[call.Function]
	if !ok {
		return nil, fmt.Errorf("%w: function %q not found in ABI", ErrWriteFailed, call.Function)
	}
	if method.IsConstant() {
		return nil, fmt.Errorf("%w: function %q is a read function", ErrWriteFailed, call.Function)
	}
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() > 0 && !method.IsPayable() {
		return nil, fmt.Errorf("%w: function %q is not payable", ErrWriteFailed, call.Function)
	}

	data, err := h.abi.Pack(call.Function, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %w", ErrWriteFailed, call.Function, err)
	}

	signer, err := a.signer(ctx)
	if err != nil {
		return nil, err
	}
	from := signer.Address()

	chainID, err := a.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getting chain id: %w", ErrWriteFailed, err)
	}
	if h.chainID != nil && h.chainID.Cmp(chainID) != 0 {
		return nil, fmt.Errorf("%w: connected to chain %s but the contract is on chain %s",
			ErrWriteFailed, chainID, h.chainID)
	}

	to := h.address
	gas, err := a.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s would revert: %s", ErrWriteFailed, call.Function, RevertReason(err))
	}
	gas = chain.PadGas(gas, a.gasMultiplier)

	tip, err := a.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getting tip cap: %w", ErrWriteFailed, err)
	}
	gasPrice, err := a.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getting gas price: %w", ErrWriteFailed, err)
	}
	tipCap, feeCap := chain.FeeCaps(tip, gasPrice)

	nonce, err := a.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: getting nonce: %w", ErrWriteFailed, err)
	}

	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	a.log.Debugw("signing", "function", call.Function, "from", from.Hex(), "gas", gas,
		"maxFee", chain.FormatGwei(feeCap), "maxCost", chain.MaxCost(gas, feeCap, value).String(), "nonce", nonce)

	signed, err := signer.SignTx(ctx, unsigned, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: signing: %w", ErrWriteFailed, err)
	}
	return signed, nil
}

func (a *Adapter) signer(ctx context.Context) (wallet.Signer, error) {
	if a.accounts == nil {
		return nil, ErrNoSignerAvailable
	}
	s, err := a.accounts.Signer(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSignerAvailable, err)
	}
	return s, nil
}

package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
)

// Read calls a view function and returns its decoded outputs in ABI order.
// The call is made from the selected account, or the zero address when no
// wallet is connected.
func (a *Adapter) Read(ctx context.Context, fn string, args ...interface{}) ([]interface{}, error) {
	h, err := a.Handle()
	if err != nil {
		return nil, err
	}

	method, ok := h.abi.Methods[fn]
	if !ok {
		return nil, fmt.Errorf("%w: function %q not found in ABI", ErrReadFailed, fn)
	}
	if !method.IsConstant() {
		return nil, fmt.Errorf("%w: function %q is not a read function", ErrReadFailed, fn)
	}

	data, err := h.abi.Pack(fn, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %w", ErrReadFailed, fn, err)
	}

	if a.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.readTimeout)
		defer cancel()
	}

	to := h.address
	out, err := a.backend.CallContract(ctx, ethereum.CallMsg{
		From: a.caller(),
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		a.log.Debugw("read failed", "function", fn, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, fn, err)
	}

	values, err := method.Outputs.Unpack(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %s: %v", ErrReadFailed, ErrDecodeFailed, fn, err)
	}
	return values, nil
}

package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Events decodes the logs of a mined transaction that the contract emitted
// for event. Each log becomes a map of argument name to value, indexed
// arguments included.
func (a *Adapter) Events(ctx context.Context, hash common.Hash, event string) ([]map[string]interface{}, error) {
	h, err := a.Handle()
	if err != nil {
		return nil, err
	}
	ev, ok := h.abi.Events[event]
	if !ok {
		return nil, fmt.Errorf("%w: event %q not found in ABI", ErrReadFailed, event)
	}
	receipt, err := a.backend.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: receipt %s: %w", ErrReadFailed, hash.Hex(), err)
	}
	return decodeLogs(h.address, ev, receipt.Logs)
}

func decodeLogs(addr common.Address, ev abi.Event, logs []*types.Log) ([]map[string]interface{}, error) {
	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}

	var out []map[string]interface{}
	for _, l := range logs {
		if l.Address != addr || len(l.Topics) == 0 || l.Topics[0] != ev.ID {
			continue
		}
		m := make(map[string]interface{})
		if len(l.Data) > 0 {
			if err := ev.Inputs.UnpackIntoMap(m, l.Data); err != nil {
				return nil, fmt.Errorf("%w: %s data: %v", ErrDecodeFailed, ev.Name, err)
			}
		}
		if err := abi.ParseTopicsIntoMap(m, indexed, l.Topics[1:]); err != nil {
			return nil, fmt.Errorf("%w: %s topics: %v", ErrDecodeFailed, ev.Name, err)
		}
		out = append(out, m)
	}
	return out, nil
}

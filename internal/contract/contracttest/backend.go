// Package contracttest provides an in-memory contract backend that answers
// ABI-encoded calls from Go handlers.
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
)

// ErrReverted is what a call without a handler fails with.
var ErrReverted = errors.New("execution reverted")

// Handler answers one function call with output values in ABI order.
type Handler func(args []interface{}) ([]interface{}, error)

// Backend implements contract.Backend. Reads dispatch to handlers by
// function name; sent transactions are recorded and, with AutoMine, mined
// into a successful receipt right away.
type Backend struct {
	mu sync.Mutex

	abi      abi.ABI
	handlers map[string]Handler
	raw      map[string][]byte
	calls    map[string]int
	from     []common.Address

	ChainIDValue *big.Int
	GasEstimate  uint64
	EstimateErr  error
	SendErr      error
	ChainErr     error
	AutoMine     bool
	Logs         func(tx *types.Transaction) []*types.Log

	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	head     uint64
}

var _ contract.Backend = (*Backend)(nil)

// New builds a backend for the given ABI entries.
func New(entries []contract.ABIEntry) *Backend {
	parsed, err := contract.Parse(entries)
	if err != nil {
		panic(err)
	}
	return &Backend{
		abi:          parsed,
		handlers:     make(map[string]Handler),
		raw:          make(map[string][]byte),
		calls:        make(map[string]int),
		receipts:     make(map[common.Hash]*types.Receipt),
		ChainIDValue: big.NewInt(31337),
		GasEstimate:  100_000,
		head:         1,
	}
}

// NewRaffle builds a backend for the raffle ABI.
func NewRaffle() *Backend {
	return New(contract.RaffleABI())
}

// On installs the handler for fn.
func (b *Backend) On(fn string, h Handler) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[fn] = h
	return b
}

// Returns answers fn with fixed outputs.
func (b *Backend) Returns(fn string, out ...interface{}) *Backend {
	return b.On(fn, func([]interface{}) ([]interface{}, error) { return out, nil })
}

// Fails makes every call of fn fail with err.
func (b *Backend) Fails(fn string, err error) *Backend {
	return b.On(fn, func([]interface{}) ([]interface{}, error) { return nil, err })
}

// ReturnsRaw answers fn with undecoded bytes.
func (b *Backend) ReturnsRaw(fn string, data []byte) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw[fn] = data
	return b
}

// Calls returns how often fn was called.
func (b *Backend) Calls(fn string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[fn]
}

// Callers returns the From address of every eth_call, in order.
func (b *Backend) Callers() []common.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]common.Address(nil), b.from...)
}

// Sent returns the broadcast transactions.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

// Mine stores a receipt for hash in a new block.
func (b *Backend) Mine(hash common.Hash, status uint64, logs ...*types.Log) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mineLocked(hash, status, logs)
}

func (b *Backend) mineLocked(hash common.Hash, status uint64, logs []*types.Log) {
	b.head++
	b.receipts[hash] = &types.Receipt{
		Status:      status,
		TxHash:      hash,
		BlockNumber: new(big.Int).SetUint64(b.head),
		Logs:        logs,
	}
}

// SetHead moves the chain head.
func (b *Backend) SetHead(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = n
}

func (b *Backend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("%w: short calldata", ErrReverted)
	}
	method, err := b.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReverted, err)
	}

	b.mu.Lock()
	b.calls[method.Name]++
	b.from = append(b.from, msg.From)
	h, ok := b.handlers[method.Name]
	raw, isRaw := b.raw[method.Name]
	b.mu.Unlock()

	if isRaw {
		return raw, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: no handler for %s", ErrReverted, method.Name)
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	out, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (b *Backend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(msg.Data) >= 4 {
		if m, err := b.abi.MethodById(msg.Data[:4]); err == nil {
			b.calls["estimate:"+m.Name]++
		}
	}
	if b.EstimateErr != nil {
		return 0, b.EstimateErr
	}
	return b.GasEstimate, nil
}

func (b *Backend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.sent)), nil
}

func (b *Backend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (b *Backend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SendErr != nil {
		return b.SendErr
	}
	b.sent = append(b.sent, tx)
	if b.AutoMine {
		var logs []*types.Log
		if b.Logs != nil {
			logs = b.Logs(tx)
		}
		b.mineLocked(tx.Hash(), types.ReceiptStatusSuccessful, logs)
	}
	return nil
}

func (b *Backend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (b *Backend) BlockNumber(context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.head, nil
}

func (b *Backend) ChainID(context.Context) (*big.Int, error) {
	if b.ChainErr != nil {
		return nil, b.ChainErr
	}
	return b.ChainIDValue, nil
}

// EventLog builds a log the contract at addr emitted for event. indexed are
// the topic values after the event ID; data are the non-indexed values.
func (b *Backend) EventLog(addr common.Address, event string, indexed []common.Hash, data ...interface{}) *types.Log {
	ev, ok := b.abi.Events[event]
	if !ok {
		panic("unknown event " + event)
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		panic(err)
	}
	return &types.Log{
		Address: addr,
		Topics:  append([]common.Hash{ev.ID}, indexed...),
		Data:    packed,
	}
}

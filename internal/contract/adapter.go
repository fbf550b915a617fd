// Package contract binds the raffle contract to a backend and the wallet
// session: ABI-encoded reads over eth_call and signed EIP-1559 writes whose
// lifecycle is tracked by txstatus.
package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3raffle/internal/config"
	"github.com/Mohsinsiddi/w3raffle/internal/logging"
	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
)

// Call describes a write call: function, arguments, payable value and
// selector.
type Call = txstatus.Call

// Target identifies the deployed contract.
type Target struct {
	Address string     // hex address; empty or zero means not deployed
	ChainID *big.Int   // network the contract lives on; nil accepts any
	ABI     []ABIEntry // nil uses the built-in raffle ABI
}

// Accounts supplies the caller identity. *wallet.SessionManager satisfies it.
type Accounts interface {
	Selected() (wallet.Account, bool)
	Signer(ctx context.Context) (wallet.Signer, error)
}

// Handle is an immutable binding of a contract address to its parsed ABI.
type Handle struct {
	address common.Address
	abi     abi.ABI
	entries []ABIEntry
	chainID *big.Int
}

func (h *Handle) Address() common.Address { return h.address }
func (h *Handle) ABI() abi.ABI            { return h.abi }
func (h *Handle) Entries() []ABIEntry     { return h.entries }

// ChainID is the expected network, nil when any is accepted.
func (h *Handle) ChainID() *big.Int { return h.chainID }

// Adapter issues contract reads and writes. The handle is built on first use
// and rebuilt after Reconfigure.
type Adapter struct {
	backend       Backend
	accounts      Accounts
	receipts      *txstatus.ReceiptSource
	receiptOpts   []txstatus.ReceiptOption
	log           *logging.Logger
	gasMultiplier uint64
	readTimeout   time.Duration
	observeCtx    context.Context

	mu     sync.Mutex
	target Target
	handle *Handle
}

type Option func(*Adapter)

// WithAccounts sets where the caller address and signer come from. Without
// it reads are anonymous and writes fail with ErrNoSignerAvailable.
func WithAccounts(a Accounts) Option {
	return func(ad *Adapter) { ad.accounts = a }
}

func WithLogger(l *logging.Logger) Option {
	return func(ad *Adapter) { ad.log = l }
}

// WithGasMultiplier pads gas estimates, as a percentage (120 = +20%).
func WithGasMultiplier(pct uint64) Option {
	return func(ad *Adapter) { ad.gasMultiplier = pct }
}

// WithReadTimeout bounds each read. Zero leaves reads unbounded.
func WithReadTimeout(d time.Duration) Option {
	return func(ad *Adapter) { ad.readTimeout = d }
}

// WithReceiptOptions configures receipt polling for submitted writes.
func WithReceiptOptions(opts ...txstatus.ReceiptOption) Option {
	return func(ad *Adapter) { ad.receiptOpts = append(ad.receiptOpts, opts...) }
}

// WithObserveContext sets the context receipt polling runs under. Cancelling
// it stops observing every pending transaction.
func WithObserveContext(ctx context.Context) Option {
	return func(ad *Adapter) { ad.observeCtx = ctx }
}

func New(backend Backend, target Target, opts ...Option) *Adapter {
	a := &Adapter{
		backend:       backend,
		target:        target,
		log:           logging.NewNop(),
		gasMultiplier: config.DefaultGasMultiplier,
		observeCtx:    context.Background(),
	}
	for _, o := range opts {
		o(a)
	}
	ro := append([]txstatus.ReceiptOption{txstatus.WithLogger(a.log)}, a.receiptOpts...)
	a.receipts = txstatus.NewReceiptSource(backend, ro...)
	return a
}

// Backend returns the backend the adapter talks to.
func (a *Adapter) Backend() Backend {
	return a.backend
}

// Handle returns the contract binding, building it on first use.
// ErrContractUnavailable means no usable address is configured.
func (a *Adapter) Handle() (*Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.handle != nil {
		return a.handle, nil
	}

	addr, err := ParseAddress(a.target.Address)
	if err != nil {
		return nil, err
	}
	entries := a.target.ABI
	if entries == nil {
		entries = RaffleABI()
	}
	parsed, err := Parse(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractUnavailable, err)
	}

	a.handle = &Handle{
		address: addr,
		abi:     parsed,
		entries: entries,
		chainID: a.target.ChainID,
	}
	a.log.Debugw("contract bound", "address", addr.Hex())
	return a.handle, nil
}

// Reconfigure switches to a new target. The next call rebuilds the handle;
// transactions already submitted keep being tracked.
func (a *Adapter) Reconfigure(t Target) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.target = t
	a.handle = nil
}

// Target returns the configured target.
func (a *Adapter) Target() Target {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

// ParseAddress validates a configured contract address. Empty, malformed and
// zero addresses yield ErrContractUnavailable.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, fmt.Errorf("%w: no contract address configured", ErrContractUnavailable)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: malformed address %q", ErrContractUnavailable, s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address placeholder", ErrContractUnavailable)
	}
	return addr, nil
}

// caller is the selected account, or the zero address when there is none.
func (a *Adapter) caller() common.Address {
	if a.accounts == nil {
		return common.Address{}
	}
	acc, ok := a.accounts.Selected()
	if !ok {
		return common.Address{}
	}
	return acc.Address
}

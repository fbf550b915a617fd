package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Account is one identity a provider reports.
type Account struct {
	Address  common.Address
	Name     string // optional display name
	Provider string // name of the provider that reported it
}

// Label returns the display name, or the address when there is none.
func (a Account) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Address.Hex()
}

// Provider is a source of accounts and signers: the local keystore, an
// unlocked node, or anything else that can authorize transactions.
type Provider interface {
	Name() string
	RequestAccounts(ctx context.Context) ([]Account, error)
	Signer(ctx context.Context, addr common.Address) (Signer, error)
}

// Discoverer finds the providers available right now.
type Discoverer interface {
	Discover(ctx context.Context) ([]Provider, error)
}

// StaticDiscoverer always reports the same providers.
type StaticDiscoverer []Provider

func (d StaticDiscoverer) Discover(context.Context) ([]Provider, error) {
	out := make([]Provider, 0, len(d))
	for _, p := range d {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- keystore provider ---

// KeystoreProvider reports the signing wallets of a Manager.
type KeystoreProvider struct {
	mgr *Manager
}

func NewKeystoreProvider(mgr *Manager) *KeystoreProvider {
	return &KeystoreProvider{mgr: mgr}
}

func (p *KeystoreProvider) Name() string { return "keystore" }

// RequestAccounts lists signing wallets, default wallet first.
func (p *KeystoreProvider) RequestAccounts(context.Context) ([]Account, error) {
	var out []Account
	for _, w := range p.mgr.List() {
		if !w.CanSign() {
			continue
		}
		out = append(out, Account{
			Address:  common.HexToAddress(w.Address),
			Name:     w.Name,
			Provider: p.Name(),
		})
	}
	return out, nil
}

func (p *KeystoreProvider) Signer(_ context.Context, addr common.Address) (Signer, error) {
	w, err := p.mgr.FindByAddress(addr)
	if err != nil {
		return nil, err
	}
	if !w.CanSign() {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, w.Name)
	}
	return NewKeySigner(w, p.mgr.Keystore()), nil
}

// --- node provider ---

// NodeProvider reports the accounts a JSON-RPC node manages (an unlocked
// dev node, a remote signer) and delegates signing to it.
type NodeProvider struct {
	url string

	mu     sync.Mutex
	client *rpc.Client
}

func NewNodeProvider(url string) *NodeProvider {
	return &NodeProvider{url: url}
}

// NewNodeProviderWithClient uses an already dialed client.
func NewNodeProviderWithClient(c *rpc.Client) *NodeProvider {
	return &NodeProvider{client: c}
}

func (p *NodeProvider) Name() string { return "node" }

func (p *NodeProvider) dial(ctx context.Context) (*rpc.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	c, err := rpc.DialContext(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", p.url, err)
	}
	p.client = c
	return c, nil
}

func (p *NodeProvider) RequestAccounts(ctx context.Context) ([]Account, error) {
	c, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	var addrs []common.Address
	if err := c.CallContext(ctx, &addrs, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	out := make([]Account, len(addrs))
	for i, a := range addrs {
		out[i] = Account{Address: a, Provider: p.Name()}
	}
	return out, nil
}

func (p *NodeProvider) Signer(ctx context.Context, addr common.Address) (Signer, error) {
	c, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	return &nodeSigner{client: c, addr: addr}, nil
}

// Close releases the RPC connection.
func (p *NodeProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

type nodeSigner struct {
	client *rpc.Client
	addr   common.Address
}

func (s *nodeSigner) Address() common.Address { return s.addr }

// SignTx asks the node to sign via eth_signTransaction and checks the result
// was signed by the expected account.
func (s *nodeSigner) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	args := map[string]interface{}{
		"from":                 s.addr,
		"to":                   tx.To(),
		"gas":                  hexutil.Uint64(tx.Gas()),
		"maxFeePerGas":         (*hexutil.Big)(tx.GasFeeCap()),
		"maxPriorityFeePerGas": (*hexutil.Big)(tx.GasTipCap()),
		"value":                (*hexutil.Big)(tx.Value()),
		"nonce":                hexutil.Uint64(tx.Nonce()),
		"input":                hexutil.Bytes(tx.Data()),
		"chainId":              (*hexutil.Big)(chainID),
	}

	var res struct {
		Raw hexutil.Bytes `json:"raw"`
	}
	if err := s.client.CallContext(ctx, &res, "eth_signTransaction", args); err != nil {
		return nil, fmt.Errorf("eth_signTransaction: %w", err)
	}

	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(res.Raw); err != nil {
		return nil, fmt.Errorf("decoding signed transaction: %w", err)
	}
	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil {
		return nil, fmt.Errorf("recovering signer: %w", err)
	}
	if from != s.addr {
		return nil, fmt.Errorf("%w: node signed as %s", ErrSignatureMismatch, from.Hex())
	}
	return signed, nil
}

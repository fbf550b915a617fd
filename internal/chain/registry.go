package chain

import (
	"errors"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds all metadata for a single network the raffle contract can be
// deployed on.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	Decimals       int32    `json:"decimals"`
	Testnet        bool     `json:"testnet"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer,omitempty"`
	FaucetURL      string   `json:"faucet_url,omitempty"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates the registry of supported networks.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "base", "sepolia").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// IsSupported reports whether id is one of the registry's chain IDs.
func (r *Registry) IsSupported(id int64) bool {
	_, ok := r.byID[id]
	return ok
}

// DefaultRPC returns the first registered RPC endpoint.
func (c *Chain) DefaultRPC() string {
	if len(c.RPCs) == 0 {
		return ""
	}
	return c.RPCs[0]
}

// TxURL returns the explorer link for a transaction hash, or "" when the
// chain has no explorer.
func (c *Chain) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return strings.TrimRight(c.Explorer, "/") + "/tx/" + hash
}

// AddressURL returns the explorer link for an address.
func (c *Chain) AddressURL(addr string) string {
	if c.Explorer == "" {
		return ""
	}
	return strings.TrimRight(c.Explorer, "/") + "/address/" + addr
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1,
			NativeCurrency: "ETH", Decimals: 18,
			RPCs:     []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			Explorer: "https://etherscan.io",
		},
		{
			Name: "goerli", DisplayName: "Goerli", ChainID: 5,
			NativeCurrency: "ETH", Decimals: 18, Testnet: true,
			RPCs:     []string{"https://ethereum-goerli-rpc.publicnode.com"},
			Explorer: "https://goerli.etherscan.io",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			NativeCurrency: "ETH", Decimals: 18, Testnet: true,
			RPCs:      []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
			Explorer:  "https://sepolia.etherscan.io",
			FaucetURL: "https://sepoliafaucet.com",
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137,
			NativeCurrency: "POL", Decimals: 18,
			RPCs:     []string{"https://polygon-rpc.com", "https://polygon-bor-rpc.publicnode.com"},
			Explorer: "https://polygonscan.com",
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10,
			NativeCurrency: "ETH", Decimals: 18,
			RPCs:     []string{"https://mainnet.optimism.io", "https://optimism-rpc.publicnode.com"},
			Explorer: "https://optimistic.etherscan.io",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum One", ChainID: 42161,
			NativeCurrency: "ETH", Decimals: 18,
			RPCs:     []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum-one-rpc.publicnode.com"},
			Explorer: "https://arbiscan.io",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453,
			NativeCurrency: "ETH", Decimals: 18,
			RPCs:     []string{"https://mainnet.base.org", "https://base-rpc.publicnode.com"},
			Explorer: "https://basescan.org",
		},
		{
			Name: "local", DisplayName: "Local devnet", ChainID: 31337,
			NativeCurrency: "ETH", Decimals: 18, Testnet: true,
			RPCs: []string{"http://127.0.0.1:8545"},
		},
	}
}

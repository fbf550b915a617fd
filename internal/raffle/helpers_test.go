package raffle_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/contract/contracttest"
	"github.com/Mohsinsiddi/w3raffle/internal/raffle"
	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
)

// Well-known Hardhat/Anvil test account. Never fund on mainnet.
const (
	hardhatKey0  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddr0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	raffleAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	organizer  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

var oneFinney = big.NewInt(1e15) // 0.001

// raffleOutputs builds getRaffle outputs for an open raffle.
func raffleOutputs(id int64, price *big.Int, maxTickets, sold int64) []interface{} {
	return []interface{}{
		big.NewInt(id),
		common.HexToAddress(organizer),
		"Raffle #" + big.NewInt(id).String(),
		"",
		price,
		big.NewInt(maxTickets),
		big.NewInt(sold),
		big.NewInt(0),
		common.Address{},
		new(big.Int).Mul(price, big.NewInt(sold)),
		uint8(5),
		uint8(10),
		true,
		false,
	}
}

// emptyOutputs is what the contract returns for an unknown id.
func emptyOutputs() []interface{} {
	return []interface{}{
		big.NewInt(0), common.Address{}, "", "", big.NewInt(0), big.NewInt(0), big.NewInt(0),
		big.NewInt(0), common.Address{}, big.NewInt(0), uint8(0), uint8(0), false, false,
	}
}

type countingAccounts struct {
	inner contract.Accounts

	mu      sync.Mutex
	signers int
}

func (c *countingAccounts) Selected() (wallet.Account, bool) { return c.inner.Selected() }

func (c *countingAccounts) Signer(ctx context.Context) (wallet.Signer, error) {
	c.mu.Lock()
	c.signers++
	c.mu.Unlock()
	return c.inner.Signer(ctx)
}

func (c *countingAccounts) Prompts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signers
}

func connectedSession(t *testing.T) *wallet.SessionManager {
	t.Helper()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(wallet.NewInMemoryKeystore()))
	_, err := mgr.AddWithKey("alice", hardhatKey0)
	require.NoError(t, err)

	sm := wallet.NewSessionManager(wallet.StaticDiscoverer{wallet.NewKeystoreProvider(mgr)})
	_, err = sm.Connect(context.Background())
	require.NoError(t, err)
	return sm
}

type fixture struct {
	backend  *contracttest.Backend
	adapter  *contract.Adapter
	accounts *countingAccounts
	service  *raffle.Service
}

func newFixture(t *testing.T, addr string, opts ...raffle.Option) *fixture {
	t.Helper()
	b := contracttest.NewRaffle()
	acc := &countingAccounts{inner: connectedSession(t)}
	a := contract.New(b, contract.Target{Address: addr},
		contract.WithAccounts(acc),
		contract.WithReceiptOptions(txstatus.WithPollInterval(time.Millisecond), txstatus.WithConfirmations(0)),
	)
	opts = append([]raffle.Option{raffle.WithIdentity(acc)}, opts...)
	return &fixture{backend: b, adapter: a, accounts: acc, service: raffle.NewService(a, opts...)}
}

func recordIDs(recs []raffle.Record) []uint64 {
	out := make([]uint64, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

package wallet_test

import (
	"testing"

	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test accounts. Never fund on mainnet.
const (
	hardhatKey0  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddr0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	hardhatKey1  = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	hardhatAddr1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func newTestManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(wallet.NewInMemoryKeystore()))
}

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := newTestManager()

	require.NoError(t, mgr.AddWatchOnly("watcher", "0x1234567890abcdef1234567890abcdef12345678"))

	w, err := mgr.Get("watcher")
	require.NoError(t, err)
	assert.Equal(t, "watcher", w.Name)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.False(t, w.CanSign())
}

func TestAddWatchOnlyRejectsBadAddress(t *testing.T) {
	mgr := newTestManager()
	err := mgr.AddWatchOnly("bad", "0x123")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := newTestManager()

	w := &wallet.Wallet{Name: "dup", Address: "0x123", Type: wallet.TypeWatchOnly}
	require.NoError(t, mgr.Add("dup", w))

	err := mgr.Add("dup", w)
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	mgr := newTestManager()

	w, err := mgr.AddWithKey("organizer", hardhatKey0)
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr0, w.Address)

	got, err := mgr.Get("organizer")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, got.Type)
	assert.True(t, got.CanSign())
	assert.Equal(t, "w3raffle.organizer", got.KeyRef)
}

func TestInvalidPrivateKey(t *testing.T) {
	mgr := newTestManager()
	_, err := mgr.AddWithKey("bad", "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

func TestFindByAddress(t *testing.T) {
	mgr := newTestManager()
	_, err := mgr.AddWithKey("player", hardhatKey1)
	require.NoError(t, err)

	w, err := mgr.FindByAddress(common.HexToAddress(hardhatAddr1))
	require.NoError(t, err)
	assert.Equal(t, "player", w.Name)

	_, err = mgr.FindByAddress(common.HexToAddress(hardhatAddr0))
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestListWalletsDefaultFirstThenByName(t *testing.T) {
	mgr := newTestManager()
	mgr.Add("w3", &wallet.Wallet{Name: "w3", Address: "0x333", Type: wallet.TypeWatchOnly}) //nolint:errcheck
	mgr.Add("w1", &wallet.Wallet{Name: "w1", Address: "0x111", Type: wallet.TypeWatchOnly}) //nolint:errcheck
	mgr.Add("w2", &wallet.Wallet{Name: "w2", Address: "0x222", Type: wallet.TypeWatchOnly}) //nolint:errcheck
	require.NoError(t, mgr.SetDefault("w3"))

	wallets := mgr.List()
	require.Len(t, wallets, 3)
	assert.Equal(t, "w3", wallets[0].Name)
	assert.Equal(t, "w1", wallets[1].Name)
	assert.Equal(t, "w2", wallets[2].Name)
}

func TestRemoveWalletDeletesKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))
	w, err := mgr.AddWithKey("w1", hardhatKey0)
	require.NoError(t, err)

	require.NoError(t, mgr.Remove("w1"))

	_, err = mgr.Get("w1")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = ks.Retrieve(w.KeyRef)
	assert.ErrorIs(t, err, wallet.ErrKeyNotFound)
}

func TestRemoveNonExistentWallet(t *testing.T) {
	mgr := newTestManager()
	err := mgr.Remove("ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestSetDefault(t *testing.T) {
	mgr := newTestManager()
	mgr.Add("w1", &wallet.Wallet{Name: "w1", Address: "0x111", Type: wallet.TypeWatchOnly}) //nolint:errcheck
	mgr.Add("w2", &wallet.Wallet{Name: "w2", Address: "0x222", Type: wallet.TypeWatchOnly}) //nolint:errcheck

	require.NoError(t, mgr.SetDefault("w2"))

	def := mgr.Default()
	require.NotNil(t, def)
	assert.Equal(t, "w2", def.Name)

	assert.ErrorIs(t, mgr.SetDefault("ghost"), wallet.ErrWalletNotFound)
}

func TestDefaultWalletWithSingleWallet(t *testing.T) {
	mgr := newTestManager()
	mgr.Add("only", &wallet.Wallet{Name: "only", Address: "0x111", Type: wallet.TypeWatchOnly}) //nolint:errcheck

	def := mgr.Default()
	require.NotNil(t, def)
	assert.Equal(t, "only", def.Name)
}

func TestCreatedAtIsSet(t *testing.T) {
	mgr := newTestManager()
	mgr.Add("w", &wallet.Wallet{Name: "w", Address: "0x111", Type: wallet.TypeWatchOnly}) //nolint:errcheck

	w, _ := mgr.Get("w")
	assert.NotEmpty(t, w.CreatedAt)
}

func TestGenerateWallet(t *testing.T) {
	mgr := newTestManager()

	w, err := mgr.Generate("fresh")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.True(t, common.IsHexAddress(w.Address))

	w2, err := mgr.Generate("fresh2")
	require.NoError(t, err)
	assert.NotEqual(t, w.Address, w2.Address)

	_, err = mgr.Generate("fresh")
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

package wallet

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3raffle-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("testpass"),
	})
	require.NoError(t, err)
	return NewKeystore(ring)
}

func TestKeystoreStoreRetrieveDelete(t *testing.T) {
	ks := testKeystore(t)

	ref, err := ks.Store("organizer", testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "w3raffle.organizer", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeystoreDeleteMissingIsNoop(t *testing.T) {
	ks := testKeystore(t)
	assert.NoError(t, ks.Delete("w3raffle.ghost"))
}

func TestKeystoreNilRing(t *testing.T) {
	ks := NewKeystore(nil)

	_, err := ks.Store("x", testPrivKeyHex)
	assert.Error(t, err)

	_, err = ks.Retrieve("w3raffle.x")
	assert.Error(t, err)

	assert.NoError(t, ks.Delete("w3raffle.x"))
}

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("w", testPrivKeyHex)
	require.NoError(t, err)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeystoreSatisfiesBackend(t *testing.T) {
	var _ KeystoreBackend = (*Keystore)(nil)
	var _ KeystoreBackend = NewInMemoryKeystore()
}

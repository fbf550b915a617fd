package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempSessionStore(t *testing.T) *FileSessionStore {
	t.Helper()
	return NewFileSessionStore(filepath.Join(t.TempDir(), "w3raffle", "session.json"))
}

func TestFileSessionStoreEmpty(t *testing.T) {
	s := tempSessionStore(t)
	_, ok := s.Load()
	assert.False(t, ok)
}

func TestFileSessionStoreSaveLoad(t *testing.T) {
	s := tempSessionStore(t)
	require.NoError(t, s.Save(testSignerAddr))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, testSignerAddr, got)
}

func TestFileSessionStoreUsesWellKnownKey(t *testing.T) {
	s := tempSessionStore(t)
	require.NoError(t, s.Save(testSignerAddr))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, map[string]string{"w3raffle.selected-account": testSignerAddr}, m)
}

func TestFileSessionStorePermissions(t *testing.T) {
	s := tempSessionStore(t)
	require.NoError(t, s.Save(testSignerAddr))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	if info.Mode().Perm() != 0 { // Unix only
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFileSessionStoreClearRemovesFile(t *testing.T) {
	s := tempSessionStore(t)
	require.NoError(t, s.Save(testSignerAddr))
	require.NoError(t, s.Clear())

	_, ok := s.Load()
	assert.False(t, ok)
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestFileSessionStoreClearKeepsOtherKeys(t *testing.T) {
	s := tempSessionStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"other":"x","w3raffle.selected-account":"0x1"}`), 0o600))

	require.NoError(t, s.Clear())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"other":"x"}`, string(data))
}

func TestFileSessionStoreCorruptFile(t *testing.T) {
	s := tempSessionStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0o600))

	_, ok := s.Load()
	assert.False(t, ok)
	require.NoError(t, s.Save(testSignerAddr))
	got, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, testSignerAddr, got)
}

func TestDefaultSessionPath(t *testing.T) {
	p := DefaultSessionPath()
	assert.Equal(t, "session.json", filepath.Base(p))
	assert.Equal(t, "w3raffle", filepath.Base(filepath.Dir(p)))
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore()
	_, ok := s.Load()
	assert.False(t, ok)

	require.NoError(t, s.Save("0xabc"))
	v, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, "0xabc", v)
	assert.Equal(t, 1, s.Saves())

	require.NoError(t, s.Clear())
	_, ok = s.Load()
	assert.False(t, ok)
}

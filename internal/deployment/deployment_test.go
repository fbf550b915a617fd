package deployment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/deployment"
)

const record = `{
  "contractAddress": "0x5fbdb2315678afecb367f032d93f642f64180aa3",
  "deployerAddress": "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
  "network": "localhost",
  "deploymentTime": "2026-03-01T12:00:00.000Z"
}`

var deployed = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func TestParse(t *testing.T) {
	info, err := deployment.Parse([]byte(record))
	require.NoError(t, err)

	assert.Equal(t, deployed, info.Address())
	assert.Equal(t, "local", info.RegistryNetwork())

	at, ok := info.DeployedAt()
	require.True(t, ok)
	assert.Equal(t, 2026, at.Year())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing address", `{"network":"sepolia"}`},
		{"malformed address", `{"contractAddress":"0x1234"}`},
		{"zero address", `{"contractAddress":"0x0000000000000000000000000000000000000000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deployment.Parse([]byte(tt.body))
			assert.ErrorIs(t, err, deployment.ErrInvalidDeployment)
		})
	}
}

func TestParseKeepsUnderlyingCause(t *testing.T) {
	_, err := deployment.Parse([]byte(`{"contractAddress":""}`))
	assert.ErrorIs(t, err, contract.ErrContractUnavailable)
}

func TestRegistryNetwork(t *testing.T) {
	for in, want := range map[string]string{
		"hardhat":   "local",
		"Sepolia":   "sepolia",
		" base ":    "base",
		"":          "",
		"localhost": "local",
	} {
		info := &deployment.Info{Network: in}
		assert.Equal(t, want, info.RegistryNetwork(), in)
	}
}

func TestDeployedAtMissing(t *testing.T) {
	_, ok := (&deployment.Info{}).DeployedAt()
	assert.False(t, ok)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract-deployment.json")
	require.NoError(t, os.WriteFile(path, []byte(record), 0o600))

	info, err := deployment.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, deployed, info.Address())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := deployment.NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEmptySource(t *testing.T) {
	_, err := deployment.NewLoader().Load(context.Background(), "  ")
	assert.ErrorIs(t, err, deployment.ErrInvalidDeployment)
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(record)) //nolint:errcheck
	}))
	defer srv.Close()

	info, err := deployment.NewLoader(deployment.WithHTTPClient(srv.Client())).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, deployed, info.Address())
	assert.Equal(t, "localhost", info.Network)
}

func TestLoadFromURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := deployment.NewLoader().Load(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadFromURLCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(record)) //nolint:errcheck
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := deployment.NewLoader().Load(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

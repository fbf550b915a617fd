// Package deployment reads the record the contract deploy script writes
// (contract-deployment.json) so a fresh install can point at a deployed
// raffle contract without copying addresses by hand.
package deployment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/logging"
)

// ErrInvalidDeployment is returned for records without a usable contract
// address.
var ErrInvalidDeployment = errors.New("invalid deployment record")

const (
	fetchTimeout = 15 * time.Second
	maxBodySize  = 1 << 20
)

// hardhat's built-in network names all mean the local devnet.
var localNetworks = map[string]bool{"hardhat": true, "localhost": true, "local": true}

// Info is one deployment of the raffle contract.
type Info struct {
	ContractAddress string `json:"contractAddress"`
	DeployerAddress string `json:"deployerAddress,omitempty"`
	Network         string `json:"network,omitempty"`
	DeploymentTime  string `json:"deploymentTime,omitempty"`

	address common.Address
}

// Address is the validated contract address.
func (i *Info) Address() common.Address { return i.address }

// RegistryNetwork maps the deploy tool's network name onto a network
// registry name. Empty when the record does not say.
func (i *Info) RegistryNetwork() string {
	n := strings.ToLower(strings.TrimSpace(i.Network))
	if localNetworks[n] {
		return "local"
	}
	return n
}

// DeployedAt parses DeploymentTime; ok is false when it is absent or not
// RFC 3339.
func (i *Info) DeployedAt() (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339, i.DeploymentTime)
	return t, err == nil
}

// Parse decodes and validates a deployment record.
func Parse(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDeployment, err)
	}
	addr, err := contract.ParseAddress(info.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDeployment, err)
	}
	info.address = addr
	return &info, nil
}

// Loader fetches deployment records from files or http(s) URLs.
type Loader struct {
	client *http.Client
	log    *logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

func WithLogger(log *logging.Logger) Option {
	return func(l *Loader) { l.log = log }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: fetchTimeout},
		log:    logging.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load reads the record at source, a local path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) (*Info, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: no source given", ErrInvalidDeployment)
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("reading deployment %s: %w", source, err)
	}

	info, err := Parse(data)
	if err != nil {
		return nil, err
	}
	l.log.Debugw("deployment loaded", "source", source, "address", info.address.Hex(), "network", info.Network)
	return info, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"

	"github.com/Mohsinsiddi/w3raffle/internal/logging"
)

// Session errors.
var (
	ErrProviderNotFound  = errors.New("no wallet provider found")
	ErrNoAccounts        = errors.New("wallet provider reported no accounts")
	ErrInvalidAccount    = errors.New("account is not one of the connected accounts")
	ErrNoAccountSelected = errors.New("no account selected")
)

// DefaultConnectTimeout bounds one shared connect attempt.
const DefaultConnectTimeout = 30 * time.Second

// Status is the connection state of a session.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Accounts []Account
	Selected *Account
	Status   Status
	Error    string
}

// Connected reports whether the session has a usable account list.
func (s Snapshot) Connected() bool {
	return s.Status == StatusConnected
}

// SessionManager owns the connection to the wallet providers and the selected
// account. One instance is shared by every caller of a process; all
// mutations are serialized and concurrent connects share a single attempt.
type SessionManager struct {
	discoverer     Discoverer
	store          SessionStore
	log            *logging.Logger
	connectTimeout time.Duration

	flight singleflight.Group

	mu        sync.Mutex
	accounts  []Account
	selected  int // index into accounts, -1 for none
	status    Status
	errMsg    string
	providers map[string]Provider
	subs      map[int]chan Snapshot
	nextSub   int
}

type SessionOption func(*SessionManager)

// WithSessionStore sets where the selected address is persisted.
func WithSessionStore(s SessionStore) SessionOption {
	return func(m *SessionManager) { m.store = s }
}

func WithSessionLogger(l *logging.Logger) SessionOption {
	return func(m *SessionManager) { m.log = l }
}

// WithConnectTimeout bounds a connect attempt independently of the callers
// waiting on it.
func WithConnectTimeout(d time.Duration) SessionOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.connectTimeout = d
		}
	}
}

func NewSessionManager(d Discoverer, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		discoverer:     d,
		store:          NewMemorySessionStore(),
		log:            logging.NewNop(),
		connectTimeout: DefaultConnectTimeout,
		selected:       -1,
		providers:      make(map[string]Provider),
		subs:           make(map[int]chan Snapshot),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Connect discovers providers, requests their accounts and selects the
// first one. Concurrent calls share one attempt and one provider prompt.
// The failure is also recorded in the session as StatusError.
func (m *SessionManager) Connect(ctx context.Context) (Snapshot, error) {
	return m.connect(ctx, nil)
}

// Restore reconnects when a previously selected address was persisted and
// re-selects it if the providers still report it. Failures only show up in
// the session status.
func (m *SessionManager) Restore(ctx context.Context) Snapshot {
	saved, ok := m.store.Load()
	if !ok || !common.IsHexAddress(saved) {
		return m.Snapshot()
	}
	addr := common.HexToAddress(saved)
	snap, err := m.connect(ctx, &addr)
	if err != nil {
		m.log.Warnw("session restore failed", "address", saved, "error", err)
	}
	return snap
}

// connect runs the shared attempt under its own deadline, detached from
// the caller that started it. Each caller stops waiting when its own ctx
// ends; the attempt carries on for the others.
func (m *SessionManager) connect(ctx context.Context, prefer *common.Address) (Snapshot, error) {
	ch := m.flight.DoChan("connect", func() (interface{}, error) {
		attempt, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.connectTimeout)
		defer cancel()
		return m.doConnect(attempt, prefer)
	})
	select {
	case res := <-ch:
		if res.Shared {
			m.log.Debugw("joined in-flight connect")
		}
		return res.Val.(Snapshot), res.Err
	case <-ctx.Done():
		return m.Snapshot(), ctx.Err()
	}
}

func (m *SessionManager) doConnect(ctx context.Context, prefer *common.Address) (Snapshot, error) {
	m.mu.Lock()
	m.status = StatusConnecting
	m.errMsg = ""
	m.notifyLocked()
	m.mu.Unlock()

	accounts, providers, err := m.requestAll(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.resetLocked()
		m.status = StatusError
		m.errMsg = err.Error()
		m.notifyLocked()
		return m.snapshotLocked(), err
	}

	m.accounts = accounts
	m.providers = providers
	m.selected = 0
	if prefer != nil {
		if i := indexOf(accounts, *prefer); i >= 0 {
			m.selected = i
		}
	}
	m.status = StatusConnected
	m.persistLocked()
	m.notifyLocked()
	m.log.Infow("connected", "accounts", len(accounts), "selected", accounts[m.selected].Address.Hex())
	return m.snapshotLocked(), nil
}

// requestAll asks every discovered provider for accounts, in discovery
// order. A provider that fails is skipped as long as another one answers.
func (m *SessionManager) requestAll(ctx context.Context) ([]Account, map[string]Provider, error) {
	providers, err := m.discoverer.Discover(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrProviderNotFound, err)
	}
	if len(providers) == 0 {
		return nil, nil, ErrProviderNotFound
	}

	var (
		accounts []Account
		byName   = make(map[string]Provider, len(providers))
		firstErr error
		answered bool
	)
	for _, p := range providers {
		accs, err := p.RequestAccounts(ctx)
		if err != nil {
			m.log.Warnw("provider failed", "provider", p.Name(), "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", p.Name(), err)
			}
			continue
		}
		answered = true
		byName[p.Name()] = p
		for _, a := range accs {
			if a.Provider == "" {
				a.Provider = p.Name()
			}
			if indexOf(accounts, a.Address) >= 0 {
				continue
			}
			accounts = append(accounts, a)
		}
	}
	if !answered && firstErr != nil {
		return nil, nil, firstErr
	}
	if len(accounts) == 0 {
		return nil, nil, ErrNoAccounts
	}
	return accounts, byName, nil
}

// Refresh re-reads the account list of a connected session. Zero accounts
// reset the session to Disconnected; a vanished selection falls back to the
// first account.
func (m *SessionManager) Refresh(ctx context.Context) (Snapshot, error) {
	if !m.Snapshot().Connected() {
		return m.Snapshot(), nil
	}
	accounts, providers, err := m.requestAll(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusConnected {
		return m.snapshotLocked(), nil
	}
	if errors.Is(err, ErrNoAccounts) {
		m.resetLocked()
		m.clearPersistedLocked()
		m.notifyLocked()
		return m.snapshotLocked(), nil
	}
	if err != nil {
		return m.snapshotLocked(), err
	}

	var current common.Address
	if m.selected >= 0 {
		current = m.accounts[m.selected].Address
	}
	m.accounts = accounts
	m.providers = providers
	m.selected = indexOf(accounts, current)
	if m.selected < 0 {
		m.selected = 0
		m.persistLocked()
	}
	m.notifyLocked()
	return m.snapshotLocked(), nil
}

// Disconnect resets the session and forgets the persisted address. It
// always succeeds.
func (m *SessionManager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.clearPersistedLocked()
	m.notifyLocked()
}

// SelectAccount switches the selected account; addr must be one of the
// connected accounts.
func (m *SessionManager) SelectAccount(addr common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.accounts, addr)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAccount, addr.Hex())
	}
	m.selected = i
	m.persistLocked()
	m.notifyLocked()
	return nil
}

// Selected returns the selected account.
func (m *SessionManager) Selected() (Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected < 0 {
		return Account{}, false
	}
	return m.accounts[m.selected], true
}

// Signer returns the signing capability of the selected account.
func (m *SessionManager) Signer(ctx context.Context) (Signer, error) {
	m.mu.Lock()
	if m.selected < 0 {
		m.mu.Unlock()
		return nil, ErrNoAccountSelected
	}
	acc := m.accounts[m.selected]
	p, ok := m.providers[acc.Provider]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: provider %q is gone", ErrProviderNotFound, acc.Provider)
	}
	return p.Signer(ctx, acc.Address)
}

// Snapshot returns a copy of the current state.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe delivers the latest snapshot after every state change. Slow
// readers only see the newest state. The returned func unsubscribes.
func (m *SessionManager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 1)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

// --- internal, m.mu held ---

func (m *SessionManager) snapshotLocked() Snapshot {
	s := Snapshot{
		Accounts: append([]Account(nil), m.accounts...),
		Status:   m.status,
		Error:    m.errMsg,
	}
	if m.selected >= 0 {
		acc := m.accounts[m.selected]
		s.Selected = &acc
	}
	return s
}

func (m *SessionManager) resetLocked() {
	m.accounts = nil
	m.selected = -1
	m.providers = make(map[string]Provider)
	m.status = StatusDisconnected
	m.errMsg = ""
}

func (m *SessionManager) persistLocked() {
	if m.selected < 0 {
		return
	}
	if err := m.store.Save(m.accounts[m.selected].Address.Hex()); err != nil {
		m.log.Warnw("persisting selected account", "error", err)
	}
}

func (m *SessionManager) clearPersistedLocked() {
	if err := m.store.Clear(); err != nil {
		m.log.Warnw("clearing persisted session", "error", err)
	}
}

func (m *SessionManager) notifyLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func indexOf(accounts []Account, addr common.Address) int {
	for i, a := range accounts {
		if a.Address == addr {
			return i
		}
	}
	return -1
}

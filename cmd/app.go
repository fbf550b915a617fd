package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Mohsinsiddi/w3raffle/internal/chain"
	"github.com/Mohsinsiddi/w3raffle/internal/config"
	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/raffle"
	"github.com/Mohsinsiddi/w3raffle/internal/rpc"
	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
	"github.com/Mohsinsiddi/w3raffle/internal/ui"
	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
)

// currentChain resolves the configured network.
func currentChain() (*chain.Chain, error) {
	c, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q, run `w3raffle networks` to see all networks", cfg.Network)
	}
	return c, nil
}

// nodeURL is the node holding the accounts of the node provider. Public
// endpoints never hold accounts, so no selection happens here.
func nodeURL(c *chain.Chain) string {
	if cfg.RPCURL != "" {
		return cfg.RPCURL
	}
	return c.DefaultRPC()
}

// resolveRPC picks the endpoint for contract traffic: the configured RPC, or
// one of the network's endpoints chosen by the configured strategy.
func resolveRPC(ctx context.Context, c *chain.Chain) (string, error) {
	if cfg.RPCURL != "" {
		return cfg.RPCURL, nil
	}
	strategy, err := rpc.ParseStrategy(cfg.RPCStrategy)
	if err != nil {
		return "", err
	}
	url, err := rpc.Select(ctx, c.RPCs, strategy)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.DisplayName, err)
	}
	log.Debugw("rpc selected", "network", c.Name, "strategy", strategy, "url", url)
	return url, nil
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(filepath.Join(cfg.Dir(), "keys"))),
	)
}

// newSessionManager builds the session over the configured provider. The
// selected address survives between invocations in the config dir.
func newSessionManager(c *chain.Chain) *wallet.SessionManager {
	var providers wallet.StaticDiscoverer
	switch cfg.Provider {
	case "node":
		providers = append(providers, wallet.NewNodeProvider(nodeURL(c)))
	default:
		providers = append(providers, wallet.NewKeystoreProvider(newWalletManager()))
	}
	return wallet.NewSessionManager(providers,
		wallet.WithSessionStore(wallet.NewFileSessionStore(filepath.Join(cfg.Dir(), "session.json"))),
		wallet.WithSessionLogger(log.Named("session")),
		wallet.WithConnectTimeout(config.ConnectTimeout),
	)
}

// app is everything a raffle command needs, wired from config.
type app struct {
	chain   *chain.Chain
	session *wallet.SessionManager
	client  *ethclient.Client
	adapter *contract.Adapter
	raffles *raffle.Service
}

// openApp dials the RPC and restores the persisted session. Restore failures
// only degrade to an anonymous session.
func openApp(ctx context.Context) (*app, error) {
	c, err := currentChain()
	if err != nil {
		return nil, err
	}
	url, err := resolveRPC(ctx, c)
	if err != nil {
		return nil, err
	}
	client, err := contract.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	session := newSessionManager(c)
	connectCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	session.Restore(connectCtx)
	cancel()

	adapter := contract.New(client, contract.Target{
		Address: cfg.ContractAddress,
		ChainID: big.NewInt(c.ChainID),
		ABI:     contract.RaffleABI(),
	},
		contract.WithAccounts(session),
		contract.WithLogger(log.Named("contract")),
		contract.WithGasMultiplier(cfg.GasMultiplier),
		contract.WithReadTimeout(time.Duration(cfg.ReadTimeout)*time.Second),
		contract.WithObserveContext(ctx),
		contract.WithReceiptOptions(
			txstatus.WithPollInterval(config.ReceiptPollInterval),
			txstatus.WithConfirmations(cfg.Confirmations),
		),
	)

	svc := raffle.NewService(adapter,
		raffle.WithConcurrency(cfg.ReadConcurrency),
		raffle.WithMaxRaffles(cfg.MaxRaffles),
		raffle.WithIdentity(session),
		raffle.WithLogger(log.Named("raffle")),
		raffle.WithDecimals(c.Decimals),
	)

	return &app{chain: c, session: session, client: client, adapter: adapter, raffles: svc}, nil
}

func (a *app) Close() {
	a.client.Close()
}

// waitForTx follows a started write until it finalizes. With the TUI the
// user may stop watching early; the transaction keeps going either way.
func (a *app) waitForTx(ctx context.Context, res raffle.ActionResult, title string, tui bool) error {
	if res.Err != nil {
		return res.Err
	}
	tx := res.Tx

	if tui {
		m := ui.NewTxWatch(title, tx)
		m.ExplorerURL = a.chain.TxURL
		final, err := ui.RunTxWatch(m)
		if err != nil {
			return err
		}
		if final.Quit() {
			tx.Stop()
			fmt.Println(ui.Meta("Stopped watching " + tx.Hash().Hex()))
			return nil
		}
		st := final.Status()
		if st.IsError {
			return st.Err
		}
		return nil
	}

	fmt.Println(ui.Info("Submitted " + ui.Addr(tx.Hash().Hex())))
	if u := a.chain.TxURL(tx.Hash().Hex()); u != "" {
		fmt.Println(ui.Meta("  " + u))
	}

	waitCtx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
	defer cancel()

	spin := ui.NewSpinner("Waiting for confirmation...").Start()
	st, err := tx.Wait(waitCtx, txstatus.PhaseFinalized)
	spin.Stop()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		tx.Stop()
		fmt.Println(ui.Warn(fmt.Sprintf("Still %s after %s, check the explorer.", st.Phase, config.TxConfirmTimeout)))
		return nil
	case err != nil:
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("%s finalized in block %d", title, st.Block)))
	return nil
}

// errorLine turns an error into the notification shown to the user.
func errorLine(err error) string {
	var hint string
	switch {
	case errors.Is(err, wallet.ErrProviderNotFound):
		hint = "Add a wallet with `w3raffle wallet import <name> --key <private-key>`."
	case errors.Is(err, wallet.ErrNoAccounts):
		hint = "No signing accounts yet. Import one with `w3raffle wallet import <name> --key <private-key>`."
	case errors.Is(err, contract.ErrNoSignerAvailable), errors.Is(err, wallet.ErrNoAccountSelected):
		hint = "Connect a wallet first: `w3raffle wallet connect`."
	case errors.Is(err, contract.ErrContractUnavailable):
		hint = "Set the contract with `w3raffle config set-contract <address>`."
	case errors.Is(err, rpc.ErrNoHealthyRPC):
		hint = "Set an RPC with `w3raffle config set-rpc <url>` or change rpc_strategy."
	case errors.Is(err, txstatus.ErrReverted):
		hint = "The contract rejected the transaction."
	}
	line := ui.Err(err.Error())
	if hint != "" {
		line += "\n" + ui.Meta("  "+hint)
	}
	return line
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3raffle/internal/config"
	"github.com/Mohsinsiddi/w3raffle/internal/ui"
	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
)

var (
	walletKeyFlag      string
	walletGenerateFlag bool
	walletDefaultFlag  bool

	verifySig     string
	verifyAddress string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets and the connected session",
}

// ── Session ──

var walletConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the wallet provider and select the first account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentChain()
		if err != nil {
			return err
		}
		session := newSessionManager(c)

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ConnectTimeout)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Requesting accounts from the %s provider...", cfg.Provider)).Start()
		snap, err := session.Connect(ctx)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Connected %d account(s)", len(snap.Accounts))))
		fmt.Println(sessionBlock(snap))
		return nil
	},
}

var walletDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentChain()
		if err != nil {
			return err
		}
		newSessionManager(c).Disconnect()
		fmt.Println(ui.Success("Disconnected."))
		return nil
	},
}

var walletStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentChain()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ConnectTimeout)
		defer cancel()

		snap := newSessionManager(c).Restore(ctx)
		fmt.Println(sessionBlock(snap))
		if !snap.Connected() {
			fmt.Println(ui.Meta("Connect with: w3raffle wallet connect"))
		}
		return nil
	},
}

var walletAccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the accounts of the connected session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := connectedSession(cmd.Context())
		if err != nil {
			return err
		}

		t := ui.NewTable([]ui.Column{
			{Title: "", Width: 2},
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Provider", Width: 10},
		})
		for _, a := range snap.Accounts {
			mark := ""
			if snap.Selected != nil && snap.Selected.Address == a.Address {
				mark = "●"
			}
			t.AddRow(ui.Row{mark, a.Name, a.Address.Hex(), a.Provider})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var walletSelectCmd = &cobra.Command{
	Use:   "select [address|name]",
	Short: "Select the account used for reads and transactions",
	Long: `Select one of the connected accounts. Without an argument an
interactive picker is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentChain()
		if err != nil {
			return err
		}
		session := newSessionManager(c)
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ConnectTimeout)
		defer cancel()

		snap := session.Restore(ctx)
		if !snap.Connected() {
			if snap, err = session.Connect(ctx); err != nil {
				return err
			}
		}

		var target string
		if len(args) == 1 {
			target = args[0]
		} else {
			items := make([]ui.PickerItem, len(snap.Accounts))
			for i, a := range snap.Accounts {
				items[i] = ui.PickerItem{
					Label:    a.Label(),
					SubLabel: ui.TruncateAddr(a.Address.Hex()),
					Value:    a.Address.Hex(),
					Current:  snap.Selected != nil && snap.Selected.Address == a.Address,
				}
			}
			picked, ok, err := ui.PickItem("Select account", items)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			target = picked
		}

		acc, err := findAccount(snap.Accounts, target)
		if err != nil {
			return err
		}
		if err := session.SelectAccount(acc.Address); err != nil {
			return err
		}
		fmt.Println(ui.Success("Selected " + acc.Label() + " " + ui.Addr(acc.Address.Hex())))
		return nil
	},
}

// ── Registry ──

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a watch-only wallet, or generate a new signing wallet",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletGenerateFlag {
			w, err := mgr.Generate(name)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q generated: %s", name, ui.Addr(w.Address))))
			fmt.Println(ui.Meta("The key is kept in the OS keychain. Fund the address before buying tickets."))
			return setDefaultIf(mgr, name)
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: w3raffle wallet add <name> <address>\n  Or generate one: w3raffle wallet add <name> --generate")
		}
		if err := mgr.AddWatchOnly(name, args[1]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
		return setDefaultIf(mgr, name)
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name> --key <private-key>",
	Short: "Import a signing wallet from a private key",
	Long: `Import a private key. The key is stored in the OS keychain (or the
encrypted file backend when no keychain is available); only the address is
written to wallets.json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if walletKeyFlag == "" {
			return fmt.Errorf("--key is required")
		}
		name := args[0]
		mgr := newWalletManager()
		w, err := mgr.AddWithKey(name, walletKeyFlag)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q imported: %s", name, ui.Addr(w.Address))))
		return setDefaultIf(mgr, name)
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Meta("Import one with: w3raffle wallet import <name> --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), def})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

// ── Messages ──

var walletSignCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with the selected account (EIP-191)",
	Long: `Sign a plaintext message with EIP-191 personal_sign. A raffle winner
can use it to prove control of the winning address to the organizer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentChain()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ConnectTimeout)
		defer cancel()

		session := newSessionManager(c)
		if !session.Restore(ctx).Connected() {
			return wallet.ErrNoAccountSelected
		}
		signer, err := session.Signer(ctx)
		if err != nil {
			return err
		}
		ms, ok := signer.(messageSigner)
		if !ok {
			return fmt.Errorf("the %s provider cannot sign messages", cfg.Provider)
		}
		sig, err := ms.SignMessage([]byte(args[0]))
		if err != nil {
			return fmt.Errorf("signing failed: %w", err)
		}

		sigHex := hexutil.Encode(sig)
		fmt.Println(ui.KeyValueBlock("Message Signed", [][2]string{
			{"Signer", ui.Addr(signer.Address().Hex())},
			{"Message", args[0]},
			{"Signature", sigHex},
		}))
		fmt.Println(ui.Meta("Verify: w3raffle wallet verify \"" + args[0] + "\" --sig " + sigHex + " --address " + signer.Address().Hex()))
		return nil
	},
}

var walletVerifyCmd = &cobra.Command{
	Use:   "verify <message> --sig <signature> --address <address>",
	Short: "Check that a message was signed by an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(verifyAddress) {
			return fmt.Errorf("%w: %s", wallet.ErrInvalidAddress, verifyAddress)
		}
		sig, err := hexutil.Decode(verifySig)
		if err != nil {
			return fmt.Errorf("invalid signature: %w", err)
		}
		err = wallet.VerifyOwnership([]byte(args[0]), sig, common.HexToAddress(verifyAddress))
		if errors.Is(err, wallet.ErrSignatureMismatch) {
			fmt.Println(ui.Err(err.Error()))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Signature valid for " + ui.Addr(verifyAddress)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().BoolVar(&walletGenerateFlag, "generate", false, "generate a new signing key instead of watching an address")
	walletAddCmd.Flags().BoolVar(&walletDefaultFlag, "default", false, "make it the default wallet")
	walletImportCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (stored in the OS keychain)")
	walletImportCmd.Flags().BoolVar(&walletDefaultFlag, "default", false, "make it the default wallet")
	walletVerifyCmd.Flags().StringVar(&verifySig, "sig", "", "0x signature")
	walletVerifyCmd.Flags().StringVar(&verifyAddress, "address", "", "expected signer")
	_ = walletVerifyCmd.MarkFlagRequired("sig")
	_ = walletVerifyCmd.MarkFlagRequired("address")

	walletCmd.AddCommand(
		walletConnectCmd, walletDisconnectCmd, walletStatusCmd, walletAccountsCmd, walletSelectCmd,
		walletAddCmd, walletImportCmd, walletListCmd, walletRemoveCmd,
		walletSignCmd, walletVerifyCmd,
	)
}

type messageSigner interface {
	SignMessage(message []byte) ([]byte, error)
}

// connectedSession restores the session, connecting if nothing was persisted.
func connectedSession(ctx context.Context) (wallet.Snapshot, error) {
	c, err := currentChain()
	if err != nil {
		return wallet.Snapshot{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	session := newSessionManager(c)
	if snap := session.Restore(ctx); snap.Connected() {
		return snap, nil
	}
	return session.Connect(ctx)
}

// findAccount matches target against account addresses and names.
func findAccount(accounts []wallet.Account, target string) (wallet.Account, error) {
	for _, a := range accounts {
		if common.IsHexAddress(target) && a.Address == common.HexToAddress(target) {
			return a, nil
		}
		if a.Name != "" && strings.EqualFold(a.Name, target) {
			return a, nil
		}
	}
	return wallet.Account{}, fmt.Errorf("%w: %s", wallet.ErrInvalidAccount, target)
}

func setDefaultIf(mgr *wallet.Manager, name string) error {
	if !walletDefaultFlag {
		fmt.Println(ui.Meta("Make it the default with --default, or pick it with: w3raffle wallet select"))
		return nil
	}
	if err := mgr.SetDefault(name); err != nil {
		return err
	}
	cfg.DefaultWallet = name
	return cfg.Save()
}

func sessionBlock(snap wallet.Snapshot) string {
	pairs := [][2]string{
		{"Status", snap.Status.String()},
		{"Provider", cfg.Provider},
		{"Accounts", fmt.Sprintf("%d", len(snap.Accounts))},
	}
	if snap.Selected != nil {
		pairs = append(pairs, [2]string{"Selected", snap.Selected.Label() + " " + snap.Selected.Address.Hex()})
	}
	if snap.Error != "" {
		pairs = append(pairs, [2]string{"Error", snap.Error})
	}
	return ui.KeyValueBlock("Wallet session", pairs)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "signing"
	default:
		return t
	}
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3raffle/internal/config"
	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/raffle"
	"github.com/Mohsinsiddi/w3raffle/internal/ui"
)

var (
	raffleTUI      bool
	raffleYes      bool
	raffleArtifact string

	createMaxTickets uint64
	createPrice      string
	createFee        uint8
	createStake      uint8
)

var raffleCmd = &cobra.Command{
	Use:   "raffle",
	Short: "Browse and run raffles",
}

// ── Read ──

var raffleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every raffle on the contract",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		spin := ui.NewSpinner("Loading raffles...").Start()
		recs := a.raffles.GetAllRaffles(cmd.Context())
		spin.Stop()

		if len(recs) == 0 {
			fmt.Println(ui.Info("No raffles found."))
			return nil
		}
		fmt.Println(ui.RaffleTable(recs, a.chain.NativeCurrency, me(a)))
		fmt.Println(ui.Meta(fmt.Sprintf("%d raffle(s) on %s", len(recs), a.chain.DisplayName)))
		return nil
	},
}

var raffleShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one raffle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRaffleID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		rec, ok := a.raffles.GetRaffle(cmd.Context(), id)
		if !ok {
			return fmt.Errorf("%w: #%d", raffle.ErrRaffleNotFound, id)
		}
		var tickets uint64
		if acc, ok := a.session.Selected(); ok {
			tickets = a.raffles.GetUserTickets(cmd.Context(), id, acc.Address)
		}
		participants, _ := a.raffles.GetParticipants(cmd.Context(), id)
		fmt.Println(ui.RaffleDetail(*rec, a.chain.NativeCurrency, tickets, participants))
		return nil
	},
}

var raffleMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List raffles organized by the selected account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		acc, ok := a.session.Selected()
		if !ok {
			fmt.Println(ui.Info("No account selected, connect with: w3raffle wallet connect"))
			return nil
		}
		ids := a.raffles.GetUserRaffles(cmd.Context(), acc.Address)
		return printRaffles(cmd.Context(), a, ids, "You have not organized any raffle.")
	},
}

var raffleActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "List raffles still selling tickets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ids := a.raffles.GetActiveRaffles(cmd.Context())
		return printRaffles(cmd.Context(), a, ids, "No active raffles.")
	},
}

var raffleTicketsCmd = &cobra.Command{
	Use:   "tickets <id> [address]",
	Short: "Count the tickets an address holds in a raffle",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRaffleID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var addr common.Address
		switch {
		case len(args) == 2:
			if !common.IsHexAddress(args[1]) {
				return fmt.Errorf("invalid address %q", args[1])
			}
			addr = common.HexToAddress(args[1])
		default:
			acc, ok := a.session.Selected()
			if !ok {
				return fmt.Errorf("pass an address or connect a wallet first")
			}
			addr = acc.Address
		}
		n := a.raffles.GetUserTickets(cmd.Context(), id, addr)
		fmt.Printf("%s holds %s ticket(s) in raffle #%d\n", ui.Addr(addr.Hex()), ui.Val(strconv.FormatUint(n, 10)), id)
		return nil
	},
}

var raffleABICmd = &cobra.Command{
	Use:   "abi",
	Short: "Print the raffle contract ABI and its selectors",
	Long: `Print the built-in raffle ABI. With --artifact, print the functions of a
compiled contract (raw ABI array or Hardhat/Foundry artifact) instead and
report every raffle function it lacks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := contract.RaffleABI()
		if raffleArtifact != "" {
			loaded, err := contract.LoadFromArtifact(raffleArtifact)
			if err != nil {
				return err
			}
			entries = loaded
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Selector", Width: 10},
			{Title: "Type", Width: 8},
			{Title: "Signature", Width: 48},
		})
		for _, e := range entries {
			if e.Type != "function" {
				continue
			}
			kind := "write"
			if e.IsReadFunction() {
				kind = "view"
			}
			t.AddRow(ui.Row{contract.Selector(e.Signature()), kind, e.Signature()})
		}
		fmt.Println(t.Render())

		if raffleArtifact != "" {
			missing := 0
			for _, want := range contract.RaffleABI() {
				if want.Type != "function" {
					continue
				}
				got, ok := contract.Find(entries, "function", want.Name)
				if ok && got.Signature() == want.Signature() {
					continue
				}
				if !contract.RaffleFunctionRequired(want.Name) {
					fmt.Println(ui.Meta("Optional " + want.Signature() + " not present"))
					continue
				}
				fmt.Println(ui.Warn("Missing " + want.Signature()))
				missing++
			}
			if missing > 0 {
				return fmt.Errorf("artifact lacks %d raffle function(s)", missing)
			}
			fmt.Println(ui.Success("The artifact implements every raffle function."))
			return nil
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(ui.Meta(string(data)))
		return nil
	},
}

// ── Write ──

var raffleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a raffle",
	Long: `Create a raffle selling up to --max-tickets tickets at --price each.
Of every ticket the platform keeps --fee percent and --stake percent is
staked for the prize. The organizer receives the remainder.

Examples:
  w3raffle raffle create --max-tickets 100 --price 0.01 --fee 5 --stake 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		params := createParams()
		preview, err := raffle.NewPreview(params, a.raffles.Decimals())
		if err != nil {
			return err
		}
		fmt.Println(ui.PreviewBlock(preview, params.MaxTickets, a.raffles.Decimals(), a.chain.NativeCurrency))
		if !raffleYes && !ui.Confirm("Create this raffle?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		res := a.raffles.CreateRaffle(cmd.Context(), params)
		if err := a.waitForTx(cmd.Context(), res, "Creating raffle", raffleTUI); err != nil {
			return err
		}
		if res.Tx.Status().IsSuccess {
			if id, err := a.raffles.CreatedRaffleID(cmd.Context(), res.Tx); err == nil {
				fmt.Println(ui.Success(fmt.Sprintf("Raffle #%d created", id)))
			}
		}
		return nil
	},
}

var rafflePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the money breakdown of a raffle before creating it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := int32(18)
		symbol := "ETH"
		if c, err := currentChain(); err == nil {
			decimals, symbol = c.Decimals, c.NativeCurrency
		}
		params := createParams()
		preview, err := raffle.NewPreview(params, decimals)
		if err != nil {
			return err
		}
		fmt.Println(ui.PreviewBlock(preview, params.MaxTickets, decimals, symbol))
		return nil
	},
}

var raffleBuyCmd = &cobra.Command{
	Use:   "buy <id>",
	Short: "Buy one ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRaffleID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if raffleTUI {
			res := a.raffles.BuyTicket(cmd.Context(), id)
			return a.waitForTx(cmd.Context(), res, fmt.Sprintf("Buying a ticket for raffle #%d", id), true)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.TxConfirmTimeout)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Buying a ticket for raffle #%d...", id)).Start()
		p := a.raffles.BuyTicketAndRefresh(ctx, id)
		spin.Stop()
		if p.Result.Err != nil {
			return p.Result.Err
		}

		fmt.Println(ui.Success("Ticket bought in block " + strconv.FormatUint(p.Result.Tx.Status().Block, 10)))
		if p.Raffle != nil {
			fmt.Println(ui.RaffleDetail(*p.Raffle, a.chain.NativeCurrency, p.Tickets, nil))
		}
		return nil
	},
}

var raffleCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Stop ticket sales (organizer only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], "Closing raffle", false, (*raffle.Service).CloseRaffle)
	},
}

var raffleCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a raffle and refund ticket holders (organizer only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], "Cancelling raffle", true, (*raffle.Service).CancelRaffle)
	},
}

var raffleCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Draw the winner of a closed raffle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], "Completing raffle", false, (*raffle.Service).CompleteRaffle)
	},
}

var raffleClaimCmd = &cobra.Command{
	Use:   "claim <id>",
	Short: "Claim the prize of a raffle you won",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], "Claiming prize", false, (*raffle.Service).ClaimPrize)
	},
}

func init() {
	for _, c := range []*cobra.Command{raffleCreateCmd, rafflePreviewCmd} {
		c.Flags().Uint64Var(&createMaxTickets, "max-tickets", 100, "number of tickets for sale")
		c.Flags().StringVar(&createPrice, "price", "", "ticket price in the native currency (e.g. 0.01)")
		c.Flags().Uint8Var(&createFee, "fee", 0, "platform fee percent")
		c.Flags().Uint8Var(&createStake, "stake", 0, "prize stake percent")
		_ = c.MarkFlagRequired("price")
	}
	for _, c := range []*cobra.Command{raffleCreateCmd, raffleBuyCmd, raffleCloseCmd, raffleCancelCmd, raffleCompleteCmd, raffleClaimCmd} {
		c.Flags().BoolVar(&raffleTUI, "tui", false, "follow the transaction in an interactive view")
	}
	for _, c := range []*cobra.Command{raffleCreateCmd, raffleCancelCmd} {
		c.Flags().BoolVarP(&raffleYes, "yes", "y", false, "skip the confirmation prompt")
	}
	raffleABICmd.Flags().StringVar(&raffleArtifact, "artifact", "", "check a compiled contract ABI or artifact file")

	raffleCmd.AddCommand(
		raffleListCmd, raffleShowCmd, raffleMineCmd, raffleTicketsCmd, raffleActiveCmd,
		raffleCreateCmd, raffleBuyCmd, raffleCloseCmd, raffleCancelCmd, raffleCompleteCmd, raffleClaimCmd,
		rafflePreviewCmd, raffleABICmd,
	)
}

type raffleAction func(*raffle.Service, context.Context, uint64) raffle.ActionResult

// runAction runs a single-id write and follows it.
func runAction(cmd *cobra.Command, arg, title string, confirm bool, action raffleAction) error {
	id, err := parseRaffleID(arg)
	if err != nil {
		return err
	}
	if confirm && !raffleYes && !ui.ConfirmDanger(fmt.Sprintf("%s #%d?", title, id)) {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res := action(a.raffles, cmd.Context(), id)
	return a.waitForTx(cmd.Context(), res, fmt.Sprintf("%s #%d", title, id), raffleTUI)
}

func createParams() raffle.CreateParams {
	return raffle.CreateParams{
		MaxTickets:   createMaxTickets,
		TicketPrice:  createPrice,
		FeePercent:   createFee,
		StakePercent: createStake,
	}
}

func parseRaffleID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid raffle id %q", s)
	}
	return id, nil
}

// printRaffles loads and renders the raffles with the given ids.
func printRaffles(ctx context.Context, a *app, ids []uint64, empty string) error {
	var recs []raffle.Record
	for _, id := range ids {
		if rec, ok := a.raffles.GetRaffle(ctx, id); ok {
			recs = append(recs, *rec)
		}
	}
	if len(recs) == 0 {
		fmt.Println(ui.Info(empty))
		return nil
	}
	fmt.Println(ui.RaffleTable(recs, a.chain.NativeCurrency, me(a)))
	return nil
}

// me is the selected address, zero when nothing is selected.
func me(a *app) common.Address {
	acc, _ := a.session.Selected()
	return acc.Address
}

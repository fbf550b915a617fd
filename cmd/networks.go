package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3raffle/internal/chain"
	"github.com/Mohsinsiddi/w3raffle/internal/rpc"
	"github.com/Mohsinsiddi/w3raffle/internal/ui"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List supported networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "", Width: 2},
			{Title: "Name", Width: 10},
			{Title: "Display", Width: 14},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 8},
			{Title: "Testnet", Width: 7},
			{Title: "Default RPC", Width: 40},
		})
		for _, c := range reg.All() {
			mark, testnet := "", ""
			if c.Name == cfg.Network {
				mark = "●"
			}
			if c.Testnet {
				testnet = "yes"
			}
			t.AddRow(ui.Row{
				mark,
				c.Name,
				c.DisplayName,
				fmt.Sprintf("%d", c.ChainID),
				c.NativeCurrency,
				testnet,
				c.DefaultRPC(),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d networks. Switch with: w3raffle config set-network <name>", len(reg.All()))))
		return nil
	},
}

var networksPingCmd = &cobra.Command{
	Use:   "ping [network]",
	Short: "Probe every RPC endpoint of a network",
	Long: `Measure latency and head block of each endpoint listed for the network
(the configured network by default). The marked row is the endpoint the
fastest strategy would pick.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cfg.Network
		if len(args) == 1 {
			name = args[0]
		}
		c, err := chain.NewRegistry().GetByName(name)
		if err != nil {
			return fmt.Errorf("unknown network %q, run `w3raffle networks` to see all networks", name)
		}

		spin := ui.NewSpinner(fmt.Sprintf("Probing %d %s endpoint(s)...", len(c.RPCs), c.DisplayName)).Start()
		eps := rpc.ProbeAll(cmd.Context(), c.RPCs)
		spin.Stop()

		var best string
		if w, err := rpc.Pick(eps, rpc.StrategyFastest); err == nil {
			best = w.URL
		}

		t := ui.NewTable([]ui.Column{
			{Title: "", Width: 2},
			{Title: "Endpoint", Width: 44},
			{Title: "Latency", Width: 10},
			{Title: "Block", Width: 12},
			{Title: "Status", Width: 10},
		})
		for _, e := range eps {
			mark, status := "", "ok"
			if e.URL == best {
				mark = "●"
			}
			latency, block := "-", "-"
			if e.Err == nil {
				latency = e.Latency.Round(time.Millisecond).String()
				block = fmt.Sprintf("%d", e.BlockNumber)
			}
			switch {
			case e.Err != nil:
				status = "down"
			case !e.Healthy:
				status = "stale"
			}
			t.AddRow(ui.Row{mark, e.URL, latency, block, status})
		}
		fmt.Println(t.Render())
		if best == "" {
			return rpc.ErrNoHealthyRPC
		}
		return nil
	},
}

func init() {
	networksCmd.AddCommand(networksPingCmd)
}

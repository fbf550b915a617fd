package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3raffle/internal/chain"
	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/deployment"
	"github.com/Mohsinsiddi/w3raffle/internal/rpc"
	"github.com/Mohsinsiddi/w3raffle/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		if !cfg.HasContract() {
			fmt.Println(ui.Warn("No contract address set, raffle commands will report the contract as unavailable."))
		} else if c, err := chain.NewRegistry().GetByName(cfg.Network); err == nil {
			if u := c.AddressURL(cfg.ContractAddress); u != "" {
				fmt.Println(ui.Meta("Contract on explorer: " + u))
			}
		}
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <address>",
	Short: "Set the raffle contract address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := contract.ParseAddress(args[0])
		if err != nil {
			return err
		}
		cfg.ContractAddress = addr.Hex()
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Contract set to " + ui.Addr(addr.Hex())))
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <url>",
	Short: "Override the RPC endpoint (empty string restores the network default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prev := cfg.RPCURL
		cfg.RPCURL = strings.TrimSpace(args[0])
		if err := cfg.Validate(); err != nil {
			cfg.RPCURL = prev
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		if cfg.RPCURL == "" {
			fmt.Println(ui.Success("RPC reset to the network default"))
			return nil
		}
		fmt.Println(ui.Success("RPC set to " + cfg.RPCURL))
		return nil
	},
}

var configSetNetworkCmd = &cobra.Command{
	Use:   "set-network <name>",
	Short: "Set the network the contract lives on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q, run `w3raffle networks` to see all networks", args[0])
		}
		cfg.Network = c.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Network set to %s (chain %d)", ui.ChainName(c.DisplayName), c.ChainID)))
		return nil
	},
}

var configSetRPCStrategyCmd = &cobra.Command{
	Use:   "set-rpc-strategy <default|fastest|failover>",
	Short: "Choose how a network RPC is picked when no RPC override is set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := rpc.ParseStrategy(args[0])
		if err != nil {
			return err
		}
		cfg.RPCStrategy = string(st)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("RPC strategy set to " + string(st)))
		if cfg.RPCURL != "" {
			fmt.Println(ui.Meta("An RPC override is set and takes precedence. Clear it with: w3raffle config set-rpc \"\""))
		}
		return nil
	},
}

var configSyncCmd = &cobra.Command{
	Use:   "sync [file|url]",
	Short: "Import the contract address from a deployment record",
	Long: `Read contract-deployment.json as written by the contract deploy script,
from a local path or an http(s) URL, and point the config at it. The network
is switched too when the record names a known one. Without an argument the
last imported source is read again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := cfg.DeploymentSource
		if len(args) == 1 {
			source = args[0]
		}
		if source == "" {
			return fmt.Errorf("no deployment source, run: w3raffle config sync <file|url>")
		}

		info, err := deployment.NewLoader(deployment.WithLogger(log.Named("deployment"))).Load(cmd.Context(), source)
		if err != nil {
			return err
		}

		cfg.ContractAddress = info.Address().Hex()
		cfg.DeploymentSource = source
		pairs := [][2]string{{"Contract", ui.Addr(cfg.ContractAddress)}}

		if name := info.RegistryNetwork(); name != "" {
			if c, err := chain.NewRegistry().GetByName(name); err == nil {
				cfg.Network = c.Name
				pairs = append(pairs, [2]string{"Network", ui.ChainName(c.DisplayName)})
			} else {
				fmt.Println(ui.Warn(fmt.Sprintf("Unknown network %q in the record, keeping %s", info.Network, cfg.Network)))
			}
		}
		if info.DeployerAddress != "" {
			pairs = append(pairs, [2]string{"Deployer", info.DeployerAddress})
		}
		if at, ok := info.DeployedAt(); ok {
			pairs = append(pairs, [2]string{"Deployed", at.UTC().Format("2006-01-02 15:04 UTC")})
		}

		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Deployment imported", pairs))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetContractCmd, configSetRPCCmd, configSetRPCStrategyCmd, configSetNetworkCmd, configSyncCmd)
}

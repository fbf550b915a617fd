package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3raffle/internal/config"
	"github.com/Mohsinsiddi/w3raffle/internal/logging"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3raffle/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	log         = logging.NewNop()
	verbose     bool
	networkFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3raffle",
	Short: "Decentralized raffles from the terminal",
	Long: `w3raffle talks to an on-chain raffle contract.

  Connect a wallet, browse raffles, buy tickets, and run your own raffles
  while every transaction is followed from broadcast to finalization.

The contract address, network and RPC come from ~/.w3raffle/config.json,
a .env file, or W3RAFFLE_* environment variables. --network overrides the
configured network for a single invocation.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if networkFlag != "" {
			cfg.Network = networkFlag
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log, err = logging.New(level, cfg.LogJSON)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $W3RAFFLE_CONFIG_DIR or ~/.w3raffle)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network to use for this invocation")

	rootCmd.AddCommand(
		walletCmd,
		raffleCmd,
		convertCmd,
		networksCmd,
		configCmd,
	)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3raffle/internal/ui"
	"github.com/Mohsinsiddi/w3raffle/internal/units"
)

// Decimal places of each unit relative to wei.
var unitDecimals = map[string]int32{
	"eth":  18,
	"gwei": 9,
	"wei":  0,
}

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between ETH, Gwei and Wei exactly",
	Long: `Convert an amount between ETH, Gwei and Wei without rounding.
Ticket prices are entered in ETH and sent in Wei; use this to check them.

Units: eth, gwei, wei (default: eth)

Examples:
  w3raffle convert 0.01            # ticket price in gwei + wei
  w3raffle convert 50 gwei
  w3raffle convert 10000000000000000 wei`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := "eth"
		if len(args) > 1 {
			unit = strings.ToLower(args[1])
		}
		rows, err := conversions(args[0], unit)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Unit Conversion", rows))
		return nil
	},
}

// conversions renders amount, given in unit, in every unit and as hex wei.
func conversions(amount, unit string) ([][2]string, error) {
	dec, ok := unitDecimals[unit]
	if !ok {
		return nil, fmt.Errorf("unknown unit %q, use eth, gwei or wei", unit)
	}
	wei, err := units.ToBase(amount, dec)
	if err != nil {
		return nil, err
	}
	return [][2]string{
		{"Input", amount + " " + unit},
		{"ETH", units.FromBase(wei, unitDecimals["eth"]) + " eth"},
		{"Gwei", units.FromBase(wei, unitDecimals["gwei"]) + " gwei"},
		{"Wei", wei.String() + " wei"},
		{"Hex", "0x" + wei.Text(16)},
	}, nil
}

package raffle_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3raffle/internal/raffle"
	"github.com/Mohsinsiddi/w3raffle/internal/units"
)

func TestCreateParamsValid(t *testing.T) {
	price, err := validParams().Validate(18)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e16), price)

	edge := raffle.CreateParams{MaxTickets: 10000, TicketPrice: "10", FeePercent: 20, StakePercent: 50}
	_, err = edge.Validate(18)
	assert.NoError(t, err)

	low := raffle.CreateParams{MaxTickets: 1, TicketPrice: "0.001"}
	_, err = low.Validate(18)
	assert.NoError(t, err)
}

func TestCreateParamsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*raffle.CreateParams)
		msg    string
	}{
		{"zero tickets", func(p *raffle.CreateParams) { p.MaxTickets = 0 }, "MaxTickets must be at least 1"},
		{"too many tickets", func(p *raffle.CreateParams) { p.MaxTickets = 10001 }, "MaxTickets must be at most 10000"},
		{"fee too high", func(p *raffle.CreateParams) { p.FeePercent = 21 }, "FeePercent must be at most 20"},
		{"stake too high", func(p *raffle.CreateParams) { p.StakePercent = 51 }, "StakePercent must be at most 50"},
		{"max fee with stake over limit", func(p *raffle.CreateParams) { p.FeePercent = 20; p.StakePercent = 51 }, "at most"},
		{"missing price", func(p *raffle.CreateParams) { p.TicketPrice = "" }, "TicketPrice is required"},
		{"garbage price", func(p *raffle.CreateParams) { p.TicketPrice = "abc" }, "ticket price"},
		{"negative price", func(p *raffle.CreateParams) { p.TicketPrice = "-1" }, "ticket price"},
		{"price too low", func(p *raffle.CreateParams) { p.TicketPrice = "0.0009" }, "between"},
		{"price too high", func(p *raffle.CreateParams) { p.TicketPrice = "10.5" }, "between"},
		{"too precise", func(p *raffle.CreateParams) { p.TicketPrice = "0.0010000000000000001" }, "ticket price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := p.Validate(18)
			require.ErrorIs(t, err, raffle.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestPreviewKnownValues(t *testing.T) {
	pv, err := raffle.NewPreview(validParams(), 18)
	require.NoError(t, err)

	assert.Equal(t, "0.01", units.FromBase(pv.TicketPrice, 18))
	assert.Equal(t, "1", units.FromBase(pv.SoldOut.Gross, 18))
	assert.Equal(t, "0.05", units.FromBase(pv.SoldOut.Fee, 18))
	assert.Equal(t, "0.1", units.FromBase(pv.SoldOut.Stake, 18))
	assert.Equal(t, "0.85", units.FromBase(pv.SoldOut.Organizer, 18))
	assert.Equal(t, "0.0005", units.FromBase(pv.PerTicket.Fee, 18))
}

func TestPreviewSharesSumToGross(t *testing.T) {
	prices := []string{"0.001", "0.001000000000000007", "0.333333333333333333", "1.1", "9.999999999999999999"}
	for _, price := range prices {
		for fee := uint8(0); fee <= raffle.MaxFeePercent; fee += 3 {
			for stake := uint8(0); stake <= raffle.MaxStakePercent; stake += 7 {
				p := raffle.CreateParams{MaxTickets: 997, TicketPrice: price, FeePercent: fee, StakePercent: stake}
				pv, err := raffle.NewPreview(p, 18)
				require.NoError(t, err)

				for _, b := range []raffle.Breakdown{pv.PerTicket, pv.SoldOut} {
					sum := new(big.Int).Add(b.Fee, b.Stake)
					sum.Add(sum, b.Organizer)
					assert.Equal(t, 0, sum.Cmp(b.Gross), "price %s fee %d stake %d", price, fee, stake)
					assert.GreaterOrEqual(t, b.Organizer.Sign(), 0)
				}
			}
		}
	}
}

func TestPreviewRejectsInvalid(t *testing.T) {
	_, err := raffle.NewPreview(raffle.CreateParams{TicketPrice: "1"}, 18)
	assert.ErrorIs(t, err, raffle.ErrInvalidParams)
}

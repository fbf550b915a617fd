package raffle

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Mohsinsiddi/w3raffle/internal/units"
)

// Limits the raffle contract enforces on creation.
const (
	MinTickets      = 1
	MaxTickets      = 10000
	MaxFeePercent   = 20
	MaxStakePercent = 50
	MaxFeePlusStake = 70
	MinTicketPrice  = "0.001"
	MaxTicketPrice  = "10"
)

// ErrInvalidParams is returned when create-raffle parameters would be
// rejected by the contract.
var ErrInvalidParams = errors.New("invalid raffle parameters")

// CreateParams are the inputs of createRaffle. TicketPrice is a human
// decimal in the native currency.
type CreateParams struct {
	MaxTickets   uint64 `validate:"gte=1,lte=10000"`
	TicketPrice  string `validate:"required"`
	FeePercent   uint8  `validate:"lte=20"`
	StakePercent uint8  `validate:"lte=50"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(CreateParams)
		if int(p.FeePercent)+int(p.StakePercent) > MaxFeePlusStake {
			sl.ReportError(p.StakePercent, "StakePercent", "StakePercent", "feestake", strconv.Itoa(MaxFeePlusStake))
		}
	}, CreateParams{})
	return v
}

// Validate checks the parameters and returns the ticket price in base units.
func (p CreateParams) Validate(decimals int32) (*big.Int, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParams, describe(err))
	}
	price, err := units.ToBase(p.TicketPrice, decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: ticket price: %w", ErrInvalidParams, err)
	}
	lo := units.MustToBase(MinTicketPrice, decimals)
	hi := units.MustToBase(MaxTicketPrice, decimals)
	if price.Cmp(lo) < 0 || price.Cmp(hi) > 0 {
		return nil, fmt.Errorf("%w: ticket price must be between %s and %s", ErrInvalidParams, MinTicketPrice, MaxTicketPrice)
	}
	return price, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		case "feestake":
			msgs = append(msgs, fmt.Sprintf("FeePercent + StakePercent must be at most %s", e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", e.Field(), e.Tag(), e.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Breakdown splits an amount the way the contract does: fee and stake are
// floor percentages, the organizer gets the rest.
type Breakdown struct {
	Gross     *big.Int
	Fee       *big.Int
	Stake     *big.Int
	Organizer *big.Int
}

func split(gross *big.Int, fee, stake uint8) Breakdown {
	f := units.Percent(gross, fee)
	s := units.Percent(gross, stake)
	org := new(big.Int).Sub(gross, f)
	org.Sub(org, s)
	return Breakdown{Gross: gross, Fee: f, Stake: s, Organizer: org}
}

// Preview is the money breakdown shown before creating a raffle.
type Preview struct {
	TicketPrice *big.Int
	PerTicket   Breakdown
	SoldOut     Breakdown // all MaxTickets sold
}

// NewPreview validates p and computes its breakdown in base units.
func NewPreview(p CreateParams, decimals int32) (Preview, error) {
	price, err := p.Validate(decimals)
	if err != nil {
		return Preview{}, err
	}
	pool := new(big.Int).Mul(price, new(big.Int).SetUint64(p.MaxTickets))
	return Preview{
		TicketPrice: price,
		PerTicket:   split(price, p.FeePercent, p.StakePercent),
		SoldOut:     split(pool, p.FeePercent, p.StakePercent),
	}, nil
}

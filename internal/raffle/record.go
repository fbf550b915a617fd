package raffle

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/units"
)

// Record is the normalized state of one raffle.
type Record struct {
	ID          uint64
	Organizer   common.Address
	Title       string
	Description string

	TicketPrice     *big.Int // base units
	TicketPriceText string   // human decimal, e.g. "0.01"
	MaxTickets      uint64
	TicketsSold     uint64
	EndTime         time.Time // zero when the raffle has no deadline

	Winner    *common.Address // nil until drawn
	Prize     *big.Int
	PrizeText string

	FeePercent   uint8
	StakePercent uint8
	Closed       bool
	Completed    bool
}

// HasWinner reports whether a winner was drawn.
func (r Record) HasWinner() bool {
	return r.Winner != nil
}

// IsWinner reports whether addr won the raffle.
func (r Record) IsWinner(addr common.Address) bool {
	return r.Winner != nil && *r.Winner == addr
}

// Remaining is the number of tickets still for sale.
func (r Record) Remaining() uint64 {
	if r.TicketsSold >= r.MaxTickets {
		return 0
	}
	return r.MaxTickets - r.TicketsSold
}

// Progress is the sold fraction in [0, 1]. Display only.
func (r Record) Progress() float64 {
	if r.MaxTickets == 0 {
		return 0
	}
	p := float64(r.TicketsSold) / float64(r.MaxTickets)
	if p > 1 {
		return 1
	}
	return p
}

// State is a one-word summary for listings.
func (r Record) State() string {
	switch {
	case r.Completed:
		return "completed"
	case r.Closed:
		return "closed"
	case r.Remaining() == 0:
		return "sold out"
	default:
		return "active"
	}
}

// getRaffle output positions.
const (
	outID = iota
	outOrganizer
	outTitle
	outDescription
	outTicketPrice
	outMaxTickets
	outTicketsSold
	outEndTime
	outWinner
	outPrize
	outFeePercent
	outStakePercent
	outIsActive
	outIsCompleted
	outCount
)

// decodeRecord normalizes the getRaffle outputs. found is false for the
// empty record the contract returns for unknown ids.
func decodeRecord(values []interface{}, decimals int32) (rec Record, found bool, err error) {
	if len(values) != outCount {
		return Record{}, false, fmt.Errorf("%w: getRaffle returned %d values, want %d",
			contract.ErrDecodeFailed, len(values), outCount)
	}
	d := decoder{values: values}

	rec = Record{
		ID:           d.u64(outID),
		Organizer:    d.addr(outOrganizer),
		Title:        d.str(outTitle),
		Description:  d.str(outDescription),
		TicketPrice:  d.num(outTicketPrice),
		MaxTickets:   d.u64(outMaxTickets),
		TicketsSold:  d.u64(outTicketsSold),
		Prize:        d.num(outPrize),
		FeePercent:   d.u8(outFeePercent),
		StakePercent: d.u8(outStakePercent),
		Closed:       !d.flag(outIsActive),
		Completed:    d.flag(outIsCompleted),
	}
	if end := d.u64(outEndTime); end > 0 {
		rec.EndTime = time.Unix(int64(end), 0).UTC()
	}
	if w := d.addr(outWinner); w != (common.Address{}) {
		rec.Winner = &w
	}
	if d.err != nil {
		return Record{}, false, d.err
	}
	if rec.Organizer == (common.Address{}) {
		return Record{}, false, nil
	}

	rec.TicketPriceText = units.FromBase(rec.TicketPrice, decimals)
	rec.PrizeText = units.FromBase(rec.Prize, decimals)
	return rec, true, nil
}

// decoder type-asserts ABI outputs and keeps the first mismatch.
type decoder struct {
	values []interface{}
	err    error
}

func (d *decoder) fail(i int, want string) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: output %d is %T, want %s", contract.ErrDecodeFailed, i, d.values[i], want)
	}
}

func (d *decoder) num(i int) *big.Int {
	v, ok := d.values[i].(*big.Int)
	if !ok || v == nil {
		d.fail(i, "*big.Int")
		return new(big.Int)
	}
	return v
}

func (d *decoder) u64(i int) uint64 {
	v := d.num(i)
	if !v.IsUint64() {
		if d.err == nil {
			d.err = fmt.Errorf("%w: output %d (%s) overflows uint64", contract.ErrDecodeFailed, i, v)
		}
		return 0
	}
	return v.Uint64()
}

func (d *decoder) addr(i int) common.Address {
	v, ok := d.values[i].(common.Address)
	if !ok {
		d.fail(i, "address")
	}
	return v
}

func (d *decoder) str(i int) string {
	v, ok := d.values[i].(string)
	if !ok {
		d.fail(i, "string")
	}
	return v
}

func (d *decoder) u8(i int) uint8 {
	v, ok := d.values[i].(uint8)
	if !ok {
		d.fail(i, "uint8")
	}
	return v
}

func (d *decoder) flag(i int) bool {
	v, ok := d.values[i].(bool)
	if !ok {
		d.fail(i, "bool")
	}
	return v
}

// ids converts a uint256[] output.
func ids(values []interface{}) ([]uint64, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: expected one output, got %d", contract.ErrDecodeFailed, len(values))
	}
	list, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: output is %T, want []*big.Int", contract.ErrDecodeFailed, values[0])
	}
	out := make([]uint64, 0, len(list))
	for _, v := range list {
		if v == nil || !v.IsUint64() {
			return nil, fmt.Errorf("%w: id %v overflows uint64", contract.ErrDecodeFailed, v)
		}
		out = append(out, v.Uint64())
	}
	return out, nil
}

// addresses converts an address[] output.
func addresses(values []interface{}) ([]common.Address, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: expected one output, got %d", contract.ErrDecodeFailed, len(values))
	}
	list, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: output is %T, want []common.Address", contract.ErrDecodeFailed, values[0])
	}
	return list, nil
}

// scalar converts a single uint256 output.
func scalar(values []interface{}) (uint64, error) {
	if len(values) != 1 {
		return 0, fmt.Errorf("%w: expected one output, got %d", contract.ErrDecodeFailed, len(values))
	}
	d := decoder{values: values}
	v := d.u64(0)
	return v, d.err
}

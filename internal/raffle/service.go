// Package raffle answers raffle questions ("all raffles", "my tickets") on
// top of the contract adapter and runs the raffle write actions.
package raffle

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/logging"
	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
	"github.com/Mohsinsiddi/w3raffle/internal/units"
	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
)

// ErrRaffleNotFound is returned when the contract has no raffle for an id.
var ErrRaffleNotFound = errors.New("raffle not found")

// ErrTooManyRaffles is logged when the contract reports more raffles than
// the service is willing to list.
var ErrTooManyRaffles = errors.New("raffle count exceeds listing limit")

// DefaultMaxRaffles caps how many raffles GetAllRaffles reads.
const DefaultMaxRaffles = uint64(10_000)

// Contract is what the service needs from the contract adapter.
type Contract interface {
	Read(ctx context.Context, fn string, args ...interface{}) ([]interface{}, error)
	Write(ctx context.Context, call contract.Call) (*txstatus.PendingTransaction, error)
	Events(ctx context.Context, hash common.Hash, event string) ([]map[string]interface{}, error)
}

// Identity reports the selected account.
type Identity interface {
	Selected() (wallet.Account, bool)
}

// Service is the raffle view-state aggregator. Reads never fail the
// caller: missing data is reported as none, empty or zero.
type Service struct {
	contract    Contract
	identity    Identity
	slots       *txstatus.Slots
	log         *logging.Logger
	concurrency int
	decimals    int32
	maxRaffles  uint64
}

type Option func(*Service)

// WithConcurrency bounds the parallel reads of GetAllRaffles. 1 reads one
// raffle at a time.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// WithMaxRaffles sets the largest raffle count GetAllRaffles accepts. A
// contract reporting more is treated as unreadable.
func WithMaxRaffles(n uint64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRaffles = n
		}
	}
}

func WithIdentity(id Identity) Option {
	return func(s *Service) { s.identity = id }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithDecimals sets the precision of the native currency.
func WithDecimals(d int32) Option {
	return func(s *Service) { s.decimals = d }
}

func NewService(c Contract, opts ...Option) *Service {
	s := &Service{
		contract:    c,
		slots:       txstatus.NewSlots(),
		log:         logging.NewNop(),
		concurrency: 1,
		decimals:    units.DefaultDecimals,
		maxRaffles:  DefaultMaxRaffles,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Decimals is the precision amounts are rendered with.
func (s *Service) Decimals() int32 {
	return s.decimals
}

// GetRaffle returns raffle id, or false when it does not exist or cannot be
// read.
func (s *Service) GetRaffle(ctx context.Context, id uint64) (*Record, bool) {
	rec, err := s.readRaffle(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrRaffleNotFound) {
			s.log.Debugw("raffle unavailable", "id", id, "error", err)
		}
		return nil, false
	}
	return rec, true
}

func (s *Service) readRaffle(ctx context.Context, id uint64) (*Record, error) {
	out, err := s.contract.Read(ctx, "getRaffle", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	rec, found, err := decodeRecord(out, s.decimals)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrRaffleNotFound, id)
	}
	return &rec, nil
}

// RaffleCount returns how many raffles the contract holds, 0 on error.
func (s *Service) RaffleCount(ctx context.Context) uint64 {
	n, err := s.count(ctx)
	if err != nil {
		s.log.Debugw("raffle count unavailable", "error", err)
		return 0
	}
	return n
}

func (s *Service) count(ctx context.Context) (uint64, error) {
	out, err := s.contract.Read(ctx, "getRaffleCount")
	if err != nil {
		return 0, err
	}
	return scalar(out)
}

// GetAllRaffles reads raffles 0..count-1. Raffles that cannot be read are
// skipped; the rest keep index order however the reads complete.
func (s *Service) GetAllRaffles(ctx context.Context) []Record {
	n, err := s.count(ctx)
	if err != nil {
		s.log.Debugw("raffle count unavailable", "error", err)
		return nil
	}
	if n > s.maxRaffles {
		s.log.Warnw("raffle listing skipped", "count", n, "limit", s.maxRaffles, "error", ErrTooManyRaffles)
		return nil
	}

	slots := make([]*Record, n)
	fetch := func(i int) {
		rec, err := s.readRaffle(ctx, uint64(i))
		if err != nil {
			s.log.Debugw("skipping raffle", "id", i, "error", err)
			return
		}
		slots[i] = rec
	}

	if s.concurrency <= 1 {
		for i := range slots {
			fetch(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.concurrency)
		for i := range slots {
			g.Go(func() error {
				fetch(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	out := make([]Record, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// GetUserRaffles lists the ids of raffles addr organized.
func (s *Service) GetUserRaffles(ctx context.Context, addr common.Address) []uint64 {
	return s.idList(ctx, "getUserRaffles", addr)
}

// GetActiveRaffles lists the ids of raffles still selling tickets.
func (s *Service) GetActiveRaffles(ctx context.Context) []uint64 {
	return s.idList(ctx, "getActiveRaffles")
}

// GetUserTickets returns how many tickets addr holds in raffle id.
func (s *Service) GetUserTickets(ctx context.Context, id uint64, addr common.Address) uint64 {
	out, err := s.contract.Read(ctx, "getUserTickets", new(big.Int).SetUint64(id), addr)
	if err != nil {
		s.log.Debugw("tickets unavailable", "id", id, "error", err)
		return 0
	}
	n, err := scalar(out)
	if err != nil {
		s.log.Debugw("tickets unavailable", "id", id, "error", err)
		return 0
	}
	return n
}

// GetParticipants lists the ticket buyers of raffle id. The second result is
// false when the contract does not expose participants or the read fails.
func (s *Service) GetParticipants(ctx context.Context, id uint64) ([]common.Address, bool) {
	out, err := s.contract.Read(ctx, "getParticipants", new(big.Int).SetUint64(id))
	if err != nil {
		s.log.Debugw("participants unavailable", "id", id, "error", err)
		return nil, false
	}
	list, err := addresses(out)
	if err != nil {
		s.log.Debugw("participants unavailable", "id", id, "error", err)
		return nil, false
	}
	return list, true
}

func (s *Service) idList(ctx context.Context, fn string, args ...interface{}) []uint64 {
	out, err := s.contract.Read(ctx, fn, args...)
	if err != nil {
		s.log.Debugw("read failed", "function", fn, "error", err)
		return nil
	}
	list, err := ids(out)
	if err != nil {
		s.log.Debugw("read failed", "function", fn, "error", err)
		return nil
	}
	return list
}

// selected is the address of the selected account.
func (s *Service) selected() (common.Address, bool) {
	if s.identity == nil {
		return common.Address{}, false
	}
	acc, ok := s.identity.Selected()
	return acc.Address, ok
}

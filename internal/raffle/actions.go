package raffle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
)

// Action kinds. Each kind tracks at most one pending transaction.
const (
	KindCreate   = "createRaffle"
	KindBuy      = "buyTicket"
	KindClose    = "closeRaffle"
	KindCancel   = "cancelRaffle"
	KindComplete = "completeRaffle"
	KindClaim    = "claimPrize"
)

// ActionResult is the outcome of starting a write. Tx is never nil; when Err
// is set the transaction is already Failed.
type ActionResult struct {
	Kind string
	Tx   *txstatus.PendingTransaction
	Err  error
}

// OK reports whether the transaction was broadcast.
func (r ActionResult) OK() bool {
	return r.Err == nil
}

// Pending returns the latest transaction of kind, or nil.
func (s *Service) Pending(kind string) *txstatus.PendingTransaction {
	return s.slots.Get(kind)
}

// CreateRaffle validates p and submits createRaffle.
func (s *Service) CreateRaffle(ctx context.Context, p CreateParams) ActionResult {
	price, err := p.Validate(s.decimals)
	if err != nil {
		return s.rejected(KindCreate, contract.NewCall(KindCreate, nil), err)
	}
	call := contract.NewCall(KindCreate, nil,
		new(big.Int).SetUint64(p.MaxTickets), price, p.FeePercent, p.StakePercent)
	return s.submit(ctx, KindCreate, call)
}

// BuyTicket buys one ticket of raffle id, paying its current ticket price.
func (s *Service) BuyTicket(ctx context.Context, id uint64) ActionResult {
	rec, err := s.readRaffle(ctx, id)
	if err != nil {
		return s.rejected(KindBuy, contract.NewCall(KindBuy, nil, idArg(id)), err)
	}
	return s.submit(ctx, KindBuy, contract.NewCall(KindBuy, rec.TicketPrice, idArg(id)))
}

func (s *Service) CloseRaffle(ctx context.Context, id uint64) ActionResult {
	return s.submit(ctx, KindClose, contract.NewCall(KindClose, nil, idArg(id)))
}

func (s *Service) CancelRaffle(ctx context.Context, id uint64) ActionResult {
	return s.submit(ctx, KindCancel, contract.NewCall(KindCancel, nil, idArg(id)))
}

func (s *Service) CompleteRaffle(ctx context.Context, id uint64) ActionResult {
	return s.submit(ctx, KindComplete, contract.NewCall(KindComplete, nil, idArg(id)))
}

func (s *Service) ClaimPrize(ctx context.Context, id uint64) ActionResult {
	return s.submit(ctx, KindClaim, contract.NewCall(KindClaim, nil, idArg(id)))
}

// Purchase is the outcome of BuyTicketAndRefresh. Raffle and Tickets are
// read after the purchase was included.
type Purchase struct {
	Result  ActionResult
	Raffle  *Record
	Tickets uint64
}

// BuyTicketAndRefresh buys a ticket, waits until the purchase is included
// in a block and only then re-reads the raffle and the caller's tickets.
func (s *Service) BuyTicketAndRefresh(ctx context.Context, id uint64) Purchase {
	res := s.BuyTicket(ctx, id)
	if res.Err != nil {
		return Purchase{Result: res}
	}
	if _, err := res.Tx.Wait(ctx, txstatus.PhaseIncluded); err != nil {
		res.Err = err
		return Purchase{Result: res}
	}

	p := Purchase{Result: res}
	p.Raffle, _ = s.GetRaffle(ctx, id)
	if addr, ok := s.selected(); ok {
		p.Tickets = s.GetUserTickets(ctx, id, addr)
	}
	return p
}

// CreatedRaffleID reads the id of the raffle a mined createRaffle
// transaction created from its RaffleCreated event.
func (s *Service) CreatedRaffleID(ctx context.Context, tx *txstatus.PendingTransaction) (uint64, error) {
	events, err := s.contract.Events(ctx, tx.Hash(), "RaffleCreated")
	if err != nil {
		return 0, err
	}
	for _, ev := range events {
		if id, ok := ev["raffleId"].(*big.Int); ok && id.IsUint64() {
			return id.Uint64(), nil
		}
	}
	return 0, fmt.Errorf("%w: no RaffleCreated event in %s", ErrRaffleNotFound, tx.Hash().Hex())
}

func (s *Service) submit(ctx context.Context, kind string, call contract.Call) ActionResult {
	tx, err := s.contract.Write(ctx, call)
	if tx == nil {
		tx = txstatus.NewPendingTransaction(call)
		if err == nil {
			err = fmt.Errorf("%w: no transaction returned", contract.ErrWriteFailed)
		}
		tx.Fail(err)
	}
	s.slots.Replace(kind, tx)
	if err != nil {
		s.log.Warnw("action failed", "kind", kind, "error", err)
	}
	return ActionResult{Kind: kind, Tx: tx, Err: err}
}

// rejected fails an action before it reaches the contract.
func (s *Service) rejected(kind string, call contract.Call, err error) ActionResult {
	tx := txstatus.NewPendingTransaction(call)
	tx.Fail(err)
	s.slots.Replace(kind, tx)
	s.log.Warnw("action rejected", "kind", kind, "error", err)
	return ActionResult{Kind: kind, Tx: tx, Err: err}
}

func idArg(id uint64) *big.Int {
	return new(big.Int).SetUint64(id)
}

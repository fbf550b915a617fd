package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3raffle/internal/raffle"
	"github.com/Mohsinsiddi/w3raffle/internal/units"
)

// RaffleTable lists raffles. Raffles won by me are marked.
func RaffleTable(recs []raffle.Record, symbol string, me common.Address) string {
	t := NewTable([]Column{
		{Title: "ID", Width: 5},
		{Title: "Title", Width: 22},
		{Title: "Price", Width: 16},
		{Title: "Sold", Width: 11},
		{Title: "Organizer", Width: 13},
		{Title: "State", Width: 10},
		{Title: "Winner", Width: 13},
	})
	for _, r := range recs {
		winner := "-"
		if r.Winner != nil {
			winner = TruncateAddr(r.Winner.Hex())
			if r.IsWinner(me) {
				winner = "you"
			}
		}
		t.AddRow(Row{
			strconv.FormatUint(r.ID, 10),
			r.Title,
			r.TicketPriceText + " " + symbol,
			fmt.Sprintf("%d/%d", r.TicketsSold, r.MaxTickets),
			TruncateAddr(r.Organizer.Hex()),
			r.State(),
			winner,
		})
	}
	return t.Render()
}

// RaffleDetail renders one raffle as a key/value block. participants is
// omitted when nil.
func RaffleDetail(r raffle.Record, symbol string, tickets uint64, participants []common.Address) string {
	pairs := [][2]string{
		{"ID", strconv.FormatUint(r.ID, 10)},
		{"Title", r.Title},
	}
	if r.Description != "" {
		pairs = append(pairs, [2]string{"Description", r.Description})
	}
	pairs = append(pairs,
		[2]string{"Organizer", r.Organizer.Hex()},
		[2]string{"Ticket price", r.TicketPriceText + " " + symbol},
		[2]string{"Tickets sold", fmt.Sprintf("%d / %d (%.0f%%)", r.TicketsSold, r.MaxTickets, r.Progress()*100)},
		[2]string{"Prize pool", r.PrizeText + " " + symbol},
		[2]string{"Fee / stake", fmt.Sprintf("%d%% / %d%%", r.FeePercent, r.StakePercent)},
		[2]string{"State", r.State()},
	)
	if !r.EndTime.IsZero() {
		pairs = append(pairs, [2]string{"Ends", r.EndTime.Format("2006-01-02 15:04 UTC")})
	}
	if r.Winner != nil {
		pairs = append(pairs, [2]string{"Winner", r.Winner.Hex()})
	}
	if participants != nil {
		pairs = append(pairs, [2]string{"Participants", participantList(participants)})
	}
	pairs = append(pairs, [2]string{"Your tickets", strconv.FormatUint(tickets, 10)})
	return KeyValueBlock("Raffle #"+strconv.FormatUint(r.ID, 10), pairs)
}

const maxListedParticipants = 5

func participantList(addrs []common.Address) string {
	if len(addrs) == 0 {
		return "none"
	}
	shown := addrs
	if len(shown) > maxListedParticipants {
		shown = shown[:maxListedParticipants]
	}
	parts := make([]string, len(shown))
	for i, a := range shown {
		parts[i] = TruncateAddr(a.Hex())
	}
	out := fmt.Sprintf("%d (%s", len(addrs), strings.Join(parts, ", "))
	if len(addrs) > len(shown) {
		out += ", …"
	}
	return out + ")"
}

// PreviewBlock renders a create-raffle money breakdown.
func PreviewBlock(p raffle.Preview, maxTickets uint64, decimals int32, symbol string) string {
	f := func(b raffle.Breakdown) [4]string {
		return [4]string{
			units.FromBase(b.Gross, decimals) + " " + symbol,
			units.FromBase(b.Fee, decimals) + " " + symbol,
			units.FromBase(b.Stake, decimals) + " " + symbol,
			units.FromBase(b.Organizer, decimals) + " " + symbol,
		}
	}
	per, all := f(p.PerTicket), f(p.SoldOut)
	return KeyValueBlock("Raffle preview", [][2]string{
		{"Ticket price", per[0]},
		{"Per ticket fee", per[1]},
		{"Per ticket stake", per[2]},
		{"Per ticket organizer", per[3]},
		{"Sold out pool", fmt.Sprintf("%s (%d tickets)", all[0], maxTickets)},
		{"Platform fee", all[1]},
		{"Prize stake", all[2]},
		{"Organizer share", all[3]},
	})
}

package contract

// RaffleBuiltinID is the built-in ID of the raffle contract interface.
const RaffleBuiltinID = "raffle"

// raffle is the interface of the raffle contract. getRaffle returns the
// record as flat named outputs.
//
// Function selectors:
//
//	createRaffle(u256,u256,u8,u8)  → 0xb7bae30b
//	buyTicket(u256)                → 0x67dd74ca
//	closeRaffle(u256)              → 0x234d0001
//	cancelRaffle(u256)             → 0x5fba3171
//	completeRaffle(u256)           → 0x3077a863
//	claimPrize(u256)               → 0xd7098154
//	getRaffle(u256)                → 0xe4dafec9
//	getRaffleCount()               → 0x1d8c6086
//	getUserRaffles(address)        → 0x98d71138
//	getUserTickets(u256,address)   → 0xe7a7f65c
//	getActiveRaffles()             → 0x3dc70c16
//	getParticipants(u256)          → 0xc1e3bd3e  (optional)
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          RaffleBuiltinID,
		Name:        "Raffle",
		Description: "Decentralized raffle: create raffles, buy tickets, draw and claim.",
		ABI:         raffleABI,
	})
}

var raffleABI = []ABIEntry{
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "createRaffle", Type: "function",
		Inputs: []ABIParam{
			{Name: "maxTickets", Type: "uint256"},
			{Name: "ticketPrice", Type: "uint256"},
			{Name: "feePercent", Type: "uint8"},
			{Name: "stakePercent", Type: "uint8"},
		},
		Outputs:         []ABIParam{{Name: "raffleId", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "buyTicket", Type: "function",
		Inputs:          []ABIParam{{Name: "raffleId", Type: "uint256"}},
		Outputs:         []ABIParam{},
		StateMutability: "payable",
	},
	{
		Name: "closeRaffle", Type: "function",
		Inputs:          []ABIParam{{Name: "raffleId", Type: "uint256"}},
		Outputs:         []ABIParam{},
		StateMutability: "nonpayable",
	},
	{
		Name: "cancelRaffle", Type: "function",
		Inputs:          []ABIParam{{Name: "raffleId", Type: "uint256"}},
		Outputs:         []ABIParam{},
		StateMutability: "nonpayable",
	},
	{
		Name: "completeRaffle", Type: "function",
		Inputs:          []ABIParam{{Name: "raffleId", Type: "uint256"}},
		Outputs:         []ABIParam{},
		StateMutability: "nonpayable",
	},
	{
		Name: "claimPrize", Type: "function",
		Inputs:          []ABIParam{{Name: "raffleId", Type: "uint256"}},
		Outputs:         []ABIParam{},
		StateMutability: "nonpayable",
	},

	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "getRaffle", Type: "function",
		Inputs: []ABIParam{{Name: "raffleId", Type: "uint256"}},
		Outputs: []ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "organizer", Type: "address"},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "ticketPrice", Type: "uint256"},
			{Name: "maxTickets", Type: "uint256"},
			{Name: "ticketsSold", Type: "uint256"},
			{Name: "endTime", Type: "uint256"},
			{Name: "winner", Type: "address"},
			{Name: "prizePool", Type: "uint256"},
			{Name: "feePercent", Type: "uint8"},
			{Name: "stakePercent", Type: "uint8"},
			{Name: "isActive", Type: "bool"},
			{Name: "isCompleted", Type: "bool"},
		},
		StateMutability: "view",
	},
	{
		Name: "getRaffleCount", Type: "function",
		Inputs:          []ABIParam{},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "getUserRaffles", Type: "function",
		Inputs:          []ABIParam{{Name: "user", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256[]"}},
		StateMutability: "view",
	},
	{
		Name: "getUserTickets", Type: "function",
		Inputs: []ABIParam{
			{Name: "raffleId", Type: "uint256"},
			{Name: "user", Type: "address"},
		},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "getActiveRaffles", Type: "function",
		Inputs:          []ABIParam{},
		Outputs:         []ABIParam{{Name: "", Type: "uint256[]"}},
		StateMutability: "view",
	},
	{
		Name: "getParticipants", Type: "function",
		Inputs:          []ABIParam{{Name: "raffleId", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "", Type: "address[]"}},
		StateMutability: "view",
	},

	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name: "RaffleCreated", Type: "event",
		Inputs: []ABIParam{
			{Name: "raffleId", Type: "uint256", Indexed: true},
			{Name: "organizer", Type: "address", Indexed: true},
			{Name: "ticketPrice", Type: "uint256"},
			{Name: "maxTickets", Type: "uint256"},
		},
	},
	{
		Name: "TicketPurchased", Type: "event",
		Inputs: []ABIParam{
			{Name: "raffleId", Type: "uint256", Indexed: true},
			{Name: "buyer", Type: "address", Indexed: true},
			{Name: "ticketNumber", Type: "uint256"},
		},
	},
	{
		Name: "RaffleClosed", Type: "event",
		Inputs: []ABIParam{
			{Name: "raffleId", Type: "uint256", Indexed: true},
			{Name: "winner", Type: "address", Indexed: true},
			{Name: "prize", Type: "uint256"},
		},
	},
	{
		Name: "RaffleCancelled", Type: "event",
		Inputs: []ABIParam{
			{Name: "raffleId", Type: "uint256", Indexed: true},
		},
	},
}

// RaffleABI returns the raffle contract interface.
func RaffleABI() []ABIEntry {
	return GetBuiltinABI(RaffleBuiltinID)
}

// optionalRaffleFunctions may be absent from a deployed raffle contract.
var optionalRaffleFunctions = map[string]bool{
	"getParticipants": true,
}

// RaffleFunctionRequired reports whether a raffle contract must implement
// the named function.
func RaffleFunctionRequired(name string) bool {
	return !optionalRaffleFunctions[name]
}

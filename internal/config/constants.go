package config

import "time"

// Write path defaults.
const (
	DefaultGasMultiplier = uint64(120)     // estimate + 20%
	GasLimitFallback     = uint64(300_000) // shown in previews when estimation is impossible
	DefaultConfirmations = uint64(1)
)

// Read path defaults.
const (
	DefaultReadConcurrency = 1 // sequential, like the contract listing it mirrors
	DefaultReadTimeout     = 0 // unbounded
	DefaultMaxRaffles      = uint64(10_000)
)

// Timeout constants used across cmd.
const (
	ReceiptPollInterval = 2 * time.Second
	TxConfirmTimeout    = 3 * time.Minute  // how long `raffle buy --wait` follows a tx
	ConnectTimeout      = 30 * time.Second // provider account request
)

// Environment variables that override file values.
const (
	EnvConfigDir     = "W3RAFFLE_CONFIG_DIR"
	EnvRPCURL        = "W3RAFFLE_RPC_URL"
	EnvNetwork       = "W3RAFFLE_NETWORK"
	EnvContract      = "W3RAFFLE_CONTRACT_ADDRESS"
	EnvWalletConnect = "W3RAFFLE_WALLETCONNECT_PROJECT_ID"
	EnvLogLevel      = "W3RAFFLE_LOG_LEVEL"
	EnvProvider      = "W3RAFFLE_PROVIDER"
	EnvRPCStrategy   = "W3RAFFLE_RPC_STRATEGY"
)

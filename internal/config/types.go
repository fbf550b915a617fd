package config

// Config holds all w3raffle configuration.
type Config struct {
	Network                string `json:"network" validate:"required"`
	RPCURL                 string `json:"rpc_url,omitempty" validate:"omitempty,url"`
	RPCStrategy            string `json:"rpc_strategy" validate:"oneof=default fastest failover"` // how a network RPC is chosen when RPCURL is empty
	ContractAddress        string `json:"contract_address,omitempty"`
	WalletConnectProjectID string `json:"walletconnect_project_id,omitempty"`
	DefaultWallet          string `json:"default_wallet,omitempty"`
	DeploymentSource       string `json:"deployment_source,omitempty"`
	Provider               string `json:"provider" validate:"oneof=keystore node"` // where accounts come from
	LogLevel               string `json:"log_level" validate:"oneof=debug info warn error"`
	LogJSON                bool   `json:"log_json"`
	GasMultiplier          uint64 `json:"gas_multiplier" validate:"gte=100,lte=300"` // percent applied to gas estimates
	Confirmations          uint64 `json:"confirmations" validate:"lte=64"`
	ReadConcurrency        int    `json:"read_concurrency" validate:"gte=1,lte=32"`
	MaxRaffles             uint64 `json:"max_raffles" validate:"gte=1"`
	ReadTimeout            int    `json:"read_timeout" validate:"gte=0"` // seconds, 0 = unbounded

	// internal: config dir path used for Save()
	configDir string
}

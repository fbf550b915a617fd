package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	defaultNetwork  = "sepolia"
	defaultProvider = "keystore"
	defaultStrategy = "default"
	defaultLogLevel = "warn"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	envFile     = ".env"
)

var (
	ErrConfigValidation = errors.New("config validation error")
)

var validate = validator.New()

// Load reads config from dir (or creates defaults), then applies .env files
// and environment overrides. dir defaults to $W3RAFFLE_CONFIG_DIR, then
// ~/.w3raffle. A .env in the working directory takes precedence over one in
// the config dir; real environment variables win over both.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3raffle")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.configDir = dir

	dotenv, err := readDotenv(filepath.Join(dir, envFile), envFile)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrConfigValidation, describe(err))
	}
	return nil
}

// Save writes the config to disk. Environment overrides active at load time
// are written too.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the JSON file backing the wallet registry.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// HasContract reports whether a contract address is configured at all.
// Whether it is usable is decided by the contract adapter.
func (c *Config) HasContract() bool {
	return strings.TrimSpace(c.ContractAddress) != ""
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:         defaultNetwork,
		Provider:        defaultProvider,
		RPCStrategy:     defaultStrategy,
		LogLevel:        defaultLogLevel,
		GasMultiplier:   DefaultGasMultiplier,
		Confirmations:   DefaultConfirmations,
		ReadConcurrency: DefaultReadConcurrency,
		ReadTimeout:     DefaultReadTimeout,
		MaxRaffles:      DefaultMaxRaffles,
		configDir:       dir,
	}
}

func (c *Config) applyEnv(get func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(get(key)); v != "" {
			*dst = v
		}
	}
	set(&c.RPCURL, EnvRPCURL)
	set(&c.Network, EnvNetwork)
	set(&c.ContractAddress, EnvContract)
	set(&c.WalletConnectProjectID, EnvWalletConnect)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.Provider, EnvProvider)
	set(&c.RPCStrategy, EnvRPCStrategy)
}

// readDotenv merges the given .env files; later paths win. Missing files are
// skipped.
func readDotenv(paths ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for k, v := range vals {
			out[k] = v
		}
	}
	return out, nil
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
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a URL", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", e.Field(), e.Tag(), e.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

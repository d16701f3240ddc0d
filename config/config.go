package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/pkg/errors"
)

// TokenToml is one token entry in a TOML chain config.
type TokenToml struct {
	Symbol   string `toml:"symbol"`
	Address  string `toml:"address"`
	Decimals uint8  `toml:"decimals"`
}

// ChainToml is one chain entry in a TOML config file.
type ChainToml struct {
	Name             string      `toml:"name"`
	ChainType        string      `toml:"chain_type"`
	ChainID          uint64      `toml:"chain_id"`
	RpcUrl           string      `toml:"rpc_url"`
	RelayerUrl       string      `toml:"relayer_url"`
	ExplorerUrl      string      `toml:"explorer_url"`
	RequestTimeoutMs int64       `toml:"request_timeout_ms"`
	RetryCount       int         `toml:"retry_count"`
	Tokens           []TokenToml `toml:"tokens"`
	CurrencyName     string      `toml:"currency_name"`
	CurrencySymbol   string      `toml:"currency_symbol"`
	CurrencyDecimals uint8       `toml:"currency_decimals"`
}

// FileConfig is the root of a TOML config file.
type FileConfig struct {
	Chains map[string]ChainToml `toml:"chains"`
}

// LoadFile reads chain configurations from a TOML file.
//
// Parameters:
// - path: the path to the TOML file.
//
// Returns:
// - []*types.ChainConfig: the parsed chain configurations.
// - error: an error if reading or decoding fails.
func LoadFile(path string) ([]*types.ChainConfig, error) {
	var file FileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrap(err, "failed to decode config file")
	}

	chains := make([]*types.ChainConfig, 0, len(file.Chains))
	for key, entry := range file.Chains {
		if entry.ChainID == 0 {
			return nil, errors.Errorf("chain %s: missing chain_id", key)
		}

		chainType := types.ParseChainType(entry.ChainType)
		if chainType == types.UNKNOWN {
			return nil, errors.Errorf("chain %s: unknown chain_type %q", key, entry.ChainType)
		}

		name := entry.Name
		if name == "" {
			name = key
		}

		chain := &types.ChainConfig{
			Name:           name,
			ChainType:      chainType,
			ChainID:        entry.ChainID,
			RpcUrl:         entry.RpcUrl,
			RelayerUrl:     entry.RelayerUrl,
			ExplorerUrl:    entry.ExplorerUrl,
			RequestTimeout: time.Duration(entry.RequestTimeoutMs) * time.Millisecond,
			RetryCount:     entry.RetryCount,
			NativeCurrency: types.NativeCurrency{
				Name:     entry.CurrencyName,
				Symbol:   entry.CurrencySymbol,
				Decimals: entry.CurrencyDecimals,
			},
		}

		for _, token := range entry.Tokens {
			chain.Tokens = append(chain.Tokens, types.TokenConfig{
				Symbol:   token.Symbol,
				Address:  token.Address,
				Decimals: token.Decimals,
			})
		}

		applyDefaults(chain)
		chains = append(chains, chain)
	}

	return chains, nil
}

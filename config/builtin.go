package config

import (
	"time"

	"github.com/relaymesh/gasless-lib/common/types"
)

const (
	// defaultRequestTimeout is the relayer HTTP timeout applied when a
	// chain config does not set one.
	defaultRequestTimeout = 10 * time.Second
	// defaultRetryCount is the relayer HTTP retry count applied when a
	// chain config does not set one.
	defaultRetryCount = 2
)

// builtinChains is the static chain table shipped with the library.
// Deployments override or extend it via TOML files, a Postgres store,
// or the relayer /chains endpoint.
var builtinChains = []*types.ChainConfig{
	{
		Name:        "ethereum",
		ChainType:   types.EVM,
		ChainID:     1,
		RpcUrl:      "https://eth.llamarpc.com",
		RelayerUrl:  "https://relay-eth.relaymesh.io",
		ExplorerUrl: "https://etherscan.io",
		Tokens: []types.TokenConfig{
			{Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6},
			{Symbol: "USDT", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6},
		},
		NativeCurrency: types.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
	},
	{
		Name:        "polygon",
		ChainType:   types.EVM,
		ChainID:     137,
		RpcUrl:      "https://polygon-rpc.com",
		RelayerUrl:  "https://relay-polygon.relaymesh.io",
		ExplorerUrl: "https://polygonscan.com",
		Tokens: []types.TokenConfig{
			{Symbol: "USDC", Address: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", Decimals: 6},
			{Symbol: "USDT", Address: "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", Decimals: 6},
		},
		NativeCurrency: types.NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
	},
	{
		Name:        "base",
		ChainType:   types.EVM,
		ChainID:     8453,
		RpcUrl:      "https://mainnet.base.org",
		RelayerUrl:  "https://relay-base.relaymesh.io",
		ExplorerUrl: "https://basescan.org",
		Tokens: []types.TokenConfig{
			{Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
		},
		NativeCurrency: types.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
	},
	{
		Name:        "solana",
		ChainType:   types.SOLANA,
		ChainID:     101,
		RpcUrl:      "https://api.mainnet-beta.solana.com",
		RelayerUrl:  "https://relay-solana.relaymesh.io",
		ExplorerUrl: "https://solscan.io",
		Tokens: []types.TokenConfig{
			{Symbol: "USDC", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
			{Symbol: "USDT", Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
		},
		NativeCurrency: types.NativeCurrency{Name: "Solana", Symbol: "SOL", Decimals: 9},
	},
}

// BuiltinChains returns copies of the built-in chain configurations with
// request defaults applied.
func BuiltinChains() []*types.ChainConfig {
	chains := make([]*types.ChainConfig, 0, len(builtinChains))
	for _, chain := range builtinChains {
		c := *chain
		applyDefaults(&c)
		chains = append(chains, &c)
	}
	return chains
}

// applyDefaults fills request timeout and retry settings when unset.
func applyDefaults(c *types.ChainConfig) {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.RetryCount <= 0 {
		c.RetryCount = defaultRetryCount
	}
}

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChainType(t *testing.T) {
	assert.Equal(t, EVM, ParseChainType("EVM"))
	assert.Equal(t, SOLANA, ParseChainType("SOLANA"))
	assert.Equal(t, UNKNOWN, ParseChainType("evm"))
	assert.Equal(t, UNKNOWN, ParseChainType(""))
	assert.Equal(t, UNKNOWN, ParseChainType("COSMOS"))
}

func TestChainConfigToken(t *testing.T) {
	config := &ChainConfig{
		Tokens: []TokenConfig{
			{Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6},
			{Symbol: "USDT", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6},
		},
	}

	bySymbol := config.Token("USDC")
	require.NotNil(t, bySymbol)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", bySymbol.Address)

	byAddress := config.Token("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	require.NotNil(t, byAddress)
	assert.Equal(t, "USDT", byAddress.Symbol)

	assert.Nil(t, config.Token("DAI"))
}

func TestChainConfigExpired(t *testing.T) {
	now := time.Now()

	static := &ChainConfig{}
	assert.False(t, static.Expired(now), "static configs never expire")

	fetched := &ChainConfig{FetchedAt: now, CacheTTL: time.Minute}
	assert.False(t, fetched.Expired(now.Add(30*time.Second)))
	assert.True(t, fetched.Expired(now.Add(2*time.Minute)))

	noTTL := &ChainConfig{FetchedAt: now}
	assert.False(t, noTTL.Expired(now.Add(time.Hour)))
}

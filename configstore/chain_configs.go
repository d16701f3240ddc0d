package configstore

import (
	"context"

	"github.com/relaymesh/gasless-lib/common/types"
)

// ChainConfigs loads active chains with their token lists and converts
// them to chain configurations usable as a resolver static source.
//
// Parameters:
// - ctx: the context for managing the queries.
//
// Returns:
// - []*types.ChainConfig: the chain configurations stored in the database.
// - error: an error if any query fails.
func (s *Store) ChainConfigs(ctx context.Context) ([]*types.ChainConfig, error) {
	chains, err := s.GetChains(ctx, true)
	if err != nil {
		return nil, err
	}

	configs := make([]*types.ChainConfig, 0, len(chains))
	for _, chain := range chains {
		config := &types.ChainConfig{
			Name:        chain.Name,
			ChainType:   types.ParseChainType(chain.Type),
			ChainID:     chain.ChainID,
			RpcUrl:      chain.RpcUrl,
			RelayerUrl:  chain.RelayerUrl,
			ExplorerUrl: chain.ExplorerUrl,
		}

		tokens, err := s.GetTokens(ctx, chain.ChainID)
		if err != nil {
			return nil, err
		}
		for _, token := range tokens {
			config.Tokens = append(config.Tokens, types.TokenConfig{
				Symbol:   token.Symbol,
				Address:  token.Address,
				Decimals: token.Decimals,
			})
		}

		configs = append(configs, config)
	}

	return configs, nil
}

package config

import (
	"context"
	"sync"
	"time"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/sirupsen/logrus"
)

// defaultCacheTTL bounds fetched configs when the relayer does not report a TTL.
const defaultCacheTTL = 5 * time.Minute

// ChainFetcher fetches chain configurations from a relayer service.
// *relayer.Client satisfies it.
type ChainFetcher interface {
	Chains(ctx context.Context) ([]relayer.ChainInfo, error)
}

// FetcherFactory builds a ChainFetcher for a chain's relayer endpoint.
type FetcherFactory func(config *types.ChainConfig) (ChainFetcher, error)

// DefaultFetcherFactory builds relayer clients from the chain's relayer URL
// and HTTP settings.
func DefaultFetcherFactory(logger *logrus.Logger) FetcherFactory {
	return func(config *types.ChainConfig) (ChainFetcher, error) {
		return relayer.New(relayer.Config{
			BaseURL:    config.RelayerUrl,
			Timeout:    config.RequestTimeout,
			RetryCount: config.RetryCount,
		}, logger)
	}
}

// Resolver merges static chain configuration with dynamically fetched
// configuration from relayer endpoints. Fetched variants are cached with a
// TTL; when a refetch fails the resolver falls back to the last cached
// value and finally to the static config. Safe for concurrent use.
type Resolver struct {
	logger  *logrus.Logger
	factory FetcherFactory

	staticMutex sync.RWMutex
	static      map[uint64]*types.ChainConfig

	cacheMutex sync.RWMutex
	cache      map[uint64]*types.ChainConfig
}

// NewResolver creates a resolver over the given static configs.
//
// Parameters:
// - static: the static chain configurations (built-ins plus overrides).
// - factory: the factory for per-chain relayer fetchers; nil disables remote fetching.
// - logger: the logger for logging purposes.
//
// Returns:
// - *Resolver: the new resolver instance.
func NewResolver(static []*types.ChainConfig, factory FetcherFactory, logger *logrus.Logger) *Resolver {
	staticMap := make(map[uint64]*types.ChainConfig, len(static))
	for _, chain := range static {
		c := *chain
		applyDefaults(&c)
		staticMap[c.ChainID] = &c
	}

	return &Resolver{
		logger:  logger,
		factory: factory,
		static:  staticMap,
		cache:   make(map[uint64]*types.ChainConfig),
	}
}

// AddStatic registers or replaces a static chain configuration.
func (r *Resolver) AddStatic(config *types.ChainConfig) {
	c := *config
	applyDefaults(&c)

	r.staticMutex.Lock()
	r.static[c.ChainID] = &c
	r.staticMutex.Unlock()
}

// ChainIDs returns the chain IDs known to the resolver's static table.
func (r *Resolver) ChainIDs() []uint64 {
	r.staticMutex.RLock()
	defer r.staticMutex.RUnlock()

	ids := make([]uint64, 0, len(r.static))
	for id := range r.static {
		ids = append(ids, id)
	}
	return ids
}

// Resolve returns the effective configuration for a chain, refreshing the
// fetched variant when the cached one is past its TTL.
//
// Parameters:
// - ctx: the context for managing remote fetches.
// - chainID: the unique identifier of the chain.
//
// Returns:
// - *types.ChainConfig: the resolved configuration.
// - error: an UNSUPPORTED_CHAIN error if the chain is unknown.
func (r *Resolver) Resolve(ctx context.Context, chainID uint64) (*types.ChainConfig, error) {
	r.staticMutex.RLock()
	static := r.static[chainID]
	r.staticMutex.RUnlock()

	if static == nil {
		return nil, relayerrors.Newf(relayerrors.CodeUnsupportedChain, "chain %d is not supported", chainID)
	}

	r.cacheMutex.RLock()
	cached := r.cache[chainID]
	r.cacheMutex.RUnlock()

	now := time.Now()
	if cached != nil && !cached.Expired(now) {
		return cached, nil
	}

	if r.factory == nil {
		return static, nil
	}

	fetched, err := r.fetch(ctx, static)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{
				"chainID": chainID,
				"error":   err,
			}).Warn("Failed to fetch remote chain config, using fallback")
		}
		if cached != nil {
			return cached, nil
		}
		return static, nil
	}

	r.cacheMutex.Lock()
	r.cache[chainID] = fetched
	r.cacheMutex.Unlock()

	return fetched, nil
}

// Invalidate drops the cached fetched variant for a chain.
func (r *Resolver) Invalidate(chainID uint64) {
	r.cacheMutex.Lock()
	delete(r.cache, chainID)
	r.cacheMutex.Unlock()
}

// fetch retrieves the chain's entry from its relayer and merges it over
// the static config.
func (r *Resolver) fetch(ctx context.Context, static *types.ChainConfig) (*types.ChainConfig, error) {
	fetcher, err := r.factory(static)
	if err != nil {
		return nil, err
	}

	infos, err := fetcher.Chains(ctx)
	if err != nil {
		return nil, err
	}

	for _, info := range infos {
		if info.ChainID == static.ChainID {
			return mergeChainInfo(static, &info), nil
		}
	}

	return nil, relayerrors.Newf(relayerrors.CodeRelayerError,
		"relayer did not report chain %d", static.ChainID)
}

// mergeChainInfo overlays a relayer-reported chain entry on a static config.
// Remote values win where present; static values fill the gaps.
func mergeChainInfo(static *types.ChainConfig, info *relayer.ChainInfo) *types.ChainConfig {
	merged := *static
	merged.FetchedAt = time.Now()
	merged.CacheTTL = defaultCacheTTL

	if info.CacheTTLSeconds > 0 {
		merged.CacheTTL = time.Duration(info.CacheTTLSeconds) * time.Second
	}
	if info.Name != "" {
		merged.Name = info.Name
	}
	if chainType := types.ParseChainType(info.ChainType); chainType != types.UNKNOWN {
		merged.ChainType = chainType
	}
	if info.RpcUrl != "" {
		merged.RpcUrl = info.RpcUrl
	}
	if info.ExplorerUrl != "" {
		merged.ExplorerUrl = info.ExplorerUrl
	}
	if info.NativeCurrency.Symbol != "" {
		merged.NativeCurrency = types.NativeCurrency{
			Name:     info.NativeCurrency.Name,
			Symbol:   info.NativeCurrency.Symbol,
			Decimals: info.NativeCurrency.Decimals,
		}
	}

	if len(info.Tokens) > 0 {
		tokens := make([]types.TokenConfig, 0, len(info.Tokens))
		for _, token := range info.Tokens {
			tokens = append(tokens, types.TokenConfig{
				Symbol:   token.Symbol,
				Address:  token.Address,
				Decimals: token.Decimals,
			})
		}
		merged.Tokens = tokens
	}

	return &merged
}

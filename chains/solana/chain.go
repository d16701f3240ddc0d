package solana

import (
	"context"
	"sync"

	"github.com/relaymesh/gasless-lib/chainmanager"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// solana represents the base Solana chain implementation.
type solana struct {
	config *types.ChainConfig
	logger *logrus.Logger

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex
	client      *rpc.Client

	relayerMutex sync.RWMutex
	relayer      *relayer.Client
}

// NewSolanaChain creates a new Solana chain implementation.
//
// Parameters:
// - ctx: the context for managing the request.
// - config: the chain configuration.
// - logger: the logger for logging events.
//
// Returns:
// - types.Chain: a new Solana chain instance.
// - error: an error if any issue occurs during creation.
func NewSolanaChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Chain, error) {
	relayerClient, err := relayer.New(relayer.Config{
		BaseURL:    config.RelayerUrl,
		Timeout:    config.RequestTimeout,
		RetryCount: config.RetryCount,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create relayer client")
	}

	chain := &solana{
		config:  config,
		logger:  logger,
		relayer: relayerClient,
	}

	// The RPC client is optional: without it balance prechecks and
	// confirmation lookups are skipped, quoting and relaying still work.
	if config.RpcUrl != "" {
		chain.client = rpc.New(config.RpcUrl)
	}

	builder := chainmanager.NewChainBuilder(config)
	builder.WithQuoter(chain)
	builder.WithSignaturePreparer(chain)
	builder.WithTransferExecutor(chain)
	builder.WithAddressValidator(chain)
	builder.WithBatchExecutor(chain)

	if chain.client != nil {
		builder.WithBalanceProvider(chain)
	}

	return builder.Build(), nil
}

// Close should be called when the chain is no longer needed.
func (s *solana) Close() {
	s.clientMutex.Lock()
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
	s.clientMutex.Unlock()
}

// getRelayer returns the relayer client with thread-safe access.
func (s *solana) getRelayer() *relayer.Client {
	s.relayerMutex.RLock()
	defer s.relayerMutex.RUnlock()
	return s.relayer
}

package evm

import (
	"context"
	"sync"
	"time"

	"github.com/relaymesh/gasless-lib/chainmanager"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// receiptWaitTimeout bounds the post-relay receipt lookup.
	receiptWaitTimeout = 15 * time.Second
	// receiptPollInterval is the delay between receipt polls.
	receiptPollInterval = time.Second
)

// evm represents the base EVM chain implementation.
type evm struct {
	config *types.ChainConfig // Chain configuration.
	logger *logrus.Logger     // Logger for logging events.

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex      // Mutex for client.
	client      *ethclient.Client // Ethereum client.

	relayerMutex sync.RWMutex    // Mutex for relayer client.
	relayer      *relayer.Client // Relayer service client.
}

// NewEvmChain creates a new EVM chain implementation.
//
// Parameters:
// - ctx: the context for managing the request.
// - config: the chain configuration.
// - logger: the logger for logging events.
//
// Returns:
// - types.Chain: a new EVM chain instance.
// - error: an error if any issue occurs during creation.
func NewEvmChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Chain, error) {
	relayerClient, err := relayer.New(relayer.Config{
		BaseURL:    config.RelayerUrl,
		Timeout:    config.RequestTimeout,
		RetryCount: config.RetryCount,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create relayer client")
	}

	chain := &evm{
		config:  config,
		logger:  logger,
		relayer: relayerClient,
	}

	// The RPC client is optional: without it balance prechecks and receipt
	// lookups are skipped, quoting and relaying still work.
	if config.RpcUrl != "" {
		client, err := ethclient.DialContext(ctx, config.RpcUrl)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create client")
		}
		chain.client = client
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
// It closes the RPC client.
func (e *evm) Close() {
	e.clientMutex.Lock()
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	e.clientMutex.Unlock()
}

// GetClient returns the Ethereum client.
//
// Returns:
// - *ethclient.Client: the Ethereum client.
func (e *evm) GetClient() *ethclient.Client {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return e.client
}

// getRelayer returns the relayer client with thread-safe access.
func (e *evm) getRelayer() *relayer.Client {
	e.relayerMutex.RLock()
	defer e.relayerMutex.RUnlock()
	return e.relayer
}

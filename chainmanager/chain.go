package chainmanager

import (
	"context"
	"math/big"
	"sync"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
)

// Chain implements types.Chain interface with thread-safe access to dependencies.
// It provides methods to interact with the chain's quoter, signature preparer,
// transfer executor, balance provider, address validator and batch executor.
// Each dependency is protected by a read-write mutex to ensure thread-safe access.
type Chain struct {
	config    *types.ChainConfig      // Chain configuration.
	quoter    types.Quoter            // Quoter implementation.
	preparer  types.SignaturePreparer // Signature preparer implementation.
	executor  types.TransferExecutor  // Transfer executor implementation.
	provider  types.BalanceProvider   // Balance provider implementation.
	validator types.AddressValidator  // Address validator implementation.
	batcher   types.BatchExecutor     // Batch executor implementation.

	// Mutexes for thread-safe access to dependencies.
	quoterMutex    sync.RWMutex // Mutex for quoter.
	preparerMutex  sync.RWMutex // Mutex for signature preparer.
	executorMutex  sync.RWMutex // Mutex for transfer executor.
	providerMutex  sync.RWMutex // Mutex for balance provider.
	validatorMutex sync.RWMutex // Mutex for address validator.
	batcherMutex   sync.RWMutex // Mutex for batch executor.
}

// NewChain creates a new Chain instance.
//
// Parameters:
// - config: the chain configuration.
// - quoter: the quoter implementation.
// - preparer: the signature preparer implementation.
// - executor: the transfer executor implementation.
// - provider: the balance provider implementation.
// - validator: the address validator implementation.
// - batcher: the batch executor implementation.
//
// Returns:
// - *Chain: a new Chain instance.
func NewChain(
	config *types.ChainConfig,
	quoter types.Quoter,
	preparer types.SignaturePreparer,
	executor types.TransferExecutor,
	provider types.BalanceProvider,
	validator types.AddressValidator,
	batcher types.BatchExecutor,
) *Chain {
	return &Chain{
		config:    config,
		quoter:    quoter,
		preparer:  preparer,
		executor:  executor,
		provider:  provider,
		validator: validator,
		batcher:   batcher,
	}
}

// GetQuote retrieves a transfer quote with thread-safe access.
// It locks the quoter mutex for reading to ensure safe concurrent access to the quoter.
// If the quoter is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request to quote.
//
// Returns:
// - *types.TransferQuote: the quote instance.
// - error: an error if the quoter is not implemented or if the quote retrieval fails.
func (c *Chain) GetQuote(ctx context.Context, req *types.TransferRequest) (*types.TransferQuote, error) {
	c.quoterMutex.RLock()
	defer c.quoterMutex.RUnlock()

	if c.quoter == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return c.quoter.GetQuote(ctx, req)
}

// PrepareSignature builds the signable payload with thread-safe access.
// It locks the preparer mutex for reading to ensure safe concurrent access to the preparer.
// If the preparer is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request.
// - quote: the quote the transfer is executed against.
//
// Returns:
// - *types.SignatureData: the signable payload.
// - error: an error if the preparer is not implemented or if the preparation fails.
func (c *Chain) PrepareSignature(ctx context.Context, req *types.TransferRequest, quote *types.TransferQuote) (*types.SignatureData, error) {
	c.preparerMutex.RLock()
	defer c.preparerMutex.RUnlock()

	if c.preparer == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return c.preparer.PrepareSignature(ctx, req, quote)
}

// ExecuteTransfer submits a signed transfer with thread-safe access.
// It locks the executor mutex for reading to ensure safe concurrent access to the executor.
// If the executor is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request.
// - quote: the quote the transfer is executed against.
// - signed: the signed payload.
//
// Returns:
// - *types.TransferResult: the execution result.
// - error: an error if the executor is not implemented or if the execution fails.
func (c *Chain) ExecuteTransfer(ctx context.Context, req *types.TransferRequest, quote *types.TransferQuote, signed *types.SignedPayload) (*types.TransferResult, error) {
	c.executorMutex.RLock()
	defer c.executorMutex.RUnlock()

	if c.executor == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return c.executor.ExecuteTransfer(ctx, req, quote, signed)
}

// GetTokenBalance gets a token balance with thread-safe access.
// It locks the provider mutex for reading to ensure safe concurrent access to the provider.
// If the provider is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the address to check balance for.
// - tokenAddress: the token contract address.
//
// Returns:
// - *big.Int: the balance in the token's smallest unit.
// - error: an error if the provider is not implemented or if the balance check fails.
func (c *Chain) GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error) {
	c.providerMutex.RLock()
	provider := c.provider
	c.providerMutex.RUnlock()

	if provider == nil {
		return nil, relayerrors.ErrNotImplemented
	}

	return provider.GetTokenBalance(ctx, address, tokenAddress)
}

// ValidateAddress validates an address with thread-safe access.
// It locks the validator mutex for reading to ensure safe concurrent access to the validator.
// If the validator is not implemented, it returns an error.
//
// Parameters:
// - address: the address to validate.
//
// Returns:
// - error: an error if the validator is not implemented or the address is invalid.
func (c *Chain) ValidateAddress(address string) error {
	c.validatorMutex.RLock()
	defer c.validatorMutex.RUnlock()

	if c.validator == nil {
		return relayerrors.ErrNotImplemented
	}
	return c.validator.ValidateAddress(address)
}

// ExecuteBatch executes a batch of transfers with thread-safe access.
// It locks the batcher mutex for reading to ensure safe concurrent access to the batcher.
// If the batcher is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - items: the quoted batch items to execute.
// - signer: the signer used to authorize the items.
//
// Returns:
// - []types.BatchItemResult: one result per item, in input order.
// - error: an error if the batcher is not implemented or the batch could not be attempted.
func (c *Chain) ExecuteBatch(ctx context.Context, items []*types.BatchItem, signer types.Signer) ([]types.BatchItemResult, error) {
	c.batcherMutex.RLock()
	defer c.batcherMutex.RUnlock()

	if c.batcher == nil {
		return nil, relayerrors.ErrNotImplemented
	}
	return c.batcher.ExecuteBatch(ctx, items, signer)
}

// GetConfig returns chain configuration.
//
// Returns:
// - *types.ChainConfig: the chain configuration instance.
func (c *Chain) GetConfig() *types.ChainConfig {
	return c.config
}

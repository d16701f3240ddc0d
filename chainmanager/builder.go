package chainmanager

import (
	"github.com/relaymesh/gasless-lib/common/types"
)

// ChainBuilder is a builder pattern implementation for chain configuration.
// It allows setting various components of the chain such as quoter, signature
// preparer, transfer executor, balance provider, address validator and batch executor.
type ChainBuilder struct {
	config    *types.ChainConfig      // Chain configuration.
	quoter    types.Quoter            // Quoter implementation.
	preparer  types.SignaturePreparer // Signature preparer implementation.
	executor  types.TransferExecutor  // Transfer executor implementation.
	provider  types.BalanceProvider   // Balance provider implementation.
	validator types.AddressValidator  // Address validator implementation.
	batcher   types.BatchExecutor     // Batch executor implementation.
}

// NewChainBuilder creates a new chain builder instance.
//
// Parameters:
// - config: the chain configuration.
//
// Returns:
// - *ChainBuilder: a new ChainBuilder instance.
func NewChainBuilder(config *types.ChainConfig) *ChainBuilder {
	return &ChainBuilder{
		config: config,
	}
}

// WithQuoter sets quoter implementation.
//
// Parameters:
// - quoter: the quoter implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithQuoter(quoter types.Quoter) *ChainBuilder {
	b.quoter = quoter
	return b
}

// WithSignaturePreparer sets signature preparer implementation.
//
// Parameters:
// - preparer: the signature preparer implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithSignaturePreparer(preparer types.SignaturePreparer) *ChainBuilder {
	b.preparer = preparer
	return b
}

// WithTransferExecutor sets transfer executor implementation.
//
// Parameters:
// - executor: the transfer executor implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithTransferExecutor(executor types.TransferExecutor) *ChainBuilder {
	b.executor = executor
	return b
}

// WithBalanceProvider sets balance provider implementation.
//
// Parameters:
// - provider: the balance provider implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithBalanceProvider(provider types.BalanceProvider) *ChainBuilder {
	b.provider = provider
	return b
}

// WithAddressValidator sets address validator implementation.
//
// Parameters:
// - validator: the address validator implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithAddressValidator(validator types.AddressValidator) *ChainBuilder {
	b.validator = validator
	return b
}

// WithBatchExecutor sets batch executor implementation.
//
// Parameters:
// - batcher: the batch executor implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithBatchExecutor(batcher types.BatchExecutor) *ChainBuilder {
	b.batcher = batcher
	return b
}

// Build creates a new chain instance with configured implementations.
//
// Returns:
// - types.Chain: a new Chain instance with the configured implementations.
func (b *ChainBuilder) Build() types.Chain {
	return NewChain(b.config, b.quoter, b.preparer, b.executor, b.provider, b.validator, b.batcher)
}

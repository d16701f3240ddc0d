package types

import (
	"context"
	"math/big"
	"time"
)

// NativeCurrency describes the native currency of a chain.
type NativeCurrency struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// TokenConfig describes a token supported for gasless transfers on a chain.
// An empty Address means the chain's native currency.
type TokenConfig struct {
	Symbol   string
	Address  string
	Decimals uint8
}

// ChainConfig holds the configuration for a specific chain implementation.
//
// Fields:
// - Name: the name of the chain.
// - ChainType: the type of the chain.
// - ChainID: the unique identifier for the chain.
// - RpcUrl: the URL for the chain's RPC endpoint.
// - RelayerUrl: the URL of the relayer service for the chain.
// - ExplorerUrl: the base URL of the block explorer.
// - Tokens: the tokens supported for gasless transfers.
// - NativeCurrency: the native currency metadata.
// - RequestTimeout: the timeout for relayer HTTP requests.
// - RetryCount: the number of retries for relayer HTTP requests.
// - CacheTTL: how long a dynamically fetched variant of this config stays fresh.
// - FetchedAt: when this config was fetched from a relayer (zero for static configs).
type ChainConfig struct {
	Name           string
	ChainType      ChainType
	ChainID        uint64
	RpcUrl         string
	RelayerUrl     string
	ExplorerUrl    string
	Tokens         []TokenConfig
	NativeCurrency NativeCurrency
	RequestTimeout time.Duration
	RetryCount     int
	CacheTTL       time.Duration
	FetchedAt      time.Time
}

// Token returns the token config matching the given symbol or address.
//
// Parameters:
// - symbolOrAddress: the token symbol (case-insensitive match is the caller's concern) or contract address.
//
// Returns:
// - *TokenConfig: the matching token config, or nil if not found.
func (c *ChainConfig) Token(symbolOrAddress string) *TokenConfig {
	for i := range c.Tokens {
		if c.Tokens[i].Symbol == symbolOrAddress || c.Tokens[i].Address == symbolOrAddress {
			return &c.Tokens[i]
		}
	}
	return nil
}

// Expired reports whether a fetched config is past its cache TTL.
// Static configs (zero FetchedAt) never expire.
func (c *ChainConfig) Expired(now time.Time) bool {
	if c.FetchedAt.IsZero() || c.CacheTTL <= 0 {
		return false
	}
	return now.After(c.FetchedAt.Add(c.CacheTTL))
}

// Quoter provides transfer quote functionality.
type Quoter interface {
	// GetQuote retrieves a fee quote for the given transfer request from the chain's relayer.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - req: the transfer request to quote.
	//
	// Returns:
	// - *TransferQuote: the quote with relayer fee and totals.
	// - error: an error if the quote retrieval fails.
	GetQuote(ctx context.Context, req *TransferRequest) (*TransferQuote, error)
}

// SignaturePreparer produces the ecosystem-specific signable payload for a transfer.
type SignaturePreparer interface {
	// PrepareSignature builds the payload the sender must sign to authorize the transfer.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - req: the transfer request.
	// - quote: the quote the transfer is executed against.
	//
	// Returns:
	// - *SignatureData: typed data for EVM chains, serialized transaction bytes for Solana chains.
	// - error: an error if the preparation fails.
	PrepareSignature(ctx context.Context, req *TransferRequest, quote *TransferQuote) (*SignatureData, error)
}

// TransferExecutor submits a signed transfer authorization to the relayer.
type TransferExecutor interface {
	// ExecuteTransfer submits the signed payload and returns the execution result.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - req: the transfer request.
	// - quote: the quote the transfer is executed against.
	// - signed: the signed payload produced by a Signer.
	//
	// Returns:
	// - *TransferResult: the transaction hash and execution details.
	// - error: an error if the execution fails.
	ExecuteTransfer(ctx context.Context, req *TransferRequest, quote *TransferQuote, signed *SignedPayload) (*TransferResult, error)
}

// BalanceProvider provides token balance functionality.
type BalanceProvider interface {
	// GetTokenBalance gets token balance for the given address.
	// For native balances, use tokenAddress as empty string.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the address to check balance for.
	// - tokenAddress: the token contract address.
	//
	// Returns:
	// - *big.Int: the balance in the token's smallest unit.
	// - error: an error if the balance check fails.
	GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error)
}

// AddressValidator validates chain-specific address encodings.
type AddressValidator interface {
	// ValidateAddress checks that the address is well-formed for the chain.
	//
	// Parameters:
	// - address: the address to validate.
	//
	// Returns:
	// - error: an error if the address is not valid for the chain.
	ValidateAddress(address string) error
}

// BatchExecutor executes a batch of transfers on a single chain.
// Solana chains execute batches atomically in a single transaction;
// EVM chains execute items sequentially and report per-item results.
type BatchExecutor interface {
	// ExecuteBatch executes the given batch items using the provided signer.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - items: the quoted batch items to execute.
	// - signer: the signer used to authorize the items.
	//
	// Returns:
	// - []BatchItemResult: one result per item, in input order.
	// - error: an error if the batch as a whole could not be attempted.
	ExecuteBatch(ctx context.Context, items []*BatchItem, signer Signer) ([]BatchItemResult, error)
}

// Chain combines all chain-specific functionality.
type Chain interface {
	Quoter
	SignaturePreparer
	TransferExecutor
	BalanceProvider
	AddressValidator
	BatchExecutor
}

// ChainRegistry manages multiple chains.
type ChainRegistry interface {
	// Add adds a new chain to the registry.
	//
	// Parameters:
	// - ctx: the context for managing the chain creation.
	// - config: the configuration for the chain to add.
	//
	// Returns:
	// - error: an error if adding the chain fails.
	Add(ctx context.Context, config *ChainConfig) error

	// Get retrieves a chain from the registry by its chain ID.
	//
	// Parameters:
	// - chainID: the unique identifier for the chain to retrieve.
	//
	// Returns:
	// - Chain: the retrieved chain instance, or nil if not registered.
	Get(chainID uint64) Chain

	// Remove removes a chain from the registry by its chain ID.
	//
	// Parameters:
	// - chainID: the unique identifier for the chain to remove.
	Remove(chainID uint64)
}

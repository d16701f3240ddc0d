package transfer

import (
	"context"
	"math/big"
	"time"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/config"
	"github.com/relaymesh/gasless-lib/events"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Orchestrator is the facade coordinating the gasless transfer flow:
// quote, prepare, sign and execute, with an event emitted at each
// transition. Chains are created lazily through the registry the first
// time a chain id is used.
type Orchestrator struct {
	resolver   *config.Resolver
	registry   types.ChainRegistry
	signer     types.Signer
	dispatcher *events.Dispatcher
	logger     *logrus.Logger
}

// NewOrchestrator creates a new transfer orchestrator.
//
// Parameters:
// - resolver: the chain configuration resolver.
// - registry: the chain registry used to create and look up chains.
// - signer: the signer authorizing transfers.
// - dispatcher: the event dispatcher; nil creates an internal one.
// - logger: the logger for logging purposes.
//
// Returns:
// - *Orchestrator: the new orchestrator instance.
func NewOrchestrator(
	resolver *config.Resolver,
	registry types.ChainRegistry,
	signer types.Signer,
	dispatcher *events.Dispatcher,
	logger *logrus.Logger,
) *Orchestrator {
	if dispatcher == nil {
		dispatcher = events.NewDispatcher(logger)
	}

	return &Orchestrator{
		resolver:   resolver,
		registry:   registry,
		signer:     signer,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Events returns the orchestrator's event dispatcher for listener registration.
func (o *Orchestrator) Events() *events.Dispatcher {
	return o.dispatcher
}

// Quote validates the request and retrieves a fee quote from the chain's relayer.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request to quote.
//
// Returns:
// - *types.TransferQuote: the quote.
// - error: an error if validation or the quote retrieval fails.
func (o *Orchestrator) Quote(ctx context.Context, req *types.TransferRequest) (*types.TransferQuote, error) {
	chain, err := o.chainFor(ctx, req.ChainID)
	if err != nil {
		return nil, err
	}
	return chain.GetQuote(ctx, req)
}

// Transfer runs the full quote, prepare, sign and execute flow for one
// transfer, emitting an event at each transition. The quote deadline is
// enforced client-side right before execution; a signer refusal aborts
// the flow with SIGNATURE_REJECTED and nothing is submitted.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request.
//
// Returns:
// - *types.TransferResult: the execution result.
// - error: an error if any stage fails.
func (o *Orchestrator) Transfer(ctx context.Context, req *types.TransferRequest) (*types.TransferResult, error) {
	if o.signer == nil {
		return nil, errors.New("signer not provided")
	}

	transferID := uuid.NewString()

	chain, err := o.chainFor(ctx, req.ChainID)
	if err != nil {
		o.emitFailed(transferID, req, nil, err)
		return nil, err
	}

	quote, err := chain.GetQuote(ctx, req)
	if err != nil {
		o.emitFailed(transferID, req, nil, err)
		return nil, err
	}
	o.emit(types.TransferEvent{
		TransferID: transferID,
		ChainID:    req.ChainID,
		Type:       types.EventQuoteReceived,
		Request:    req,
		Quote:      quote,
	})

	data, err := chain.PrepareSignature(ctx, req, quote)
	if err != nil {
		o.emitFailed(transferID, req, quote, err)
		return nil, err
	}
	o.emit(types.TransferEvent{
		TransferID: transferID,
		ChainID:    req.ChainID,
		Type:       types.EventSignaturePrepared,
		Request:    req,
		Quote:      quote,
	})

	signed, err := o.signer.SignTransfer(ctx, data)
	if err != nil {
		err = relayerrors.Wrap(err, relayerrors.CodeSignatureRejected, "signer refused transfer")
		o.emitFailed(transferID, req, quote, err)
		return nil, err
	}
	o.emit(types.TransferEvent{
		TransferID: transferID,
		ChainID:    req.ChainID,
		Type:       types.EventSigned,
		Request:    req,
		Quote:      quote,
	})

	if quote.Expired(time.Now()) {
		err := relayerrors.Newf(relayerrors.CodeQuoteExpired,
			"quote %s expired at %d", quote.QuoteID, quote.Deadline)
		o.emitFailed(transferID, req, quote, err)
		return nil, err
	}

	o.emit(types.TransferEvent{
		TransferID: transferID,
		ChainID:    req.ChainID,
		Type:       types.EventSubmitted,
		Request:    req,
		Quote:      quote,
	})

	result, err := chain.ExecuteTransfer(ctx, req, quote, signed)
	if err != nil {
		o.emitFailed(transferID, req, quote, err)
		return nil, err
	}

	o.emit(types.TransferEvent{
		TransferID: transferID,
		ChainID:    req.ChainID,
		Type:       types.EventCompleted,
		Request:    req,
		Quote:      quote,
		Result:     result,
	})

	o.logger.WithFields(logrus.Fields{
		"transferID": transferID,
		"chainID":    req.ChainID,
		"txHash":     result.TxHash,
	}).Info("Transfer completed")

	return result, nil
}

// BatchTransfer executes several transfers on one chain. Solana chains
// pack the batch into a single atomic transaction; EVM chains execute
// items sequentially and keep going past failed items, so the returned
// slice always holds one entry per request, in input order.
//
// Parameters:
// - ctx: the context for managing the request.
// - reqs: the transfer requests; all must target the same chain.
//
// Returns:
// - []types.BatchItemResult: one result per request.
// - error: an error if the batch as a whole could not be attempted.
func (o *Orchestrator) BatchTransfer(ctx context.Context, reqs []*types.TransferRequest) ([]types.BatchItemResult, error) {
	if o.signer == nil {
		return nil, errors.New("signer not provided")
	}
	if len(reqs) == 0 {
		return nil, errors.New("empty batch")
	}

	chainID := reqs[0].ChainID
	for _, req := range reqs {
		if req.ChainID != chainID {
			return nil, errors.New("batch requests must target a single chain")
		}
	}

	transferID := uuid.NewString()

	chain, err := o.chainFor(ctx, chainID)
	if err != nil {
		return nil, err
	}

	items := make([]*types.BatchItem, 0, len(reqs))
	for _, req := range reqs {
		quote, err := chain.GetQuote(ctx, req)
		if err != nil {
			o.emitFailed(transferID, req, nil, err)
			return nil, err
		}
		o.emit(types.TransferEvent{
			TransferID: transferID,
			ChainID:    chainID,
			Type:       types.EventQuoteReceived,
			Request:    req,
			Quote:      quote,
		})
		items = append(items, &types.BatchItem{Request: req, Quote: quote})
	}

	results, err := chain.ExecuteBatch(ctx, items, o.signer)
	if err != nil {
		for _, item := range items {
			o.emitFailed(transferID, item.Request, item.Quote, err)
		}
		return nil, err
	}

	for _, itemResult := range results {
		item := items[itemResult.Index]
		if itemResult.Err != nil {
			o.emitFailed(transferID, item.Request, item.Quote, itemResult.Err)
			continue
		}
		o.emit(types.TransferEvent{
			TransferID: transferID,
			ChainID:    chainID,
			Type:       types.EventCompleted,
			Request:    item.Request,
			Quote:      item.Quote,
			Result:     itemResult.Result,
		})
	}

	return results, nil
}

// Balance returns the balance of an address for a token on a chain.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the unique identifier of the chain.
// - address: the address to check balance for.
// - token: the token symbol or contract address; empty for native balance.
//
// Returns:
// - *big.Int: the balance in the token's smallest unit.
// - error: an error if the lookup fails.
func (o *Orchestrator) Balance(ctx context.Context, chainID uint64, address string, token string) (*big.Int, error) {
	chain, err := o.chainFor(ctx, chainID)
	if err != nil {
		return nil, err
	}

	tokenAddress := token
	if cfg, err := o.resolver.Resolve(ctx, chainID); err == nil && token != "" {
		if entry := cfg.Token(token); entry != nil {
			tokenAddress = entry.Address
		}
	}

	return chain.GetTokenBalance(ctx, address, tokenAddress)
}

// chainFor resolves the chain configuration and returns the registered
// chain instance, creating it on first use.
func (o *Orchestrator) chainFor(ctx context.Context, chainID uint64) (types.Chain, error) {
	if chain := o.registry.Get(chainID); chain != nil {
		return chain, nil
	}

	cfg, err := o.resolver.Resolve(ctx, chainID)
	if err != nil {
		return nil, err
	}

	if err := o.registry.Add(ctx, cfg); err != nil && !errors.Is(err, relayerrors.ErrChainExists) {
		return nil, err
	}

	chain := o.registry.Get(chainID)
	if chain == nil {
		return nil, relayerrors.ErrChainNotFound
	}
	return chain, nil
}

// emit broadcasts an event through the dispatcher.
func (o *Orchestrator) emit(event types.TransferEvent) {
	o.dispatcher.Emit(event)
}

// emitFailed broadcasts a FAILED event carrying the failure cause.
func (o *Orchestrator) emitFailed(transferID string, req *types.TransferRequest, quote *types.TransferQuote, err error) {
	o.dispatcher.Emit(types.TransferEvent{
		TransferID: transferID,
		ChainID:    req.ChainID,
		Type:       types.EventFailed,
		Request:    req,
		Quote:      quote,
		Err:        err,
	})
}

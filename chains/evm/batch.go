package evm

import (
	"context"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ExecuteBatch executes batch items sequentially. EVM relay contracts have
// no native multi-transfer authorization, so each item is prepared, signed
// and relayed on its own; a failed item does not stop the rest, its error
// lands in the per-item result instead.
//
// Parameters:
// - ctx: the context for managing the request.
// - items: the quoted batch items to execute.
// - signer: the signer used to authorize the items.
//
// Returns:
// - []types.BatchItemResult: one result per item, in input order.
// - error: an error if the signer is missing or the context is cancelled.
func (e *evm) ExecuteBatch(ctx context.Context, items []*types.BatchItem, signer types.Signer) ([]types.BatchItemResult, error) {
	if signer == nil {
		return nil, errors.New("signer not provided")
	}

	results := make([]types.BatchItemResult, 0, len(items))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, "batch cancelled")
		}

		result, err := e.executeBatchItem(ctx, item, signer)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"chain":   e.config.Name,
				"item":    i,
				"quoteID": item.Quote.QuoteID,
				"error":   err,
			}).Warn("Batch item failed, continuing with remaining items")
		}

		results = append(results, types.BatchItemResult{Index: i, Result: result, Err: err})
	}

	return results, nil
}

// executeBatchItem runs the prepare/sign/execute flow for one batch item.
func (e *evm) executeBatchItem(ctx context.Context, item *types.BatchItem, signer types.Signer) (*types.TransferResult, error) {
	data, err := e.PrepareSignature(ctx, item.Request, item.Quote)
	if err != nil {
		return nil, err
	}

	signed, err := signer.SignTransfer(ctx, data)
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeSignatureRejected, "signer refused batch item")
	}

	return e.ExecuteTransfer(ctx, item.Request, item.Quote, signed)
}

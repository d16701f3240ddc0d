package solana

import (
	"context"
	"encoding/base64"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	bin "github.com/gagliardetto/binary"
	sol "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// ExecuteBatch executes batch items atomically: the relayer packs every
// transfer into a single transaction, the sender signs once, and the whole
// batch lands or fails together. Per-item results therefore all carry the
// same transaction signature.
//
// Parameters:
// - ctx: the context for managing the request.
// - items: the quoted batch items to execute.
// - signer: the signer used to authorize the batch.
//
// Returns:
// - []types.BatchItemResult: one result per item, in input order.
// - error: an error if any stage of the atomic flow fails.
func (s *solana) ExecuteBatch(ctx context.Context, items []*types.BatchItem, signer types.Signer) ([]types.BatchItemResult, error) {
	if signer == nil {
		return nil, errors.New("signer not provided")
	}
	if len(items) == 0 {
		return nil, errors.New("empty batch")
	}

	transfers := make([]relayer.TransferParams, 0, len(items))
	quoteIDs := make([]string, 0, len(items))
	tokens := make([]*types.TokenConfig, 0, len(items))

	for _, item := range items {
		token, err := s.resolveToken(item.Request.Token)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, relayer.TransferParams{
			Sender:    item.Request.Sender,
			Recipient: item.Request.Recipient,
			Token:     token.Address,
			Amount:    item.Request.Amount,
		})
		quoteIDs = append(quoteIDs, item.Quote.QuoteID)
		tokens = append(tokens, token)
	}

	prepareResp, err := s.getRelayer().PrepareSignature(ctx, &relayer.PrepareRequest{
		ChainID:   s.config.ChainID,
		QuoteIDs:  quoteIDs,
		Transfers: transfers,
	})
	if err != nil {
		return nil, err
	}

	txBytes, err := base64.StdEncoding.DecodeString(prepareResp.Transaction)
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeRelayerError, "relayer returned malformed transaction")
	}

	tx, err := sol.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeRelayerError, "failed to decode relayer transaction")
	}

	// Every item must claim its own instruction in the packed transaction;
	// duplicate items need duplicate transfer instructions, otherwise the
	// relayer could under-deliver a batch of identical transfers.
	claimed := make(map[int]bool, len(items))
	for i, item := range items {
		idx, err := s.matchTransferInstruction(&tx.Message, item.Request, tokens[i], claimed)
		if err != nil {
			return nil, err
		}
		claimed[idx] = true
	}

	data := &types.SignatureData{
		Kind:        types.SignatureKindRawTransaction,
		ChainID:     s.config.ChainID,
		Transaction: txBytes,
	}

	signed, err := signer.SignTransfer(ctx, data)
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeSignatureRejected, "signer refused batch transaction")
	}

	// The whole batch rides on the first request; quote ids identify the items.
	result, err := s.ExecuteTransfer(ctx, items[0].Request, items[0].Quote, signed)
	if err != nil {
		return nil, err
	}

	results := make([]types.BatchItemResult, 0, len(items))
	for i := range items {
		results = append(results, types.BatchItemResult{Index: i, Result: result})
	}

	return results, nil
}

package evm

import (
	"context"
	"strings"
	"time"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ExecuteTransfer submits the signed EIP-712 authorization to the relayer.
// When the relayer response does not carry a block number and an RPC client
// is configured, the transaction receipt is polled briefly to fill in block
// number and gas used.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request.
// - quote: the quote the transfer is executed against.
// - signed: the signed payload produced by a Signer.
//
// Returns:
// - *types.TransferResult: the transaction hash and execution details.
// - error: an error if the submission fails.
func (e *evm) ExecuteTransfer(ctx context.Context, req *types.TransferRequest, quote *types.TransferQuote, signed *types.SignedPayload) (*types.TransferResult, error) {
	if signed == nil || len(signed.Signature) == 0 {
		return nil, relayerrors.New(relayerrors.CodeSignatureRejected, "missing signature")
	}

	token, err := e.resolveToken(req.Token)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := e.getRelayer().RelayTransfer(ctx, &relayer.RelayRequest{
		ChainID:   e.config.ChainID,
		QuoteID:   quote.QuoteID,
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Token:     token.Address,
		Amount:    req.Amount,
		Signature: hexutil.Encode(signed.Signature),
	})
	if err != nil {
		return nil, err
	}

	result := &types.TransferResult{
		TxHash:        resp.TxHash,
		BlockNumber:   resp.BlockNumber,
		GasUsed:       resp.GasUsed,
		ExplorerURL:   resp.ExplorerURL,
		ExecutionTime: time.Since(start),
	}

	if result.ExplorerURL == "" {
		result.ExplorerURL = explorerTxURL(e.config.ExplorerUrl, resp.TxHash)
	}

	if result.BlockNumber == 0 {
		e.fillReceipt(ctx, result)
		result.ExecutionTime = time.Since(start)
	}

	return result, nil
}

// fillReceipt polls for the transaction receipt and fills block number and
// gas used. Best effort: failures only log, the relayed transfer already
// succeeded from the caller's point of view.
func (e *evm) fillReceipt(ctx context.Context, result *types.TransferResult) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil || result.TxHash == "" {
		return
	}

	deadline := time.Now().Add(receiptWaitTimeout)
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	txHash := common.HexToHash(result.TxHash)

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			receipt, err := client.TransactionReceipt(ctx, txHash)
			if err != nil {
				if errors.Is(err, ethereum.NotFound) && time.Now().Before(deadline) {
					continue
				}
				e.logger.WithFields(logrus.Fields{
					"chain":  e.config.Name,
					"txHash": result.TxHash,
					"error":  err,
				}).Warn("Failed to fetch transaction receipt")
				return
			}

			result.BlockNumber = receipt.BlockNumber.Uint64()
			result.GasUsed = receipt.GasUsed
			return
		}
	}
}

// explorerTxURL builds a block explorer transaction link.
func explorerTxURL(explorerURL, txHash string) string {
	if explorerURL == "" || txHash == "" {
		return ""
	}
	return strings.TrimRight(explorerURL, "/") + "/tx/" + txHash
}

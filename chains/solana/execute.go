package solana

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	sol "github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const (
	// confirmWaitTimeout bounds the post-relay confirmation lookup.
	confirmWaitTimeout = 15 * time.Second
	// confirmPollInterval is the delay between signature status polls.
	confirmPollInterval = time.Second
)

// ExecuteTransfer submits the user-signed transaction to the relayer, which
// countersigns as fee payer and broadcasts it. When the relayer response
// does not carry a slot and an RPC client is configured, the signature
// status is polled briefly to fill in the landed slot.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request.
// - quote: the quote the transfer is executed against.
// - signed: the signed payload produced by a Signer.
//
// Returns:
// - *types.TransferResult: the transaction signature and execution details.
// - error: an error if the submission fails.
func (s *solana) ExecuteTransfer(ctx context.Context, req *types.TransferRequest, quote *types.TransferQuote, signed *types.SignedPayload) (*types.TransferResult, error) {
	if signed == nil || len(signed.Signature) == 0 || signed.Data == nil {
		return nil, relayerrors.New(relayerrors.CodeSignatureRejected, "missing signature")
	}

	start := time.Now()

	resp, err := s.getRelayer().RelayTransfer(ctx, &relayer.RelayRequest{
		ChainID:     s.config.ChainID,
		QuoteID:     quote.QuoteID,
		Sender:      req.Sender,
		Recipient:   req.Recipient,
		Token:       req.Token,
		Amount:      req.Amount,
		Signature:   base64.StdEncoding.EncodeToString(signed.Signature),
		Transaction: base64.StdEncoding.EncodeToString(signed.Data.Transaction),
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
		result.ExplorerURL = explorerTxURL(s.config.ExplorerUrl, resp.TxHash)
	}

	if result.BlockNumber == 0 {
		s.fillConfirmation(ctx, result)
		result.ExecutionTime = time.Since(start)
	}

	return result, nil
}

// fillConfirmation polls the signature status and fills in the landed slot.
// Best effort: failures only log, the relayed transfer already succeeded
// from the caller's point of view.
func (s *solana) fillConfirmation(ctx context.Context, result *types.TransferResult) {
	s.clientMutex.RLock()
	client := s.client
	s.clientMutex.RUnlock()

	if client == nil || result.TxHash == "" {
		return
	}

	sig, err := sol.SignatureFromBase58(result.TxHash)
	if err != nil {
		return
	}

	deadline := time.Now().Add(confirmWaitTimeout)
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			statuses, err := client.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"chain":     s.config.Name,
					"signature": result.TxHash,
					"error":     err,
				}).Warn("Failed to fetch signature status")
				return
			}

			if len(statuses.Value) > 0 && statuses.Value[0] != nil {
				result.BlockNumber = statuses.Value[0].Slot
				return
			}

			if time.Now().After(deadline) {
				return
			}
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

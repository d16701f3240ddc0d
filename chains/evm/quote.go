package evm

import (
	"context"
	"math/big"
	"time"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/sirupsen/logrus"
)

// GetQuote retrieves a fee quote for the given transfer request from the
// chain's relayer. When an RPC client is configured, the sender balance is
// checked against the quoted total before the quote is returned.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request to quote.
//
// Returns:
// - *types.TransferQuote: the quote with relayer fee and totals.
// - error: an error if validation, the relayer call or the balance check fails.
func (e *evm) GetQuote(ctx context.Context, req *types.TransferRequest) (*types.TransferQuote, error) {
	if !req.ValidAmount() {
		return nil, relayerrors.Newf(relayerrors.CodeInvalidAmount,
			"amount %q is not a positive integer string", req.Amount)
	}
	if err := e.ValidateAddress(req.Sender); err != nil {
		return nil, err
	}
	if err := e.ValidateAddress(req.Recipient); err != nil {
		return nil, err
	}

	token, err := e.resolveToken(req.Token)
	if err != nil {
		return nil, err
	}

	resp, err := e.getRelayer().Quote(ctx, &relayer.QuoteRequest{
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Token:     token.Address,
		Amount:    req.Amount,
		ChainID:   e.config.ChainID,
	})
	if err != nil {
		return nil, err
	}

	quote := &types.TransferQuote{
		QuoteID:         resp.QuoteID,
		Amount:          resp.Amount,
		Fee:             resp.Fee,
		Total:           resp.Total,
		FeePercent:      resp.FeePercent,
		ContractAddress: resp.ContractAddress,
		Nonce:           resp.Nonce,
		Deadline:        resp.Deadline,
		RequestedAt:     time.Now(),
	}

	if err := e.checkSenderBalance(ctx, req.Sender, token.Address, quote); err != nil {
		return nil, err
	}

	return quote, nil
}

// checkSenderBalance verifies the sender holds at least the quoted total.
// RPC failures only log a warning so a flaky node cannot block quoting.
func (e *evm) checkSenderBalance(ctx context.Context, sender, tokenAddress string, quote *types.TransferQuote) error {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil
	}

	required, ok := new(big.Int).SetString(quote.Total, 10)
	if !ok {
		required, ok = new(big.Int).SetString(quote.Amount, 10)
		if !ok {
			return nil
		}
	}

	balance, err := e.GetTokenBalance(ctx, sender, tokenAddress)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"chain":  e.config.Name,
			"sender": sender,
			"error":  err,
		}).Warn("Failed to check sender balance, skipping precheck")
		return nil
	}

	if balance.Cmp(required) < 0 {
		return relayerrors.Newf(relayerrors.CodeInsufficientBalance,
			"balance %s is below quoted total %s", balance.String(), required.String())
	}

	return nil
}

package evm

import (
	"context"
	"math/big"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

const (
	// typedDataDomainName is the EIP-712 domain name the transfer contracts use.
	typedDataDomainName = "GaslessTransfer"
	// typedDataDomainVersion is the EIP-712 domain version.
	typedDataDomainVersion = "1"
	// transferPrimaryType is the EIP-712 primary type of a transfer authorization.
	transferPrimaryType = "Transfer"
)

// PrepareSignature builds the EIP-712 typed-data payload the sender signs
// to authorize a gasless transfer. The meta-transaction nonce comes from the
// quote when the relayer assigned one, otherwise from the relayer /nonce
// endpoint.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request.
// - quote: the quote the transfer is executed against.
//
// Returns:
// - *types.SignatureData: the typed-data payload.
// - error: an error if the preparation fails.
func (e *evm) PrepareSignature(ctx context.Context, req *types.TransferRequest, quote *types.TransferQuote) (*types.SignatureData, error) {
	token, err := e.resolveToken(req.Token)
	if err != nil {
		return nil, err
	}

	if quote.ContractAddress == "" {
		return nil, relayerrors.New(relayerrors.CodeRelayerError, "quote carries no contract address")
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		return nil, relayerrors.Newf(relayerrors.CodeInvalidAmount, "amount %q is not an integer", req.Amount)
	}

	fee, ok := new(big.Int).SetString(quote.Fee, 10)
	if !ok {
		return nil, errors.Errorf("quote fee %q is not an integer", quote.Fee)
	}

	var nonce uint64
	if quote.Nonce != nil {
		nonce = *quote.Nonce
	} else {
		nonceResp, err := e.getRelayer().Nonce(ctx, req.Sender)
		if err != nil {
			return nil, err
		}
		nonce = nonceResp.Nonce
	}

	typedData := &apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			transferPrimaryType: []apitypes.Type{
				{Name: "sender", Type: "address"},
				{Name: "recipient", Type: "address"},
				{Name: "token", Type: "address"},
				{Name: "amount", Type: "uint256"},
				{Name: "fee", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
			},
		},
		PrimaryType: transferPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              typedDataDomainName,
			Version:           typedDataDomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(e.config.ChainID)),
			VerifyingContract: quote.ContractAddress,
		},
		Message: apitypes.TypedDataMessage{
			"sender":    req.Sender,
			"recipient": req.Recipient,
			"token":     token.Address,
			"amount":    (*math.HexOrDecimal256)(amount),
			"fee":       (*math.HexOrDecimal256)(fee),
			"nonce":     (*math.HexOrDecimal256)(new(big.Int).SetUint64(nonce)),
			"deadline":  (*math.HexOrDecimal256)(big.NewInt(quote.Deadline)),
		},
	}

	// Reject malformed payloads before they ever reach a signer.
	if _, _, err := apitypes.TypedDataAndHash(*typedData); err != nil {
		return nil, errors.Wrap(err, "failed to hash typed data")
	}

	return &types.SignatureData{
		Kind:      types.SignatureKindTypedData,
		ChainID:   e.config.ChainID,
		TypedData: typedData,
		Nonce:     nonce,
	}, nil
}

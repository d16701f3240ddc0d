package signer

import (
	"context"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	bin "github.com/gagliardetto/binary"
	sol "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// TransferSigner signs relayer-built Solana transactions with a local
// Ed25519 key. It only accepts raw-transaction payloads.
type TransferSigner struct {
	key sol.PrivateKey
}

// NewTransferSigner creates a transfer signer from a base58-encoded private key.
//
// Parameters:
// - privateKeyBase58: the base58-encoded Ed25519 private key.
//
// Returns:
// - *TransferSigner: the new transfer signer instance.
// - error: an error if the private key cannot be parsed.
func NewTransferSigner(privateKeyBase58 string) (*TransferSigner, error) {
	key, err := sol.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	return &TransferSigner{key: key}, nil
}

// Address returns the signer's base58 public key.
func (t *TransferSigner) Address() string {
	return t.key.PublicKey().String()
}

// SignTransfer signs the message of a serialized unsigned transaction.
//
// Parameters:
// - ctx: the context for managing the request.
// - data: the payload to sign.
//
// Returns:
// - *types.SignedPayload: the Ed25519 signature over the transaction message.
// - error: a SIGNATURE_REJECTED error for unsupported payload kinds or signing failures.
func (t *TransferSigner) SignTransfer(ctx context.Context, data *types.SignatureData) (*types.SignedPayload, error) {
	if data == nil || data.Kind != types.SignatureKindRawTransaction || len(data.Transaction) == 0 {
		return nil, relayerrors.New(relayerrors.CodeSignatureRejected, "payload is not a raw transaction")
	}

	tx, err := sol.TransactionFromDecoder(bin.NewBinDecoder(data.Transaction))
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeSignatureRejected, "failed to decode transaction")
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeSignatureRejected, "failed to serialize transaction message")
	}

	signature, err := t.key.Sign(message)
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeSignatureRejected, "failed to sign transaction")
	}

	return &types.SignedPayload{
		Data:          data,
		Signature:     signature[:],
		SignerAddress: t.Address(),
	}, nil
}

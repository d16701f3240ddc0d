package types

import (
	"context"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// SignatureKind identifies the shape of a signable payload.
type SignatureKind string

const (
	// SignatureKindTypedData is an EIP-712 typed-data payload signed with ECDSA.
	SignatureKindTypedData SignatureKind = "TYPED_DATA"
	// SignatureKindRawTransaction is an opaque serialized transaction signed with Ed25519.
	SignatureKindRawTransaction SignatureKind = "RAW_TRANSACTION"
)

// SignatureData represents the ecosystem-specific payload a sender signs
// to authorize a gasless transfer.
//
// Fields:
// - Kind: the payload shape.
// - ChainID: the chain the payload is bound to.
// - TypedData: the EIP-712 domain/types/message, set when Kind is TYPED_DATA.
// - Transaction: serialized unsigned transaction bytes, set when Kind is RAW_TRANSACTION.
// - Nonce: the meta-transaction nonce the payload embeds.
type SignatureData struct {
	Kind        SignatureKind
	ChainID     uint64
	TypedData   *apitypes.TypedData
	Transaction []byte
	Nonce       uint64
}

// SignedPayload wraps a signature together with the payload it covers.
type SignedPayload struct {
	Data          *SignatureData
	Signature     []byte
	SignerAddress string
}

// Signer authorizes transfers by signing prepared payloads.
// Implementations may hold keys locally or delegate to wallets,
// and must refuse payloads of a kind they do not support.
type Signer interface {
	// Address returns the signer's address in the chain's native encoding.
	Address() string

	// SignTransfer signs the prepared payload.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - data: the payload to sign.
	//
	// Returns:
	// - *SignedPayload: the signature over the payload.
	// - error: an error if the signer refuses or fails to sign.
	SignTransfer(ctx context.Context, data *SignatureData) (*SignedPayload, error)
}

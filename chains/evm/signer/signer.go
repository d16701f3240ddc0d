package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

// Signer is an interface that defines methods for signing data and typed data, and retrieving the signer's address.
type Signer interface {
	// Sign signs the given data and returns the signature.
	//
	// Parameters:
	// - data: the data to be signed.
	//
	// Returns:
	// - []byte: the signature.
	// - error: an error if the signing process fails.
	Sign(data []byte) ([]byte, error)

	// SignTypedData signs the EIP-712 typed data and returns the signature.
	//
	// Parameters:
	// - typedData: the typed data to be signed.
	//
	// Returns:
	// - []byte: the 65-byte r||s||v signature with v in {27, 28}.
	// - error: an error if the signing process fails.
	SignTypedData(typedData *apitypes.TypedData) ([]byte, error)

	// Address returns the signer's address.
	//
	// Returns:
	// - common.Address: the signer's address.
	Address() common.Address
}

// signer is a concrete implementation of the Signer interface.
type signer struct {
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
	address    common.Address
}

// NewSigner creates a new signer instance with the given private key.
//
// Parameters:
// - privateKey: the private key to be used for signing.
//
// Returns:
// - Signer: a new signer instance.
// - error: an error if the private key is not valid.
func NewSigner(privateKey *ecdsa.PrivateKey) (Signer, error) {
	pubKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("cannot assign public key to ECDSA")
	}

	return &signer{
		privateKey: privateKey,
		publicKey:  pubKeyECDSA,
		address:    crypto.PubkeyToAddress(*pubKeyECDSA),
	}, nil
}

// Sign signs the given data and returns the signature.
//
// Parameters:
// - data: the data to be signed.
//
// Returns:
// - []byte: the signature.
// - error: an error if the signing process fails.
func (s *signer) Sign(data []byte) ([]byte, error) {
	msg := crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data)))
	signature, err := crypto.Sign(msg, s.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign message")
	}
	signature[64] += 27 // Transform V from 0/1 to 27/28 according to the yellow paper

	return signature, nil
}

// SignTypedData signs the EIP-712 typed data and returns the signature.
//
// Parameters:
// - typedData: the typed data to be signed.
//
// Returns:
// - []byte: the 65-byte r||s||v signature with v in {27, 28}.
// - error: an error if the hashing or signing process fails.
func (s *signer) SignTypedData(typedData *apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(*typedData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash typed data")
	}

	signature, err := crypto.Sign(hash, s.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign typed data")
	}
	signature[64] += 27 // Transform V from 0/1 to 27/28 according to the yellow paper

	return signature, nil
}

// Address returns the signer's address.
//
// Returns:
// - common.Address: the signer's address.
func (s *signer) Address() common.Address {
	return s.address
}

// TransferSigner adapts an ECDSA signer to the transfer Signer interface.
// It only accepts EIP-712 typed-data payloads.
type TransferSigner struct {
	signer Signer
}

// NewTransferSigner creates a transfer signer from a hex-encoded private key.
//
// Parameters:
// - privateKeyHex: the hex-encoded ECDSA private key.
//
// Returns:
// - *TransferSigner: the new transfer signer instance.
// - error: an error if the private key cannot be parsed.
func NewTransferSigner(privateKeyHex string) (*TransferSigner, error) {
	privKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	s, err := NewSigner(privKey)
	if err != nil {
		return nil, err
	}

	return &TransferSigner{signer: s}, nil
}

// Address returns the signer's hex address.
func (t *TransferSigner) Address() string {
	return t.signer.Address().Hex()
}

// SignTransfer signs an EIP-712 typed-data payload.
//
// Parameters:
// - ctx: the context for managing the request.
// - data: the payload to sign.
//
// Returns:
// - *types.SignedPayload: the signature over the payload.
// - error: a SIGNATURE_REJECTED error for unsupported payload kinds or signing failures.
func (t *TransferSigner) SignTransfer(ctx context.Context, data *types.SignatureData) (*types.SignedPayload, error) {
	if data == nil || data.Kind != types.SignatureKindTypedData || data.TypedData == nil {
		return nil, relayerrors.New(relayerrors.CodeSignatureRejected, "payload is not EIP-712 typed data")
	}

	signature, err := t.signer.SignTypedData(data.TypedData)
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeSignatureRejected, "failed to sign typed data")
	}

	return &types.SignedPayload{
		Data:          data,
		Signature:     signature,
		SignerAddress: t.Address(),
	}, nil
}

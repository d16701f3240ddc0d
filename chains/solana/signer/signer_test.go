package signer

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	bin "github.com/gagliardetto/binary"
	sol "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildUnsignedTx(t *testing.T, sender, recipient sol.PublicKey) []byte {
	t.Helper()

	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data, 2)
	binary.LittleEndian.PutUint64(data[4:], 1_000_000)

	tx := &sol.Transaction{
		Signatures: []sol.Signature{{}},
		Message: sol.Message{
			Header: sol.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys:     []sol.PublicKey{sender, recipient, sol.SystemProgramID},
			RecentBlockhash: sol.Hash{},
			Instructions: []sol.CompiledInstruction{
				{
					ProgramIDIndex: 2,
					Accounts:       []uint16{0, 1},
					Data:           sol.Base58(data),
				},
			},
		},
	}

	txBytes, err := tx.MarshalBinary()
	require.NoError(t, err)
	return txBytes
}

func TestSignTransferProducesVerifiableSignature(t *testing.T) {
	wallet := sol.NewWallet()

	transferSigner, err := NewTransferSigner(wallet.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey().String(), transferSigner.Address())

	txBytes := buildUnsignedTx(t, wallet.PublicKey(), sol.NewWallet().PublicKey())

	payload, err := transferSigner.SignTransfer(context.Background(), &types.SignatureData{
		Kind:        types.SignatureKindRawTransaction,
		ChainID:     101,
		Transaction: txBytes,
	})
	require.NoError(t, err)
	require.Len(t, payload.Signature, 64)
	assert.Equal(t, wallet.PublicKey().String(), payload.SignerAddress)

	// The signature must cover the transaction message bytes.
	tx, err := sol.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	require.NoError(t, err)
	message, err := tx.Message.MarshalBinary()
	require.NoError(t, err)

	pubKey := ed25519.PublicKey(wallet.PublicKey().Bytes())
	assert.True(t, ed25519.Verify(pubKey, message, payload.Signature))
}

func TestSignTransferRejectsNonRawPayloads(t *testing.T) {
	transferSigner, err := NewTransferSigner(sol.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	ctx := context.Background()

	_, err = transferSigner.SignTransfer(ctx, nil)
	assert.Equal(t, relayerrors.CodeSignatureRejected, relayerrors.CodeOf(err))

	_, err = transferSigner.SignTransfer(ctx, &types.SignatureData{Kind: types.SignatureKindTypedData})
	assert.Equal(t, relayerrors.CodeSignatureRejected, relayerrors.CodeOf(err))

	_, err = transferSigner.SignTransfer(ctx, &types.SignatureData{
		Kind:        types.SignatureKindRawTransaction,
		Transaction: []byte("garbage"),
	})
	assert.Equal(t, relayerrors.CodeSignatureRejected, relayerrors.CodeOf(err))
}

func TestNewTransferSignerRejectsBadKey(t *testing.T) {
	_, err := NewTransferSigner("not-base58!")
	assert.Error(t, err)
}

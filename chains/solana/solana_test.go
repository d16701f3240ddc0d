package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relaymesh/gasless-lib/chains/solana/utils"
	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	sol "github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func newTestSolana(t *testing.T, baseURL string) *solana {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	relayerClient, err := relayer.New(relayer.Config{
		BaseURL:    baseURL,
		Timeout:    time.Second,
		RetryDelay: time.Millisecond,
	}, logger)
	require.NoError(t, err)

	return &solana{
		config: &types.ChainConfig{
			Name:        "solana",
			ChainType:   types.SOLANA,
			ChainID:     101,
			ExplorerUrl: "https://solscan.io",
			Tokens: []types.TokenConfig{
				{Symbol: "SOL", Address: "", Decimals: 9},
				{Symbol: "USDC", Address: usdcMint, Decimals: 6},
			},
		},
		logger:  logger,
		relayer: relayerClient,
	}
}

// buildTx assembles a serialized unsigned transaction holding the given
// instructions, the way a relayer would return it.
func buildTx(t *testing.T, accountKeys []sol.PublicKey, instructions []sol.CompiledInstruction) []byte {
	t.Helper()

	tx := &sol.Transaction{
		Signatures: []sol.Signature{{}},
		Message: sol.Message{
			Header: sol.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys:     accountKeys,
			RecentBlockhash: sol.Hash{},
			Instructions:    instructions,
		},
	}

	txBytes, err := tx.MarshalBinary()
	require.NoError(t, err)
	return txBytes
}

// buildTransferTx is buildTx for the common single-instruction case.
func buildTransferTx(t *testing.T, accountKeys []sol.PublicKey, programIndex uint16, accounts []uint16, data []byte) []byte {
	t.Helper()

	return buildTx(t, accountKeys, []sol.CompiledInstruction{
		{
			ProgramIDIndex: programIndex,
			Accounts:       accounts,
			Data:           sol.Base58(data),
		},
	})
}

func systemTransferData(lamports uint64) []byte {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data, 2)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	return data
}

func tokenTransferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

func TestValidateAddress(t *testing.T) {
	s := newTestSolana(t, "https://relay.example.com/solana")

	assert.NoError(t, s.ValidateAddress(usdcMint))
	assert.NoError(t, s.ValidateAddress(sol.SystemProgramID.String()))

	err := s.ValidateAddress("0x2222222222222222222222222222222222222222")
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeInvalidAddress, relayerrors.CodeOf(err))

	assert.Error(t, s.ValidateAddress(""))
}

func TestResolveToken(t *testing.T) {
	s := newTestSolana(t, "https://relay.example.com/solana")

	native, err := s.resolveToken("SOL")
	require.NoError(t, err)
	assert.Empty(t, native.Address)

	byMint, err := s.resolveToken(usdcMint)
	require.NoError(t, err)
	assert.Equal(t, "USDC", byMint.Symbol)

	// Any valid mint outside the static list is accepted.
	unlisted := sol.NewWallet().PublicKey().String()
	token, err := s.resolveToken(unlisted)
	require.NoError(t, err)
	assert.Equal(t, unlisted, token.Address)

	_, err = s.resolveToken("BONK")
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeUnsupportedToken, relayerrors.CodeOf(err))
}

func TestGetQuote(t *testing.T) {
	sender := sol.NewWallet().PublicKey().String()
	recipient := sol.NewWallet().PublicKey().String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)

		var req relayer.QuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, usdcMint, req.Token)
		assert.Equal(t, uint64(101), req.ChainID)

		json.NewEncoder(w).Encode(relayer.QuoteResponse{
			QuoteID: "q-1",
			Amount:  req.Amount,
			Fee:     "5000",
			Total:   "1005000",
		})
	}))
	defer server.Close()

	s := newTestSolana(t, server.URL)

	quote, err := s.GetQuote(context.Background(), &types.TransferRequest{
		Sender:    sender,
		Recipient: recipient,
		Token:     "USDC",
		Amount:    "1000000",
		ChainID:   101,
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", quote.QuoteID)
}

func TestValidateUnsignedTransactionNative(t *testing.T) {
	s := newTestSolana(t, "https://relay.example.com/solana")

	feePayer := sol.NewWallet().PublicKey()
	sender := sol.NewWallet().PublicKey()
	recipient := sol.NewWallet().PublicKey()

	txBytes := buildTransferTx(t,
		[]sol.PublicKey{feePayer, sender, recipient, sol.SystemProgramID},
		3, []uint16{1, 2}, systemTransferData(1_000_000))

	req := &types.TransferRequest{
		Sender:    sender.String(),
		Recipient: recipient.String(),
		Token:     "SOL",
		Amount:    "1000000",
	}

	assert.NoError(t, s.validateUnsignedTransaction(txBytes, req, &types.TokenConfig{Symbol: "SOL"}))

	// A transaction moving a different amount must be rejected.
	wrongAmount := buildTransferTx(t,
		[]sol.PublicKey{feePayer, sender, recipient, sol.SystemProgramID},
		3, []uint16{1, 2}, systemTransferData(999))

	err := s.validateUnsignedTransaction(wrongAmount, req, &types.TokenConfig{Symbol: "SOL"})
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeRelayerError, relayerrors.CodeOf(err))

	// As must one paying somebody else.
	other := sol.NewWallet().PublicKey()
	wrongDest := buildTransferTx(t,
		[]sol.PublicKey{feePayer, sender, other, sol.SystemProgramID},
		3, []uint16{1, 2}, systemTransferData(1_000_000))

	err = s.validateUnsignedTransaction(wrongDest, req, &types.TokenConfig{Symbol: "SOL"})
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeRelayerError, relayerrors.CodeOf(err))
}

func TestValidateUnsignedTransactionToken(t *testing.T) {
	s := newTestSolana(t, "https://relay.example.com/solana")

	mint := sol.MustPublicKeyFromBase58(usdcMint)
	feePayer := sol.NewWallet().PublicKey()
	sender := sol.NewWallet().PublicKey()
	recipient := sol.NewWallet().PublicKey()
	senderATA := sol.NewWallet().PublicKey()

	recipientATA, err := utils.GetAssociatedTokenAddress(mint, recipient)
	require.NoError(t, err)

	txBytes := buildTransferTx(t,
		[]sol.PublicKey{feePayer, senderATA, recipientATA, sender, sol.TokenProgramID},
		4, []uint16{1, 2, 3}, tokenTransferData(1_000_000))

	req := &types.TransferRequest{
		Sender:    sender.String(),
		Recipient: recipient.String(),
		Token:     "USDC",
		Amount:    "1000000",
	}
	token := &types.TokenConfig{Symbol: "USDC", Address: usdcMint, Decimals: 6}

	assert.NoError(t, s.validateUnsignedTransaction(txBytes, req, token))

	// Paying into a random token account must be rejected.
	wrongDest := buildTransferTx(t,
		[]sol.PublicKey{feePayer, senderATA, sol.NewWallet().PublicKey(), sender, sol.TokenProgramID},
		4, []uint16{1, 2, 3}, tokenTransferData(1_000_000))

	err = s.validateUnsignedTransaction(wrongDest, req, token)
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeRelayerError, relayerrors.CodeOf(err))
}

func TestValidateUnsignedTransactionRejectsGarbage(t *testing.T) {
	s := newTestSolana(t, "https://relay.example.com/solana")

	err := s.validateUnsignedTransaction([]byte("garbage"), &types.TransferRequest{
		Sender:    sol.NewWallet().PublicKey().String(),
		Recipient: sol.NewWallet().PublicKey().String(),
		Amount:    "1",
	}, &types.TokenConfig{})

	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeRelayerError, relayerrors.CodeOf(err))
}

func TestPrepareSignature(t *testing.T) {
	feePayer := sol.NewWallet().PublicKey()
	sender := sol.NewWallet().PublicKey()
	recipient := sol.NewWallet().PublicKey()

	var txBytes []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/prepare-signature", r.URL.Path)

		var req relayer.PrepareRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Transfers, 1)
		assert.Equal(t, "q-1", req.QuoteID)

		json.NewEncoder(w).Encode(relayer.PrepareResponse{
			Transaction: base64.StdEncoding.EncodeToString(txBytes),
		})
	}))
	defer server.Close()

	s := newTestSolana(t, server.URL)

	txBytes = buildTransferTx(t,
		[]sol.PublicKey{feePayer, sender, recipient, sol.SystemProgramID},
		3, []uint16{1, 2}, systemTransferData(1_000_000))

	data, err := s.PrepareSignature(context.Background(), &types.TransferRequest{
		Sender:    sender.String(),
		Recipient: recipient.String(),
		Token:     "SOL",
		Amount:    "1000000",
	}, &types.TransferQuote{QuoteID: "q-1"})
	require.NoError(t, err)
	assert.Equal(t, types.SignatureKindRawTransaction, data.Kind)
	assert.Equal(t, uint64(101), data.ChainID)
	assert.Equal(t, txBytes, data.Transaction)
}

func TestPrepareSignatureRejectsTamperedTransaction(t *testing.T) {
	feePayer := sol.NewWallet().PublicKey()
	sender := sol.NewWallet().PublicKey()
	recipient := sol.NewWallet().PublicKey()
	attacker := sol.NewWallet().PublicKey()

	// Relayer pays the attacker instead of the requested recipient.
	txBytes := buildTransferTx(t,
		[]sol.PublicKey{feePayer, sender, attacker, sol.SystemProgramID},
		3, []uint16{1, 2}, systemTransferData(1_000_000))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(relayer.PrepareResponse{
			Transaction: base64.StdEncoding.EncodeToString(txBytes),
		})
	}))
	defer server.Close()

	s := newTestSolana(t, server.URL)

	_, err := s.PrepareSignature(context.Background(), &types.TransferRequest{
		Sender:    sender.String(),
		Recipient: recipient.String(),
		Token:     "SOL",
		Amount:    "1000000",
	}, &types.TransferQuote{QuoteID: "q-1"})

	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeRelayerError, relayerrors.CodeOf(err))
}

func TestExecuteTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/relay-transfer", r.URL.Path)

		var req relayer.RelayRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Signature)
		assert.NotEmpty(t, req.Transaction)

		json.NewEncoder(w).Encode(relayer.RelayResponse{TxHash: "5igsig", BlockNumber: 123})
	}))
	defer server.Close()

	s := newTestSolana(t, server.URL)

	result, err := s.ExecuteTransfer(context.Background(),
		&types.TransferRequest{Token: "SOL", Amount: "1000000"},
		&types.TransferQuote{QuoteID: "q-1"},
		&types.SignedPayload{
			Data:      &types.SignatureData{Kind: types.SignatureKindRawTransaction, Transaction: []byte{0x01}},
			Signature: []byte{0x02},
		})
	require.NoError(t, err)
	assert.Equal(t, "5igsig", result.TxHash)
	assert.Equal(t, uint64(123), result.BlockNumber)
	assert.Equal(t, "https://solscan.io/tx/5igsig", result.ExplorerURL)
}

func TestExecuteTransferRequiresSignature(t *testing.T) {
	s := newTestSolana(t, "https://relay.example.com/solana")

	_, err := s.ExecuteTransfer(context.Background(), &types.TransferRequest{}, &types.TransferQuote{}, nil)
	assert.Equal(t, relayerrors.CodeSignatureRejected, relayerrors.CodeOf(err))
}

type countingSigner struct {
	address string
	calls   int
}

func (s *countingSigner) Address() string { return s.address }

func (s *countingSigner) SignTransfer(ctx context.Context, data *types.SignatureData) (*types.SignedPayload, error) {
	s.calls++
	return &types.SignedPayload{Data: data, Signature: []byte{0x02}, SignerAddress: s.address}, nil
}

// batchRelayServer serves /prepare-signature with the given transaction and
// answers /relay-transfer; relayed reports whether a relay call was made.
func batchRelayServer(t *testing.T, txBytes []byte, relayed *bool) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/prepare-signature":
			json.NewEncoder(w).Encode(relayer.PrepareResponse{
				Transaction: base64.StdEncoding.EncodeToString(txBytes),
			})
		case "/relay-transfer":
			*relayed = true
			json.NewEncoder(w).Encode(relayer.RelayResponse{TxHash: "5igsig"})
		default:
			t.Errorf("unexpected relayer call %s", r.URL.Path)
		}
	}))
}

func TestExecuteBatchRejectsDuplicateItemsWithSingleInstruction(t *testing.T) {
	feePayer := sol.NewWallet().PublicKey()
	sender := sol.NewWallet().PublicKey()
	recipient := sol.NewWallet().PublicKey()

	// The relayer packs a single transfer for a batch of two identical items.
	txBytes := buildTransferTx(t,
		[]sol.PublicKey{feePayer, sender, recipient, sol.SystemProgramID},
		3, []uint16{1, 2}, systemTransferData(1_000_000))

	var relayed bool
	server := batchRelayServer(t, txBytes, &relayed)
	defer server.Close()

	s := newTestSolana(t, server.URL)

	req := &types.TransferRequest{
		Sender:    sender.String(),
		Recipient: recipient.String(),
		Token:     "SOL",
		Amount:    "1000000",
	}
	items := []*types.BatchItem{
		{Request: req, Quote: &types.TransferQuote{QuoteID: "q-1"}},
		{Request: req, Quote: &types.TransferQuote{QuoteID: "q-2"}},
	}

	signer := &countingSigner{address: sender.String()}

	_, err := s.ExecuteBatch(context.Background(), items, signer)
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeRelayerError, relayerrors.CodeOf(err))
	assert.Zero(t, signer.calls, "an under-delivering batch must never reach the signer")
	assert.False(t, relayed)
}

func TestExecuteBatchAcceptsDuplicateItemsWithMatchingInstructions(t *testing.T) {
	feePayer := sol.NewWallet().PublicKey()
	sender := sol.NewWallet().PublicKey()
	recipient := sol.NewWallet().PublicKey()

	instruction := sol.CompiledInstruction{
		ProgramIDIndex: 3,
		Accounts:       []uint16{1, 2},
		Data:           sol.Base58(systemTransferData(1_000_000)),
	}
	txBytes := buildTx(t,
		[]sol.PublicKey{feePayer, sender, recipient, sol.SystemProgramID},
		[]sol.CompiledInstruction{instruction, instruction})

	var relayed bool
	server := batchRelayServer(t, txBytes, &relayed)
	defer server.Close()

	s := newTestSolana(t, server.URL)

	req := &types.TransferRequest{
		Sender:    sender.String(),
		Recipient: recipient.String(),
		Token:     "SOL",
		Amount:    "1000000",
	}
	items := []*types.BatchItem{
		{Request: req, Quote: &types.TransferQuote{QuoteID: "q-1"}},
		{Request: req, Quote: &types.TransferQuote{QuoteID: "q-2"}},
	}

	signer := &countingSigner{address: sender.String()}

	results, err := s.ExecuteBatch(context.Background(), items, signer)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, signer.calls, "an atomic batch is signed once")
	assert.True(t, relayed)

	// All items share the atomic transaction's result.
	for i, result := range results {
		assert.Equal(t, i, result.Index)
		require.NotNil(t, result.Result)
		assert.Equal(t, "5igsig", result.Result.TxHash)
	}
}

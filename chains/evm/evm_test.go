package evm

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usdcAddress = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	sender      = "0x2222222222222222222222222222222222222222"
	recipient   = "0x3333333333333333333333333333333333333333"
	contract    = "0x1111111111111111111111111111111111111111"
)

func newTestEvm(t *testing.T, baseURL string) *evm {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	relayerClient, err := relayer.New(relayer.Config{
		BaseURL:    baseURL,
		Timeout:    time.Second,
		RetryDelay: time.Millisecond,
	}, logger)
	require.NoError(t, err)

	return &evm{
		config: &types.ChainConfig{
			Name:        "ethereum",
			ChainType:   types.EVM,
			ChainID:     1,
			ExplorerUrl: "https://etherscan.io",
			Tokens: []types.TokenConfig{
				{Symbol: "USDC", Address: usdcAddress, Decimals: 6},
			},
		},
		logger:  logger,
		relayer: relayerClient,
	}
}

func nonceOf(n uint64) *uint64 { return &n }

func TestValidateAddress(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")

	assert.NoError(t, e.ValidateAddress(sender))
	assert.NoError(t, e.ValidateAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"))

	err := e.ValidateAddress("not-an-address")
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeInvalidAddress, relayerrors.CodeOf(err))

	err = e.ValidateAddress("0x123")
	assert.Error(t, err)
}

func TestResolveToken(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")

	bySymbol, err := e.resolveToken("usdc")
	require.NoError(t, err)
	assert.Equal(t, usdcAddress, bySymbol.Address)
	assert.Equal(t, uint8(6), bySymbol.Decimals)

	byAddress, err := e.resolveToken(usdcAddress)
	require.NoError(t, err)
	assert.Equal(t, "USDC", byAddress.Symbol)

	// An address outside the static list is accepted; relayers may know more tokens.
	unlisted, err := e.resolveToken("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	require.NoError(t, err)
	assert.Equal(t, "0x6B175474E89094C44Da98b954EedeAC495271d0F", unlisted.Address)

	_, err = e.resolveToken("DAI")
	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeUnsupportedToken, relayerrors.CodeOf(err))
}

func TestGetQuoteValidation(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")
	ctx := context.Background()

	_, err := e.GetQuote(ctx, &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "USDC", Amount: "0",
	})
	assert.Equal(t, relayerrors.CodeInvalidAmount, relayerrors.CodeOf(err))

	_, err = e.GetQuote(ctx, &types.TransferRequest{
		Sender: "bogus", Recipient: recipient, Token: "USDC", Amount: "100",
	})
	assert.Equal(t, relayerrors.CodeInvalidAddress, relayerrors.CodeOf(err))

	_, err = e.GetQuote(ctx, &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "DAI", Amount: "100",
	})
	assert.Equal(t, relayerrors.CodeUnsupportedToken, relayerrors.CodeOf(err))
}

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)

		var req relayer.QuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, usdcAddress, req.Token, "symbols resolve to addresses before quoting")
		assert.Equal(t, uint64(1), req.ChainID)

		json.NewEncoder(w).Encode(relayer.QuoteResponse{
			QuoteID:         "q-1",
			Amount:          req.Amount,
			Fee:             "5000",
			Total:           "1005000",
			ContractAddress: contract,
			Nonce:           nonceOf(7),
		})
	}))
	defer server.Close()

	e := newTestEvm(t, server.URL)

	quote, err := e.GetQuote(context.Background(), &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "USDC", Amount: "1000000", ChainID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", quote.QuoteID)
	assert.Equal(t, "1005000", quote.Total)
	require.NotNil(t, quote.Nonce)
	assert.Equal(t, uint64(7), *quote.Nonce)
	assert.False(t, quote.RequestedAt.IsZero())
}

func TestPrepareSignatureBuildsTypedData(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")

	req := &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "USDC", Amount: "1000000", ChainID: 1,
	}
	quote := &types.TransferQuote{
		QuoteID:         "q-1",
		Fee:             "5000",
		ContractAddress: contract,
		Nonce:           nonceOf(7),
		Deadline:        1_900_000_000,
	}

	data, err := e.PrepareSignature(context.Background(), req, quote)
	require.NoError(t, err)
	assert.Equal(t, types.SignatureKindTypedData, data.Kind)
	assert.Equal(t, uint64(1), data.ChainID)
	assert.Equal(t, uint64(7), data.Nonce)

	typed := data.TypedData
	require.NotNil(t, typed)
	assert.Equal(t, "Transfer", typed.PrimaryType)
	assert.Equal(t, "GaslessTransfer", typed.Domain.Name)
	assert.Equal(t, "1", typed.Domain.Version)
	assert.Equal(t, contract, typed.Domain.VerifyingContract)
	assert.Equal(t, sender, typed.Message["sender"])
	assert.Equal(t, usdcAddress, typed.Message["token"])
	assert.Equal(t, 0, (*big.Int)(typed.Message["amount"].(*math.HexOrDecimal256)).Cmp(big.NewInt(1_000_000)))
	assert.Equal(t, 0, (*big.Int)(typed.Message["fee"].(*math.HexOrDecimal256)).Cmp(big.NewInt(5000)))

	// The payload must hash cleanly or no signer will accept it.
	_, _, err = apitypes.TypedDataAndHash(*typed)
	assert.NoError(t, err)
}

func TestPrepareSignatureFetchesNonce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/nonce", r.URL.Path)
		assert.Equal(t, sender, r.URL.Query().Get("address"))
		json.NewEncoder(w).Encode(relayer.NonceResponse{Address: sender, Nonce: 42})
	}))
	defer server.Close()

	e := newTestEvm(t, server.URL)

	quote := &types.TransferQuote{QuoteID: "q-1", Fee: "5000", ContractAddress: contract}
	data, err := e.PrepareSignature(context.Background(), &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "USDC", Amount: "1000000",
	}, quote)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), data.Nonce)
}

func TestPrepareSignatureKeepsAssignedZeroNonce(t *testing.T) {
	// Zero is a valid first meta-transaction nonce; a quote carrying it
	// must not trigger a nonce fetch.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected relayer call %s", r.URL.Path)
	}))
	defer server.Close()

	e := newTestEvm(t, server.URL)

	quote := &types.TransferQuote{QuoteID: "q-1", Fee: "5000", ContractAddress: contract, Nonce: nonceOf(0)}
	data, err := e.PrepareSignature(context.Background(), &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "USDC", Amount: "1000000",
	}, quote)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), data.Nonce)
}

func TestPrepareSignatureRequiresContractAddress(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")

	_, err := e.PrepareSignature(context.Background(), &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "USDC", Amount: "1000000",
	}, &types.TransferQuote{QuoteID: "q-1", Fee: "5000", Nonce: nonceOf(7)})

	require.Error(t, err)
	assert.Equal(t, relayerrors.CodeRelayerError, relayerrors.CodeOf(err))
}

func TestExecuteTransferRequiresSignature(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")

	_, err := e.ExecuteTransfer(context.Background(), &types.TransferRequest{Token: "USDC"},
		&types.TransferQuote{}, nil)
	assert.Equal(t, relayerrors.CodeSignatureRejected, relayerrors.CodeOf(err))

	_, err = e.ExecuteTransfer(context.Background(), &types.TransferRequest{Token: "USDC"},
		&types.TransferQuote{}, &types.SignedPayload{})
	assert.Equal(t, relayerrors.CodeSignatureRejected, relayerrors.CodeOf(err))
}

func TestExecuteTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/relay-transfer", r.URL.Path)

		var req relayer.RelayRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "q-1", req.QuoteID)
		assert.Equal(t, "0x01020304", req.Signature)

		json.NewEncoder(w).Encode(relayer.RelayResponse{TxHash: "0xabc"})
	}))
	defer server.Close()

	e := newTestEvm(t, server.URL)

	result, err := e.ExecuteTransfer(context.Background(),
		&types.TransferRequest{Sender: sender, Recipient: recipient, Token: "USDC", Amount: "1000000"},
		&types.TransferQuote{QuoteID: "q-1"},
		&types.SignedPayload{Signature: []byte{0x01, 0x02, 0x03, 0x04}})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", result.TxHash)
	assert.Equal(t, "https://etherscan.io/tx/0xabc", result.ExplorerURL)
	assert.Positive(t, result.ExecutionTime)
}

type countingSigner struct {
	failFirst bool
	calls     int
}

func (s *countingSigner) Address() string { return sender }

func (s *countingSigner) SignTransfer(ctx context.Context, data *types.SignatureData) (*types.SignedPayload, error) {
	s.calls++
	if s.failFirst && s.calls == 1 {
		return nil, errors.New("user declined")
	}
	return &types.SignedPayload{Data: data, Signature: []byte{0x01}, SignerAddress: sender}, nil
}

func TestExecuteBatchContinuesPastFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(relayer.RelayResponse{TxHash: "0xabc"})
	}))
	defer server.Close()

	e := newTestEvm(t, server.URL)

	quote := func(id string) *types.TransferQuote {
		return &types.TransferQuote{QuoteID: id, Fee: "5000", ContractAddress: contract, Nonce: nonceOf(7)}
	}
	req := &types.TransferRequest{
		Sender: sender, Recipient: recipient, Token: "USDC", Amount: "1000000",
	}

	items := []*types.BatchItem{
		{Request: req, Quote: quote("q-1")},
		{Request: req, Quote: quote("q-2")},
	}

	signer := &countingSigner{failFirst: true}

	results, err := e.ExecuteBatch(context.Background(), items, signer)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	assert.Equal(t, relayerrors.CodeSignatureRejected, relayerrors.CodeOf(results[0].Err))
	assert.Nil(t, results[0].Result)

	require.NoError(t, results[1].Err)
	assert.Equal(t, "0xabc", results[1].Result.TxHash)
}

func TestExecuteBatchRequiresSigner(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")

	_, err := e.ExecuteBatch(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestExecuteBatchStopsOnCancelledContext(t *testing.T) {
	e := newTestEvm(t, "https://relay.example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.ExecuteBatch(ctx, []*types.BatchItem{
		{Request: &types.TransferRequest{Token: "USDC"}, Quote: &types.TransferQuote{}},
	}, &countingSigner{})

	assert.Error(t, err)
	assert.Empty(t, results)
}

func TestExplorerTxURL(t *testing.T) {
	assert.Equal(t, "https://etherscan.io/tx/0xabc", explorerTxURL("https://etherscan.io", "0xabc"))
	assert.Equal(t, "https://etherscan.io/tx/0xabc", explorerTxURL("https://etherscan.io/", "0xabc"))
	assert.Equal(t, "", explorerTxURL("", "0xabc"))
	assert.Equal(t, "", explorerTxURL("https://etherscan.io", ""))
}

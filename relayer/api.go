package relayer

import (
	"encoding/json"
)

// HealthResponse is the relayer /health response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptime,omitempty"`
}

// Healthy reports whether the relayer declared itself operational.
func (h *HealthResponse) Healthy() bool {
	return h != nil && (h.Status == "ok" || h.Status == "healthy")
}

// TokenInfo describes a supported token as reported by the relayer.
type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}

// CurrencyInfo describes a chain's native currency as reported by the relayer.
type CurrencyInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// ChainInfo is one entry of the relayer /chains response. The relayer may
// report a cache TTL to bound how long clients keep the entry.
type ChainInfo struct {
	ChainID         uint64       `json:"chainId"`
	Name            string       `json:"name"`
	ChainType       string       `json:"chainType"`
	RpcUrl          string       `json:"rpcUrl,omitempty"`
	ExplorerUrl     string       `json:"explorerUrl,omitempty"`
	Tokens          []TokenInfo  `json:"tokens"`
	NativeCurrency  CurrencyInfo `json:"nativeCurrency"`
	CacheTTLSeconds int64        `json:"cacheTtlSeconds,omitempty"`
}

// NonceResponse is the relayer /nonce response for a sender address.
type NonceResponse struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
}

// QuoteRequest is the relayer /quote request body.
type QuoteRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Token     string `json:"token"`
	Amount    string `json:"amount"`
	ChainID   uint64 `json:"chainId"`
}

// QuoteResponse is the relayer /quote response body. Nonce is a pointer
// because zero is a valid first meta-transaction nonce: nil means the
// relayer left nonce assignment to the /nonce endpoint.
type QuoteResponse struct {
	QuoteID         string  `json:"quoteId"`
	Amount          string  `json:"amount"`
	Fee             string  `json:"fee"`
	Total           string  `json:"total"`
	FeePercent      float64 `json:"feePercent"`
	ContractAddress string  `json:"contractAddress"`
	Nonce           *uint64 `json:"nonce,omitempty"`
	Deadline        int64   `json:"deadline,omitempty"`
}

// TransferParams describes one transfer inside a prepare-signature request.
type TransferParams struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Token     string `json:"token"`
	Amount    string `json:"amount"`
}

// PrepareRequest is the relayer /prepare-signature request body.
// Solana relayers build the unsigned transaction server-side because they
// act as fee payer and own the recent blockhash; batches carry multiple
// transfers that land in a single transaction.
type PrepareRequest struct {
	ChainID   uint64           `json:"chainId"`
	QuoteID   string           `json:"quoteId"`
	QuoteIDs  []string         `json:"quoteIds,omitempty"`
	Transfers []TransferParams `json:"transfers"`
}

// PrepareResponse is the relayer /prepare-signature response body.
type PrepareResponse struct {
	// Transaction is the base64-encoded serialized unsigned transaction.
	Transaction string `json:"transaction"`
}

// RelayRequest is the relayer /relay-transfer request body.
// EVM transfers carry the hex-encoded EIP-712 signature; Solana transfers
// carry the base64 transaction plus the base64 Ed25519 signature over its message.
type RelayRequest struct {
	ChainID     uint64   `json:"chainId"`
	QuoteID     string   `json:"quoteId"`
	QuoteIDs    []string `json:"quoteIds,omitempty"`
	Sender      string   `json:"sender"`
	Recipient   string   `json:"recipient,omitempty"`
	Token       string   `json:"token,omitempty"`
	Amount      string   `json:"amount,omitempty"`
	Signature   string   `json:"signature"`
	Transaction string   `json:"transaction,omitempty"`
}

// RelayResponse is the relayer /relay-transfer response body.
type RelayResponse struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	GasUsed     uint64 `json:"gasUsed,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// ErrorResponse is the error body relayers return on non-2xx responses.
type ErrorResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

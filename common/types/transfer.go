package types

import (
	"time"
)

// TransferRequest represents a gasless transfer a user wants to perform.
//
// Fields:
// - Sender: the address authorizing the transfer.
// - Recipient: the address receiving the tokens.
// - Token: the token symbol or contract address.
// - Amount: string-encoded integer amount in the token's smallest unit.
// - ChainID: the unique identifier of the target chain.
type TransferRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Token     string `json:"token"`
	Amount    string `json:"amount"`
	ChainID   uint64 `json:"chainId"`
}

// ValidAmount reports whether the request amount is a non-empty
// all-digits string encoding a positive integer.
func (r *TransferRequest) ValidAmount() bool {
	if len(r.Amount) == 0 {
		return false
	}
	allZero := true
	for i := 0; i < len(r.Amount); i++ {
		if r.Amount[i] < '0' || r.Amount[i] > '9' {
			return false
		}
		if r.Amount[i] != '0' {
			allZero = false
		}
	}
	return !allZero
}

// TransferQuote represents a relayer fee quote for a transfer.
//
// Fields:
// - QuoteID: the relayer-assigned identifier for the quote.
// - Amount: the transfer amount echoed from the request.
// - Fee: the relayer fee in the token's smallest unit.
// - Total: amount plus fee.
// - FeePercent: the fee as a percentage of the amount.
// - ContractAddress: the transfer contract the authorization is bound to.
// - Nonce: the meta-transaction nonce assigned by the relayer, nil when the
//   relayer left the nonce to be fetched separately (zero is a valid nonce).
// - Deadline: unix seconds after which the quote is no longer valid, 0 if unbounded.
// - RequestedAt: when the quote was obtained.
type TransferQuote struct {
	QuoteID         string    `json:"quoteId"`
	Amount          string    `json:"amount"`
	Fee             string    `json:"fee"`
	Total           string    `json:"total"`
	FeePercent      float64   `json:"feePercent"`
	ContractAddress string    `json:"contractAddress"`
	Nonce           *uint64   `json:"nonce,omitempty"`
	Deadline        int64     `json:"deadline,omitempty"`
	RequestedAt     time.Time `json:"requestedAt"`
}

// Expired reports whether the quote deadline has passed.
// Quotes without a deadline never expire client-side.
func (q *TransferQuote) Expired(now time.Time) bool {
	return q.Deadline > 0 && now.Unix() >= q.Deadline
}

// TransferResult represents the outcome of an executed transfer.
//
// Fields:
// - TxHash: the hash of the relayed transaction.
// - BlockNumber: the block the transaction was included in, 0 if not yet known.
// - GasUsed: gas consumed by the transaction, 0 if not reported.
// - ExplorerURL: a link to the transaction on the chain's block explorer.
// - ExecutionTime: wall-clock duration of the execute step.
type TransferResult struct {
	TxHash        string        `json:"txHash"`
	BlockNumber   uint64        `json:"blockNumber,omitempty"`
	GasUsed       uint64        `json:"gasUsed,omitempty"`
	ExplorerURL   string        `json:"explorerUrl,omitempty"`
	ExecutionTime time.Duration `json:"executionTime"`
}

// BatchItem pairs a transfer request with the quote it executes against.
type BatchItem struct {
	Request *TransferRequest
	Quote   *TransferQuote
}

// BatchItemResult holds the per-item outcome of a batch transfer.
// On chains with sequential execution a batch continues past failed
// items, so some entries carry a Result and others an Err.
type BatchItemResult struct {
	Index  int
	Result *TransferResult
	Err    error
}

package types

import (
	"time"
)

// TransferEventType identifies a transfer lifecycle transition.
type TransferEventType string

const (
	// EventQuoteReceived is emitted after a quote is obtained from the relayer.
	EventQuoteReceived TransferEventType = "QUOTE_RECEIVED"
	// EventSignaturePrepared is emitted after the signable payload is built.
	EventSignaturePrepared TransferEventType = "SIGNATURE_PREPARED"
	// EventSigned is emitted after the signer has authorized the transfer.
	EventSigned TransferEventType = "SIGNED"
	// EventSubmitted is emitted just before the signed payload is handed to the relayer.
	EventSubmitted TransferEventType = "SUBMITTED"
	// EventCompleted is emitted when the relayer reports successful execution.
	EventCompleted TransferEventType = "COMPLETED"
	// EventFailed is emitted when any stage of the flow fails.
	EventFailed TransferEventType = "FAILED"
)

// TransferEvent represents a transfer-state transition.
//
// Fields:
// - TransferID: the client-assigned identifier for the transfer flow.
// - ChainID: the unique identifier for the chain the transfer targets.
// - Type: the lifecycle transition.
// - Request: the transfer request, always set.
// - Quote: the quote, set from QUOTE_RECEIVED onward.
// - Result: the execution result, set on COMPLETED.
// - Err: the failure cause, set on FAILED.
// - Timestamp: when the transition occurred.
type TransferEvent struct {
	TransferID string
	ChainID    uint64
	Type       TransferEventType
	Request    *TransferRequest
	Quote      *TransferQuote
	Result     *TransferResult
	Err        error
	Timestamp  time.Time
}

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransferRequestValidAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		valid  bool
	}{
		{"simple integer", "1000000", true},
		{"single digit", "1", true},
		{"leading zeros", "0001", true},
		{"empty", "", false},
		{"zero", "0", false},
		{"all zeros", "0000", false},
		{"negative", "-5", false},
		{"decimal", "1.5", false},
		{"hex", "0x10", false},
		{"whitespace", " 100", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &TransferRequest{Amount: tc.amount}
			assert.Equal(t, tc.valid, req.ValidAmount())
		})
	}
}

func TestTransferQuoteExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	quote := &TransferQuote{Deadline: now.Unix() + 60}
	assert.False(t, quote.Expired(now))
	assert.True(t, quote.Expired(now.Add(61*time.Second)))
	assert.True(t, quote.Expired(now.Add(60*time.Second)), "deadline itself counts as expired")

	unbounded := &TransferQuote{Deadline: 0}
	assert.False(t, unbounded.Expired(now))
	assert.False(t, unbounded.Expired(now.Add(24*time.Hour)))
}

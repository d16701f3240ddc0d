package models

import "time"

type Token struct {
	ID        int64
	ChainID   uint64
	Symbol    string
	Address   string
	Decimals  uint8
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

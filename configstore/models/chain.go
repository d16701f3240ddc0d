package models

import (
	"time"
)

type Chain struct {
	ID          int64
	ChainID     uint64
	Name        string
	Type        string
	RpcUrl      string
	RelayerUrl  string
	ExplorerUrl string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

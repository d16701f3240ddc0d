package configstore

import "github.com/pkg/errors"

var (
	ErrChainNotFound   = errors.New("chain not found")
	ErrInvalidChainID  = errors.New("invalid chain id")
	ErrDatabaseConnect = errors.New("failed to connect to database")
)

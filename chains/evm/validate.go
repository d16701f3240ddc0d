package evm

import (
	"strings"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
)

// ValidateAddress checks that the address is a well-formed hex address.
//
// Parameters:
// - address: the address to validate.
//
// Returns:
// - error: an INVALID_ADDRESS error if the address is not a hex address.
func (e *evm) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return relayerrors.Newf(relayerrors.CodeInvalidAddress, "invalid EVM address %q", address)
	}
	return nil
}

// resolveToken maps a token symbol or contract address to its config entry.
// An address not present in the chain's token list is still accepted,
// since relayers may support more tokens than the static list carries.
//
// Parameters:
// - token: the token symbol or contract address.
//
// Returns:
// - *types.TokenConfig: the resolved token.
// - error: an UNSUPPORTED_TOKEN error if the token cannot be resolved.
func (e *evm) resolveToken(token string) (*types.TokenConfig, error) {
	if common.IsHexAddress(token) {
		for i := range e.config.Tokens {
			if strings.EqualFold(e.config.Tokens[i].Address, token) {
				return &e.config.Tokens[i], nil
			}
		}
		return &types.TokenConfig{Address: common.HexToAddress(token).Hex()}, nil
	}

	for i := range e.config.Tokens {
		if strings.EqualFold(e.config.Tokens[i].Symbol, token) {
			return &e.config.Tokens[i], nil
		}
	}

	return nil, relayerrors.Newf(relayerrors.CodeUnsupportedToken,
		"token %q is not supported on chain %d", token, e.config.ChainID)
}

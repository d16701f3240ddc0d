package solana

import (
	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	sol "github.com/gagliardetto/solana-go"
)

// ValidateAddress checks that the address is a well-formed base58 public key.
//
// Parameters:
// - address: the address to validate.
//
// Returns:
// - error: an INVALID_ADDRESS error if the address is not a valid public key.
func (s *solana) ValidateAddress(address string) error {
	if _, err := sol.PublicKeyFromBase58(address); err != nil {
		return relayerrors.Newf(relayerrors.CodeInvalidAddress, "invalid Solana address %q", address)
	}
	return nil
}

// resolveToken maps a token symbol or mint address to its config entry.
// A valid mint address not present in the chain's token list is still
// accepted, since relayers may support more tokens than the static list.
//
// Parameters:
// - token: the token symbol or mint address.
//
// Returns:
// - *types.TokenConfig: the resolved token.
// - error: an UNSUPPORTED_TOKEN error if the token cannot be resolved.
func (s *solana) resolveToken(token string) (*types.TokenConfig, error) {
	for i := range s.config.Tokens {
		if s.config.Tokens[i].Symbol == token || s.config.Tokens[i].Address == token {
			return &s.config.Tokens[i], nil
		}
	}

	if _, err := sol.PublicKeyFromBase58(token); err == nil {
		return &types.TokenConfig{Address: token}, nil
	}

	return nil, relayerrors.Newf(relayerrors.CodeUnsupportedToken,
		"token %q is not supported on chain %d", token, s.config.ChainID)
}

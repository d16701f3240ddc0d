package solana

import (
	"context"
	"math/big"

	"github.com/relaymesh/gasless-lib/chains/solana/utils"
	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GetTokenBalance gets token balance for the given address.
// For native SOL balances, use tokenAddress as empty string or the system program id.
//
// Parameters:
// - ctx: the context for managing the request
// - address: the address to check balance for
// - tokenAddress: the token mint address
//
// Returns:
// - *big.Int: the token balance
// - error: an error if the balance check fails
func (s *solana) GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error) {
	s.clientMutex.RLock()
	client := s.client
	s.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	userPubKey, err := sol.PublicKeyFromBase58(address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse userPubKey")
	}

	// Handle native SOL balance
	if tokenAddress == "" || tokenAddress == sol.SystemProgramID.String() {
		balance, err := client.GetBalance(ctx, userPubKey, rpc.CommitmentFinalized)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get native SOL balance")
		}
		s.logger.WithFields(logrus.Fields{
			"chain":   s.config.Name,
			"address": address,
			"sol":     utils.LamportsToSol(balance.Value),
		}).Debug("Fetched native balance")
		return new(big.Int).SetUint64(balance.Value), nil
	}

	// Handle SPL token balance
	tokenPubKey, err := sol.PublicKeyFromBase58(tokenAddress)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse tokenAddress")
	}

	sourceATA, err := utils.GetAssociatedTokenAddress(tokenPubKey, userPubKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get associated token address")
	}

	balance, err := client.GetTokenAccountBalance(ctx, sourceATA, rpc.CommitmentFinalized)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token balance")
	}

	amount, ok := new(big.Int).SetString(balance.Value.Amount, 10)
	if !ok {
		return nil, errors.New("failed to parse token balance")
	}

	return amount, nil
}

package solana

import (
	"context"
	"encoding/base64"
	"strconv"

	"github.com/relaymesh/gasless-lib/chains/solana/utils"
	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/relaymesh/gasless-lib/common/types"
	"github.com/relaymesh/gasless-lib/relayer"
	bin "github.com/gagliardetto/binary"
	sol "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// PrepareSignature asks the relayer to build the unsigned transaction for
// the transfer. The relayer acts as fee payer and owns the recent blockhash,
// so the transaction is constructed server-side; the returned bytes are
// decoded and checked to actually move the requested amount to the
// recipient before they are handed to a signer.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transfer request.
// - quote: the quote the transfer is executed against.
//
// Returns:
// - *types.SignatureData: the serialized unsigned transaction.
// - error: an error if the preparation or transaction validation fails.
func (s *solana) PrepareSignature(ctx context.Context, req *types.TransferRequest, quote *types.TransferQuote) (*types.SignatureData, error) {
	token, err := s.resolveToken(req.Token)
	if err != nil {
		return nil, err
	}

	resp, err := s.getRelayer().PrepareSignature(ctx, &relayer.PrepareRequest{
		ChainID: s.config.ChainID,
		QuoteID: quote.QuoteID,
		Transfers: []relayer.TransferParams{
			{
				Sender:    req.Sender,
				Recipient: req.Recipient,
				Token:     token.Address,
				Amount:    req.Amount,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	txBytes, err := base64.StdEncoding.DecodeString(resp.Transaction)
	if err != nil {
		return nil, relayerrors.Wrap(err, relayerrors.CodeRelayerError, "relayer returned malformed transaction")
	}

	if err := s.validateUnsignedTransaction(txBytes, req, token); err != nil {
		return nil, err
	}

	data := &types.SignatureData{
		Kind:        types.SignatureKindRawTransaction,
		ChainID:     s.config.ChainID,
		Transaction: txBytes,
	}
	if quote.Nonce != nil {
		data.Nonce = *quote.Nonce
	}

	return data, nil
}

// validateUnsignedTransaction decodes the relayer-built transaction and
// verifies it contains a transfer of the requested amount to the recipient.
// A relayer could otherwise slip arbitrary instructions into the payload
// the user is about to sign.
func (s *solana) validateUnsignedTransaction(txBytes []byte, req *types.TransferRequest, token *types.TokenConfig) error {
	tx, err := sol.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return relayerrors.Wrap(err, relayerrors.CodeRelayerError, "failed to decode relayer transaction")
	}

	_, err = s.matchTransferInstruction(&tx.Message, req, token, nil)
	return err
}

// matchTransferInstruction finds an instruction transferring the requested
// amount to the recipient and returns its index. Indexes present in claimed
// are skipped, so batch callers can require a distinct instruction per item.
func (s *solana) matchTransferInstruction(message *sol.Message, req *types.TransferRequest, token *types.TokenConfig, claimed map[int]bool) (int, error) {
	expectedAmount, err := strconv.ParseUint(req.Amount, 10, 64)
	if err != nil {
		return 0, relayerrors.Newf(relayerrors.CodeInvalidAmount, "amount %q does not fit uint64", req.Amount)
	}

	recipient, err := sol.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		return 0, relayerrors.Newf(relayerrors.CodeInvalidAddress, "invalid Solana address %q", req.Recipient)
	}

	native := token.Address == "" || token.Address == sol.SystemProgramID.String()

	var expectedDest sol.PublicKey
	if native {
		expectedDest = recipient
	} else {
		mint, err := sol.PublicKeyFromBase58(token.Address)
		if err != nil {
			return 0, relayerrors.Newf(relayerrors.CodeUnsupportedToken, "invalid token mint %q", token.Address)
		}
		expectedDest, err = utils.GetAssociatedTokenAddress(mint, recipient)
		if err != nil {
			return 0, errors.Wrap(err, "failed to derive recipient token account")
		}
	}

	for i, instr := range message.Instructions {
		if claimed[i] {
			continue
		}

		programID, err := message.Program(instr.ProgramIDIndex)
		if err != nil {
			continue
		}

		if native && programID == sol.SystemProgramID {
			lamports, err := utils.ParseSystemTransfer(instr.Data)
			if err != nil || lamports != expectedAmount {
				continue
			}
			// System transfer accounts are [source, destination].
			if dest, ok := instructionAccount(message, instr, 1); ok && dest == expectedDest {
				return i, nil
			}
		}

		if !native && programID == sol.TokenProgramID {
			transfer, err := utils.ParseTokenTransfer(instr.Data)
			if err != nil || transfer.Amount != expectedAmount {
				continue
			}
			// Transfer accounts are [source, destination, owner];
			// TransferChecked accounts are [source, mint, destination, owner].
			destIndex := 1
			if transfer.Checked {
				destIndex = 2
			}
			if dest, ok := instructionAccount(message, instr, destIndex); ok && dest == expectedDest {
				return i, nil
			}
		}
	}

	return 0, relayerrors.New(relayerrors.CodeRelayerError,
		"relayer transaction does not transfer the requested amount to the recipient")
}

// instructionAccount resolves the n-th account of a compiled instruction.
func instructionAccount(message *sol.Message, instr sol.CompiledInstruction, n int) (sol.PublicKey, bool) {
	if n >= len(instr.Accounts) {
		return sol.PublicKey{}, false
	}
	idx := instr.Accounts[n]
	if int(idx) >= len(message.AccountKeys) {
		return sol.PublicKey{}, false
	}
	return message.AccountKeys[idx], true
}

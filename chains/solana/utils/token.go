package utils

import (
	bin "github.com/gagliardetto/binary"
	sol "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

const (
	// tokenInstructionTransfer is the SPL token program Transfer instruction tag.
	tokenInstructionTransfer = 3
	// tokenInstructionTransferChecked is the SPL token program TransferChecked instruction tag.
	tokenInstructionTransferChecked = 12
	// systemInstructionTransfer is the system program Transfer instruction tag.
	systemInstructionTransfer = 2
)

// GetAssociatedTokenAddress returns the token account address for a given token and owner.
// This is a deterministic address that follows Solana's Associated Token Account Program conventions.
func GetAssociatedTokenAddress(tokenMint, owner sol.PublicKey) (sol.PublicKey, error) {
	seeds := [][]byte{
		owner.Bytes(),              // The owner's public key
		sol.TokenProgramID.Bytes(), // The Token Program ID
		tokenMint.Bytes(),          // The mint address of the token
	}

	// Find PDA (Program Derived Address) for the Associated Token Account
	addr, _, err := sol.FindProgramAddress(
		seeds,
		sol.SPLAssociatedTokenAccountProgramID,
	)

	return addr, err
}

// TokenTransfer holds the decoded fields of an SPL token transfer instruction.
type TokenTransfer struct {
	Amount   uint64
	Decimals uint8
	Checked  bool
}

// ParseTokenTransfer decodes the data of an SPL token program instruction,
// accepting Transfer and TransferChecked variants.
//
// Parameters:
// - data: the raw instruction data.
//
// Returns:
// - *TokenTransfer: the decoded transfer fields.
// - error: an error if the data is not a transfer instruction.
func ParseTokenTransfer(data []byte) (*TokenTransfer, error) {
	decoder := bin.NewBinDecoder(data)

	variant, err := decoder.ReadUint8()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read instruction tag")
	}

	switch variant {
	case tokenInstructionTransfer:
		amount, err := decoder.ReadUint64(bin.LE)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read transfer amount")
		}
		return &TokenTransfer{Amount: amount}, nil

	case tokenInstructionTransferChecked:
		amount, err := decoder.ReadUint64(bin.LE)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read transfer amount")
		}
		decimals, err := decoder.ReadUint8()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read transfer decimals")
		}
		return &TokenTransfer{Amount: amount, Decimals: decimals, Checked: true}, nil

	default:
		return nil, errors.Errorf("instruction tag %d is not a token transfer", variant)
	}
}

// ParseSystemTransfer decodes the data of a system program transfer
// instruction and returns the lamports amount.
//
// Parameters:
// - data: the raw instruction data.
//
// Returns:
// - uint64: the lamports moved by the instruction.
// - error: an error if the data is not a system transfer instruction.
func ParseSystemTransfer(data []byte) (uint64, error) {
	decoder := bin.NewBinDecoder(data)

	variant, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read instruction tag")
	}
	if variant != systemInstructionTransfer {
		return 0, errors.Errorf("instruction tag %d is not a system transfer", variant)
	}

	lamports, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read lamports")
	}

	return lamports, nil
}

package pledgecore

import (
	"encoding/binary"
	"errors"

	"github.com/solheist/go-pledge/inter"
)

// Instruction selectors. An instruction buffer is the selector byte,
// followed for Purchase by the contribution amount as 8 little-endian
// bytes; the other operations carry no payload.
const (
	OpPurchase     byte = 0
	OpUpdateReward byte = 1
	OpViewRewards  byte = 2
	OpClaimRewards byte = 3
)

const purchaseInstructionLen = 1 + 8

var (
	// ErrUnknownInstruction is returned for an unrecognized selector.
	ErrUnknownInstruction = errors.New("instruction not recognized")

	// ErrMalformedInstruction is returned when the instruction payload
	// has the wrong length for its selector.
	ErrMalformedInstruction = errors.New("malformed instruction payload")
)

// Execute decodes a raw participant record and a raw instruction, runs the
// selected operation at the given moment, and returns the re-encoded record.
// The input record bytes are never modified; on any error the caller keeps
// the original record.
//
// transfer is only consulted by the claim operation and may be nil for the
// others.
func (e *Engine) Execute(stateRaw, instr []byte, now inter.Timestamp, transfer TransferFn) ([]byte, error) {
	var st inter.UserState
	if err := st.UnmarshalBinary(stateRaw); err != nil {
		return nil, err
	}
	if len(instr) == 0 {
		return nil, ErrMalformedInstruction
	}

	var err error
	switch instr[0] {
	case OpPurchase:
		if len(instr) != purchaseInstructionLen {
			return nil, ErrMalformedInstruction
		}
		amount := binary.LittleEndian.Uint64(instr[1:])
		st, err = e.Purchase(st, amount, now)
	case OpUpdateReward:
		if len(instr) != 1 {
			return nil, ErrMalformedInstruction
		}
		st = e.UpdateReward(st, now)
	case OpViewRewards:
		if len(instr) != 1 {
			return nil, ErrMalformedInstruction
		}
		e.ViewRewards(st)
	case OpClaimRewards:
		if len(instr) != 1 {
			return nil, ErrMalformedInstruction
		}
		st, err = e.ClaimRewards(st, transfer)
	default:
		return nil, ErrUnknownInstruction
	}
	if err != nil {
		return nil, err
	}
	return st.MarshalBinary()
}

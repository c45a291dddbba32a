package inter

import (
	"errors"

	"github.com/solheist/go-pledge/utils/fast"
)

// StateLength is the exact on-wire size of a serialized UserState:
// four little-endian uint64 fields, no header, no version tag, no padding.
const StateLength = 4 * 8

// ErrMalformedState is returned when a record buffer cannot be decoded.
// A buffer of the wrong length is always malformed; it is never truncated
// or zero-padded into a record.
var ErrMalformedState = errors.New("malformed user state encoding")

// MarshalBinary serializes the record into its fixed 32-byte layout.
// Field order is LockedTokens, RewardBalance, LockStart, VestingEnd.
func (s *UserState) MarshalBinary() ([]byte, error) {
	w := fast.NewWriter(make([]byte, 0, StateLength))
	writeUint64LE(w, s.LockedTokens)
	writeUint64LE(w, s.RewardBalance)
	writeUint64LE(w, uint64(s.LockStart))
	writeUint64LE(w, uint64(s.VestingEnd))
	return w.Bytes(), nil
}

// UnmarshalBinary is the exact inverse of MarshalBinary. It fails with
// ErrMalformedState unless raw is exactly StateLength bytes, and consumes
// the whole buffer.
func (s *UserState) UnmarshalBinary(raw []byte) (err error) {
	if len(raw) != StateLength {
		return ErrMalformedState
	}
	// The fast reader panics on overrun instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			err = ErrMalformedState
		}
	}()

	r := fast.NewReader(raw)
	decoded := UserState{
		LockedTokens:  readUint64LE(r),
		RewardBalance: readUint64LE(r),
		LockStart:     Timestamp(readUint64LE(r)),
		VestingEnd:    Timestamp(readUint64LE(r)),
	}
	if !r.Empty() {
		return ErrMalformedState
	}
	*s = decoded
	return nil
}

func writeUint64LE(w *fast.Writer, v uint64) {
	for i := 0; i < 8; i++ {
		w.WriteByte(byte(v))
		v >>= 8
	}
}

func readUint64LE(r *fast.Reader) uint64 {
	var v uint64
	for i, b := range r.Read(8) {
		v |= uint64(b) << uint(8*i)
	}
	return v
}

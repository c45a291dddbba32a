// Package store persists participant records in LevelDB, keyed by account
// address, and keeps the host-side ledger of claimed rewards that backs the
// engine's transfer capability.
package store

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	cmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/solheist/go-pledge/inter"
)

var (
	statePrefix   = []byte("s:")
	claimedPrefix = []byte("c:")
)

// Store wraps a LevelDB instance holding participant records.
// It is not safe for concurrent operations on the same account; the caller
// provides single-writer discipline per record.
type Store struct {
	db *leveldb.DB
}

// New opens (or creates) a persistent store at the given path.
func New(path string) (*Store, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, err
	}
	return open(stg)
}

// NewMem creates an in-memory store, for tests and fakenet runs.
func NewMem() (*Store, error) {
	return open(storage.NewMemStorage())
}

func open(stg storage.Storage) (*Store, error) {
	db, err := leveldb.Open(stg, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// GetState returns the participant record for addr. A missing record is the
// implicit zeroed state, not an error.
func (s *Store) GetState(addr common.Address) (inter.UserState, error) {
	raw, err := s.db.Get(stateKey(addr), nil)
	if err == leveldb.ErrNotFound {
		return inter.UserState{}, nil
	}
	if err != nil {
		return inter.UserState{}, err
	}
	var st inter.UserState
	if err := st.UnmarshalBinary(raw); err != nil {
		return inter.UserState{}, err
	}
	return st, nil
}

// PutState replaces the participant record for addr wholesale.
func (s *Store) PutState(addr common.Address, st inter.UserState) error {
	raw, err := st.MarshalBinary()
	if err != nil {
		return err
	}
	return s.db.Put(stateKey(addr), raw, nil)
}

// Claimed returns the cumulative reward tokens already paid out to addr.
func (s *Store) Claimed(addr common.Address) (uint64, error) {
	raw, err := s.db.Get(claimedKey(addr), nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, inter.ErrMalformedState
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// Credit adds a settled claim to the claimed-rewards ledger for addr.
// The total saturates rather than wrapping.
func (s *Store) Credit(addr common.Address, amount uint64) error {
	total, err := s.Claimed(addr)
	if err != nil {
		return err
	}
	sum, overflow := cmath.SafeAdd(total, amount)
	if overflow {
		sum = cmath.MaxUint64
	}
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, sum)
	return s.db.Put(claimedKey(addr), raw, nil)
}

// Close closes the underlying database. Later operations fail.
func (s *Store) Close() error {
	return s.db.Close()
}

func stateKey(addr common.Address) []byte {
	return append(append([]byte{}, statePrefix...), addr.Bytes()...)
}

func claimedKey(addr common.Address) []byte {
	return append(append([]byte{}, claimedPrefix...), addr.Bytes()...)
}

// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/cache"
	"github.com/vechain/stakingrewards/kv"
	"github.com/vechain/stakingrewards/lvldb"
	"github.com/vechain/stakingrewards/stackedmap"
	"github.com/vechain/stakingrewards/thor"
)

// StorageBucket prefixes every persisted slot.
const StorageBucket = kv.Bucket("s")

const defaultCacheSize = 4096

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, len(k.addr)+len(k.key))
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State holds contract storage with revertable changes on top of a kv store.
// It is not safe for concurrent use.
type State struct {
	store kv.Store
	cache *cache.LRU
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New creates a state reading from and committing to the given store.
func New(store kv.Store) *State {
	c, _ := cache.NewLRU(defaultCacheSize)
	s := &State{
		store: StorageBucket.NewStore(store),
		cache: c,
	}
	s.reset()
	return s
}

// NewMem returns a state without persistence, for tests and dry runs.
func NewMem() *State {
	db, err := lvldb.NewMem()
	if err != nil {
		panic(err)
	}
	return New(db)
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.load)
	// base level holds changes not covered by any checkpoint
	s.sm.Push()
}

// load implements stackedmap.MapGetter. Absent slots are cached as empty.
func (s *State) load(k storageKey) (rlp.RawValue, bool, error) {
	source := "cache"
	v, err := s.cache.GetOrLoad(k, func(any) (any, error) {
		source = "store"
		val, err := s.store.Get(k.bytes())
		if err != nil {
			if !s.store.IsNotFound(err) {
				return nil, errors.Wrap(err, "load storage")
			}
			val = nil
		}
		return rlp.RawValue(val), nil
	})
	if err != nil {
		return nil, false, err
	}
	metricStorageReads().AddWithLabel(1, map[string]string{"source": source})
	return v.(rlp.RawValue), true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, returns hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	// never drop the base level
	if revision < 1 {
		revision = 1
	}
	s.sm.PopTo(revision)
}

// Dirty reports the number of slots changed since the last commit.
func (s *State) Dirty() int {
	return len(s.changes())
}

func (s *State) changes() map[storageKey]rlp.RawValue {
	changes := make(map[storageKey]rlp.RawValue)
	for _, entry := range s.sm.Journal() {
		changes[entry.Key] = entry.Value
	}
	return changes
}

// Commit writes all changes into the underlying store in one batch and starts
// a fresh revision stack. It returns the number of slots written.
func (s *State) Commit() (int, error) {
	changes := s.changes()
	if len(changes) == 0 {
		return 0, nil
	}

	bulk := s.store.Bulk()
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.bytes())
		} else {
			err = bulk.Put(k.bytes(), v)
		}
		if err != nil {
			return 0, &Error{errors.Wrap(err, "stage slot")}
		}
	}
	if err := bulk.Write(); err != nil {
		return 0, &Error{errors.Wrap(err, "write slots")}
	}

	for k, v := range changes {
		s.cache.Add(k, v)
	}
	s.reset()
	metricCommittedSlots().Add(int64(len(changes)))
	return len(changes), nil
}

// Discard drops every change since the last commit.
func (s *State) Discard() {
	s.reset()
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pebbledb

import (
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/kv"
)

var _ kv.StoreCloser = (*PebbleDB)(nil)

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("pebbledb: closed")

// ErrorOnlyLogger implements pebble.Logger to reduce noise
type ErrorOnlyLogger struct{}

func (l ErrorOnlyLogger) Infof(format string, args ...any) {}
func (l ErrorOnlyLogger) Warnf(format string, args ...any) {}
func (l ErrorOnlyLogger) Errorf(format string, args ...any) {
	logger.Error("pebble error", "msg", errors.Errorf(format, args...))
}
func (l ErrorOnlyLogger) Fatalf(format string, args ...any) {
	logger.Crit("pebble fatal", "msg", errors.Errorf(format, args...))
}

// PebbleDB implements kv.Store on top of a pebble database.
type PebbleDB struct {
	db     *pebble.DB
	closed bool
	mu     sync.RWMutex
}

// Open opens or creates a pebble database at the given path.
func Open(path string) (*PebbleDB, error) {
	return open(path, defaultOptions())
}

// NewMem creates a pebble database backed by an in-memory filesystem.
func NewMem() (*PebbleDB, error) {
	opts := defaultOptions()
	opts.FS = vfs.NewMem()
	return open("", opts)
}

func defaultOptions() *pebble.Options {
	return &pebble.Options{
		Cache:        pebble.NewCache(16 << 20), // 16MB
		MemTableSize: 8 << 20,                   // 8MB
		MaxOpenFiles: 256,
		Logger:       ErrorOnlyLogger{},
	}
}

func open(path string, opts *pebble.Options) (*PebbleDB, error) {
	defer opts.Cache.Unref()
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrap(err, "open pebble db")
	}
	return &PebbleDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (p *PebbleDB) IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}

// Get retrieves a copy of the value for the given key.
func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	value, closer, err := p.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Has returns whether a key exists.
func (p *PebbleDB) Has(key []byte) (bool, error) {
	_, err := p.Get(key)
	if err != nil {
		if p.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put saves value for the given key.
func (p *PebbleDB) Put(key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	return p.db.Set(key, value, pebble.NoSync)
}

// Delete deletes the given key.
func (p *PebbleDB) Delete(key []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	return p.db.Delete(key, pebble.NoSync)
}

// Bulk creates a batch whose ops are committed atomically and synced on Write.
func (p *PebbleDB) Bulk() kv.Bulk {
	return &batch{owner: p, batch: p.db.NewBatch()}
}

// Close closes the database. It is safe to call more than once.
func (p *PebbleDB) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

type batch struct {
	owner *PebbleDB
	batch *pebble.Batch
}

func (b *batch) Put(key, value []byte) error {
	return b.batch.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	return b.batch.Delete(key, nil)
}

func (b *batch) Len() int {
	return int(b.batch.Count())
}

func (b *batch) Write() error {
	b.owner.mu.RLock()
	defer b.owner.mu.RUnlock()

	if b.owner.closed {
		return ErrClosed
	}
	defer b.batch.Close()
	return b.batch.Commit(pebble.Sync)
}

// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb is the default persistent kv.Store of the pool state.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/vechain/stakingrewards/kv"
	"github.com/vechain/stakingrewards/metrics"
)

var _ kv.StoreCloser = (*LevelDB)(nil)

var metricBulkOps = metrics.LazyLoadCounter("lvldb_bulk_ops_count")

// Options tunes a persistent instance. Values below 16 are raised to 16.
type Options struct {
	// MiB shared by the block cache and the write buffers
	CacheSize              int
	OpenFilesCacheCapacity int
}

func (o Options) leveldb() *opt.Options {
	cache := max(o.CacheSize, 16)
	return &opt.Options{
		OpenFilesCacheCapacity: max(o.OpenFilesCacheCapacity, 16),
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		// two write buffers are live at a time
		WriteBuffer: cache / 4 * opt.MiB,
		Filter:      filter.NewBloomFilter(10),
	}
}

// LevelDB is a kv.Store over goleveldb. Single writes are not synced, bulk
// writes are.
type LevelDB struct {
	db  *leveldb.DB
	stg storage.Storage
}

// New opens the database at path, creating it when missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open level db storage")
	}
	return open(stg, opts)
}

// NewMem creates a database kept in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	db, err := leveldb.Open(stg, opts.leveldb())
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db, stg: stg}, nil
}

func (l *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get fails with an error matched by IsNotFound when key is absent.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	return l.db.Get(key, nil)
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

// Close releases the database and its storage lock. Later operations fail.
func (l *LevelDB) Close() error {
	if err := l.db.Close(); err != nil {
		return err
	}
	return l.stg.Close()
}

// Bulk buffers ops until Write, which applies them atomically and syncs.
func (l *LevelDB) Bulk() kv.Bulk {
	return &bulk{db: l.db}
}

type bulk struct {
	db    *leveldb.DB
	batch leveldb.Batch
}

func (b *bulk) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *bulk) Len() int {
	return b.batch.Len()
}

func (b *bulk) Write() error {
	n := b.batch.Len()
	if n == 0 {
		return nil
	}
	if err := b.db.Write(&b.batch, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrap(err, "write level db batch")
	}
	metricBulkOps().Add(int64(n))
	b.batch.Reset()
	return nil
}

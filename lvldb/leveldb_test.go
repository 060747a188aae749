// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	diskdb, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer diskdb.Close()

	memdb, err := NewMem()
	require.NoError(t, err)
	defer memdb.Close()

	for _, ldb := range []*LevelDB{diskdb, memdb} {
		assert.NoError(t, ldb.Put(key, value))

		got, err := ldb.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := ldb.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = ldb.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, ldb.Delete(key))
		_, err = ldb.Get(key)
		assert.True(t, ldb.IsNotFound(err))
	}
}

func TestLevelDBBulk(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("gone"), []byte("x")))

	bulk := db.Bulk()
	assert.NoError(t, bulk.Put([]byte("k1"), []byte("v1")))
	assert.NoError(t, bulk.Put([]byte("k2"), []byte("v2")))
	assert.NoError(t, bulk.Delete([]byte("gone")))
	assert.Equal(t, 3, bulk.Len())

	has, _ := db.Has([]byte("k1"))
	assert.False(t, has)

	assert.NoError(t, bulk.Write())

	v, err := db.Get([]byte("k2"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)
	has, _ = db.Has([]byte("gone"))
	assert.False(t, has)
}

func TestLevelDBReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen")

	db, err := New(path, Options{})
	require.NoError(t, err)
	bulk := db.Bulk()
	require.NoError(t, bulk.Put([]byte("k"), []byte("v")))
	require.NoError(t, bulk.Write())
	require.NoError(t, db.Close())

	db, err = New(path, Options{})
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestLevelDBCloseReleasesLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")

	db, err := New(path, Options{})
	require.NoError(t, err)

	_, err = New(path, Options{})
	assert.Error(t, err, "path is locked while open")

	require.NoError(t, db.Close())
	for range 3 {
		db, err = New(path, Options{})
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
}

// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return err == errNotFound
}

func (m mem) Bulk() Bulk {
	return &memBulk{m: m, ops: map[string]*string{}}
}

type memBulk struct {
	m   mem
	ops map[string]*string
}

func (b *memBulk) Put(k, v []byte) error {
	s := string(v)
	b.ops[string(k)] = &s
	return nil
}

func (b *memBulk) Delete(k []byte) error {
	b.ops[string(k)] = nil
	return nil
}

func (b *memBulk) Len() int { return len(b.ops) }

func (b *memBulk) Write() error {
	for k, v := range b.ops {
		if v == nil {
			delete(b.m, k)
		} else {
			b.m[k] = *v
		}
	}
	return nil
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Get([]byte(tt.key)); !reflect.DeepEqual(string(got), tt.want) {
				t.Errorf("Bucket.NewGetter.Get = %v, want %v", string(got), tt.want)
			}
		})
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket(""), "k2", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k"), "2", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Has([]byte(tt.key)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bucket.NewGetter.Has = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucket_Store(t *testing.T) {
	m := mem{}
	store := Bucket("s").NewStore(m)

	assert.NoError(t, store.Put([]byte("a"), []byte("1")))
	assert.Equal(t, "1", m["sa"])

	bulk := store.Bulk()
	assert.NoError(t, bulk.Put([]byte("b"), []byte("2")))
	assert.NoError(t, bulk.Delete([]byte("a")))
	assert.Equal(t, 2, bulk.Len())
	_, ok := m["sb"]
	assert.False(t, ok, "bulk must not write before Write")

	assert.NoError(t, bulk.Write())
	assert.Equal(t, mem{"sb": "2"}, m)

	_, err := store.Get([]byte("a"))
	assert.True(t, store.IsNotFound(err))
}

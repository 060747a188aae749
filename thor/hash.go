// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// hasher pairs a reusable hash with its output buffer.
type hasher struct {
	h   hash.Hash
	out Bytes32
}

func (p *hasher) sum(data [][]byte) Bytes32 {
	for _, b := range data {
		p.h.Write(b)
	}
	p.h.Sum(p.out[:0])
	p.h.Reset()
	return p.out
}

var (
	blake2bPool = sync.Pool{New: func() any {
		h, _ := blake2b.New256(nil)
		return &hasher{h: h}
	}}
	keccakPool = sync.Pool{New: func() any {
		return &hasher{h: sha3.NewLegacyKeccak256()}
	}}
)

// Blake2b computes the blake2b-256 digest of the concatenated data.
// Storage slots and genesis ids are derived with it.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	p := blake2bPool.Get().(*hasher)
	defer blake2bPool.Put(p)
	return p.sum(data)
}

// Keccak256 computes the legacy keccak-256 digest, used for event signature topics.
func Keccak256(data ...[]byte) Bytes32 {
	p := keccakPool.Get().(*hasher)
	defer keccakPool.Put(p)
	return p.sum(data)
}

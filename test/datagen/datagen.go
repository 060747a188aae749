// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen produces random fixtures for tests.
package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/thor"
)

func RandAddress() (addr thor.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []thor.Address {
	out := make([]thor.Address, n)
	for i := range out {
		out[i] = RandAddress()
	}
	return out
}

func RandBytes32() (b thor.Bytes32) {
	rand.Read(b[:])
	return
}

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandUint64Between returns a value in [lo, hi].
func RandUint64Between(lo, hi uint64) uint64 {
	return lo + mathrand.Uint64N(hi-lo+1) //#nosec G404
}

// RandAmount returns a token amount in [1, max] scaled by 10^decimals.
func RandAmount(max uint64, decimals uint8) *uint256.Int {
	v := uint256.NewInt(RandUint64Between(1, max))
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	return v.Mul(v, scale)
}

// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/thor"
)

// Event is a log entry emitted by a contract.
type Event struct {
	// address of the contract that emitted the event
	Address thor.Address
	// topic0 is the signature hash, the rest are indexed arguments
	Topics []thor.Bytes32
	// non-indexed arguments, one 32-byte word each
	Data []byte
}

// Events is a slice of events.
type Events []*Event

// EventID returns the topic0 of an event signature like "Staked(address,uint256)".
func EventID(signature string) thor.Bytes32 {
	return thor.Keccak256([]byte(signature))
}

// AddressTopic left pads an address into a topic.
func AddressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

// Words packs amounts as consecutive 32-byte big endian words.
func Words(values ...*uint256.Int) []byte {
	data := make([]byte, 0, 32*len(values))
	for _, v := range values {
		w := v.Bytes32()
		data = append(data, w[:]...)
	}
	return data
}

// Word returns the i-th 32-byte word of data as an integer, or nil when
// data is too short.
func Word(data []byte, i int) *uint256.Int {
	if len(data) < 32*(i+1) {
		return nil
	}
	return new(uint256.Int).SetBytes32(data[32*i : 32*(i+1)])
}

// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakingrewards/thor"
)

func TestEventID(t *testing.T) {
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		EventID("Transfer(address,address,uint256)").String())
}

func TestWords(t *testing.T) {
	data := Words(uint256.NewInt(1), uint256.NewInt(700))
	assert.Len(t, data, 64)
	assert.Equal(t, uint256.NewInt(1), Word(data, 0))
	assert.Equal(t, uint256.NewInt(700), Word(data, 1))
	assert.Nil(t, Word(data, 2))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	addr := thor.BytesToAddress([]byte("pool"))
	topic := EventID("Staked(address,uint256)")

	r.Emit(addr, []thor.Bytes32{topic}, Words(uint256.NewInt(1)))
	mark := r.Checkpoint()
	r.Emit(addr, []thor.Bytes32{topic}, nil)
	assert.Equal(t, 2, r.Len())

	r.RevertTo(mark)
	assert.Equal(t, 1, r.Len())
	r.RevertTo(5)
	assert.Equal(t, 1, r.Len())

	events := r.Take()
	assert.Len(t, events, 1)
	assert.Equal(t, addr, events[0].Address)
	assert.Equal(t, 0, r.Len())
}

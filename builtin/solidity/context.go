// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides typed views over contract storage slots, the way
// a solidity contract lays out its state variables.
package solidity

import (
	"github.com/vechain/stakingrewards/builtin/reverts"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/thor"
)

// ErrOverflow is returned by checked arithmetic on stored integers.
var ErrOverflow = reverts.NewRequireError("arithmetic overflow")

// Context binds a contract address to the state holding its storage.
type Context struct {
	address thor.Address
	state   *state.State
}

func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives the storage key of a named state variable.
func Slot(name string) thor.Bytes32 {
	return thor.Blake2b([]byte(name))
}

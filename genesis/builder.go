// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/builtin/solidity"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

// MarkerAddress holds the id of the genesis applied to a state.
var MarkerAddress = thor.BytesToAddress([]byte("rewards.genesis"))

var markerSlot = solidity.Slot("genesis.id")

// ErrMismatch is returned when a state was built from another genesis.
var ErrMismatch = errors.New("genesis mismatch")

// Builder helper to build genesis state.
type Builder struct {
	stateProcs []func(state *state.State) error
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Build runs the state processes once per state and marks it with id. It is
// a no-op on a state already marked with id. Changes are left uncommitted.
func (b *Builder) Build(st *state.State, id thor.Bytes32, recorder *tx.Recorder) (applied bool, events tx.Events, err error) {
	marker, err := st.GetStorage(MarkerAddress, markerSlot)
	if err != nil {
		return false, nil, err
	}
	if marker == id {
		return false, nil, nil
	}
	if !marker.IsZero() {
		return false, nil, errors.WithMessagef(ErrMismatch, "state has %v, want %v", marker, id)
	}

	recorder.Take()
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			st.Discard()
			recorder.Take()
			return false, nil, errors.Wrap(err, "state process")
		}
	}
	st.SetStorage(MarkerAddress, markerSlot, id)
	return true, recorder.Take(), nil
}

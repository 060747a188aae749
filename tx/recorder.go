// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/stakingrewards/thor"
)

// Emitter accepts events from contracts.
type Emitter interface {
	Emit(addr thor.Address, topics []thor.Bytes32, data []byte)
}

// Recorder buffers emitted events with checkpoint and revert, in step with
// state checkpoints. It is not safe for concurrent use.
type Recorder struct {
	events Events
}

var _ Emitter = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(addr thor.Address, topics []thor.Bytes32, data []byte) {
	r.events = append(r.events, &Event{
		Address: addr,
		Topics:  append([]thor.Bytes32(nil), topics...),
		Data:    append([]byte(nil), data...),
	})
}

// Checkpoint returns a mark to revert to.
func (r *Recorder) Checkpoint() int {
	return len(r.events)
}

// RevertTo drops events emitted after the mark.
func (r *Recorder) RevertTo(mark int) {
	if mark < len(r.events) {
		r.events = r.events[:mark]
	}
}

// Take returns buffered events and empties the buffer.
func (r *Recorder) Take() Events {
	out := r.events
	r.events = nil
	return out
}

// Len returns the number of buffered events.
func (r *Recorder) Len() int {
	return len(r.events)
}

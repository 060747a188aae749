// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	Seq     uint64
	Index   uint32
	Time    uint64
	Caller  thor.Address // who submitted the call
	Method  string
	Address thor.Address // the emitting contract
	Topics  [4]*thor.Bytes32
	Data    []byte
}

// newEvent converts tx.Event to Event.
func newEvent(receipt *tx.Receipt, index uint32, txEvent *tx.Event) *Event {
	ev := &Event{
		Seq:     receipt.Seq,
		Index:   index,
		Time:    receipt.Time,
		Caller:  receipt.Caller,
		Method:  receipt.Method,
		Address: txEvent.Address,
		Data:    txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds the event time, both ends inclusive. A To lower than From
// leaves the range open ended.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address
	Topics  [4]*thor.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Caller      *thor.Address
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

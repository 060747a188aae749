// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

var (
	StakedEvent                 = tx.EventID("Staked(address,uint256)")
	WithdrawnEvent              = tx.EventID("Withdrawn(address,uint256)")
	RewardPaidEvent             = tx.EventID("RewardPaid(address,uint256)")
	RewardAddedEvent            = tx.EventID("RewardAdded(uint256)")
	RewardsDurationUpdatedEvent = tx.EventID("RewardsDurationUpdated(uint256)")
	RecoveredEvent              = tx.EventID("Recovered(address,uint256)")
)

// EventIDs maps event names to their topic0.
var EventIDs = map[string]thor.Bytes32{
	"Staked":                 StakedEvent,
	"Withdrawn":              WithdrawnEvent,
	"RewardPaid":             RewardPaidEvent,
	"RewardAdded":            RewardAddedEvent,
	"RewardsDurationUpdated": RewardsDurationUpdatedEvent,
	"Recovered":              RecoveredEvent,
}

// emit records an event with indexed addresses as topics and one data word.
func (p *Pool) emit(id thor.Bytes32, indexed []thor.Address, value *uint256.Int) {
	if p.events == nil {
		return
	}
	topics := make([]thor.Bytes32, 0, 1+len(indexed))
	topics = append(topics, id)
	for _, addr := range indexed {
		topics = append(topics, tx.AddressTopic(addr))
	}
	p.events.Emit(p.Address(), topics, tx.Words(value))
}

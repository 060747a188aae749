// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import "github.com/vechain/stakingrewards/thor"

// Receipt represents the results of an executed call.
type Receipt struct {
	// sequence number of the call, starts from 1
	Seq uint64
	// timestamp the call was executed at
	Time   uint64
	Caller thor.Address
	Method string
	// set when the call was rejected by contract logic
	Reverted bool
	// revert reason
	Error  string
	Events Events
}

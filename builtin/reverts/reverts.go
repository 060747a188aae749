// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error type of a call rejected by contract
// logic, as opposed to a failure of the machinery running it.
package reverts

import "errors"

// ErrRequire is a failed precondition of a contract method. The call's
// changes are rolled back and it is recorded as reverted.
type ErrRequire struct {
	message string
}

func NewRequireError(message string) *ErrRequire {
	return &ErrRequire{
		message: message,
	}
}

func (e *ErrRequire) Error() string {
	return e.message
}

func IsRevertErr(err error) bool {
	var ve *ErrRequire
	return errors.As(err, &ve) && ve != nil
}

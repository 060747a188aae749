// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/builtin/reverts"
	"github.com/vechain/stakingrewards/builtin/solidity"
)

var (
	ErrUnauthorized        = reverts.NewRequireError("rewards: caller is not the owner")
	ErrZeroAmount          = reverts.NewRequireError("rewards: amount must be greater than zero")
	ErrInsufficientBalance = reverts.NewRequireError("rewards: amount exceeds staked balance")
	ErrInvalidRate         = reverts.NewRequireError("rewards: provided reward too high")
	ErrEpochActive         = reverts.NewRequireError("rewards: previous rewards period must be complete")
	ErrForbiddenToken      = reverts.NewRequireError("rewards: cannot recover the staking or rewards token")
	ErrTransferFailed      = reverts.NewRequireError("rewards: token transfer failed")
	ErrInvalidDuration     = reverts.NewRequireError("rewards: duration must be greater than zero")
	ErrTimeRegression      = reverts.NewRequireError("rewards: time is before the last update")
	ErrAlreadyInitialized  = reverts.NewRequireError("rewards: pool already initialized")
	ErrInvalidConfig       = reverts.NewRequireError("rewards: invalid pool config")

	// ErrArithmeticOverflow is shared with the storage layer so a wrapped
	// overflow from any slot matches.
	ErrArithmeticOverflow = solidity.ErrOverflow
)

// transferFailed maps a token revert to ErrTransferFailed, keeping the reason.
// Infrastructure errors pass through.
func transferFailed(err error) error {
	if reverts.IsRevertErr(err) {
		return errors.WithMessage(ErrTransferFailed, err.Error())
	}
	return err
}

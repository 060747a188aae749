// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakingrewards/thor"
)

func (p *Pool) onlyOwner(caller thor.Address) error {
	owner, err := p.store.owner.Get()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrUnauthorized
	}
	return nil
}

// RecoverERC20 sends amount of a token held by the pool to the owner. The
// staking and rewards tokens cannot be recovered.
func (p *Pool) RecoverERC20(caller thor.Address, tokenAddr thor.Address, amount *uint256.Int) error {
	return p.call("recoverERC20", func() error {
		if err := p.onlyOwner(caller); err != nil {
			return err
		}
		if amount == nil {
			amount = new(uint256.Int)
		}
		stakingToken, err := p.store.stakingToken.Get()
		if err != nil {
			return err
		}
		rewardsToken, err := p.store.rewardsToken.Get()
		if err != nil {
			return err
		}
		if tokenAddr == stakingToken || tokenAddr == rewardsToken {
			return ErrForbiddenToken
		}

		tok, err := p.tokens.Token(tokenAddr)
		if err != nil {
			return transferFailed(err)
		}
		if err := tok.Transfer(p.Address(), caller, amount); err != nil {
			return transferFailed(err)
		}
		p.emit(RecoveredEvent, []thor.Address{tokenAddr}, amount)
		logger.Info("recovered", "token", tokenAddr, "amount", amount)
		return nil
	})
}

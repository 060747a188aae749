// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/api/utils"
	"github.com/vechain/stakingrewards/runtime"
	"github.com/vechain/stakingrewards/thor"
)

type Pool struct {
	exec *runtime.Executor
}

func New(exec *runtime.Executor) *Pool {
	return &Pool{exec}
}

// timeParam reads the optional "time" query, defaulting to now.
func timeParam(req *http.Request, now uint64) (uint64, error) {
	t, err := utils.ParseUint64(req.URL.Query().Get("time"), now)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "time"))
	}
	return t, nil
}

func (p *Pool) handleGetGlobal(w http.ResponseWriter, req *http.Request) error {
	var out *Global
	err := p.exec.View(func(s *runtime.Snapshot) error {
		now, err := timeParam(req, s.Now)
		if err != nil {
			return err
		}
		g, err := s.Pool.Global()
		if err != nil {
			return err
		}
		applicable, err := s.Pool.LastTimeRewardApplicable(now)
		if err != nil {
			return err
		}
		rpt, err := s.Pool.RewardPerToken(now)
		if err != nil {
			return err
		}
		forDuration, err := s.Pool.RewardForDuration()
		if err != nil {
			return err
		}
		out = &Global{
			Seq:                      s.Seq,
			Time:                     now,
			Address:                  s.Pool.Address(),
			Owner:                    g.Owner,
			StakingToken:             g.StakingToken,
			RewardsToken:             g.RewardsToken,
			RewardsDuration:          g.RewardsDuration,
			PeriodFinish:             g.PeriodFinish,
			LastUpdateTime:           g.LastUpdateTime,
			LastTimeRewardApplicable: applicable,
			RewardRate:               utils.FormatAmount(g.RewardRate),
			RewardPerTokenStored:     utils.FormatAmount(g.RewardPerTokenStored),
			RewardPerToken:           utils.FormatAmount(rpt),
			RewardForDuration:        utils.FormatAmount(forDuration),
			TotalSupply:              utils.FormatAmount(g.TotalStaked),
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (p *Pool) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var out *Account
	err = p.exec.View(func(s *runtime.Snapshot) error {
		now, err := timeParam(req, s.Now)
		if err != nil {
			return err
		}
		ledger, err := s.Pool.Ledger(*addr)
		if err != nil {
			return err
		}
		earned, err := s.Pool.Earned(*addr, now)
		if err != nil {
			return err
		}
		g, err := s.Pool.Global()
		if err != nil {
			return err
		}
		stakingToken, err := s.Tokens.Native(g.StakingToken)
		if err != nil {
			return err
		}
		rewardsToken, err := s.Tokens.Native(g.RewardsToken)
		if err != nil {
			return err
		}
		stakingBal, err := stakingToken.BalanceOf(*addr)
		if err != nil {
			return err
		}
		rewardsBal, err := rewardsToken.BalanceOf(*addr)
		if err != nil {
			return err
		}
		allowance, err := stakingToken.Allowance(*addr, s.Pool.Address())
		if err != nil {
			return err
		}
		out = &Account{
			Seq:                 s.Seq,
			Time:                now,
			Address:             *addr,
			Balance:             utils.FormatAmount(ledger.Balance),
			Earned:              utils.FormatAmount(earned),
			Rewards:             utils.FormatAmount(ledger.Rewards),
			RewardPerTokenPaid:  utils.FormatAmount(ledger.RewardPerTokenPaid),
			StakingTokenBalance: utils.FormatAmount(stakingBal),
			RewardsTokenBalance: utils.FormatAmount(rewardsBal),
			Allowance:           utils.FormatAmount(allowance),
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (p *Pool) handleCall(w http.ResponseWriter, req *http.Request) error {
	var body CallRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	call, err := body.toCall()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "amount"))
	}
	receipt, err := p.exec.Execute(req.Context(), call)
	if err != nil {
		if errors.Is(err, runtime.ErrUnknownMethod) || errors.Is(err, runtime.ErrClockRegression) {
			return utils.BadRequest(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetGlobal))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /pool/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
	// callers are not authenticated, the caller field is trusted: dev and trusted networks only
	sub.Path("/calls").
		Methods(http.MethodPost).
		Name("POST /pool/calls").
		HandlerFunc(utils.WrapHandlerFunc(p.handleCall))
}

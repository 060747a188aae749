// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a native fungible token kept in contract storage.
package token

import (
	"bytes"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/builtin/reverts"
	"github.com/vechain/stakingrewards/builtin/solidity"
	"github.com/vechain/stakingrewards/log"
	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/thor"
	"github.com/vechain/stakingrewards/tx"
)

var logger = log.WithContext("pkg", "token")

var (
	ErrInsufficientBalance   = reverts.NewRequireError("token: insufficient balance")
	ErrInsufficientAllowance = reverts.NewRequireError("token: insufficient allowance")
	ErrZeroAddress           = reverts.NewRequireError("token: zero address")
	ErrUnknownToken          = reverts.NewRequireError("token: unknown token")
)

var (
	TransferEvent = tx.EventID("Transfer(address,address,uint256)")
	ApprovalEvent = tx.EventID("Approval(address,address,uint256)")
)

// Token is the ledger a pool moves funds through.
type Token interface {
	Address() thor.Address
	BalanceOf(addr thor.Address) (*uint256.Int, error)
	Transfer(caller, to thor.Address, amount *uint256.Int) error
	TransferFrom(spender, from, to thor.Address, amount *uint256.Int) error
}

// Metadata describes a token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

type allowanceKey struct {
	owner, spender thor.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(append(make([]byte, 0, 2*thor.AddressLength), k.owner[:]...), k.spender[:]...)
}

var (
	slotMetadata    = solidity.Slot("token.metadata")
	slotTotalSupply = solidity.Slot("token.totalSupply")
	slotBalances    = solidity.Slot("token.balances")
	slotAllowances  = solidity.Slot("token.allowances")
)

// Native is a token whose ledger lives in the storage of its own address.
type Native struct {
	ctx     *solidity.Context
	emitter tx.Emitter

	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[thor.Address, *uint256.Int]
	allowances  *solidity.Mapping[allowanceKey, *uint256.Int]
}

var _ Token = (*Native)(nil)

// New binds a token to its storage. Events go to emitter.
func New(addr thor.Address, state *state.State, emitter tx.Emitter) *Native {
	ctx := solidity.NewContext(addr, state)
	return &Native{
		ctx:         ctx,
		emitter:     emitter,
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[thor.Address, *uint256.Int](ctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *uint256.Int](ctx, slotAllowances),
	}
}

func (t *Native) Address() thor.Address {
	return t.ctx.Address()
}

// SetMetadata stores name, symbol and decimals.
func (t *Native) SetMetadata(meta *Metadata) error {
	return t.ctx.State().EncodeStorage(t.ctx.Address(), slotMetadata, func() ([]byte, error) {
		return rlp.EncodeToBytes(meta)
	})
}

// Metadata returns the stored metadata, zero valued when never set.
func (t *Native) Metadata() (*Metadata, error) {
	var meta Metadata
	err := t.ctx.State().DecodeStorage(t.ctx.Address(), slotMetadata, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (t *Native) Name() (string, error) {
	meta, err := t.Metadata()
	if err != nil {
		return "", err
	}
	return meta.Name, nil
}

func (t *Native) Symbol() (string, error) {
	meta, err := t.Metadata()
	if err != nil {
		return "", err
	}
	return meta.Symbol, nil
}

func (t *Native) Decimals() (uint8, error) {
	meta, err := t.Metadata()
	if err != nil {
		return 0, err
	}
	return meta.Decimals, nil
}

func (t *Native) TotalSupply() (*uint256.Int, error) {
	return t.totalSupply.Get()
}

func (t *Native) BalanceOf(addr thor.Address) (*uint256.Int, error) {
	return t.balances.Get(addr)
}

func (t *Native) Allowance(owner, spender thor.Address) (*uint256.Int, error) {
	return t.allowances.Get(allowanceKey{owner, spender})
}

func (t *Native) setBalance(addr thor.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		t.balances.Delete(addr)
		return nil
	}
	return t.balances.Set(addr, amount)
}

func (t *Native) setAllowance(owner, spender thor.Address, amount *uint256.Int) error {
	key := allowanceKey{owner, spender}
	if amount.IsZero() {
		t.allowances.Delete(key)
		return nil
	}
	return t.allowances.Set(key, amount)
}

// move debits from and credits to. Balances are checked before any write.
func (t *Native) move(from, to thor.Address, amount *uint256.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	fromBal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if from != to {
		toBal, err := t.balances.Get(to)
		if err != nil {
			return err
		}
		if _, overflow := toBal.AddOverflow(toBal, amount); overflow {
			return solidity.ErrOverflow
		}
		fromBal.Sub(fromBal, amount)
		if err := t.setBalance(from, fromBal); err != nil {
			return err
		}
		if err := t.setBalance(to, toBal); err != nil {
			return err
		}
	}
	t.emitTransfer(from, to, amount)
	return nil
}

func (t *Native) emitTransfer(from, to thor.Address, amount *uint256.Int) {
	if t.emitter == nil {
		return
	}
	t.emitter.Emit(t.Address(),
		[]thor.Bytes32{TransferEvent, tx.AddressTopic(from), tx.AddressTopic(to)},
		tx.Words(amount))
}

// Transfer moves amount from caller to to.
func (t *Native) Transfer(caller, to thor.Address, amount *uint256.Int) error {
	if err := t.move(caller, to, amount); err != nil {
		return err
	}
	logger.Trace("transfer", "token", t.Address(), "from", caller, "to", to, "amount", amount)
	return nil
}

// Approve sets the amount spender may move out of caller's balance.
func (t *Native) Approve(caller, spender thor.Address, amount *uint256.Int) error {
	if caller.IsZero() || spender.IsZero() {
		return ErrZeroAddress
	}
	if err := t.setAllowance(caller, spender, amount); err != nil {
		return err
	}
	if t.emitter != nil {
		t.emitter.Emit(t.Address(),
			[]thor.Bytes32{ApprovalEvent, tx.AddressTopic(caller), tx.AddressTopic(spender)},
			tx.Words(amount))
	}
	return nil
}

// TransferFrom moves amount from from to to, spending spender's allowance.
// Spending one's own balance needs no allowance.
func (t *Native) TransferFrom(spender, from, to thor.Address, amount *uint256.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	if spender != from {
		allowance, err := t.Allowance(from, spender)
		if err != nil {
			return err
		}
		if allowance.Lt(amount) {
			return ErrInsufficientAllowance
		}
		// balance is checked before the allowance is spent
		bal, err := t.balances.Get(from)
		if err != nil {
			return err
		}
		if bal.Lt(amount) {
			return ErrInsufficientBalance
		}
		if err := t.setAllowance(from, spender, allowance.Sub(allowance, amount)); err != nil {
			return err
		}
	}
	return t.move(from, to, amount)
}

// Mint credits to with newly created supply.
func (t *Native) Mint(to thor.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if _, err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	bal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		return solidity.ErrOverflow
	}
	if err := t.setBalance(to, bal); err != nil {
		return err
	}
	t.emitTransfer(thor.Address{}, to, amount)
	return nil
}

// Burn destroys amount out of from's balance.
func (t *Native) Burn(from thor.Address, amount *uint256.Int) error {
	if from.IsZero() {
		return ErrZeroAddress
	}
	bal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if _, err := t.totalSupply.Sub(amount); err != nil {
		return err
	}
	if err := t.setBalance(from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	t.emitTransfer(from, thor.Address{}, amount)
	return nil
}

// Registry resolves token addresses to native tokens sharing one state.
type Registry struct {
	state   *state.State
	emitter tx.Emitter
	tokens  map[thor.Address]*Native
}

func NewRegistry(state *state.State, emitter tx.Emitter) *Registry {
	return &Registry{state: state, emitter: emitter, tokens: make(map[thor.Address]*Native)}
}

// Register makes addr resolvable and returns its token.
func (r *Registry) Register(addr thor.Address) *Native {
	if t, ok := r.tokens[addr]; ok {
		return t
	}
	t := New(addr, r.state, r.emitter)
	r.tokens[addr] = t
	return t
}

// Native returns the registered token at addr.
func (r *Registry) Native(addr thor.Address) (*Native, error) {
	t, ok := r.tokens[addr]
	if !ok {
		return nil, errors.WithMessage(ErrUnknownToken, addr.String())
	}
	return t, nil
}

// Token implements the resolver consumed by the pool.
func (r *Registry) Token(addr thor.Address) (Token, error) {
	t, err := r.Native(addr)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Addresses lists registered tokens.
func (r *Registry) Addresses() []thor.Address {
	out := make([]thor.Address, 0, len(r.tokens))
	for addr := range r.tokens {
		out = append(out, addr)
	}
	slices.SortFunc(out, func(a, b thor.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return out
}

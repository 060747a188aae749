// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakingrewards/state"
	"github.com/vechain/stakingrewards/test/datagen"
	"github.com/vechain/stakingrewards/thor"
)

func newTestContext() *Context {
	return NewContext(datagen.RandAddress(), state.NewMem())
}

type testStruct struct {
	Amount *uint256.Int
	Since  uint64
	Owner  thor.Address
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, Slot("total"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	u.Set(uint256.NewInt(1000))
	v, err = u.Add(uint256.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1500), v)

	v, err = u.Sub(uint256.NewInt(200))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1300), v)

	_, err = u.Sub(uint256.NewInt(1301))
	assert.ErrorIs(t, err, ErrOverflow)

	maxU := new(uint256.Int).SetAllOne()
	u.Set(maxU)
	_, err = u.Add(uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)

	// failed ops leave the stored value untouched
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, maxU, v)
}

func TestUint64AndAddress(t *testing.T) {
	ctx := newTestContext()

	ts := NewUint64(ctx, Slot("finish"))
	got, err := ts.Get()
	require.NoError(t, err)
	assert.Zero(t, got)

	ts.Set(1_700_000_000)
	got, err = ts.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), got)

	owner := datagen.RandAddress()
	addr := NewAddress(ctx, Slot("owner"))
	addr.Set(owner)
	a, err := addr.Get()
	require.NoError(t, err)
	assert.Equal(t, owner, a)
}

func TestMappingPointer(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[thor.Address, *testStruct](ctx, Slot("ledgers"))
	key := datagen.RandAddress()

	got, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Amount)
	assert.Zero(t, got.Since)

	value := &testStruct{Amount: uint256.NewInt(42), Since: 7, Owner: datagen.RandAddress()}
	require.NoError(t, m.Set(key, value))

	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	// keys do not collide
	other, err := m.Get(datagen.RandAddress())
	require.NoError(t, err)
	assert.Zero(t, other.Since)

	m.Delete(key)
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)
}

func TestMappingValue(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[thor.Address, thor.Address](ctx, Slot("delegates"))
	key := datagen.RandAddress()

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	value := datagen.RandAddress()
	require.NoError(t, m.Set(key, value))
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestMappingRevert(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[thor.Address, *testStruct](ctx, Slot("ledgers"))
	key := datagen.RandAddress()

	require.NoError(t, m.Set(key, &testStruct{Since: 1}))
	cp := ctx.State().NewCheckpoint()
	require.NoError(t, m.Set(key, &testStruct{Since: 2}))
	ctx.State().RevertTo(cp)

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Since)
}

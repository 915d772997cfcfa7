// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/muxdb"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/xenv"
)

var (
	alice = core.BytesToAddress([]byte("alice"))
	bob   = core.BytesToAddress([]byte("bob"))
	pool  = core.BytesToAddress([]byte("pool"))
)

func newToken(t *testing.T, now uint64) (*Token, *xenv.Environment) {
	st := state.New(muxdb.NewMem().NewStore("state"))
	env := xenv.New(st, &xenv.BlockContext{Time: now}, nil)
	tok := New(core.BytesToAddress([]byte("Token")), env)
	require.NoError(t, tok.Initialize("Stake", "STK", 18))
	return tok, env
}

func balanceOf(t *testing.T, tok *Token, addr core.Address) uint64 {
	bal, err := tok.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Uint64()
}

func TestMeta(t *testing.T) {
	tok, _ := newToken(t, 1)

	meta, err := tok.Meta()
	require.NoError(t, err)
	assert.Equal(t, "Stake", meta.Name)
	assert.Equal(t, "STK", meta.Symbol)
	assert.Equal(t, uint8(18), meta.Decimals)

	assert.Equal(t, ErrAlreadyInitialized, tok.Initialize("x", "x", 0))
}

func TestMintTransfer(t *testing.T) {
	tok, env := newToken(t, 1)

	require.NoError(t, tok.Mint(alice, uint256.NewInt(100)))
	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), supply.Uint64())

	require.NoError(t, tok.Transfer(alice, bob, uint256.NewInt(30)))
	assert.Equal(t, uint64(70), balanceOf(t, tok, alice))
	assert.Equal(t, uint64(30), balanceOf(t, tok, bob))

	assert.Equal(t, ErrNotEnoughBalance, tok.Transfer(bob, alice, uint256.NewInt(31)))
	assert.Equal(t, ErrZeroAddress, tok.Transfer(bob, core.Address{}, uint256.NewInt(1)))

	// self transfer keeps the balance
	require.NoError(t, tok.Transfer(bob, bob, uint256.NewInt(30)))
	assert.Equal(t, uint64(30), balanceOf(t, tok, bob))

	evs := env.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, "Transfer", evs[1].Name)
	assert.Equal(t, core.BytesToBytes32(alice.Bytes()), evs[1].Topics[0])
	assert.Equal(t, core.BytesToBytes32(bob.Bytes()), evs[1].Topics[1])
	assert.Equal(t, uint64(30), evs[1].Values[0].Uint64())
}

func TestTransferFrom(t *testing.T) {
	tok, _ := newToken(t, 1)
	require.NoError(t, tok.Mint(alice, uint256.NewInt(100)))

	assert.Equal(t, ErrNotEnoughAllowance, tok.TransferFrom(pool, alice, pool, uint256.NewInt(1)))

	require.NoError(t, tok.Approve(alice, pool, uint256.NewInt(50)))
	require.NoError(t, tok.TransferFrom(pool, alice, pool, uint256.NewInt(20)))

	allowance, err := tok.Allowance(alice, pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), allowance.Uint64())
	assert.Equal(t, uint64(20), balanceOf(t, tok, pool))

	// infinite allowance is never spent
	infinite := new(uint256.Int).SetAllOne()
	require.NoError(t, tok.Approve(alice, pool, infinite))
	require.NoError(t, tok.TransferFrom(pool, alice, pool, uint256.NewInt(80)))
	allowance, err = tok.Allowance(alice, pool)
	require.NoError(t, err)
	assert.True(t, allowance.Eq(infinite))

	require.NoError(t, tok.Approve(bob, pool, uint256.NewInt(10)))
	assert.Equal(t, ErrNotEnoughBalance, tok.TransferFrom(pool, bob, pool, uint256.NewInt(10)))
}

func TestPermit(t *testing.T) {
	tok, _ := newToken(t, 1000)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := core.Address(crypto.PubkeyToAddress(key.PublicKey))
	value := uint256.NewInt(500)

	digest, err := tok.PermitDigest(owner, pool, value, 0, 2000)
	require.NoError(t, err)
	sig, err := SignPermit(digest, key)
	require.NoError(t, err)

	assert.Equal(t, ErrExpired, tok.Permit(owner, pool, value, 999, sig))
	assert.Equal(t, ErrInvalidSignature, tok.Permit(owner, pool, value, 2000, sig[:64]))
	assert.Equal(t, ErrInvalidSignature, tok.Permit(alice, pool, value, 2000, sig))

	// 27/28 style recovery id is accepted
	legacy := append([]byte(nil), sig...)
	legacy[64] += 27
	require.NoError(t, tok.Permit(owner, pool, value, 2000, legacy))

	allowance, err := tok.Allowance(owner, pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), allowance.Uint64())

	nonce, err := tok.Nonces(owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	// replay fails since the nonce moved on
	assert.Equal(t, ErrInvalidSignature, tok.Permit(owner, pool, value, 2000, sig))
}

func TestDomainSeparatorDependsOnAddress(t *testing.T) {
	tok, env := newToken(t, 1)
	other := New(core.BytesToAddress([]byte("Other")), env)
	require.NoError(t, other.Initialize("Stake", "STK", 18))

	d1, err := tok.DomainSeparator()
	require.NoError(t, err)
	d2, err := other.DomainSeparator()
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

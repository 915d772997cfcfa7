// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

var logger = log.WithContext("pkg", "token")

// Code marks an address as hosting a token.
var Code = []byte("token")

var (
	ErrAlreadyInitialized = reverts.NewRequireError("Token: ALREADY_INITIALIZED")
	ErrNotEnoughBalance   = reverts.NewRequireError("Token: NOT_ENOUGH_BALANCE")
	ErrNotEnoughAllowance = reverts.NewRequireError("Token: NOT_ENOUGH")
	ErrZeroAddress        = reverts.NewRequireError("Token: ZERO_ADDRESS")
	ErrExpired            = reverts.NewRequireError("Token: EXPIRED")
	ErrInvalidSignature   = reverts.NewRequireError("Token: INVALID_SIGNATURE")
)

var (
	slotMeta       = core.BytesToBytes32([]byte("token-meta"))
	slotSupply     = core.BytesToBytes32([]byte("token-supply"))
	slotBalances   = core.BytesToBytes32([]byte("token-balances"))
	slotAllowances = core.BytesToBytes32([]byte("token-allowances"))
	slotNonces     = core.BytesToBytes32([]byte("token-nonces"))
)

// Meta describes a token.
type Meta struct {
	Initialized bool
	Name        string
	Symbol      string
	Decimals    uint8
}

func allowanceKey(owner, spender core.Address) core.Bytes32 {
	return core.Blake2b(owner[:], spender[:])
}

// Token implements native methods of a fungible token with signed permits.
type Token struct {
	addr       core.Address
	env        *xenv.Environment
	meta       *solidity.Value[Meta]
	supply     *solidity.Uint256
	balances   *solidity.Mapping[core.Address, *uint256.Int]
	allowances *solidity.Mapping[core.Bytes32, *uint256.Int]
	nonces     *solidity.Mapping[core.Address, uint64]
}

// New create a new instance.
func New(addr core.Address, env *xenv.Environment) *Token {
	sctx := solidity.NewContext(addr, env.State())
	return &Token{
		addr:       addr,
		env:        env,
		meta:       solidity.NewValue[Meta](sctx, slotMeta),
		supply:     solidity.NewUint256(sctx, slotSupply),
		balances:   solidity.NewMapping[core.Address, *uint256.Int](sctx, slotBalances),
		allowances: solidity.NewMapping[core.Bytes32, *uint256.Int](sctx, slotAllowances),
		nonces:     solidity.NewMapping[core.Address, uint64](sctx, slotNonces),
	}
}

// Address returns the token address.
func (t *Token) Address() core.Address {
	return t.addr
}

// Initialize sets name, symbol and decimals once.
func (t *Token) Initialize(name, symbol string, decimals uint8) error {
	meta, err := t.meta.Get()
	if err != nil {
		return err
	}
	if meta.Initialized {
		return ErrAlreadyInitialized
	}
	return t.meta.Set(Meta{
		Initialized: true,
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
	})
}

// Meta returns the token description.
func (t *Token) Meta() (Meta, error) {
	return t.meta.Get()
}

// TotalSupply returns the amount of minted tokens.
func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.supply.Get()
}

// BalanceOf returns the balance of owner.
func (t *Token) BalanceOf(owner core.Address) (*uint256.Int, error) {
	bal, err := t.balances.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

// Allowance returns the amount spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender core.Address) (*uint256.Int, error) {
	allowance, err := t.allowances.Get(allowanceKey(owner, spender))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	return allowance, nil
}

// Nonces returns the next permit nonce of owner.
func (t *Token) Nonces(owner core.Address) (uint64, error) {
	return t.nonces.Get(owner)
}

// Mint creates amount of tokens for to.
func (t *Token) Mint(to core.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if err := t.supply.Add(amount); err != nil {
		return err
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		return solidity.ErrOverflow
	}
	if err := t.balances.Set(to, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	t.env.Log(tx.NewEvent(t.addr, "Transfer").
		WithTopics(core.Address{}, to).
		WithValues(amount))
	return nil
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(from, to core.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return ErrNotEnoughBalance
	}
	if err := t.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}

	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	// bounded by total supply
	if err := t.balances.Set(to, toBal.Add(toBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}

	logger.Trace("transfer", "token", t.addr, "from", from, "to", to, "amount", amount)
	t.env.Log(tx.NewEvent(t.addr, "Transfer").
		WithTopics(from, to).
		WithValues(amount))
	return nil
}

// TransferFrom moves amount from from to to, spending the allowance of spender.
// An allowance of 2^256-1 is never decreased.
func (t *Token) TransferFrom(spender, from, to core.Address, amount *uint256.Int) error {
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Lt(amount) {
		return ErrNotEnoughAllowance
	}
	if !isInfinite(allowance) {
		if err := t.allowances.Set(allowanceKey(from, spender), allowance.Sub(allowance, amount)); err != nil {
			return errors.Wrap(err, "failed to set allowance")
		}
	}
	return t.Transfer(from, to, amount)
}

// Approve sets the allowance of spender over the tokens of owner.
func (t *Token) Approve(owner, spender core.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return ErrZeroAddress
	}
	if err := t.allowances.Set(allowanceKey(owner, spender), new(uint256.Int).Set(amount)); err != nil {
		return errors.Wrap(err, "failed to set allowance")
	}
	t.env.Log(tx.NewEvent(t.addr, "Approval").
		WithTopics(owner, spender).
		WithValues(amount))
	return nil
}

func isInfinite(v *uint256.Int) bool {
	return v.Eq(new(uint256.Int).SetAllOne())
}

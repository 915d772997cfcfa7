// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/rewardpool/builtin/access"
	"github.com/vechain/rewardpool/builtin/factory"
	"github.com/vechain/rewardpool/builtin/staking"
	"github.com/vechain/rewardpool/builtin/token"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/xenv"
)

// Builtin contracts binding.
var (
	AccessRegistry = &accessContract{mustNewContract("AccessRegistry", access.Code)}
	Factory        = &factoryContract{mustNewContract("Factory", factory.Code)}
)

type contract struct {
	name    string
	Address core.Address
	Code    []byte
}

func mustNewContract(name string, code []byte) *contract {
	return &contract{
		name:    name,
		Address: core.BytesToAddress([]byte(name)),
		Code:    code,
	}
}

// Name returns the contract name.
func (c *contract) Name() string {
	return c.name
}

type (
	accessContract  struct{ *contract }
	factoryContract struct{ *contract }
)

func (a *accessContract) Native(env *xenv.Environment) *access.Access {
	return access.New(a.Address, env)
}

func (f *factoryContract) Native(env *xenv.Environment) *factory.Factory {
	return factory.New(f.Address, env, NewBinder(env))
}

// Token returns the token at addr.
func Token(addr core.Address, env *xenv.Environment) *token.Token {
	return token.New(addr, env)
}

// Staking returns the staking pool at addr.
func Staking(addr core.Address, env *xenv.Environment) *staking.Staking {
	return staking.New(addr, env, NewBinder(env))
}

// TokenAddress derives the address of the seq-th token created at genesis.
func TokenAddress(seq uint64) core.Address {
	return core.CreateContractAddress(core.BytesToAddress([]byte("Token")), seq)
}

// PoolAddress derives the address of the seq-th pool deployed by the factory.
func PoolAddress(seq uint64) core.Address {
	return core.CreateContractAddress(Factory.Address, seq)
}

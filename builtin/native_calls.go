// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/builtin/access"
	"github.com/vechain/rewardpool/builtin/factory"
	"github.com/vechain/rewardpool/builtin/planner"
	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/builtin/staking"
	"github.com/vechain/rewardpool/builtin/token"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/xenv"
)

var (
	ErrNoContract    = reverts.NewRequireError("Builtin: NO_CONTRACT")
	ErrUnknownMethod = reverts.NewRequireError("Builtin: UNKNOWN_METHOD")
)

// nativeMethod runs a method against the environment of a call.
type nativeMethod struct {
	Name string
	Run  func(env *xenv.Environment) any
}

// native methods keyed by contract code, then method name
var nativeMethods = make(map[string]map[string]*nativeMethod)

func register(code []byte, methods []*nativeMethod) {
	table := make(map[string]*nativeMethod, len(methods))
	for _, m := range methods {
		if _, dup := table[m.Name]; dup {
			panic("duplicated native method " + m.Name)
		}
		table[m.Name] = m
	}
	nativeMethods[string(code)] = table
}

func init() {
	initAccessMethods()
	initTokenMethods()
	initStakingMethods()
	initFactoryMethods()
}

// Call runs method of the contract at env.To() on behalf of env.Caller().
// Events are logged to env.
func Call(env *xenv.Environment, method string) ([]byte, error) {
	code, err := env.State().GetCode(env.To())
	if err != nil {
		return nil, err
	}
	table, ok := nativeMethods[string(code)]
	if !ok {
		return nil, ErrNoContract
	}
	m, ok := table[method]
	if !ok {
		return nil, ErrUnknownMethod
	}
	return env.Call(m.Run)()
}

// HasMethod reports whether a contract with code exposes method.
func HasMethod(code []byte, method string) bool {
	_, ok := nativeMethods[string(code)][method]
	return ok
}

func check(env *xenv.Environment, err error) {
	if err != nil {
		env.Stop(err)
	}
}

func initAccessMethods() {
	type roleArgs struct {
		Role    core.Bytes32
		Account core.Address
	}
	register(access.Code, []*nativeMethod{
		{"grantRole", func(env *xenv.Environment) any {
			var args roleArgs
			env.ParseArgs(&args)
			check(env, access.New(env.To(), env).GrantRole(env.Caller(), args.Role, args.Account))
			return nil
		}},
		{"revokeRole", func(env *xenv.Environment) any {
			var args roleArgs
			env.ParseArgs(&args)
			check(env, access.New(env.To(), env).RevokeRole(env.Caller(), args.Role, args.Account))
			return nil
		}},
		{"renounceRole", func(env *xenv.Environment) any {
			var args struct {
				Role core.Bytes32
			}
			env.ParseArgs(&args)
			check(env, access.New(env.To(), env).RenounceRole(env.Caller(), args.Role))
			return nil
		}},
	})
}

func initTokenMethods() {
	register(token.Code, []*nativeMethod{
		{"transfer", func(env *xenv.Environment) any {
			var args struct {
				To     core.Address
				Amount *uint256.Int
			}
			env.ParseArgs(&args)
			check(env, token.New(env.To(), env).Transfer(env.Caller(), args.To, args.Amount))
			return nil
		}},
		{"transferFrom", func(env *xenv.Environment) any {
			var args struct {
				From   core.Address
				To     core.Address
				Amount *uint256.Int
			}
			env.ParseArgs(&args)
			check(env, token.New(env.To(), env).TransferFrom(env.Caller(), args.From, args.To, args.Amount))
			return nil
		}},
		{"approve", func(env *xenv.Environment) any {
			var args struct {
				Spender core.Address
				Amount  *uint256.Int
			}
			env.ParseArgs(&args)
			check(env, token.New(env.To(), env).Approve(env.Caller(), args.Spender, args.Amount))
			return nil
		}},
		{"permit", func(env *xenv.Environment) any {
			var args struct {
				Owner     core.Address
				Spender   core.Address
				Value     *uint256.Int
				Deadline  uint64
				Signature []byte
			}
			env.ParseArgs(&args)
			check(env, token.New(env.To(), env).Permit(args.Owner, args.Spender, args.Value, args.Deadline, args.Signature))
			return nil
		}},
	})
}

func initStakingMethods() {
	type amountArgs struct {
		Amount *uint256.Int
	}
	register(staking.Code, []*nativeMethod{
		{"stake", func(env *xenv.Environment) any {
			var args amountArgs
			env.ParseArgs(&args)
			check(env, Staking(env.To(), env).Stake(env.Caller(), args.Amount))
			return nil
		}},
		{"stakeWithPermit", func(env *xenv.Environment) any {
			var args struct {
				Amount    *uint256.Int
				Deadline  uint64
				Signature []byte
			}
			env.ParseArgs(&args)
			check(env, Staking(env.To(), env).StakeWithPermit(env.Caller(), args.Amount, args.Deadline, args.Signature))
			return nil
		}},
		{"unstake", func(env *xenv.Environment) any {
			var args amountArgs
			env.ParseArgs(&args)
			check(env, Staking(env.To(), env).Unstake(env.Caller(), args.Amount))
			return nil
		}},
		{"claim", func(env *xenv.Environment) any {
			amount, err := Staking(env.To(), env).Claim(env.Caller())
			check(env, err)
			return amount
		}},
		{"appendIntervals", func(env *xenv.Environment) any {
			var args struct {
				Intervals []*planner.Params
			}
			env.ParseArgs(&args)
			added, err := Staking(env.To(), env).AppendIntervals(env.Caller(), args.Intervals)
			check(env, err)
			return uint64(len(added))
		}},
		{"removeIntervals", func(env *xenv.Environment) any {
			var args struct {
				From uint64
			}
			env.ParseArgs(&args)
			count, err := Staking(env.To(), env).RemoveIntervals(env.Caller(), args.From)
			check(env, err)
			return count
		}},
		{"setPausedFunctions", func(env *xenv.Environment) any {
			var args struct {
				Flags staking.PausedFunctions
			}
			env.ParseArgs(&args)
			check(env, Staking(env.To(), env).SetPausedFunctions(env.Caller(), args.Flags))
			return nil
		}},
		{"upgradeTo", func(env *xenv.Environment) any {
			var args struct {
				Version uint64
			}
			env.ParseArgs(&args)
			check(env, Staking(env.To(), env).UpgradeTo(env.Caller(), args.Version))
			return nil
		}},
	})
}

func initFactoryMethods() {
	register(factory.Code, []*nativeMethod{
		{"deploy", func(env *xenv.Environment) any {
			var args struct {
				StakeToken  core.Address
				RewardToken core.Address
			}
			env.ParseArgs(&args)
			pool, err := factory.New(env.To(), env, NewBinder(env)).Deploy(env.Caller(), staking.Config{
				StakeToken:  args.StakeToken,
				RewardToken: args.RewardToken,
			})
			check(env, err)
			return pool
		}},
	})
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/rewardpool/builtin"
	"github.com/vechain/rewardpool/builtin/access"
	"github.com/vechain/rewardpool/builtin/factory"
	"github.com/vechain/rewardpool/builtin/planner"
	"github.com/vechain/rewardpool/builtin/token"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

// Config is user customized genesis.
type Config struct {
	Name          string         `yaml:"name"`
	ChainTag      uint8          `yaml:"chainTag"`
	Timestamp     uint64         `yaml:"timestamp"`
	Admin         core.Address   `yaml:"admin"`
	StakingAdmins []core.Address `yaml:"stakingAdmins"`
	Tokens        []TokenConfig  `yaml:"tokens"`
	Pools         []PoolConfig   `yaml:"pools"`
}

// TokenConfig describes a token created at genesis.
type TokenConfig struct {
	Name     string       `yaml:"name"`
	Symbol   string       `yaml:"symbol"`
	Decimals uint8        `yaml:"decimals"`
	Balances []Allocation `yaml:"balances"`
}

// Allocation mints Amount to Address.
type Allocation struct {
	Address core.Address         `yaml:"address"`
	Amount  math.HexOrDecimal256 `yaml:"amount"`
}

// PoolConfig describes a pool deployed at genesis. Tokens refer to
// entries of Config.Tokens by index.
type PoolConfig struct {
	StakeToken  uint64           `yaml:"stakeToken"`
	RewardToken uint64           `yaml:"rewardToken"`
	Intervals   []IntervalConfig `yaml:"intervals"`
}

// IntervalConfig is a reward interval funded by the admin.
type IntervalConfig struct {
	Amount math.HexOrDecimal256 `yaml:"amount"`
	Start  uint64               `yaml:"start"`
	End    uint64               `yaml:"end"`
}

func toU256(v *math.HexOrDecimal256) (*uint256.Int, error) {
	b := (*big.Int)(v)
	if b.Sign() < 0 {
		return nil, errors.New("negative amount")
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.New("amount exceeds 256 bits")
	}
	return u, nil
}

// LoadConfig reads a yaml genesis config from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis config")
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a yaml genesis config.
func ParseConfig(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for obvious mistakes. Schedule rules are left to the planner.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("name required")
	}
	if c.Admin.IsZero() {
		return errors.New("admin required")
	}
	for i, tok := range c.Tokens {
		for _, alloc := range tok.Balances {
			if alloc.Address.IsZero() {
				return errors.Errorf("token %d: zero address allocation", i)
			}
			if _, err := toU256(&alloc.Amount); err != nil {
				return errors.WithMessagef(err, "token %d", i)
			}
		}
	}
	isStakingAdmin := false
	for _, addr := range c.StakingAdmins {
		if addr == c.Admin {
			isStakingAdmin = true
		}
	}
	for i, pool := range c.Pools {
		if pool.StakeToken >= uint64(len(c.Tokens)) || pool.RewardToken >= uint64(len(c.Tokens)) {
			return errors.Errorf("pool %d: token index out of range", i)
		}
		if len(pool.Intervals) > 0 && !isStakingAdmin {
			return errors.Errorf("pool %d: admin funds intervals but is not a staking admin", i)
		}
		for j, iv := range pool.Intervals {
			if _, err := toU256(&iv.Amount); err != nil {
				return errors.WithMessagef(err, "pool %d interval %d", i, j)
			}
		}
	}
	return nil
}

// NewGenesis creates a genesis from config.
func NewGenesis(cfg *Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	builder := new(Builder).
		ChainTag(cfg.ChainTag).
		Timestamp(cfg.Timestamp).
		State(func(env *xenv.Environment) error {
			st := env.State()
			if err := st.SetCode(builtin.AccessRegistry.Address, access.Code); err != nil {
				return err
			}
			registry := builtin.AccessRegistry.Native(env)
			if err := registry.Initialize(cfg.Admin); err != nil {
				return err
			}
			for _, addr := range cfg.StakingAdmins {
				if err := registry.GrantRole(cfg.Admin, core.RoleStakingAdmin, addr); err != nil {
					return err
				}
			}

			if err := st.SetCode(builtin.Factory.Address, factory.Code); err != nil {
				return err
			}
			if err := builtin.Factory.Native(env).Initialize(builtin.AccessRegistry.Address); err != nil {
				return err
			}

			for i, tc := range cfg.Tokens {
				addr := builtin.TokenAddress(uint64(i))
				if err := st.SetCode(addr, token.Code); err != nil {
					return err
				}
				tok := builtin.Token(addr, env)
				if err := tok.Initialize(tc.Name, tc.Symbol, tc.Decimals); err != nil {
					return err
				}
				for _, alloc := range tc.Balances {
					amount, err := toU256(&alloc.Amount)
					if err != nil {
						return err
					}
					if err := tok.Mint(alloc.Address, amount); err != nil {
						return err
					}
				}
			}
			return nil
		})

	for i, pc := range cfg.Pools {
		stakeToken := builtin.TokenAddress(pc.StakeToken)
		rewardToken := builtin.TokenAddress(pc.RewardToken)
		builder.Call(
			tx.NewClause(builtin.Factory.Address, "deploy").MustWithArgs(stakeToken, rewardToken),
			cfg.Admin)

		if len(pc.Intervals) == 0 {
			continue
		}
		var (
			pool      = builtin.PoolAddress(uint64(i))
			intervals = make([]*planner.Params, 0, len(pc.Intervals))
			sum       = new(uint256.Int)
		)
		for _, iv := range pc.Intervals {
			amount, err := toU256(&iv.Amount)
			if err != nil {
				return nil, err
			}
			if _, overflow := sum.AddOverflow(sum, amount); overflow {
				return nil, errors.Errorf("pool %d: interval amounts overflow", i)
			}
			intervals = append(intervals, &planner.Params{Amount: amount, Start: iv.Start, End: iv.End})
		}
		builder.
			Call(tx.NewClause(rewardToken, "approve").MustWithArgs(pool, sum), cfg.Admin).
			Call(tx.NewClause(pool, "appendIntervals").MustWithArgs(intervals), cfg.Admin)
	}
	return newGenesis(builder, cfg.Name), nil
}

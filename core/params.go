// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package core

import (
	"encoding/hex"

	"github.com/holiman/uint256"
)

// Factor is the fixed-point scale of the reward-per-token accumulator.
const Factor uint64 = 1e18

// Roles known by the access registry.
var (
	RoleDefaultAdmin = Bytes32{}
	RoleStakingAdmin = Keccak256([]byte("STAKING_ADMIN_ROLE"))
)

// FactorU256 returns Factor as uint256.
func FactorU256() *uint256.Int {
	return uint256.NewInt(Factor)
}

// InterfaceID identifies a set of methods, as used by supportsInterface.
type InterfaceID [4]byte

func (id InterfaceID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Selector returns the 4-byte method selector of the given signature.
func Selector(sig string) (id InterfaceID) {
	h := Keccak256([]byte(sig))
	copy(id[:], h[:4])
	return
}

// NewInterfaceID xors the selectors of all method signatures.
func NewInterfaceID(sigs ...string) (id InterfaceID) {
	for _, sig := range sigs {
		sel := Selector(sig)
		for i := range id {
			id[i] ^= sel[i]
		}
	}
	return
}

// Interface ids reported by the built-in contracts.
var (
	IERC165 = NewInterfaceID("supportsInterface(bytes4)")

	IAccessControl = NewInterfaceID(
		"hasRole(bytes32,address)",
		"getRoleAdmin(bytes32)",
		"grantRole(bytes32,address)",
		"revokeRole(bytes32,address)",
		"renounceRole(bytes32,address)",
	)

	IStakingV1 = NewInterfaceID(
		"stake(uint256)",
		"stakeWithPermit(uint256,uint256,uint8,bytes32,bytes32)",
		"unstake(uint256)",
		"claim()",
		"pendingReward(address)",
		"appendIntervals((uint256,uint256,uint256,uint256)[])",
		"removeIntervals(uint256)",
		"setPausedFunctions((bool,bool,bool))",
		"totalStakes()",
		"paidAmount()",
	)
)

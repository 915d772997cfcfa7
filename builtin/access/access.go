// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package access

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/builtin/reverts"
	"github.com/vechain/rewardpool/builtin/solidity"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/tx"
	"github.com/vechain/rewardpool/xenv"
)

var logger = log.WithContext("pkg", "access")

// Code marks an address as hosting an access registry.
var Code = []byte("access-registry")

var (
	ErrForbidden          = reverts.NewRequireError("AccessRegistry: FORBIDDEN")
	ErrAlreadyInitialized = reverts.NewRequireError("AccessRegistry: ALREADY_INITIALIZED")
	ErrZeroAddress        = reverts.NewRequireError("AccessRegistry: ZERO_ADDRESS")
)

var (
	slotInitialized = core.BytesToBytes32([]byte("access-initialized"))
	slotMembers     = core.BytesToBytes32([]byte("access-members"))
)

func memberKey(role core.Bytes32, account core.Address) core.Bytes32 {
	return core.Blake2b(role[:], account[:])
}

// Access implements native methods of the `AccessRegistry` contract.
// Every role is administered by the default admin role.
type Access struct {
	addr        core.Address
	env         *xenv.Environment
	initialized *solidity.Value[bool]
	members     *solidity.Mapping[core.Bytes32, bool]
}

// New create a new instance.
func New(addr core.Address, env *xenv.Environment) *Access {
	sctx := solidity.NewContext(addr, env.State())
	return &Access{
		addr:        addr,
		env:         env,
		initialized: solidity.NewValue[bool](sctx, slotInitialized),
		members:     solidity.NewMapping[core.Bytes32, bool](sctx, slotMembers),
	}
}

// Initialize grants the default admin role to admin.
func (a *Access) Initialize(admin core.Address) error {
	initialized, err := a.initialized.Get()
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}
	if admin.IsZero() {
		return ErrZeroAddress
	}
	if err := a.initialized.Set(true); err != nil {
		return err
	}
	return a.grant(core.RoleDefaultAdmin, admin, admin)
}

// HasRole returns whether account holds role.
func (a *Access) HasRole(role core.Bytes32, account core.Address) (bool, error) {
	ok, err := a.members.Get(memberKey(role, account))
	if err != nil {
		return false, errors.Wrap(err, "failed to get role member")
	}
	return ok, nil
}

// GetRoleAdmin returns the role that administers role.
func (a *Access) GetRoleAdmin(_ core.Bytes32) core.Bytes32 {
	return core.RoleDefaultAdmin
}

func (a *Access) checkAdmin(caller core.Address) error {
	ok, err := a.HasRole(core.RoleDefaultAdmin, caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// GrantRole grants role to account. The caller must be an admin.
func (a *Access) GrantRole(caller core.Address, role core.Bytes32, account core.Address) error {
	if err := a.checkAdmin(caller); err != nil {
		return err
	}
	return a.grant(role, account, caller)
}

// RevokeRole revokes role from account. The caller must be an admin.
func (a *Access) RevokeRole(caller core.Address, role core.Bytes32, account core.Address) error {
	if err := a.checkAdmin(caller); err != nil {
		return err
	}
	return a.revoke(role, account, caller)
}

// RenounceRole drops role held by the caller.
func (a *Access) RenounceRole(caller core.Address, role core.Bytes32) error {
	return a.revoke(role, caller, caller)
}

// SupportsInterface reports IAccessControl and IERC165.
func (a *Access) SupportsInterface(id core.InterfaceID) bool {
	return id == core.IAccessControl || id == core.IERC165
}

func (a *Access) grant(role core.Bytes32, account, sender core.Address) error {
	ok, err := a.HasRole(role, account)
	if err != nil || ok {
		return err
	}
	if err := a.members.Set(memberKey(role, account), true); err != nil {
		return errors.Wrap(err, "failed to set role member")
	}
	logger.Debug("role granted", "role", role, "account", account, "sender", sender)
	a.env.Log(tx.NewEvent(a.addr, "RoleGranted").
		WithRawTopics(role).
		WithTopics(account, sender))
	return nil
}

func (a *Access) revoke(role core.Bytes32, account, sender core.Address) error {
	ok, err := a.HasRole(role, account)
	if err != nil || !ok {
		return err
	}
	a.members.Delete(memberKey(role, account))
	logger.Debug("role revoked", "role", role, "account", account, "sender", sender)
	a.env.Log(tx.NewEvent(a.addr, "RoleRevoked").
		WithRawTopics(role).
		WithTopics(account, sender))
	return nil
}

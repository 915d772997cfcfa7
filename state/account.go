// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/kv"
)

// Account is the persisted header of an address.
// Nonce counts transactions sent from an external account,
// Code names the built-in contract living at a contract address.
type Account struct {
	Nonce uint64
	Code  []byte
}

// IsEmpty returns if an account is empty.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && len(a.Code) == 0
}

func emptyAccount() *Account {
	return &Account{}
}

const (
	accountSpace = byte('a')
	storageSpace = byte('s')
)

func accountDBKey(addr core.Address) []byte {
	return append([]byte{accountSpace}, addr[:]...)
}

func storageDBKey(addr core.Address, key core.Bytes32) []byte {
	k := make([]byte, 0, 1+len(addr)+len(key))
	k = append(k, storageSpace)
	k = append(k, addr[:]...)
	return append(k, key[:]...)
}

// loadAccount load an account object by address from the source getter.
// If the given address is not found, an empty account will be returned.
func loadAccount(src kv.Getter, addr core.Address) (*Account, error) {
	data, err := src.Get(accountDBKey(addr))
	if err != nil {
		if src.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// saveAccount save account into the putter.
// If the given account is empty, the value for given address is deleted.
func saveAccount(dst kv.Putter, addr core.Address, a *Account) error {
	if a.IsEmpty() {
		return dst.Delete(accountDBKey(addr))
	}
	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	return dst.Put(accountDBKey(addr), data)
}

// loadStorage load storage value for given key.
func loadStorage(src kv.Getter, addr core.Address, key core.Bytes32) (rlp.RawValue, error) {
	data, err := src.Get(storageDBKey(addr, key))
	if err != nil {
		if src.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// saveStorage save value for given key.
// If the data is zero, the given key will be deleted.
func saveStorage(dst kv.Putter, addr core.Address, key core.Bytes32, data rlp.RawValue) error {
	if len(data) == 0 {
		return dst.Delete(storageDBKey(addr, key))
	}
	return dst.Put(storageDBKey(addr, key), data)
}

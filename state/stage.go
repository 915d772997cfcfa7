// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/kv"
)

// Stage abstracts the flattened changes of a State.
type Stage struct {
	accounts []stagedAccount
	storage  []stagedStorage
}

type stagedAccount struct {
	addr core.Address
	acc  *Account
}

type stagedStorage struct {
	key storageKey
	raw rlp.RawValue
}

func newStage(accounts map[core.Address]*Account, storage map[storageKey]rlp.RawValue) *Stage {
	s := &Stage{
		accounts: make([]stagedAccount, 0, len(accounts)),
		storage:  make([]stagedStorage, 0, len(storage)),
	}
	for addr, acc := range accounts {
		s.accounts = append(s.accounts, stagedAccount{addr, acc})
	}
	for key, raw := range storage {
		s.storage = append(s.storage, stagedStorage{key, raw})
	}

	// deterministic order
	sort.Slice(s.accounts, func(i, j int) bool {
		return bytes.Compare(s.accounts[i].addr[:], s.accounts[j].addr[:]) < 0
	})
	sort.Slice(s.storage, func(i, j int) bool {
		return bytes.Compare(
			storageDBKey(s.storage[i].key.addr, s.storage[i].key.key),
			storageDBKey(s.storage[j].key.addr, s.storage[j].key.key)) < 0
	})
	return s
}

// Len returns count of changed entries.
func (s *Stage) Len() int {
	return len(s.accounts) + len(s.storage)
}

// Hash computes the digest of all changes.
func (s *Stage) Hash() core.Bytes32 {
	return core.Blake2bFn(func(w io.Writer) {
		for _, a := range s.accounts {
			w.Write(a.addr[:])
			rlp.Encode(w, a.acc)
		}
		for _, st := range s.storage {
			w.Write(st.key.addr[:])
			w.Write(st.key.key[:])
			w.Write(st.raw)
		}
	})
}

// Commit writes all changes into the putter.
func (s *Stage) Commit(putter kv.Putter) error {
	for _, a := range s.accounts {
		if err := saveAccount(putter, a.addr, a.acc); err != nil {
			return &Error{err}
		}
	}
	for _, st := range s.storage {
		if err := saveStorage(putter, st.key.addr, st.key.key, st.raw); err != nil {
			return &Error{err}
		}
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type (
	accountKey core.Address
	storageKey struct {
		addr core.Address
		key  core.Bytes32
	}
)

// State manages the world state.
type State struct {
	src kv.Getter
	sm  *stackedmap.StackedMap[any, any] // keeps revisions of accounts state
}

// New create state object over the given source.
// src is usually a snapshot of the committed state store.
func New(src kv.Getter) *State {
	state := &State{src: src}
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.cacheGetter(key)
	})
	return state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case accountKey:
		a, err := loadAccount(s.src, core.Address(k))
		if err != nil {
			return nil, false, err
		}
		return a, true, nil
	case storageKey:
		v, err := loadStorage(s.src, k.addr, k.key)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// getAccount gets account by address. the returned account should not be modified.
func (s *State) getAccount(addr core.Address) (*Account, error) {
	v, _, err := s.sm.Get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

func (s *State) updateAccount(addr core.Address, fn func(a *Account)) error {
	acc, err := s.getAccount(addr)
	if err != nil {
		return &Error{err}
	}
	cpy := *acc
	fn(&cpy)
	s.sm.Put(accountKey(addr), &cpy)
	return nil
}

// GetNonce returns the nonce of the last transaction sent by addr.
func (s *State) GetNonce(addr core.Address) (uint64, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return 0, &Error{err}
	}
	return acc.Nonce, nil
}

// SetNonce sets nonce for the given address.
func (s *State) SetNonce(addr core.Address, nonce uint64) error {
	return s.updateAccount(addr, func(a *Account) { a.Nonce = nonce })
}

// GetCode returns the code for the given address.
func (s *State) GetCode(addr core.Address) ([]byte, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Code, nil
}

// SetCode sets code for the given address.
func (s *State) SetCode(addr core.Address, code []byte) error {
	return s.updateAccount(addr, func(a *Account) { a.Code = code })
}

// Exists returns whether an account exists at the given address.
func (s *State) Exists(addr core.Address) (bool, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return false, &Error{err}
	}
	return !acc.IsEmpty(), nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr core.Address, key core.Bytes32) (core.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return core.Bytes32{}, err
	}
	if len(raw) == 0 {
		return core.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return core.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return core.Blake2b(raw), nil
	}
	return core.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr core.Address, key, value core.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr core.Address, key core.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr core.Address, key core.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr core.Address, key core.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr core.Address, key core.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage flattens the journal into the final set of changes.
func (s *State) Stage() *Stage {
	var (
		accounts = make(map[core.Address]*Account)
		storage  = make(map[storageKey]rlp.RawValue)
	)
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case accountKey:
			accounts[core.Address(key)] = v.(*Account)
		case storageKey:
			storage[key] = v.(rlp.RawValue)
		}
		return true
	})
	return newStage(accounts, storage)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/core"
)

var errIndexOutOfRange = errors.New("array index out of range")

// Array is a dynamic array of rlp encoded elements, similar to T[] in Solidity.
// The length lives at pos, element i at blake2b(i, pos).
type Array[V any] struct {
	context *Context
	pos     core.Bytes32
	length  *Uint256
}

func NewArray[V any](context *Context, pos core.Bytes32) *Array[V] {
	return &Array[V]{
		context: context,
		pos:     pos,
		length:  NewUint256(context, pos),
	}
}

func (a *Array[V]) elementPos(i uint64) core.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return core.Blake2b(b[:], a.pos.Bytes())
}

// Len returns the count of elements.
func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns element at index i.
func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, errIndexOutOfRange
	}
	err = a.context.state.DecodeStorage(a.context.address, a.elementPos(i), func(raw []byte) error {
		return decodeValue(raw, &value)
	})
	return
}

// Push appends value to the end.
func (a *Array[V]) Push(value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if err := a.context.state.EncodeStorage(a.context.address, a.elementPos(n), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	}); err != nil {
		return err
	}
	a.length.Set(uint256.NewInt(n + 1))
	return nil
}

// Truncate shrinks the array to n elements, clearing the removed ones.
func (a *Array[V]) Truncate(n uint64) error {
	count, err := a.Len()
	if err != nil {
		return err
	}
	if n > count {
		return errIndexOutOfRange
	}
	for i := n; i < count; i++ {
		a.context.state.SetRawStorage(a.context.address, a.elementPos(i), nil)
	}
	a.length.Set(uint256.NewInt(n))
	return nil
}

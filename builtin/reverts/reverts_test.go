// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	err := NewRequireError("Staking: ZERO_AMOUNT")

	assert.True(t, IsRevertErr(err))
	assert.True(t, IsRevertErr(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsRevertErr(errors.New("Staking: ZERO_AMOUNT")))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))

	reason, ok := Reason(fmt.Errorf("wrapped: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "Staking: ZERO_AMOUNT", reason)

	_, ok = Reason(errors.New("x"))
	assert.False(t, ok)
}

func TestBytes(t *testing.T) {
	var nilErr *ErrRequire
	assert.Nil(t, nilErr.Bytes())

	data := NewRequireError("abc").Bytes()
	assert.Equal(t, 4+32+32+32, len(data))
	assert.Equal(t, "08c379a0", hex.EncodeToString(data[:4]))
	assert.Equal(t, byte(0x20), data[4+31])
	assert.Equal(t, byte(3), data[4+32+31])
	assert.Equal(t, []byte("abc"), data[4+64:4+67])
}

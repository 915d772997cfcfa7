// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/xenv"
)

// ErrBadNonce is returned when a tx nonce is not the next nonce of its origin.
var ErrBadNonce = errors.New("bad nonce")

// badTxError marks a tx that can never be applied as submitted.
type badTxError struct {
	cause error
}

func (e *badTxError) Error() string { return e.cause.Error() }
func (e *badTxError) Unwrap() error { return e.cause }

func badTx(cause error) error {
	return &badTxError{cause}
}

// IsBadTx reports whether err rejects a tx for its own content, as
// opposed to a storage failure.
func IsBadTx(err error) bool {
	if errors.Is(err, xenv.ErrBadInput) {
		return true
	}
	var bte *badTxError
	return errors.As(err, &bte)
}

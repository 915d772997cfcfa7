// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/core"
)

// ParseAddressVar parses the address in path variable name.
// Malformed input results in a bad request error.
func ParseAddressVar(req *http.Request, name string) (core.Address, error) {
	addr, err := core.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return core.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return *addr, nil
}

// ParseUint64Var parses the unsigned number in path variable name.
func ParseUint64Var(req *http.Request, name string) (uint64, error) {
	n, err := strconv.ParseUint(mux.Vars(req)[name], 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

// ParseUint64Query parses the unsigned number in query parameter name,
// returning def when the parameter is absent.
func ParseUint64Query(req *http.Request, name string, def uint64) (uint64, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

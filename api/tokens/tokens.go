// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"bytes"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/builtin"
	"github.com/vechain/rewardpool/builtin/token"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/xenv"
)

type Token struct {
	Address     core.Address          `json:"address"`
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Decimals    uint8                 `json:"decimals"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

type Balance struct {
	Token   core.Address          `json:"token"`
	Account core.Address          `json:"account"`
	Balance *math.HexOrDecimal256 `json:"balance"`
	Nonce   uint64                `json:"nonce"`
}

type Tokens struct {
	ledger *ledger.Ledger
}

func New(ledger *ledger.Ledger) *Tokens {
	return &Tokens{ledger}
}

func loadToken(env *xenv.Environment, addr core.Address) (*token.Token, error) {
	code, err := env.State().GetCode(addr)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(code, token.Code) {
		return nil, utils.NotFound(errors.New("token not found"))
	}
	return builtin.Token(addr, env), nil
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "token")
	if err != nil {
		return err
	}
	var result *Token
	if err := t.ledger.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		tok, err := loadToken(env, addr)
		if err != nil {
			return err
		}
		meta, err := tok.Meta()
		if err != nil {
			return err
		}
		supply, err := tok.TotalSupply()
		if err != nil {
			return err
		}
		result = &Token{
			Address:     addr,
			Name:        meta.Name,
			Symbol:      meta.Symbol,
			Decimals:    meta.Decimals,
			TotalSupply: utils.Amount(supply),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddressVar(req, "token")
	if err != nil {
		return err
	}
	account, err := utils.ParseAddressVar(req, "account")
	if err != nil {
		return err
	}
	var result *Balance
	if err := t.ledger.View(0, func(env *xenv.Environment, _ *ledger.Head) error {
		tok, err := loadToken(env, addr)
		if err != nil {
			return err
		}
		bal, err := tok.BalanceOf(account)
		if err != nil {
			return err
		}
		nonce, err := tok.Nonces(account)
		if err != nil {
			return err
		}
		result = &Balance{
			Token:   addr,
			Account: account,
			Balance: utils.Amount(bal),
			Nonce:   nonce,
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{token}").
		Methods(http.MethodGet).
		Name("GET /tokens/{token}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{token}/balances/{account}").
		Methods(http.MethodGet).
		Name("GET /tokens/{token}/balances/{account}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
}

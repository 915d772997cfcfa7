// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package poolclient provides a client of the reward pool HTTP and websocket API.
package poolclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/api/events"
	"github.com/vechain/rewardpool/api/node"
	"github.com/vechain/rewardpool/api/pools"
	"github.com/vechain/rewardpool/api/tokens"
	"github.com/vechain/rewardpool/api/transactions"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/tx"
)

var ErrNotFound = errors.New("not found")

// StatusError is returned for any reply other than 200 and 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Client talks to a reward pool API server.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// Head returns the ledger head.
func (c *Client) Head() (*node.Head, error) {
	var head node.Head
	if err := c.get("/node/head", nil, &head); err != nil {
		return nil, errors.WithMessage(err, "get head")
	}
	return &head, nil
}

func (c *Client) Info() (*node.Info, error) {
	var info node.Info
	if err := c.get("/node/info", nil, &info); err != nil {
		return nil, errors.WithMessage(err, "get info")
	}
	return &info, nil
}

// Pools lists the pools deployed by the factory.
func (c *Client) Pools() ([]core.Address, error) {
	var addrs []core.Address
	if err := c.get("/pools", nil, &addrs); err != nil {
		return nil, errors.WithMessage(err, "get pools")
	}
	return addrs, nil
}

func (c *Client) Pool(pool core.Address) (*pools.Pool, error) {
	var p pools.Pool
	if err := c.get("/pools/"+pool.String(), nil, &p); err != nil {
		return nil, errors.WithMessage(err, "get pool")
	}
	return &p, nil
}

func (c *Client) Intervals(pool core.Address) ([]*pools.Interval, error) {
	var intervals []*pools.Interval
	if err := c.get("/pools/"+pool.String()+"/intervals", nil, &intervals); err != nil {
		return nil, errors.WithMessage(err, "get intervals")
	}
	return intervals, nil
}

func (c *Client) Interval(pool core.Address, index uint64) (*pools.Interval, error) {
	var interval pools.Interval
	if err := c.get("/pools/"+pool.String()+"/intervals/"+strconv.FormatUint(index, 10), nil, &interval); err != nil {
		return nil, errors.WithMessage(err, "get interval")
	}
	return &interval, nil
}

// Reward returns the reward unlocked by pool up to at. Zero means the head time.
func (c *Client) Reward(pool core.Address, at uint64) (*pools.Reward, error) {
	var reward pools.Reward
	if err := c.get("/pools/"+pool.String()+"/reward", timeQuery("at", at), &reward); err != nil {
		return nil, errors.WithMessage(err, "get reward")
	}
	return &reward, nil
}

// Delta returns the reward unlocked by pool in (from, to].
func (c *Client) Delta(pool core.Address, from, to uint64) (*pools.Delta, error) {
	query := url.Values{}
	query.Set("from", strconv.FormatUint(from, 10))
	query.Set("to", strconv.FormatUint(to, 10))

	var delta pools.Delta
	if err := c.get("/pools/"+pool.String()+"/delta", query, &delta); err != nil {
		return nil, errors.WithMessage(err, "get delta")
	}
	return &delta, nil
}

// Account returns the staking position of account in pool, with the pending
// reward evaluated at at. Zero means the head time.
func (c *Client) Account(pool, account core.Address, at uint64) (*pools.Account, error) {
	var acc pools.Account
	if err := c.get("/pools/"+pool.String()+"/accounts/"+account.String(), timeQuery("at", at), &acc); err != nil {
		return nil, errors.WithMessage(err, "get account")
	}
	return &acc, nil
}

func (c *Client) Token(token core.Address) (*tokens.Token, error) {
	var t tokens.Token
	if err := c.get("/tokens/"+token.String(), nil, &t); err != nil {
		return nil, errors.WithMessage(err, "get token")
	}
	return &t, nil
}

func (c *Client) Balance(token, account core.Address) (*tokens.Balance, error) {
	var b tokens.Balance
	if err := c.get("/tokens/"+token.String()+"/balances/"+account.String(), nil, &b); err != nil {
		return nil, errors.WithMessage(err, "get balance")
	}
	return &b, nil
}

// SendTransaction submits a signed transaction and returns its receipt.
// A reverted transaction is not an error, check Receipt.Reverted.
func (c *Client) SendTransaction(trx *tx.Transaction) (*transactions.Receipt, error) {
	raw, err := rlp.EncodeToBytes(trx)
	if err != nil {
		return nil, errors.Wrap(err, "encode tx")
	}
	var receipt transactions.Receipt
	if err := c.post("/transactions", &transactions.RawTx{Raw: hexutil.Encode(raw)}, &receipt); err != nil {
		return nil, errors.WithMessage(err, "send tx")
	}
	return &receipt, nil
}

func (c *Client) Receipt(txID core.Bytes32) (*transactions.Receipt, error) {
	var receipt transactions.Receipt
	if err := c.get("/transactions/"+txID.String()+"/receipt", nil, &receipt); err != nil {
		return nil, errors.WithMessage(err, "get receipt")
	}
	return &receipt, nil
}

// FilterEvents queries indexed events.
func (c *Client) FilterEvents(filter *events.EventFilter) ([]*events.FilteredEvent, error) {
	var evs []*events.FilteredEvent
	if err := c.post("/logs/event", filter, &evs); err != nil {
		return nil, errors.WithMessage(err, "filter events")
	}
	return evs, nil
}

func timeQuery(name string, t uint64) url.Values {
	if t == 0 {
		return nil
	}
	return url.Values{name: []string{strconv.FormatUint(t, 10)}}
}

func (c *Client) get(path string, query url.Values, out any) error {
	u := c.url + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}
	req, err := http.NewRequest(http.MethodPost, c.url+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{resp.StatusCode, strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "unmarshal response")
	}
	return nil
}

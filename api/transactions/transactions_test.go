// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/api/transactions"
	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/test/datagen"
	"github.com/vechain/rewardpool/test/testledger"
	"github.com/vechain/rewardpool/tx"
)

func initServer(t *testing.T, clock func() uint64) (*testledger.Ledger, *httptest.Server) {
	l, err := testledger.New()
	require.NoError(t, err)
	t.Cleanup(l.Close)

	router := mux.NewRouter()
	transactions.New(l.Ledger, clock).Mount(router, "/transactions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return l, ts
}

func do(t *testing.T, method, url string, body []byte) ([]byte, int) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return data, res.StatusCode
}

func sendTx(t *testing.T, url string, trx *tx.Transaction) ([]byte, int) {
	raw, err := rlp.EncodeToBytes(trx)
	require.NoError(t, err)
	body, err := json.Marshal(&transactions.RawTx{Raw: hexutil.Encode(raw)})
	require.NoError(t, err)
	return do(t, http.MethodPost, url+"/transactions", body)
}

func TestSendTransaction(t *testing.T) {
	var l *testledger.Ledger
	l, ts := initServer(t, func() uint64 { return l.LaunchTime() + 10 })
	acc := genesis.DevAccounts()[1]

	trx, err := l.BuildTx(acc, testledger.StakeClauses(testledger.Pool, testledger.StakeToken, datagen.RandAmount(1000))...)
	require.NoError(t, err)

	body, status := sendTx(t, ts.URL, trx)
	require.Equal(t, http.StatusOK, status, string(body))

	var receipt transactions.Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.Equal(t, trx.ID(), receipt.TxID)
	assert.Equal(t, acc.Address, receipt.Origin)
	assert.Equal(t, uint64(1), receipt.Seq)
	assert.Equal(t, l.LaunchTime()+10, receipt.Time)
	assert.False(t, receipt.Reverted)
	require.Len(t, receipt.Outputs, 2)
	assert.Equal(t, "Approval", receipt.Outputs[0].Events[0].Name)

	// fetched back
	body, status = do(t, http.MethodGet, ts.URL+"/transactions/"+trx.ID().String()+"/receipt", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var fetched transactions.Receipt
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, receipt, fetched)

	// replay
	body, status = sendTx(t, ts.URL, trx)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "bad nonce")
}

func TestRevertedTransaction(t *testing.T) {
	var l *testledger.Ledger
	l, ts := initServer(t, func() uint64 { return l.LaunchTime() + 10 })

	trx, err := l.BuildTx(genesis.DevAccounts()[2], tx.NewClause(testledger.Pool, "unstake").MustWithArgs(uint256.NewInt(1)))
	require.NoError(t, err)

	body, status := sendTx(t, ts.URL, trx)
	require.Equal(t, http.StatusOK, status, string(body))
	var receipt transactions.Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Staking: INVALID_AMOUNT", receipt.RevertReason)
	assert.Empty(t, receipt.Outputs)
}

func TestClockBehindHead(t *testing.T) {
	var l *testledger.Ledger
	l, ts := initServer(t, func() uint64 { return 0 })

	trx, err := l.BuildTx(genesis.DevAccounts()[3], testledger.StakeClauses(testledger.Pool, testledger.StakeToken, uint256.NewInt(1))...)
	require.NoError(t, err)
	body, status := sendTx(t, ts.URL, trx)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, l.LaunchTime(), l.Head().Time)
}

func TestBadRequests(t *testing.T) {
	var l *testledger.Ledger
	l, ts := initServer(t, func() uint64 { return l.LaunchTime() })

	_, status := do(t, http.MethodPost, ts.URL+"/transactions", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = do(t, http.MethodPost, ts.URL+"/transactions", []byte(`{"raw":"0xzz"}`))
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = do(t, http.MethodPost, ts.URL+"/transactions", []byte(`{"raw":"0x01"}`))
	assert.Equal(t, http.StatusBadRequest, status)

	wrongChain := tx.MustSign(tx.NewBuilder(l.ChainTag()+1).Nonce(1).
		Clause(tx.NewClause(testledger.Pool, "claim")).Build(), genesis.DevAccounts()[0].PrivateKey)
	body, status := sendTx(t, ts.URL, wrongChain)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "chain tag mismatch")

	_, status = do(t, http.MethodGet, ts.URL+"/transactions/"+datagen.RandomHash().String()+"/receipt", nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, status = do(t, http.MethodGet, ts.URL+"/transactions/0x12/receipt", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

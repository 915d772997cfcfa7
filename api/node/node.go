// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/rewardpool/api/utils"
	"github.com/vechain/rewardpool/core"
	"github.com/vechain/rewardpool/health"
	"github.com/vechain/rewardpool/ledger"
)

type Head struct {
	Seq       uint64       `json:"seq"`
	Time      uint64       `json:"time"`
	StateRoot core.Bytes32 `json:"stateRoot"`
	TxID      core.Bytes32 `json:"txID"`
}

type Info struct {
	Name      string       `json:"name"`
	GenesisID core.Bytes32 `json:"genesisID"`
	ChainTag  byte         `json:"chainTag"`
	Head      Head         `json:"head"`
}

type Node struct {
	ledger *ledger.Ledger
	health *health.Health
}

func New(ledger *ledger.Ledger, health *health.Health) *Node {
	return &Node{ledger, health}
}

func convertHead(h ledger.Head) Head {
	return Head{
		Seq:       h.Seq,
		Time:      h.Time,
		StateRoot: h.StateRoot,
		TxID:      h.TxID,
	}
}

func (n *Node) handleGetHead(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, convertHead(n.ledger.Head()))
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, req *http.Request) error {
	gene := n.ledger.Genesis()
	return utils.WriteJSON(w, &Info{
		Name:      gene.Name(),
		GenesisID: gene.ID(),
		ChainTag:  gene.ChainTag(),
		Head:      convertHead(n.ledger.Head()),
	})
}

func (n *Node) handleGetHealth(w http.ResponseWriter, req *http.Request) error {
	status := n.health.Status()
	if !status.Healthy {
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
		return json.NewEncoder(w).Encode(status)
	}
	return utils.WriteJSON(w, status)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/head").
		Methods(http.MethodGet).
		Name("GET /node/head").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetHead))
	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
	sub.Path("/health").
		Methods(http.MethodGet).
		Name("GET /node/health").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetHealth))
}

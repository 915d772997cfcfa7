// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/vechain/rewardpool/metrics"

var (
	metricTxCounter     = metrics.LazyLoadCounterVec("ledger_tx_count", []string{"status"})
	metricExecDuration  = metrics.LazyLoadHistogram("ledger_tx_exec_duration_ms", metrics.BucketExecution)
	metricHeadSeq       = metrics.LazyLoadGauge("ledger_head_seq")
	metricHeadTime      = metrics.LazyLoadGauge("ledger_head_time")
	metricReceiptsCache = metrics.LazyLoadCounterVec("ledger_receipts_cache", []string{"event"})
)

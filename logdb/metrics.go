// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/vechain/rewardpool/metrics"
)

var (
	metricCriteriaLength    = metrics.LazyLoadHistogram("logdb_criteria_length", []int64{0, 1, 2, 5, 10, 25, 100})
	metricQueryParameters   = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricLimitBucket       = metrics.LazyLoadHistogram("logdb_query_limit", []int64{0, 5, 10, 25, 50, 100, 250, 500, 1000})
)

func metricsHandleEventsFilter(filter *EventFilter) {
	if !metrics.Enabled() {
		return
	}

	metricCriteriaLength().Observe(int64(len(filter.CriteriaSet)))
	metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": string(orderOrDefault(filter.Order))})
	if filter.Options != nil {
		metricLimitBucket().Observe(int64(min(filter.Options.Limit, 1001)))
	}

	for _, c := range filter.CriteriaSet {
		var used []string
		if c.Address != nil {
			used = append(used, "address")
		}
		if c.Name != "" {
			used = append(used, "name")
		}
		for i, topic := range c.Topics {
			if topic != nil {
				used = append(used, "topic"+string(rune('0'+i)))
			}
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(used, ",")})
	}
}

func orderOrDefault(o Order) Order {
	if o == DESC {
		return DESC
	}
	return ASC
}

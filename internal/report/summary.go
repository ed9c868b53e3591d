package report

import (
	"slices"

	"gonum.org/v1/gonum/floats"

	"order-metrics/internal/orders"
)

// Summary 是整份数据的概要指标。
type Summary struct {
	Orders          int     `json:"orders"`
	MeanLatency     float64 `json:"mean_latency_ns"`
	MaxLatency      float64 `json:"max_latency_ns"`
	Throughput      float64 `json:"orders_per_second"` // 按平均耗时折算
	TotalExecuted   int     `json:"total_executed"`
	TotalRebalances int     `json:"total_rebalances"`
}

// Summarize 计算整表概要，空表返回零值。
func Summarize(t *orders.Table) Summary {
	s := Summary{Orders: t.Len()}
	if t.Len() == 0 {
		return s
	}

	latencies := t.Latencies()
	s.MeanLatency = mean(latencies)
	s.MaxLatency = floats.Max(latencies)
	if s.MeanLatency > 0 {
		s.Throughput = 1e9 / s.MeanLatency
	}
	for i := 0; i < t.Len(); i++ {
		rec := t.At(i)
		s.TotalExecuted += rec.Executed
		s.TotalRebalances += rec.Rebalances
	}
	return s
}

// Slowest 返回耗时最高的 n 条记录，按耗时降序，耗时相同保留输入顺序。
func Slowest(t *orders.Table, n int) []orders.Record {
	if n <= 0 || t.Len() == 0 {
		return nil
	}

	recs := t.Records()
	slices.SortStableFunc(recs, func(a, b orders.Record) int {
		switch {
		case a.LatencyNS > b.LatencyNS:
			return -1
		case a.LatencyNS < b.LatencyNS:
			return 1
		default:
			return 0
		}
	})
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

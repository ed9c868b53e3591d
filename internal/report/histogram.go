package report

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"order-metrics/internal/orders"
)

// Bucket 是直方图的一个等宽区间 [Start, End)；最后一个区间右端闭合。
type Bucket struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram 汇总耗时分布。Mean 基于未过滤的全表。
type Histogram struct {
	UpperBound float64  `json:"upper_bound"`
	Mean       float64  `json:"mean"`
	Samples    int      `json:"samples"`  // 全表记录数
	Included   int      `json:"included"` // 未超过上限的记录数
	Buckets    []Bucket `json:"buckets"`
}

// LatencyHistogram 排除耗时大于 upperBound 的样本，并把剩余取值范围切分为 buckets 个等宽区间。
func LatencyHistogram(t *orders.Table, upperBound float64, buckets int) Histogram {
	h := Histogram{UpperBound: upperBound, Samples: t.Len()}
	if t.Len() == 0 {
		return h
	}
	if buckets < 1 {
		buckets = 1
	}

	all := t.Latencies()
	h.Mean = mean(all)

	kept := make([]float64, 0, len(all))
	for _, v := range all {
		if v <= upperBound {
			kept = append(kept, v)
		}
	}
	kept = sortedCopy(kept)
	h.Included = len(kept)

	lo, hi := 0.0, 1.0
	if len(kept) > 0 {
		lo, hi = kept[0], kept[len(kept)-1]
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
	}

	edges := floats.Span(make([]float64, buckets+1), lo, hi)
	dividers := append([]float64(nil), edges...)
	// stat.Histogram 的区间右开，放宽最后一个边界使最大值落入末桶。
	dividers[buckets] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, kept, nil)

	h.Buckets = make([]Bucket, buckets)
	for i := range h.Buckets {
		h.Buckets[i] = Bucket{Start: edges[i], End: edges[i+1], Count: int(counts[i])}
	}
	return h
}

package report

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"

	"order-metrics/internal/orders"
)

// groupLatencies 按 key 归组耗时，key 返回 false 的记录被跳过。
// 组只由实际出现的键构成，因此不会出现空组。
func groupLatencies[K comparable](t *orders.Table, key func(orders.Record) (K, bool), compare func(a, b K) int) ([]K, map[K][]float64) {
	groups := make(map[K][]float64)
	for i := 0; i < t.Len(); i++ {
		rec := t.At(i)
		k, ok := key(rec)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], rec.LatencyNS)
	}

	keys := make([]K, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compare)
	return keys, groups
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// quantile 对已排序样本做顺序统计量之间的线性插值，位置 h=(n-1)p。
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func sortedCopy(values []float64) []float64 {
	dst := append([]float64(nil), values...)
	sort.Float64s(dst)
	return dst
}

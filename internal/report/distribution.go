package report

import (
	"cmp"
	"slices"
	"strings"

	"order-metrics/internal/orders"
)

// TypeCount 是某订单类型的出现次数。
type TypeCount struct {
	Type  string `json:"order_type"`
	Count int    `json:"count"`
}

// Distribution 按次数升序排列，次数相同按类型名排序。
type Distribution []TypeCount

// Counts 返回类型到次数的映射。
func (d Distribution) Counts() map[string]int {
	out := make(map[string]int, len(d))
	for _, tc := range d {
		out[tc.Type] = tc.Count
	}
	return out
}

// Total 返回次数之和。
func (d Distribution) Total() int {
	total := 0
	for _, tc := range d {
		total += tc.Count
	}
	return total
}

// DistributionByType 统计每种订单类型出现的次数。
func DistributionByType(t *orders.Table) Distribution {
	counts := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		counts[t.At(i).Type]++
	}

	out := make(Distribution, 0, len(counts))
	for typ, n := range counts {
		out = append(out, TypeCount{Type: typ, Count: n})
	}
	slices.SortFunc(out, func(a, b TypeCount) int {
		if c := cmp.Compare(a.Count, b.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Type, b.Type)
	})
	return out
}

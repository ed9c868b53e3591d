package report

import (
	"cmp"
	"slices"
	"strings"

	"order-metrics/internal/orders"
)

// TypeLatency 是某订单类型的耗时统计。
// ErrLow 与 ErrHigh 保留原始差值，分位数越过均值时可能为负。
type TypeLatency struct {
	Type    string  `json:"order_type"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	PLow    float64 `json:"p_low"`
	PHigh   float64 `json:"p_high"`
	ErrLow  float64 `json:"err_low"`
	ErrHigh float64 `json:"err_high"`
}

// CountLatency 是某计数取值下的平均耗时。
type CountLatency struct {
	Key   int     `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// SurfaceCell 是 (成交笔数, 平衡次数) 组合下的平均耗时。
type SurfaceCell struct {
	Executed   int     `json:"executed_count"`
	Rebalances int     `json:"rebalance_count"`
	Mean       float64 `json:"mean"`
	Count      int     `json:"count"`
}

// LatencyByType 排除 excluded 中的类型后按类型统计均值与 qLow、qHigh 分位数，结果按均值升序。
func LatencyByType(t *orders.Table, excluded []string, qLow, qHigh float64) []TypeLatency {
	skip := orders.NewTypeSet(excluded...)
	keys, groups := groupLatencies(t, func(r orders.Record) (string, bool) {
		return r.Type, !skip.Has(r.Type)
	}, strings.Compare)

	out := make([]TypeLatency, 0, len(keys))
	for _, typ := range keys {
		values := groups[typ]
		sorted := sortedCopy(values)
		m := mean(values)
		pl := quantile(sorted, qLow)
		ph := quantile(sorted, qHigh)
		out = append(out, TypeLatency{
			Type:    typ,
			Count:   len(values),
			Mean:    m,
			PLow:    pl,
			PHigh:   ph,
			ErrLow:  m - pl,
			ErrHigh: ph - m,
		})
	}

	// keys 已按类型名排序，稳定排序保证均值相同时顺序确定。
	slices.SortStableFunc(out, func(a, b TypeLatency) int {
		return cmp.Compare(a.Mean, b.Mean)
	})
	return out
}

// LatencyByExecutedCount 仅统计 included 类型，按成交笔数分组，丢弃样本数少于 minGroupSize 的组。
func LatencyByExecutedCount(t *orders.Table, included []string, minGroupSize int) []CountLatency {
	keep := orders.NewTypeSet(included...)
	return countLatencies(t, minGroupSize, func(r orders.Record) (int, bool) {
		return r.Executed, keep.Has(r.Type)
	})
}

// LatencyByRebalanceCount 仅统计发生过平衡的记录，按平衡次数分组。
func LatencyByRebalanceCount(t *orders.Table, minGroupSize int) []CountLatency {
	return countLatencies(t, minGroupSize, func(r orders.Record) (int, bool) {
		return r.Rebalances, r.Rebalances != 0
	})
}

func countLatencies(t *orders.Table, minGroupSize int, key func(orders.Record) (int, bool)) []CountLatency {
	keys, groups := groupLatencies(t, key, cmp.Compare[int])

	out := make([]CountLatency, 0, len(keys))
	for _, k := range keys {
		values := groups[k]
		if len(values) < minGroupSize {
			continue
		}
		out = append(out, CountLatency{Key: k, Mean: mean(values), Count: len(values)})
	}
	return out
}

type surfaceKey struct {
	executed   int
	rebalances int
}

func compareSurfaceKey(a, b surfaceKey) int {
	if c := cmp.Compare(a.executed, b.executed); c != 0 {
		return c
	}
	return cmp.Compare(a.rebalances, b.rebalances)
}

// LatencySurface 仅统计 included 类型，按 (成交笔数, 平衡次数) 分组。
// 返回未镜像的坐标，是否翻转成交笔数轴由渲染层决定。
func LatencySurface(t *orders.Table, included []string, minGroupSize int) []SurfaceCell {
	keep := orders.NewTypeSet(included...)
	keys, groups := groupLatencies(t, func(r orders.Record) (surfaceKey, bool) {
		return surfaceKey{executed: r.Executed, rebalances: r.Rebalances}, keep.Has(r.Type)
	}, compareSurfaceKey)

	out := make([]SurfaceCell, 0, len(keys))
	for _, k := range keys {
		values := groups[k]
		if len(values) < minGroupSize {
			continue
		}
		out = append(out, SurfaceCell{
			Executed:   k.executed,
			Rebalances: k.rebalances,
			Mean:       mean(values),
			Count:      len(values),
		})
	}
	return out
}

// MaxExecuted 返回单元格中最大的成交笔数，用于镜像显示。
func MaxExecuted(cells []SurfaceCell) int {
	maxExec := 0
	for _, c := range cells {
		if c.Executed > maxExec {
			maxExec = c.Executed
		}
	}
	return maxExec
}

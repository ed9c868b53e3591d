package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"order-metrics/internal/orders"
)

// 视图名称，同时作为渲染产物的文件名。
const (
	ViewDistribution = "distribution"
	ViewHistogram    = "histogram"
	ViewByType       = "latency_by_type"
	ViewByExecuted   = "latency_by_executed"
	ViewByRebalance  = "latency_by_rebalance"
	ViewSurface      = "latency_surface"
)

// Views 返回全部视图名称，顺序与渲染顺序一致。
func Views() []string {
	return []string{ViewDistribution, ViewHistogram, ViewByType, ViewByExecuted, ViewByRebalance, ViewSurface}
}

// Report 是一次完整计算得到的全部聚合结果。
type Report struct {
	Params       Params          `json:"params"`
	Summary      Summary         `json:"summary"`
	Distribution Distribution    `json:"distribution"`
	Histogram    Histogram       `json:"histogram"`
	ByType       []TypeLatency   `json:"by_type"`
	ByExecuted   []CountLatency  `json:"by_executed"`
	ByRebalance  []CountLatency  `json:"by_rebalance"`
	Surface      []SurfaceCell   `json:"surface"`
	Slowest      []orders.Record `json:"slowest"`
}

// Empty 返回没有任何数据的视图名称。空视图是正常结果，渲染为空图。
func (r *Report) Empty() []string {
	var empty []string
	if len(r.Distribution) == 0 {
		empty = append(empty, ViewDistribution)
	}
	if r.Histogram.Included == 0 {
		empty = append(empty, ViewHistogram)
	}
	if len(r.ByType) == 0 {
		empty = append(empty, ViewByType)
	}
	if len(r.ByExecuted) == 0 {
		empty = append(empty, ViewByExecuted)
	}
	if len(r.ByRebalance) == 0 {
		empty = append(empty, ViewByRebalance)
	}
	if len(r.Surface) == 0 {
		empty = append(empty, ViewSurface)
	}
	return empty
}

// Build 校验参数后并发计算全部视图。各视图互不依赖且只读取 t。
func Build(ctx context.Context, t *orders.Table, params Params) (*Report, error) {
	if t == nil {
		return nil, fmt.Errorf("report: table 不能为空")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rep := &Report{Params: params}
	group, groupCtx := errgroup.WithContext(ctx)

	run := func(fn func()) {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { rep.Summary = Summarize(t) })
	run(func() { rep.Distribution = DistributionByType(t) })
	run(func() {
		rep.Histogram = LatencyHistogram(t, params.HistogramUpperBound, params.HistogramBuckets)
	})
	run(func() {
		rep.ByType = LatencyByType(t, params.ExcludedTypes, params.QuantileLow, params.QuantileHigh)
	})
	run(func() { rep.ByExecuted = LatencyByExecutedCount(t, params.MarketTypes, params.MinGroupSize) })
	run(func() { rep.ByRebalance = LatencyByRebalanceCount(t, params.MinGroupSize) })
	run(func() { rep.Surface = LatencySurface(t, params.MarketTypes, params.MinGroupSize) })
	run(func() { rep.Slowest = Slowest(t, params.SlowestN) })

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("report: 计算视图失败: %w", err)
	}
	return rep, nil
}

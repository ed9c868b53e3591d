package report

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

var (
	// ErrInvalidParams 表示报表参数不合法。
	ErrInvalidParams = errors.New("report: invalid params")
	// ErrUnknownProfile 表示未定义的参数预设。
	ErrUnknownProfile = errors.New("report: unknown profile")
)

// DefaultProfile 是未指定预设时使用的参数集。
const DefaultProfile = "latency"

// Params 汇总各视图的调用参数。
type Params struct {
	Profile             string   `json:"profile"`
	HistogramUpperBound float64  `json:"histogram_upper_bound"` // 直方图上限，超出的样本被排除
	HistogramBuckets    int      `json:"histogram_buckets"`
	QuantileLow         float64  `json:"quantile_low"`
	QuantileHigh        float64  `json:"quantile_high"`
	ExcludedTypes       []string `json:"excluded_types"` // 按类型统计时排除的类型
	MarketTypes         []string `json:"market_types"`   // 按成交笔数统计时纳入的类型
	MinGroupSize        int      `json:"min_group_size"`
	SlowestN            int      `json:"slowest_n"`
}

var marketStyleTypes = []string{"Market", "AddMarketLimit"}

var profiles = map[string]Params{
	"latency": {
		HistogramUpperBound: 4000,
		HistogramBuckets:    40,
		QuantileLow:         0.15,
		QuantileHigh:        0.85,
	},
	"classic": {
		HistogramUpperBound: 5000,
		HistogramBuckets:    50,
		QuantileLow:         0.25,
		QuantileHigh:        0.85,
	},
	"wide": {
		HistogramUpperBound: 5000,
		HistogramBuckets:    50,
		QuantileLow:         0.25,
		QuantileHigh:        0.95,
	},
}

// Profiles 返回全部预设名称，按字母顺序。
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileByName 返回指定预设的完整参数。
func ProfileByName(name string) (Params, error) {
	if name == "" {
		name = DefaultProfile
	}
	base, ok := profiles[name]
	if !ok {
		return Params{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	base.Profile = name
	base.ExcludedTypes = append([]string(nil), marketStyleTypes...)
	base.MarketTypes = append([]string(nil), marketStyleTypes...)
	base.MinGroupSize = 5
	base.SlowestN = 20
	return base, nil
}

// Validate 检查参数取值范围，返回全部违规项。
func (p Params) Validate() error {
	var err error

	if p.HistogramUpperBound < 0 {
		err = multierr.Append(err, errors.New("histogram_upper_bound 不能为负"))
	}
	if p.HistogramBuckets <= 0 {
		err = multierr.Append(err, errors.New("histogram_buckets 必须大于0"))
	}
	if p.QuantileLow < 0 || p.QuantileLow > 1 {
		err = multierr.Append(err, errors.New("quantile_low 必须位于[0,1]"))
	}
	if p.QuantileHigh < 0 || p.QuantileHigh > 1 {
		err = multierr.Append(err, errors.New("quantile_high 必须位于[0,1]"))
	}
	if p.QuantileLow > p.QuantileHigh {
		err = multierr.Append(err, errors.New("quantile_low 不能大于 quantile_high"))
	}
	if p.MinGroupSize < 1 {
		err = multierr.Append(err, errors.New("min_group_size 至少为1"))
	}
	if p.SlowestN < 0 {
		err = multierr.Append(err, errors.New("slowest_n 不能为负"))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-metrics/internal/archive"
	"order-metrics/internal/config"
	"order-metrics/internal/orders"
	"order-metrics/internal/publish"
	"order-metrics/internal/render"
	"order-metrics/internal/report"
	"order-metrics/internal/store"
)

// Result 是一次报表运行的产出。
type Result struct {
	RunID     string
	Report    *report.Report
	Artifacts []render.Artifact
	Uploaded  []publish.Uploaded
	Archived  bool
}

// App 聚合核心依赖并驱动一次报表运行。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store

	newPutter func(ctx context.Context, cfg config.PublishConfig) (publish.ObjectPutter, error)
}

// New 创建 App 实例。未开启归档时 store 可以为空。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		newPutter: func(ctx context.Context, cfg config.PublishConfig) (publish.ObjectPutter, error) {
			return publish.NewS3Client(ctx, cfg)
		},
	}
}

// Run 生成一次报表；开启 server 时继续提供归档查询接口直到收到退出信号。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("订单耗时报表开始生成",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("input", a.cfg.Input.Path),
		zap.String("profile", a.cfg.Report.Profile),
	)

	archiveSvc, err := a.archiveService(ctx)
	if err != nil {
		return err
	}

	if _, err := a.RunOnce(ctx, archiveSvc); err != nil {
		return err
	}

	if !a.cfg.Server.Enabled {
		return nil
	}

	if err := startServer(ctx, newRunsHandler(archiveSvc, a.logger), a.cfg.Server.Port, a.logger); err != nil {
		return err
	}
	<-ctx.Done()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("系统异常退出: %w", err)
	}
	a.logger.Info("系统收到退出信号，正在停止")
	return nil
}

func (a *App) archiveService(ctx context.Context) (*archive.Service, error) {
	if !a.cfg.Archive.Enabled {
		return nil, nil
	}
	if a.store == nil {
		return nil, fmt.Errorf("开启归档需要数据库连接")
	}
	svc, err := archive.NewService(ctx, a.store, a.logger)
	if err != nil {
		return nil, fmt.Errorf("初始化归档服务失败: %w", err)
	}
	return svc, nil
}

// RunOnce 执行 加载 → 计算 → 渲染 → 归档 → 上传。archiveSvc 为空时跳过归档。
func (a *App) RunOnce(ctx context.Context, archiveSvc *archive.Service) (*Result, error) {
	params, err := a.cfg.Report.Params()
	if err != nil {
		return nil, err
	}

	table, err := orders.LoadFile(ctx, a.cfg.Input.Path, orders.LoadOptions{
		Delimiter: a.cfg.Input.DelimiterRune(),
		Comment:   a.cfg.Input.CommentRune(),
	})
	if err != nil {
		return nil, fmt.Errorf("加载订单数据失败: %w", err)
	}

	rep, err := report.Build(ctx, table, params)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString(), Report: rep}
	a.logSummary(result)

	if a.cfg.Render.Enabled {
		renderer, err := render.New(a.cfg.Render, a.logger)
		if err != nil {
			return nil, err
		}
		if result.Artifacts, err = renderer.Render(ctx, rep); err != nil {
			return nil, fmt.Errorf("渲染图表失败: %w", err)
		}
		a.logger.Info("图表已生成", zap.Int("count", len(result.Artifacts)), zap.String("dir", a.cfg.Render.OutputDir))
	}

	if archiveSvc != nil {
		if _, err := archiveSvc.Save(ctx, result.RunID, a.cfg.Input.Path, rep); err != nil {
			a.logger.Warn("归档报表失败", zap.Error(err))
		} else {
			result.Archived = true
		}
	}

	if a.cfg.Publish.Enabled && len(result.Artifacts) > 0 {
		if result.Uploaded, err = a.publish(ctx, result); err != nil {
			return nil, err
		}
		a.logger.Info("图表已上传",
			zap.String("bucket", a.cfg.Publish.Bucket),
			zap.Int("count", len(result.Uploaded)),
		)
	}

	return result, nil
}

func (a *App) publish(ctx context.Context, result *Result) ([]publish.Uploaded, error) {
	client, err := a.newPutter(ctx, a.cfg.Publish)
	if err != nil {
		return nil, err
	}
	pub, err := publish.NewPublisher(client, a.cfg.Publish, a.logger)
	if err != nil {
		return nil, err
	}
	uploaded, err := pub.Publish(ctx, result.RunID, result.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("上传图表失败: %w", err)
	}
	return uploaded, nil
}

func (a *App) logSummary(result *Result) {
	rep := result.Report
	s := rep.Summary
	a.logger.Info("报表计算完成",
		zap.String("run_id", result.RunID),
		zap.String("profile", rep.Params.Profile),
		zap.Int("orders", s.Orders),
		zap.Float64("mean_latency_ns", s.MeanLatency),
		zap.Float64("max_latency_ns", s.MaxLatency),
		zap.Float64("orders_per_second", s.Throughput),
		zap.Int("total_executed", s.TotalExecuted),
		zap.Int("total_rebalances", s.TotalRebalances),
		zap.Int("histogram_included", rep.Histogram.Included),
	)

	for _, view := range rep.Empty() {
		a.logger.Warn("视图结果为空", zap.String("view", view), zap.Int("min_group_size", rep.Params.MinGroupSize))
	}

	for i, rec := range rep.Slowest {
		a.logger.Debug("高耗时订单",
			zap.Int("rank", i+1),
			zap.String("order_type", rec.Type),
			zap.Float64("latency_ns", rec.LatencyNS),
			zap.Int("executed_count", rec.Executed),
			zap.Int("rebalance_count", rec.Rebalances),
		)
	}
}

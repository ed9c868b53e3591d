package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"order-metrics/internal/config"
	"order-metrics/internal/report"
)

// Artifact 是一个已写入磁盘的图表文件。
type Artifact struct {
	View string `json:"view"`
	Path string `json:"path"`
}

// Renderer 把报表视图渲染为图表文件。
type Renderer struct {
	dir    string
	format string
	width  vg.Length
	height vg.Length
	mirror bool
	logger *zap.Logger
}

// New 根据渲染配置创建 Renderer。
func New(cfg config.RenderConfig, logger *zap.Logger) (*Renderer, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("render: output_dir 不能为空")
	}
	format := strings.ToLower(cfg.Format)
	switch format {
	case "png", "svg", "pdf":
	default:
		return nil, fmt.Errorf("render: 不支持的格式 %q", cfg.Format)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	width, height := cfg.WidthInches, cfg.HeightInches
	if width <= 0 {
		width = 10
	}
	if height <= 0 {
		height = 6
	}

	return &Renderer{
		dir:    cfg.OutputDir,
		format: format,
		width:  vg.Length(width) * vg.Inch,
		height: vg.Length(height) * vg.Inch,
		mirror: cfg.MirrorSurface,
		logger: logger,
	}, nil
}

// Render 依次渲染全部视图并返回写出的文件。
func (r *Renderer) Render(ctx context.Context, rep *report.Report) ([]Artifact, error) {
	if rep == nil {
		return nil, fmt.Errorf("render: report 不能为空")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: 创建输出目录 %q 失败: %w", r.dir, err)
	}

	builders := map[string]func(*report.Report) (*plot.Plot, error){
		report.ViewDistribution: distributionPlot,
		report.ViewHistogram:    histogramPlot,
		report.ViewByType:       byTypePlot,
		report.ViewByExecuted: func(rep *report.Report) (*plot.Plot, error) {
			return countPlot(rep.ByExecuted, "Latency by Number of Trades", "Number of Trades per Order")
		},
		report.ViewByRebalance: func(rep *report.Report) (*plot.Plot, error) {
			return countPlot(rep.ByRebalance, "Latency by Number of AVL Tree Balances", "Number of AVL Tree Balances")
		},
		report.ViewSurface: func(rep *report.Report) (*plot.Plot, error) {
			return surfacePlot(rep, r.mirror)
		},
	}

	artifacts := make([]Artifact, 0, len(builders))
	for _, view := range report.Views() {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		p, err := builders[view](rep)
		if err != nil {
			return artifacts, fmt.Errorf("render: 构建 %s 失败: %w", view, err)
		}

		// 饼图保持正方形画布。
		width, height := r.width, r.height
		if view == report.ViewDistribution {
			width = height
		}

		path := filepath.Join(r.dir, view+"."+r.format)
		if err := p.Save(width, height, path); err != nil {
			return artifacts, fmt.Errorf("render: 保存 %s 失败: %w", path, err)
		}
		artifacts = append(artifacts, Artifact{View: view, Path: path})
		r.logger.Debug("图表已生成", zap.String("view", view), zap.String("path", path))
	}

	return artifacts, nil
}

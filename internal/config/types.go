package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"order-metrics/internal/report"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Input    InputConfig    `mapstructure:"input"`
	Report   ReportConfig   `mapstructure:"report"`
	Render   RenderConfig   `mapstructure:"render"`
	Database DatabaseConfig `mapstructure:"database"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// InputConfig 描述待分析的耗时文件。
type InputConfig struct {
	Path      string `mapstructure:"path"`
	Delimiter string `mapstructure:"delimiter"`
	Comment   string `mapstructure:"comment"`
}

// ReportConfig 选择参数预设，非零字段覆盖预设值。
type ReportConfig struct {
	Profile             string   `mapstructure:"profile"`
	HistogramUpperBound float64  `mapstructure:"histogram_upper_bound"`
	HistogramBuckets    int      `mapstructure:"histogram_buckets"`
	QuantileLow         float64  `mapstructure:"quantile_low"`
	QuantileHigh        float64  `mapstructure:"quantile_high"`
	ExcludedTypes       []string `mapstructure:"excluded_types"`
	MarketTypes         []string `mapstructure:"market_types"`
	MinGroupSize        int      `mapstructure:"min_group_size"`
	SlowestN            int      `mapstructure:"slowest_n"`
}

// RenderConfig 控制图表输出。
type RenderConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	OutputDir     string  `mapstructure:"output_dir"`
	Format        string  `mapstructure:"format"`
	WidthInches   float64 `mapstructure:"width_inches"`
	HeightInches  float64 `mapstructure:"height_inches"`
	MirrorSurface bool    `mapstructure:"mirror_surface"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// ArchiveConfig 控制报表归档。
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PublishConfig 描述图表上传的 S3 目标。
type PublishConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Bucket          string        `mapstructure:"bucket"`
	Prefix          string        `mapstructure:"prefix"`
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// ServerConfig 控制归档查询接口。
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string        `mapstructure:"level"`
	Encoding         string        `mapstructure:"encoding"`
	Development      bool          `mapstructure:"development"`
	OutputPaths      []string      `mapstructure:"output_paths"`
	ErrorOutputPaths []string      `mapstructure:"error_output_paths"`
	File             LogFileConfig `mapstructure:"file"`
}

// LogFileConfig 描述滚动日志文件。
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Params 将报表配置与预设合并为 report.Params。
func (r ReportConfig) Params() (report.Params, error) {
	params, err := report.ProfileByName(r.Profile)
	if err != nil {
		return report.Params{}, err
	}

	if r.HistogramUpperBound > 0 {
		params.HistogramUpperBound = r.HistogramUpperBound
	}
	if r.HistogramBuckets > 0 {
		params.HistogramBuckets = r.HistogramBuckets
	}
	if r.QuantileLow > 0 {
		params.QuantileLow = r.QuantileLow
	}
	if r.QuantileHigh > 0 {
		params.QuantileHigh = r.QuantileHigh
	}
	if len(r.ExcludedTypes) > 0 {
		params.ExcludedTypes = append([]string(nil), r.ExcludedTypes...)
	}
	if len(r.MarketTypes) > 0 {
		params.MarketTypes = append([]string(nil), r.MarketTypes...)
	}
	if r.MinGroupSize > 0 {
		params.MinGroupSize = r.MinGroupSize
	}
	if r.SlowestN > 0 {
		params.SlowestN = r.SlowestN
	}

	return params, nil
}

// DelimiterRune 返回分隔符，未配置时为 ','。
func (i InputConfig) DelimiterRune() rune {
	if i.Delimiter == "" {
		return ','
	}
	if i.Delimiter == `\t` {
		return '\t'
	}
	return []rune(i.Delimiter)[0]
}

// CommentRune 返回注释前缀，未配置时为 0。
func (i InputConfig) CommentRune() rune {
	if i.Comment == "" {
		return 0
	}
	return []rune(i.Comment)[0]
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Input.Path == "" {
		err = multierr.Append(err, errors.New("input.path 不能为空"))
	}
	if len([]rune(c.Input.Delimiter)) > 1 && c.Input.Delimiter != `\t` {
		err = multierr.Append(err, errors.New("input.delimiter 只能是单个字符"))
	}
	if len([]rune(c.Input.Comment)) > 1 {
		err = multierr.Append(err, errors.New("input.comment 只能是单个字符"))
	}
	if params, pErr := c.Report.Params(); pErr != nil {
		err = multierr.Append(err, pErr)
	} else if vErr := params.Validate(); vErr != nil {
		err = multierr.Append(err, vErr)
	}
	if c.Render.Enabled {
		if c.Render.OutputDir == "" {
			err = multierr.Append(err, errors.New("render.output_dir 不能为空"))
		}
		switch strings.ToLower(c.Render.Format) {
		case "png", "svg", "pdf":
		default:
			err = multierr.Append(err, fmt.Errorf("render.format 不支持 %q", c.Render.Format))
		}
		if c.Render.WidthInches <= 0 || c.Render.HeightInches <= 0 {
			err = multierr.Append(err, errors.New("render 宽高必须大于0"))
		}
	}
	if c.Archive.Enabled || c.Server.Enabled {
		if c.Database.Path == "" && !c.Database.InMemory {
			err = multierr.Append(err, errors.New("database.path 不能为空"))
		}
		if c.Database.MaxOpenConns <= 0 {
			err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
		}
		if c.Database.MaxIdleConns < 0 {
			err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
		}
		if c.Database.ConnMaxLifetime < 0 {
			err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
		}
	}
	if c.Server.Enabled && !c.Archive.Enabled {
		err = multierr.Append(err, errors.New("server.enabled 需要同时开启 archive.enabled"))
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		err = multierr.Append(err, errors.New("server.port 必须位于(0,65535]"))
	}
	if c.Publish.Enabled {
		if !c.Render.Enabled {
			err = multierr.Append(err, errors.New("publish.enabled 需要同时开启 render.enabled"))
		}
		if c.Publish.Bucket == "" {
			err = multierr.Append(err, errors.New("publish.bucket 不能为空"))
		}
		if c.Publish.Region == "" {
			err = multierr.Append(err, errors.New("publish.region 不能为空"))
		}
		if (c.Publish.AccessKeyID == "") != (c.Publish.SecretAccessKey == "") {
			err = multierr.Append(err, errors.New("publish.access_key_id 与 secret_access_key 必须同时配置"))
		}
		if c.Publish.Timeout <= 0 {
			err = multierr.Append(err, errors.New("publish.timeout 必须大于0"))
		}
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}
	if c.Logging.File.Path != "" && c.Logging.File.MaxSizeMB <= 0 {
		err = multierr.Append(err, errors.New("logging.file.max_size_mb 必须大于0"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}

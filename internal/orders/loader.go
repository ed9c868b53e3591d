package orders

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadOptions 控制分隔文件的解析方式。
type LoadOptions struct {
	Delimiter rune // 字段分隔符，默认 ','
	Comment   rune // 注释行前缀，0 表示不支持注释
}

const ctxCheckEvery = 4096

// LoadFile 打开 path 并解析为 Table。
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("orders: 打开输入文件 %q 失败: %w", path, err)
	}
	defer f.Close()

	return Load(ctx, f, opts)
}

// Load 解析无表头的 order_type,latency_ns,executed_count,rebalance_count 行。
// 多余的列被忽略，空行被跳过。
func Load(ctx context.Context, r io.Reader, opts LoadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.Comment = opts.Comment
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	records := make([]Record, 0, 1024)
	for {
		if len(records)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("orders: 读取输入失败: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rec, err := parseRecord(fields, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return &Table{records: records}, nil
}

func parseRecord(fields []string, line int) (Record, error) {
	names := Fields()
	for i, name := range names {
		if i >= len(fields) || strings.TrimSpace(fields[i]) == "" {
			return Record{}, &SchemaError{Field: name, Line: line}
		}
	}

	rec := Record{Type: strings.TrimSpace(fields[0])}

	latencyRaw := strings.TrimSpace(fields[1])
	latency, err := strconv.ParseFloat(latencyRaw, 64)
	if err != nil {
		return Record{}, &SchemaError{Field: FieldLatency, Line: line, Value: latencyRaw, Err: err}
	}
	if latency < 0 || latency != latency {
		return Record{}, &SchemaError{Field: FieldLatency, Line: line, Value: latencyRaw}
	}
	rec.LatencyNS = latency

	if rec.Executed, err = parseCount(FieldExecuted, fields[2], line); err != nil {
		return Record{}, err
	}
	if rec.Rebalances, err = parseCount(FieldRebalances, fields[3], line); err != nil {
		return Record{}, err
	}

	return rec, nil
}

func parseCount(field, raw string, line int) (int, error) {
	raw = strings.TrimSpace(raw)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &SchemaError{Field: field, Line: line, Value: raw, Err: err}
	}
	if v < 0 {
		return 0, &SchemaError{Field: field, Line: line, Value: raw}
	}
	return v, nil
}

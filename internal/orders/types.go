package orders

import "fmt"

// 输入文件四列的名称，按列顺序排列。
const (
	FieldOrderType  = "order_type"
	FieldLatency    = "latency_ns"
	FieldExecuted   = "executed_count"
	FieldRebalances = "rebalance_count"
)

// Fields 返回必需字段，顺序与文件列一致。
func Fields() []string {
	return []string{FieldOrderType, FieldLatency, FieldExecuted, FieldRebalances}
}

// Record 表示一条订单处理耗时记录。
type Record struct {
	Type       string  `json:"order_type"`      // 订单类型，如 Market、AddLimit
	LatencyNS  float64 `json:"latency_ns"`      // 处理耗时（纳秒）
	Executed   int     `json:"executed_count"`  // 该订单触发的成交笔数
	Rebalances int     `json:"rebalance_count"` // 该订单触发的平衡操作次数，0 表示未发生
}

// SchemaError 表示输入缺少必需字段或字段无法解析。
type SchemaError struct {
	Field string
	Line  int
	Value string
	Err   error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Value == "" && e.Err == nil:
		return fmt.Sprintf("orders: 第 %d 行缺少字段 %s", e.Line, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("orders: 第 %d 行字段 %s=%q 无法解析: %v", e.Line, e.Field, e.Value, e.Err)
	default:
		return fmt.Sprintf("orders: 第 %d 行字段 %s=%q 非法", e.Line, e.Field, e.Value)
	}
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

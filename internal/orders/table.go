package orders

// Table 是只读的订单记录序列，保持输入顺序。
type Table struct {
	records []Record
}

// NewTable 以给定记录创建 Table，内部保存副本。
func NewTable(records []Record) *Table {
	dst := make([]Record, len(records))
	copy(dst, records)
	return &Table{records: dst}
}

// Len 返回记录数。
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At 返回第 i 条记录。
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Records 返回记录副本。
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	return append([]Record(nil), t.records...)
}

// Latencies 返回全部耗时，顺序与记录一致。
func (t *Table) Latencies() []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.records[i].LatencyNS
	}
	return out
}

// Filter 返回满足 keep 的记录组成的新表。
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := make([]Record, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(t.records[i]) {
			out = append(out, t.records[i])
		}
	}
	return &Table{records: out}
}

// TypeSet 是订单类型集合。
type TypeSet map[string]struct{}

// NewTypeSet 由类型名创建集合。
func NewTypeSet(types ...string) TypeSet {
	set := make(TypeSet, len(types))
	for _, typ := range types {
		set[typ] = struct{}{}
	}
	return set
}

// Has 判断集合中是否包含 typ。
func (s TypeSet) Has(typ string) bool {
	_, ok := s[typ]
	return ok
}

package archive

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound 表示指定的运行记录不存在。
var ErrNotFound = errors.New("archive: run not found")

// Run 是一次报表运行的归档记录。
type Run struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Profile   string          `json:"profile"`
	Rows      int             `json:"rows"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Entry 是列表接口返回的摘要，不含报表正文。
type Entry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Profile   string    `json:"profile"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

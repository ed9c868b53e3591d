package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-metrics/internal/report"
	"order-metrics/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	profile TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_runs_created ON report_runs(created_at);
`

// timeLayout 定宽，保证按字符串排序即按时间排序。
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Service 负责持久化报表运行结果。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewService 初始化归档服务，创建所需表结构。
func NewService(ctx context.Context, st *store.Store, logger *zap.Logger) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("archive: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := st.Migrate(ctx, schema); err != nil {
		return nil, fmt.Errorf("archive: 初始化表失败: %w", err)
	}

	return &Service{
		db:     st.DB(),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Save 写入一次运行，id 为空时生成新的 UUID。
func (s *Service) Save(ctx context.Context, id, source string, rep *report.Report) (Run, error) {
	if rep == nil {
		return Run{}, fmt.Errorf("archive: report 不能为空")
	}
	if id == "" {
		id = uuid.NewString()
	}

	payload, err := json.Marshal(rep)
	if err != nil {
		return Run{}, fmt.Errorf("archive: 序列化报表失败: %w", err)
	}

	run := Run{
		ID:        id,
		Source:    source,
		Profile:   rep.Params.Profile,
		Rows:      rep.Summary.Orders,
		CreatedAt: s.now(),
		Payload:   payload,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_runs (id, source, profile, row_count, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Profile, run.Rows, string(payload), run.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("archive: 写入运行记录失败: %w", err)
	}

	s.logger.Debug("报表已归档", zap.String("run_id", run.ID), zap.Int("rows", run.Rows))
	return run, nil
}

// List 按时间倒序返回最近的运行摘要。
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, profile, row_count, created_at FROM report_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("archive: 查询运行记录失败: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry   Entry
			created string
		)
		if scanErr := rows.Scan(&entry.ID, &entry.Source, &entry.Profile, &entry.Rows, &created); scanErr != nil {
			return nil, fmt.Errorf("archive: 解析运行记录失败: %w", scanErr)
		}
		entry.CreatedAt = parseTime(created)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: 读取运行记录失败: %w", err)
	}

	return entries, nil
}

// Get 返回指定运行的完整记录。
func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	var (
		run     Run
		payload string
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, profile, row_count, payload, created_at FROM report_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Source, &run.Profile, &run.Rows, &payload, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("archive: 查询运行记录失败: %w", err)
	}

	run.Payload = json.RawMessage(payload)
	run.CreatedAt = parseTime(created)
	return run, nil
}

func parseTime(raw string) time.Time {
	ts, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
)

// Schema 运行归档表
const Schema = `
CREATE TABLE IF NOT EXISTS gashift_runs (
	id            UUID PRIMARY KEY,
	run_id        TEXT NOT NULL UNIQUE,
	year          INT NOT NULL,
	month         INT NOT NULL,
	employee_ids  TEXT[] NOT NULL,
	seed          BIGINT NOT NULL,
	best_score    DOUBLE PRECISION NOT NULL,
	hard_penalty  DOUBLE PRECISION NOT NULL,
	soft_penalty  DOUBLE PRECISION NOT NULL,
	feasible      BOOLEAN NOT NULL,
	cancelled     BOOLEAN NOT NULL,
	generations   INT NOT NULL,
	duration_ms   BIGINT NOT NULL,
	schedule      JSONB NOT NULL,
	history       JSONB NOT NULL,
	violations    JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gashift_runs_month ON gashift_runs (year, month);
`

const runColumns = `id, run_id, year, month, employee_ids, seed, best_score, hard_penalty, soft_penalty,
	feasible, cancelled, generations, duration_ms, schedule, history, violations, created_at`

// Run 一次排班运行的归档记录
type Run struct {
	ID          uuid.UUID         `json:"id"`
	RunID       string            `json:"run_id"`
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	EmployeeIDs []string          `json:"employee_ids"`
	Seed        int64             `json:"seed"`
	BestScore   float64           `json:"best_score"`
	HardPenalty float64           `json:"hard_penalty"`
	SoftPenalty float64           `json:"soft_penalty"`
	Feasible    bool              `json:"feasible"`
	Cancelled   bool              `json:"cancelled"`
	Generations int               `json:"generations"`
	DurationMS  int64             `json:"duration_ms"`
	Schedule    [][]int           `json:"schedule"`
	History     []float64         `json:"history"`
	Violations  []model.Violation `json:"violations"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewRun 由输入与结果构造归档记录
func NewRun(in *model.ShiftInput, res *model.ShiftResult) *Run {
	return &Run{
		RunID:       res.RunID,
		Year:        in.Calendar.Year,
		Month:       in.Calendar.Month,
		EmployeeIDs: res.EmployeeIDs,
		Seed:        res.Seed,
		BestScore:   res.BestScore,
		HardPenalty: res.HardPenalty,
		SoftPenalty: res.SoftPenalty,
		Feasible:    res.Feasible(),
		Cancelled:   res.Cancelled,
		Generations: res.Generations,
		DurationMS:  res.DurationMS,
		Schedule:    res.BestSchedule,
		History:     res.GenerationHistory,
		Violations:  res.Violations,
	}
}

// Result 还原为排班结果
func (r *Run) Result() *model.ShiftResult {
	return &model.ShiftResult{
		RunID:             r.RunID,
		BestSchedule:      r.Schedule,
		EmployeeIDs:       r.EmployeeIDs,
		BestScore:         r.BestScore,
		HardPenalty:       r.HardPenalty,
		SoftPenalty:       r.SoftPenalty,
		GenerationHistory: r.History,
		Generations:       r.Generations,
		Seed:              r.Seed,
		Cancelled:         r.Cancelled,
		Violations:        r.Violations,
		DurationMS:        r.DurationMS,
	}
}

// RunRepository 运行归档仓储
type RunRepository struct {
	db DB
}

// NewRunRepository 创建运行归档仓储
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema 创建归档表
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "创建归档表失败")
	}
	return nil
}

// Create 保存运行记录
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	args, err := run.values()
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO gashift_runs (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`, runColumns)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "保存运行记录失败")
	}
	return nil
}

// GetByRunID 根据运行 ID 获取记录
func (r *RunRepository) GetByRunID(ctx context.Context, runID string) (*Run, error) {
	query := fmt.Sprintf("SELECT %s FROM gashift_runs WHERE run_id = $1", runColumns)
	run, err := scanRun(r.db.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run", runID)
	}
	return run, err
}

// List 列出运行记录
func (r *RunRepository) List(ctx context.Context, filter ListFilter) ([]*Run, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM gashift_runs " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "统计运行记录失败")
	}

	query := fmt.Sprintf("SELECT %s FROM gashift_runs %s ORDER BY %s LIMIT $%d OFFSET $%d",
		runColumns, where, orderClause(filter), len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "查询运行记录失败")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "读取运行记录失败")
	}
	return runs, total, nil
}

// Delete 删除运行记录
func (r *RunRepository) Delete(ctx context.Context, runID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM gashift_runs WHERE run_id = $1", runID)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "删除运行记录失败")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("run", runID)
	}
	return nil
}

// values 按 runColumns 顺序生成参数，JSON 字段序列化为 JSONB
func (r *Run) values() ([]interface{}, error) {
	schedule, err := json.Marshal(r.Schedule)
	if err != nil {
		return nil, fmt.Errorf("序列化排班失败: %w", err)
	}
	history, err := json.Marshal(nonNil(r.History))
	if err != nil {
		return nil, fmt.Errorf("序列化历史失败: %w", err)
	}
	violations, err := json.Marshal(nonNilViolations(r.Violations))
	if err != nil {
		return nil, fmt.Errorf("序列化违反明细失败: %w", err)
	}
	return []interface{}{
		r.ID, r.RunID, r.Year, r.Month, pq.Array(r.EmployeeIDs), r.Seed,
		r.BestScore, r.HardPenalty, r.SoftPenalty, r.Feasible, r.Cancelled,
		r.Generations, r.DurationMS, schedule, history, violations, r.CreatedAt,
	}, nil
}

// scanRun 扫描一行运行记录
func scanRun(s Scanner) (*Run, error) {
	var (
		run                           Run
		schedule, history, violations []byte
	)
	err := s.Scan(
		&run.ID, &run.RunID, &run.Year, &run.Month, pq.Array(&run.EmployeeIDs), &run.Seed,
		&run.BestScore, &run.HardPenalty, &run.SoftPenalty, &run.Feasible, &run.Cancelled,
		&run.Generations, &run.DurationMS, &schedule, &history, &violations, &run.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "扫描运行记录失败")
	}
	if err := json.Unmarshal(schedule, &run.Schedule); err != nil {
		return nil, fmt.Errorf("解析排班失败: %w", err)
	}
	if err := json.Unmarshal(history, &run.History); err != nil {
		return nil, fmt.Errorf("解析历史失败: %w", err)
	}
	if err := json.Unmarshal(violations, &run.Violations); err != nil {
		return nil, fmt.Errorf("解析违反明细失败: %w", err)
	}
	return &run, nil
}

// buildWhere 生成过滤条件与参数
func buildWhere(filter ListFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Year > 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.Month > 0 {
		args = append(args, filter.Month)
		conditions = append(conditions, fmt.Sprintf("month = $%d", len(args)))
	}
	if filter.Feasible != nil {
		args = append(args, *filter.Feasible)
		conditions = append(conditions, fmt.Sprintf("feasible = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// 允许排序的列
var orderColumns = map[string]bool{
	"created_at":   true,
	"best_score":   true,
	"hard_penalty": true,
	"duration_ms":  true,
}

// orderClause 排序子句，非法列回落到 created_at
func orderClause(filter ListFilter) string {
	col := filter.OrderBy
	if !orderColumns[col] {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func nonNilViolations(v []model.Violation) []model.Violation {
	if v == nil {
		return []model.Violation{}
	}
	return v
}

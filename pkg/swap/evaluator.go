// Package swap 提供换班/调休功能
package swap

import (
	"fmt"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
	"github.com/paiban/gashift/pkg/validator"
)

// SwapType 换班方式
type SwapType string

const (
	SwapTakeOver SwapType = "take_over" // 代班：目标员工当天改为出勤
	SwapExchange SwapType = "exchange"  // 互换：双方另选一天对调，休息天数不变
)

// SwapRequest 换班请求：EmployeeID 希望在 Day 休息
type SwapRequest struct {
	EmployeeID string   `json:"employee_id"`
	Day        int      `json:"day"` // 1 起始
	TargetID   string   `json:"target_id"`
	Type       SwapType `json:"type"`
	// ReturnDay 互换时申请人补班、目标员工休息的日期
	ReturnDay int `json:"return_day,omitempty"`
}

// SwapEvaluation 换班评估结果
type SwapEvaluation struct {
	Feasible       bool        `json:"feasible"`
	Before         float64     `json:"before"`
	After          float64     `json:"after"`
	Delta          float64     `json:"delta"`      // 总惩罚变化，负数表示改善
	HardDelta      float64     `json:"hard_delta"` // 硬约束惩罚变化
	Issues         []SwapIssue `json:"issues"`     // 换班后新增的问题
	Recommendation string      `json:"recommendation"`

	Schedule *matrix.Matrix `json:"-"`
}

// SwapIssue 换班问题
type SwapIssue struct {
	Type       string         `json:"type"`
	Severity   model.Severity `json:"severity"`
	EmployeeID string         `json:"employee_id,omitempty"`
	Day        int            `json:"day,omitempty"`
	Message    string         `json:"message"`
}

// SwapEvaluator 换班评估器
type SwapEvaluator struct {
	problem          *constraint.Problem
	manager          *constraint.Manager
	conflictDetector *validator.ConflictDetector
}

// NewSwapEvaluator 创建换班评估器
func NewSwapEvaluator(p *constraint.Problem, m *constraint.Manager) *SwapEvaluator {
	return &SwapEvaluator{
		problem:          p,
		manager:          m,
		conflictDetector: validator.NewConflictDetector(nil),
	}
}

// EvaluateSwap 评估换班可行性。请求本身不合法时返回 INVALID_INPUT / NOT_FOUND。
func (e *SwapEvaluator) EvaluateSwap(schedule *matrix.Matrix, req *SwapRequest) (*SwapEvaluation, error) {
	after, err := e.apply(schedule, req)
	if err != nil {
		return nil, err
	}

	before, err := e.conflictDetector.Validate(e.problem, e.manager, schedule)
	if err != nil {
		return nil, err
	}
	simulated, err := e.conflictDetector.Validate(e.problem, e.manager, after)
	if err != nil {
		return nil, err
	}

	result := &SwapEvaluation{
		Before:    before.Total,
		After:     simulated.Total,
		Delta:     simulated.Total - before.Total,
		HardDelta: simulated.Hard - before.Hard,
		Issues:    newIssues(before.Conflicts, simulated.Conflicts),
		Schedule:  after,
	}
	result.Feasible = result.HardDelta <= 0
	for _, issue := range result.Issues {
		if issue.Severity == model.SeverityError {
			result.Feasible = false
		}
	}
	result.Recommendation = e.generateRecommendation(result)
	return result, nil
}

// apply 在副本上执行换班
func (e *SwapEvaluator) apply(schedule *matrix.Matrix, req *SwapRequest) (*matrix.Matrix, error) {
	if req == nil {
		return nil, errors.New(errors.CodeInvalidInput, "无效的换班请求")
	}
	src, err := e.employee(req.EmployeeID)
	if err != nil {
		return nil, err
	}
	dst, err := e.employee(req.TargetID)
	if err != nil {
		return nil, err
	}
	if src == dst {
		return nil, errors.InvalidInput("target_id", "不能与申请人相同")
	}
	if !e.problem.Calendar.Contains(req.Day) {
		return nil, errors.InvalidInput("day", fmt.Sprintf("日号 %d 超出 1..%d", req.Day, e.problem.Days()))
	}

	d := req.Day - 1
	if schedule.CodeAt(src, d) != model.CellOpen {
		return nil, errors.InvalidInput("day", fmt.Sprintf("申请人第 %d 天不是出勤日", req.Day))
	}
	if schedule.CodeAt(dst, d) != model.CellAssignedOff {
		return nil, errors.InvalidInput("target_id", fmt.Sprintf("目标员工第 %d 天不是可调整的休息日", req.Day))
	}

	b := schedule.Builder()
	b.Flip(src, d)
	b.Flip(dst, d)

	switch req.Type {
	case SwapTakeOver:
	case SwapExchange:
		if !e.problem.Calendar.Contains(req.ReturnDay) || req.ReturnDay == req.Day {
			return nil, errors.InvalidInput("return_day", fmt.Sprintf("补班日 %d 无效", req.ReturnDay))
		}
		r := req.ReturnDay - 1
		if schedule.CodeAt(src, r) != model.CellAssignedOff || schedule.CodeAt(dst, r) != model.CellOpen {
			return nil, errors.InvalidInput("return_day", fmt.Sprintf("第 %d 天无法对调", req.ReturnDay))
		}
		b.Flip(src, r)
		b.Flip(dst, r)
	default:
		return nil, errors.InvalidInput("type", fmt.Sprintf("未知的换班方式 %q", req.Type))
	}
	return b.Build(), nil
}

func (e *SwapEvaluator) employee(id string) (int, error) {
	i, ok := e.problem.EmployeeIndex(id)
	if !ok {
		return 0, errors.NotFound("employee", id)
	}
	return i, nil
}

type conflictKey struct {
	typ        validator.ConflictType
	constraint string
	employee   string
	day        int
}

// newIssues 换班后新出现的冲突
func newIssues(before, after []validator.Conflict) []SwapIssue {
	seen := make(map[conflictKey]int, len(before))
	for _, c := range before {
		seen[conflictKey{c.Type, c.ConstraintID, c.EmployeeID, c.Day}]++
	}
	issues := make([]SwapIssue, 0)
	for _, c := range after {
		k := conflictKey{c.Type, c.ConstraintID, c.EmployeeID, c.Day}
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		typ := string(c.Type)
		if c.ConstraintID != "" {
			typ = c.ConstraintID
		}
		issues = append(issues, SwapIssue{
			Type:       typ,
			Severity:   c.Severity,
			EmployeeID: c.EmployeeID,
			Day:        c.Day,
			Message:    c.Message,
		})
	}
	return issues
}

// generateRecommendation 生成建议
func (e *SwapEvaluator) generateRecommendation(result *SwapEvaluation) string {
	switch {
	case !result.Feasible:
		return "不建议换班：会产生新的硬约束违反"
	case result.Delta <= 0:
		return "推荐换班：排班质量不变或更好"
	case len(result.Issues) == 0:
		return "可以换班：惩罚略有增加"
	default:
		return fmt.Sprintf("谨慎换班：新增 %d 个问题", len(result.Issues))
	}
}

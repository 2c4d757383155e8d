package swap

import (
	"fmt"
	"sort"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// Recommender 换班推荐器
type Recommender struct {
	evaluator *SwapEvaluator
	problem   *constraint.Problem
}

// NewRecommender 创建换班推荐器
func NewRecommender(p *constraint.Problem, m *constraint.Manager) *Recommender {
	return &Recommender{
		evaluator: NewSwapEvaluator(p, m),
		problem:   p,
	}
}

// Recommendation 换班推荐
type Recommendation struct {
	Request    SwapRequest     `json:"request"`
	TargetName string          `json:"target_name"`
	Evaluation *SwapEvaluation `json:"evaluation"`
	Reason     string          `json:"reason"`
	Rank       int             `json:"rank"`
}

// RecommendOptions 推荐选项
type RecommendOptions struct {
	MaxRecommendations int      // 最大推荐数量
	ExcludeEmployees   []string // 排除的员工
	AllowTakeOver      bool     // 是否允许代班（双方休息天数改变）
	AllowExchange      bool     // 是否允许互换
	MaxPenaltyIncrease float64  // 允许的最大惩罚增量
}

// DefaultRecommendOptions 返回默认选项
func DefaultRecommendOptions() *RecommendOptions {
	return &RecommendOptions{
		MaxRecommendations: 5,
		AllowTakeOver:      true,
		AllowExchange:      true,
		MaxPenaltyIncrease: 50,
	}
}

// RecommendSwapTargets 为希望在 day（1 起始）休息的员工推荐换班方案，按惩罚增量升序排列
func (r *Recommender) RecommendSwapTargets(schedule *matrix.Matrix, employeeID string, day int, options *RecommendOptions) ([]Recommendation, error) {
	if options == nil {
		options = DefaultRecommendOptions()
	}
	src, ok := r.problem.EmployeeIndex(employeeID)
	if !ok {
		return nil, errors.NotFound("employee", employeeID)
	}
	if !r.problem.Calendar.Contains(day) {
		return nil, errors.InvalidInput("day", fmt.Sprintf("日号 %d 超出 1..%d", day, r.problem.Days()))
	}
	if schedule.CodeAt(src, day-1) != model.CellOpen {
		return nil, errors.InvalidInput("day", fmt.Sprintf("第 %d 天不是出勤日", day))
	}

	excludeSet := make(map[string]bool, len(options.ExcludeEmployees))
	for _, id := range options.ExcludeEmployees {
		excludeSet[id] = true
	}

	var candidates []Recommendation
	for dst, emp := range r.problem.Employees {
		if dst == src || excludeSet[emp.ID] || schedule.CodeAt(dst, day-1) != model.CellAssignedOff {
			continue
		}
		for _, req := range r.requests(schedule, src, dst, day, options) {
			eval, err := r.evaluator.EvaluateSwap(schedule, &req)
			if err != nil {
				return nil, err
			}
			if !eval.Feasible || eval.Delta > options.MaxPenaltyIncrease {
				continue
			}
			candidates = append(candidates, Recommendation{
				Request:    req,
				TargetName: emp.Name,
				Evaluation: eval,
				Reason:     r.generateReason(&emp, &req, eval),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Evaluation.Delta < candidates[j].Evaluation.Delta
	})
	if options.MaxRecommendations > 0 && len(candidates) > options.MaxRecommendations {
		candidates = candidates[:options.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// requests 列出 src 与 dst 之间所有可执行的换班方式
func (r *Recommender) requests(schedule *matrix.Matrix, src, dst, day int, options *RecommendOptions) []SwapRequest {
	srcID, dstID := r.problem.Employees[src].ID, r.problem.Employees[dst].ID
	var out []SwapRequest
	if options.AllowTakeOver {
		out = append(out, SwapRequest{EmployeeID: srcID, Day: day, TargetID: dstID, Type: SwapTakeOver})
	}
	if options.AllowExchange {
		for d := 0; d < schedule.Cols(); d++ {
			if d == day-1 {
				continue
			}
			if schedule.CodeAt(src, d) == model.CellAssignedOff && schedule.CodeAt(dst, d) == model.CellOpen {
				out = append(out, SwapRequest{EmployeeID: srcID, Day: day, TargetID: dstID, Type: SwapExchange, ReturnDay: d + 1})
			}
		}
	}
	return out
}

// generateReason 生成推荐理由
func (r *Recommender) generateReason(emp *model.Employee, req *SwapRequest, eval *SwapEvaluation) string {
	name := emp.Name
	if name == "" {
		name = emp.ID
	}
	var action string
	if req.Type == SwapExchange {
		action = fmt.Sprintf("%s 第 %d 天代班，申请人第 %d 天补班", name, req.Day, req.ReturnDay)
	} else {
		action = fmt.Sprintf("%s 第 %d 天代班", name, req.Day)
	}
	switch {
	case eval.Delta < 0:
		return fmt.Sprintf("%s，惩罚降低 %.1f", action, -eval.Delta)
	case eval.Delta == 0:
		return action + "，不影响排班质量"
	default:
		return fmt.Sprintf("%s，惩罚增加 %.1f", action, eval.Delta)
	}
}

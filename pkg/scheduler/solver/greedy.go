// Package solver 提供排班求解器
package solver

import (
	"context"
	"sort"

	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// Solver 求解器接口
type Solver interface {
	// Solve 生成排班方案
	Solve(ctx context.Context, p *constraint.Problem) (*matrix.Matrix, error)

	// Name 返回求解器名称
	Name() string
}

// GreedySolver 贪心求解器：逐日把富余人手安排为休息，优先照顾剩余休息额度多的员工。
// 结果只依赖输入，不使用随机数。
type GreedySolver struct{}

// NewGreedySolver 创建贪心求解器
func NewGreedySolver() *GreedySolver {
	return &GreedySolver{}
}

// Name 返回求解器名称
func (s *GreedySolver) Name() string {
	return "GreedySolver"
}

// Solve 使用贪心算法生成排班
func (s *GreedySolver) Solve(ctx context.Context, p *constraint.Problem) (*matrix.Matrix, error) {
	b, err := s.build(ctx, p)
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// Seed 构造初始个体
func (s *GreedySolver) Seed(p *constraint.Problem) *matrix.Builder {
	b, _ := s.build(context.Background(), p)
	return b
}

func (s *GreedySolver) build(ctx context.Context, p *constraint.Problem) (*matrix.Builder, error) {
	b := p.Base.Builder()
	days := p.Days()

	// 每位员工尚需安排的休息天数
	remaining := make([]int, len(p.Employees))
	for e, emp := range p.Employees {
		fixed := 0
		for d := 0; d < days; d++ {
			if p.Base.IsFixed(e, d) {
				fixed++
			}
		}
		remaining[e] = emp.RestQuota(days) - fixed
	}

	workers := make([]int, days)
	for d := 0; d < days; d++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var open []int
		for e := range p.Employees {
			if !p.Base.IsFixed(e, d) {
				open = append(open, e)
			}
		}
		surplus := len(open) - p.Required(d)

		// 剩余额度多者优先；昨天休息者优先，以形成连休
		sort.SliceStable(open, func(i, j int) bool {
			a, c := open[i], open[j]
			if remaining[a] != remaining[c] {
				return remaining[a] > remaining[c]
			}
			return offYesterday(b, a, d) && !offYesterday(b, c, d)
		})
		for _, e := range open {
			if surplus <= 0 || remaining[e] <= 0 {
				break
			}
			b.Flip(e, d)
			remaining[e]--
			surplus--
		}
		workers[d] = countWorkers(b, len(p.Employees), d)
	}

	// 人手不足导致未用完的额度安排在富余最多的日期
	for e := range p.Employees {
		for remaining[e] > 0 {
			best := -1
			for d := 0; d < days; d++ {
				if !b.CodeAt(e, d).IsWork() {
					continue
				}
				if best < 0 || workers[d]-p.Required(d) > workers[best]-p.Required(best) {
					best = d
				}
			}
			if best < 0 {
				break
			}
			b.Flip(e, best)
			workers[best]--
			remaining[e]--
		}
	}
	return b, nil
}

func offYesterday(b *matrix.Builder, e, d int) bool {
	return d > 0 && !b.CodeAt(e, d-1).IsWork()
}

func countWorkers(b *matrix.Builder, rows, d int) int {
	n := 0
	for e := 0; e < rows; e++ {
		if b.CodeAt(e, d).IsWork() {
			n++
		}
	}
	return n
}

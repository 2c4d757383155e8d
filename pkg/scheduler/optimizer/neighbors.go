package optimizer

import (
	"math/rand"

	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// SwapMove 同一员工两天的出勤/休息互换，员工的休息天数保持不变
type SwapMove struct {
	Employee int
	Day1     int
	Day2     int
}

// NeighborhoodGenerator 邻域生成器
type NeighborhoodGenerator struct {
	problem *constraint.Problem
	// 每位员工可调整的日期下标
	mutable [][]int
}

// NewNeighborhoodGenerator 创建邻域生成器
func NewNeighborhoodGenerator(p *constraint.Problem) *NeighborhoodGenerator {
	mutable := make([][]int, len(p.Employees))
	for e := range p.Employees {
		for d := 0; d < p.Days(); d++ {
			if !p.Base.IsFixed(e, d) {
				mutable[e] = append(mutable[e], d)
			}
		}
	}
	return &NeighborhoodGenerator{problem: p, mutable: mutable}
}

// RandomMove 随机选取一个互换移动；找不到两天状态不同的员工时返回 false
func (n *NeighborhoodGenerator) RandomMove(m *matrix.Matrix, rng *rand.Rand) (SwapMove, bool) {
	const attempts = 32
	rows := len(n.mutable)
	if rows == 0 {
		return SwapMove{}, false
	}
	for i := 0; i < attempts; i++ {
		e := rng.Intn(rows)
		days := n.mutable[e]
		if len(days) < 2 {
			continue
		}
		d1 := days[rng.Intn(len(days))]
		d2 := days[rng.Intn(len(days))]
		if m.CodeAt(e, d1) != m.CodeAt(e, d2) {
			return SwapMove{Employee: e, Day1: d1, Day2: d2}, true
		}
	}
	return SwapMove{}, false
}

// Apply 应用移动，返回新的矩阵
func (n *NeighborhoodGenerator) Apply(m *matrix.Matrix, mv SwapMove) *matrix.Matrix {
	b := m.Builder()
	b.Flip(mv.Employee, mv.Day1)
	b.Flip(mv.Employee, mv.Day2)
	return b.Build()
}

// GenerateNeighbors 生成最多 size 个邻域解
func (n *NeighborhoodGenerator) GenerateNeighbors(m *matrix.Matrix, size int, rng *rand.Rand) []*matrix.Matrix {
	out := make([]*matrix.Matrix, 0, size)
	for i := 0; i < size; i++ {
		mv, ok := n.RandomMove(m, rng)
		if !ok {
			break
		}
		out = append(out, n.Apply(m, mv))
	}
	return out
}

// Package optimizer 遗传算法排班优化：种群、遗传算子、并行评分与引擎
package optimizer

import (
	"sort"

	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// Individual 一个候选解。矩阵只读，评分结果首次计算后缓存；
// 任何修改都通过 Builder 产生新的 Individual。
type Individual struct {
	matrix *matrix.Matrix
	result *constraint.Result
}

// NewIndividual 包装矩阵，尚未评分
func NewIndividual(m *matrix.Matrix) *Individual {
	return &Individual{matrix: m}
}

// Matrix 个体的排班矩阵
func (i *Individual) Matrix() *matrix.Matrix { return i.matrix }

// Scored 是否已评分
func (i *Individual) Scored() bool { return i.result != nil }

// Result 缓存的评分结果，未评分时为 nil
func (i *Individual) Result() *constraint.Result { return i.result }

// Penalty 总惩罚；未评分的个体视为最差
func (i *Individual) Penalty() float64 {
	if i.result == nil {
		return constraint.MaxPenalty
	}
	return i.result.Total
}

// score 评分并缓存，已评分时直接返回
func (i *Individual) score(m *constraint.Manager, p *constraint.Problem) error {
	if i.result != nil {
		return nil
	}
	ctx, err := constraint.NewContext(i.matrix, p)
	if err != nil {
		return err
	}
	i.result = m.Evaluate(ctx)
	return nil
}

// Population 一代的个体集合
type Population []*Individual

// Sort 按惩罚升序稳定排序
func (pop Population) Sort() {
	sort.SliceStable(pop, func(a, b int) bool {
		return pop[a].Penalty() < pop[b].Penalty()
	})
}

// Best 惩罚最低的个体，相同时取下标小的
func (pop Population) Best() *Individual {
	if len(pop) == 0 {
		return nil
	}
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Penalty() < best.Penalty() {
			best = ind
		}
	}
	return best
}

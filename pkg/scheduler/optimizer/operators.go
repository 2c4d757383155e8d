package optimizer

import (
	"math/rand"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
	"github.com/paiban/gashift/pkg/scheduler/solver"
)

// Operators 遗传算子。只在主循环中顺序调用，随机数全部来自传入的 rng。
type Operators struct {
	TournamentSize int
	CrossoverRate  float64
	MutationRate   float64
	// Repair 为 true 时每个新个体按合同休息天数修正
	Repair bool
	// Seeder 非空时初始种群的第一个个体由它构造
	Seeder Seeder

	problem *constraint.Problem
}

// NewOperators 按配置创建遗传算子
func NewOperators(cfg model.GAConfig, p *constraint.Problem) *Operators {
	k := cfg.TournamentSize
	if k < 1 {
		k = 1
	}
	ops := &Operators{
		TournamentSize: k,
		CrossoverRate:  cfg.CrossoverRate,
		MutationRate:   cfg.MutationRate,
		Repair:         cfg.HolidayRepair,
		problem:        p,
	}
	if cfg.GreedySeed {
		ops.Seeder = solver.NewGreedySolver()
	}
	return ops
}

// Select 锦标赛选择：有放回地抽取 k 个个体，惩罚最低者胜出，相同时下标小者胜出。
// 精英个体同样参与选择。
func (o *Operators) Select(pop Population, rng *rand.Rand) *Individual {
	winner := rng.Intn(len(pop))
	for i := 1; i < o.TournamentSize; i++ {
		c := rng.Intn(len(pop))
		pc, pw := pop[c].Penalty(), pop[winner].Penalty()
		if pc < pw || (pc == pw && c < winner) {
			winner = c
		}
	}
	return pop[winner]
}

// Crossover 均匀交叉：每个非固定单元格以 CrossoverRate 的概率取父代 a，否则取父代 b。
// 固定单元格在两个父代中相同，直接沿用 a。
func (o *Operators) Crossover(a, b *Individual, rng *rand.Rand) *matrix.Builder {
	child := a.Matrix().Builder()
	mb := b.Matrix()
	for e := 0; e < mb.Rows(); e++ {
		for d := 0; d < mb.Cols(); d++ {
			if mb.IsFixed(e, d) {
				continue
			}
			if rng.Float64() >= o.CrossoverRate && child.CodeAt(e, d) != mb.CodeAt(e, d) {
				child.Flip(e, d)
			}
		}
	}
	return child
}

// Mutate 每个非固定单元格以 MutationRate 的概率在出勤与休息之间翻转
func (o *Operators) Mutate(b *matrix.Builder, rng *rand.Rand) {
	rows, cols := len(o.problem.Employees), o.problem.Days()
	for e := 0; e < rows; e++ {
		for d := 0; d < cols; d++ {
			if b.CodeAt(e, d).IsFixed() {
				continue
			}
			if rng.Float64() < o.MutationRate {
				b.Flip(e, d)
			}
		}
	}
}

// RepairQuota 按合同休息天数修正：休息过多时随机取消安排休息，过少时随机安排休息。
// 固定单元格计为休息且不会被改动；未设置合同休息天数的员工跳过。
func (o *Operators) RepairQuota(b *matrix.Builder, rng *rand.Rand) {
	days := o.problem.Days()
	for e, emp := range o.problem.Employees {
		if emp.RequiredHolidays <= 0 {
			continue
		}
		offs := 0
		var assigned, open []int
		for d := 0; d < days; d++ {
			switch code := b.CodeAt(e, d); {
			case code == model.CellAssignedOff:
				assigned = append(assigned, d)
				offs++
			case code == model.CellOpen:
				open = append(open, d)
			default:
				offs++
			}
		}

		var candidates []int
		n := offs - emp.RequiredHolidays
		switch {
		case n > 0:
			candidates = assigned
		case n < 0:
			candidates = open
			n = -n
		default:
			continue
		}
		if n > len(candidates) {
			n = len(candidates)
		}
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, d := range candidates[:n] {
			b.Flip(e, d)
		}
	}
}

// Breed 选择两个父代，交叉、变异、修正后产生一个新个体
func (o *Operators) Breed(pop Population, rng *rand.Rand) *Individual {
	a := o.Select(pop, rng)
	b := o.Select(pop, rng)
	child := o.Crossover(a, b, rng)
	o.Mutate(child, rng)
	if o.Repair {
		o.RepairQuota(child, rng)
	}
	return NewIndividual(child.Build())
}

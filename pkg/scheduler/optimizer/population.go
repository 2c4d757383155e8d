package optimizer

import (
	"math/rand"

	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// Seeder 构造确定性的初始个体
type Seeder interface {
	Seed(p *constraint.Problem) *matrix.Builder
}

// GenerateInitial 生成初始种群。非固定单元格按每位员工剩余休息额度加权随机安排休息，
// 相同的 rng 序列与输入得到相同的种群。
func GenerateInitial(p *constraint.Problem, size int, ops *Operators, rng *rand.Rand) Population {
	pop := make(Population, size)
	for i := range pop {
		var b *matrix.Builder
		if i == 0 && ops != nil && ops.Seeder != nil {
			b = ops.Seeder.Seed(p)
		} else {
			b = seed(p, rng)
		}
		if ops != nil && ops.Repair {
			ops.RepairQuota(b, rng)
		}
		pop[i] = NewIndividual(b.Build())
	}
	return pop
}

// seed 以 剩余额度/可排单元格 为概率安排休息
func seed(p *constraint.Problem, rng *rand.Rand) *matrix.Builder {
	b := p.Base.Builder()
	days := p.Days()
	for e, emp := range p.Employees {
		fixed := 0
		for d := 0; d < days; d++ {
			if p.Base.IsFixed(e, d) {
				fixed++
			}
		}
		open := days - fixed
		remaining := emp.RestQuota(days) - fixed
		if open == 0 || remaining <= 0 {
			continue
		}
		prob := float64(remaining) / float64(open)
		for d := 0; d < days; d++ {
			if p.Base.IsFixed(e, d) {
				continue
			}
			if rng.Float64() < prob {
				b.Flip(e, d)
			}
		}
	}
	return b
}

// BreedNext 产生下一代：前 eliteCount 个（current 已按惩罚排序）原样保留，其余由遗传算子繁殖
func BreedNext(current Population, eliteCount int, ops *Operators, rng *rand.Rand) Population {
	next := make(Population, 0, len(current))
	next = append(next, current[:eliteCount]...)
	for len(next) < len(current) {
		next = append(next, ops.Breed(current, rng))
	}
	return next
}

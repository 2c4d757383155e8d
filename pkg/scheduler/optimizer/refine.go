package optimizer

import (
	"context"
	"math"
	"math/rand"

	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// LocalSearchConfig 模拟退火精修参数
type LocalSearchConfig struct {
	Iterations       int
	InitialTemp      float64
	CoolingRate      float64
	NeighborhoodSize int
	TabuSize         int
}

// DefaultLocalSearchConfig 默认精修参数
func DefaultLocalSearchConfig(iterations int) LocalSearchConfig {
	return LocalSearchConfig{
		Iterations:       iterations,
		InitialTemp:      100.0,
		CoolingRate:      0.99,
		NeighborhoodSize: 8,
		TabuSize:         50,
	}
}

// LocalSearch 对单个解做模拟退火局部搜索
type LocalSearch struct {
	config    LocalSearchConfig
	manager   *constraint.Manager
	problem   *constraint.Problem
	neighbors *NeighborhoodGenerator
	tabuList  *TabuList
	log       *logger.SchedulerLogger
	runID     string
}

// NewLocalSearch 创建局部搜索
func NewLocalSearch(cfg LocalSearchConfig, m *constraint.Manager, p *constraint.Problem, l *logger.SchedulerLogger) *LocalSearch {
	if l == nil {
		l = logger.NewSchedulerLogger()
	}
	return &LocalSearch{
		config:    cfg,
		manager:   m,
		problem:   p,
		neighbors: NewNeighborhoodGenerator(p),
		tabuList:  NewTabuList(cfg.TabuSize),
		log:       l,
	}
}

// Refine 从 start 出发搜索，返回见过的最优个体（不差于 start）
func (ls *LocalSearch) Refine(ctx context.Context, start *Individual, rng *rand.Rand) (*Individual, error) {
	if err := start.score(ls.manager, ls.problem); err != nil {
		return nil, err
	}
	current, best := start, start
	temperature := ls.config.InitialTemp

	for i := 0; i < ls.config.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		var candidate *Individual
		for _, m := range ls.neighbors.GenerateNeighbors(current.Matrix(), ls.config.NeighborhoodSize, rng) {
			ind := NewIndividual(m)
			if err := ind.score(ls.manager, ls.problem); err != nil {
				return best, err
			}
			if candidate == nil || ind.Penalty() < candidate.Penalty() {
				candidate = ind
			}
		}
		if candidate == nil {
			break
		}

		key := candidate.Matrix().Hash()
		accept := candidate.Penalty() < current.Penalty()
		if !accept && !ls.tabuList.Contains(key) {
			delta := candidate.Penalty() - current.Penalty()
			accept = rng.Float64() < boltzmannProbability(delta, temperature)
		}
		if accept {
			current = candidate
			ls.tabuList.Add(key)
			if current.Penalty() < best.Penalty() {
				best = current
			}
		}
		temperature *= ls.config.CoolingRate
	}

	ls.log.LocalSearch(ls.runID, ls.config.Iterations, start.Penalty(), best.Penalty())
	return best, nil
}

// boltzmannProbability 模拟退火接受较差解的概率，delta 为 新-旧
func boltzmannProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-delta / temperature)
}

// TabuList 禁忌表，以矩阵哈希为键
type TabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
}

// NewTabuList 创建禁忌表
func NewTabuList(size int) *TabuList {
	return &TabuList{
		items:   make(map[uint64]struct{}),
		order:   make([]uint64, 0, size),
		maxSize: size,
	}
}

// Add 添加到禁忌表，超出容量时移除最旧的
func (t *TabuList) Add(key uint64) {
	if t.maxSize <= 0 {
		return
	}
	if _, exists := t.items[key]; exists {
		return
	}
	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}
	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// Contains 检查是否在禁忌表中
func (t *TabuList) Contains(key uint64) bool {
	_, exists := t.items[key]
	return exists
}

// Len 当前条目数
func (t *TabuList) Len() int {
	return len(t.order)
}

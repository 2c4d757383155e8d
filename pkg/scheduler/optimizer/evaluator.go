package optimizer

import (
	"runtime"
	"sync"

	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// ParallelEvaluator 并行评分器。每个个体只由领取其下标的 worker 写入，
// 评分本身不使用随机数，所以结果与 worker 数量无关。
type ParallelEvaluator struct {
	workers int
	manager *constraint.Manager
	problem *constraint.Problem
}

// NewParallelEvaluator 创建并行评分器，workers<=0 时使用 CPU 核数
func NewParallelEvaluator(workers int, m *constraint.Manager, p *constraint.Problem) *ParallelEvaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelEvaluator{workers: workers, manager: m, problem: p}
}

// Workers 并发数
func (pe *ParallelEvaluator) Workers() int { return pe.workers }

// EvaluateBatch 为种群中尚未评分的个体评分，返回本次评分的个数
func (pe *ParallelEvaluator) EvaluateBatch(pop Population) (int, error) {
	pending := make([]int, 0, len(pop))
	for i, ind := range pop {
		if !ind.Scored() {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	workers := pe.workers
	if workers > len(pending) {
		workers = len(pending)
	}

	jobs := make(chan int, len(pending))
	errs := make([]error, len(pop))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = pop[i].score(pe.manager, pe.problem)
			}
		}()
	}

	for _, i := range pending {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}

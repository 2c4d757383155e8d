package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/constraint/builtin"
)

// State 引擎状态
type State int

const (
	StateInitialized State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "INITIALIZED"
	case StateRunning:
		return "RUNNING"
	case StateTerminated:
		return "TERMINATED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// 运行结束状态，用于指标标签
const (
	StatusSuccess   = "success"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Recorder 运行指标记录
type Recorder interface {
	RunStarted()
	GenerationDone(best float64)
	Evaluations(n int)
	RunFinished(status string, duration time.Duration, hard, soft float64)
}

type nopRecorder struct{}

func (nopRecorder) RunStarted()                                        {}
func (nopRecorder) GenerationDone(float64)                             {}
func (nopRecorder) Evaluations(int)                                    {}
func (nopRecorder) RunFinished(string, time.Duration, float64, float64) {}

// ProgressFunc 每代结束时回调
type ProgressFunc func(generation int, generationBest, globalBest float64)

// Option 引擎选项
type Option func(*Engine)

// WithLogger 设置日志器
func WithLogger(l *logger.SchedulerLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRecorder 设置指标记录器
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithProgress 设置进度回调
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithRunID 指定运行 ID，默认随机生成
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// Engine 遗传算法引擎。一个实例只运行一次：INITIALIZED → RUNNING → TERMINATED。
type Engine struct {
	cfg       model.GAConfig
	problem   *constraint.Problem
	manager   *constraint.Manager
	ops       *Operators
	evaluator *ParallelEvaluator
	rng       *rand.Rand
	seed      int64
	runID     string

	log      *logger.SchedulerLogger
	recorder Recorder
	progress ProgressFunc

	mu    sync.Mutex
	state State
}

// New 校验输入与配置并编译约束。所有配置错误汇总为一个 VALIDATION_FAILED 错误返回。
// registry 为 nil 时使用内置模板；configs 为空时使用默认约束集。
func New(in *model.ShiftInput, configs []model.ConstraintConfig, cfg model.GAConfig, registry *constraint.Registry, opts ...Option) (*Engine, error) {
	ve := ValidateConfig(cfg)
	ve.Merge(ValidateInput(in))
	if in == nil {
		return nil, ve.ToAppError()
	}

	if registry == nil {
		registry = builtin.NewRegistry()
	}
	if len(configs) == 0 {
		configs = builtin.DefaultSet()
	}

	var manager *constraint.Manager
	problem, err := constraint.NewProblem(in)
	if err != nil {
		if !mergeValidation(ve, err) {
			return nil, err
		}
		ve.Merge(registry.CheckIDs(configs))
	} else {
		manager, err = registry.Compile(configs, problem)
		if err != nil && !mergeValidation(ve, err) {
			return nil, err
		}
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	seed := time.Now().UnixNano()
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}

	e := &Engine{
		cfg:       cfg,
		problem:   problem,
		manager:   manager,
		ops:       NewOperators(cfg, problem),
		evaluator: NewParallelEvaluator(cfg.Workers, manager, problem),
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		runID:     uuid.NewString(),
		log:       logger.NewSchedulerLogger(),
		recorder:  nopRecorder{},
		state:     StateInitialized,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.manager.SetLogger(e.log)
	return e, nil
}

// mergeValidation 把错误中的验证明细并入 ve，非验证错误返回 false
func mergeValidation(ve *errors.ValidationErrors, err error) bool {
	var inner *errors.ValidationErrors
	if !errors.As(err, &inner) {
		return false
	}
	ve.Merge(inner)
	return true
}

// State 当前状态
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RunID 运行 ID
func (e *Engine) RunID() string { return e.runID }

// Seed 实际使用的随机种子
func (e *Engine) Seed() int64 { return e.seed }

// Problem 编译后的问题
func (e *Engine) Problem() *constraint.Problem { return e.problem }

// Manager 编译后的约束管理器
func (e *Engine) Manager() *constraint.Manager { return e.manager }

func (e *Engine) transition(from, to State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != from {
		return errors.New(errors.CodeInternal, fmt.Sprintf("引擎状态为 %s，无法进入 %s", e.state, to))
	}
	e.state = to
	return nil
}

// Run 执行遗传算法。终止条件只有代数；ctx 在每代开始前检查，
// 取消时返回当前最优解（Cancelled=true、历史截断）以及 ctx.Err()。
func (e *Engine) Run(ctx context.Context) (*model.ShiftResult, error) {
	if err := e.transition(StateInitialized, StateRunning); err != nil {
		return nil, err
	}
	defer func() {
		e.mu.Lock()
		e.state = StateTerminated
		e.mu.Unlock()
	}()

	start := time.Now()
	cfg := e.cfg
	e.log.StartRun(e.runID, len(e.problem.Employees), e.problem.Days(), cfg.PopulationSize, e.seed)
	e.recorder.RunStarted()

	pop := GenerateInitial(e.problem, cfg.PopulationSize, e.ops, e.rng)
	history := make([]float64, 0, cfg.GenerationCount)
	var best *Individual
	var cancelErr error

	for g := 0; g < cfg.GenerationCount; g++ {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			e.log.Cancelled(e.runID, g, err)
			break
		}

		n, err := e.evaluator.EvaluateBatch(pop)
		if err != nil {
			e.recorder.RunFinished(StatusFailed, time.Since(start), 0, 0)
			return nil, err
		}
		e.recorder.Evaluations(n)

		pop.Sort()
		if best == nil || pop[0].Penalty() < best.Penalty() {
			best = pop[0]
		}
		history = append(history, best.Penalty()) // 全局最优

		e.log.Generation(e.runID, g, pop[0].Penalty(), best.Penalty())
		e.recorder.GenerationDone(best.Penalty())
		if e.progress != nil {
			e.progress(g, pop[0].Penalty(), best.Penalty())
		}

		if g+1 < cfg.GenerationCount {
			pop = BreedNext(pop, cfg.EliteCount, e.ops, e.rng)
		}
	}

	if best == nil {
		// 第 0 代之前已取消，仍给出初始种群中的最优解
		n, err := e.evaluator.EvaluateBatch(pop)
		if err != nil {
			return nil, err
		}
		e.recorder.Evaluations(n)
		pop.Sort()
		best = pop[0]
	}

	if cancelErr == nil && cfg.LocalSearchIterations > 0 {
		ls := NewLocalSearch(DefaultLocalSearchConfig(cfg.LocalSearchIterations), e.manager, e.problem, e.log)
		ls.runID = e.runID
		refined, err := ls.Refine(ctx, best, e.rng)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			cancelErr = err
			e.log.Cancelled(e.runID, cfg.GenerationCount, err)
		default:
			return nil, err
		}
		if refined != nil && refined.Penalty() < best.Penalty() {
			best = refined
		}
	}

	final, err := constraint.NewContext(best.Matrix(), e.problem)
	if err != nil {
		return nil, err
	}
	report := e.manager.Explain(final)

	result := &model.ShiftResult{
		RunID:             e.runID,
		BestSchedule:      best.Matrix().Codes(),
		EmployeeIDs:       e.problem.EmployeeIDs(),
		BestScore:         report.Total,
		HardPenalty:       report.Hard,
		SoftPenalty:       report.Soft,
		GenerationHistory: history,
		Generations:       len(history),
		Seed:              e.seed,
		Cancelled:         cancelErr != nil,
		Violations:        report.Violations,
		DurationMS:        time.Since(start).Milliseconds(),
	}

	status := StatusSuccess
	if cancelErr != nil {
		status = StatusCancelled
	}
	e.recorder.RunFinished(status, time.Since(start), report.Hard, report.Soft)
	e.log.RunComplete(e.runID, time.Since(start), report.Total, report.Hard, report.Soft, result.Cancelled)

	return result, cancelErr
}

// Optimize 使用内置模板运行一次排班
func Optimize(ctx context.Context, in *model.ShiftInput, configs []model.ConstraintConfig, cfg model.GAConfig, opts ...Option) (*model.ShiftResult, error) {
	e, err := New(in, configs, cfg, nil, opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

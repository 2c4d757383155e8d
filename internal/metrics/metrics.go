// Package metrics 提供Prometheus监控指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/paiban/gashift/pkg/scheduler/optimizer"
)

// Recorder 把引擎事件记录为 Prometheus 指标，实现 optimizer.Recorder
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	generations prometheus.Counter
	evaluations prometheus.Counter
	duration    prometheus.Histogram
	bestPenalty *prometheus.GaugeVec
	running     prometheus.Gauge
}

var _ optimizer.Recorder = (*Recorder)(nil)

// NewRecorder 在 reg 上注册排班指标，reg 为 nil 时新建注册表。
// 同名指标已注册时复用已有的收集器。
func NewRecorder(namespace string, reg *prometheus.Registry) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of optimizer runs by final status",
	}, []string{"status"})
	generations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Total number of completed generations",
	})
	evaluations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Total number of scored individuals",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of optimizer runs",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
	bestPenalty := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "best_penalty",
		Help:      "Penalty of the best schedule by kind (total, hard, soft)",
	}, []string{"kind"})
	running := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "runs_in_progress",
		Help:      "Number of optimizer runs currently in progress",
	})

	r := &Recorder{registry: reg}
	var err error
	if r.runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if r.generations, err = register(reg, generations); err != nil {
		return nil, err
	}
	if r.evaluations, err = register(reg, evaluations); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if r.bestPenalty, err = register(reg, bestPenalty); err != nil {
		return nil, err
	}
	if r.running, err = register(reg, running); err != nil {
		return nil, err
	}
	return r, nil
}

// register 注册收集器，已存在时返回已有实例
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// Registry 返回底层注册表
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RunStarted 记录运行开始
func (r *Recorder) RunStarted() {
	r.running.Inc()
}

// GenerationDone 记录一代结束
func (r *Recorder) GenerationDone(best float64) {
	r.generations.Inc()
	r.bestPenalty.WithLabelValues("total").Set(best)
}

// Evaluations 记录评分个体数
func (r *Recorder) Evaluations(n int) {
	if n > 0 {
		r.evaluations.Add(float64(n))
	}
}

// RunFinished 记录运行结束
func (r *Recorder) RunFinished(status string, d time.Duration, hard, soft float64) {
	r.running.Dec()
	r.runs.WithLabelValues(status).Inc()
	r.duration.Observe(d.Seconds())
	if status == optimizer.StatusFailed {
		return
	}
	r.bestPenalty.WithLabelValues("hard").Set(hard)
	r.bestPenalty.WithLabelValues("soft").Set(soft)
	r.bestPenalty.WithLabelValues("total").Set(hard + soft)
}

// WriteTextfile 以 node_exporter 文本格式写出全部指标
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

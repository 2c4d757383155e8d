// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	inited bool
	logger zerolog.Logger
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化全局日志器，可重复调用以切换配置
func Init(cfg Config) {
	l := New(cfg)
	mu.Lock()
	logger = l
	inited = true
	mu.Unlock()
}

// New 按配置创建独立日志器
func New(cfg Config) zerolog.Logger {
	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "file":
		output = os.Stderr
		if cfg.FilePath != "" {
			if f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
				output = f
			}
		}
	default:
		output = os.Stderr
	}

	if cfg.Format == "console" {
		tf := cfg.TimeFormat
		if tf == "" {
			tf = time.RFC3339
		}
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: tf}
	}

	return zerolog.New(output).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel 解析日志级别，未知值回落到 info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	mu.RLock()
	if inited {
		l := logger
		mu.RUnlock()
		return &l
	}
	mu.RUnlock()
	Init(DefaultConfig())
	return Get()
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// SchedulerLogger 排班引擎专用日志器
type SchedulerLogger struct {
	base  zerolog.Logger
	every int
}

// NewSchedulerLogger 创建排班引擎日志器
func NewSchedulerLogger() *SchedulerLogger {
	return NewSchedulerLoggerFrom(*Get())
}

// NewSchedulerLoggerFrom 基于给定日志器创建，测试中常用 zerolog.Nop()
func NewSchedulerLoggerFrom(base zerolog.Logger) *SchedulerLogger {
	return &SchedulerLogger{
		base:  base.With().Str("component", "scheduler").Logger(),
		every: 10,
	}
}

// SetProgressEvery 每隔多少代输出一条 info 级进度
func (l *SchedulerLogger) SetProgressEvery(n int) {
	if n > 0 {
		l.every = n
	}
}

// StartRun 记录优化开始
func (l *SchedulerLogger) StartRun(runID string, employees, days, population int, seed int64) {
	l.base.Info().
		Str("run_id", runID).
		Int("employees", employees).
		Int("days", days).
		Int("population", population).
		Int64("seed", seed).
		Msg("开始遗传算法排班")
}

// Generation 记录单代进度
func (l *SchedulerLogger) Generation(runID string, gen int, genBest, globalBest float64) {
	ev := l.base.Debug()
	if gen%l.every == 0 {
		ev = l.base.Info()
	}
	ev.Str("run_id", runID).
		Int("generation", gen).
		Float64("generation_best", genBest).
		Float64("global_best", globalBest).
		Msg("代进度")
}

// ConstraintViolation 记录约束违反
func (l *SchedulerLogger) ConstraintViolation(constraint, details string, penalty float64) {
	l.base.Debug().
		Str("constraint", constraint).
		Str("details", details).
		Float64("penalty", penalty).
		Msg("约束违反")
}

// Cancelled 记录运行被取消
func (l *SchedulerLogger) Cancelled(runID string, gen int, err error) {
	l.base.Warn().
		Str("run_id", runID).
		Int("generation", gen).
		Err(err).
		Msg("排班被取消，返回当前最优解")
}

// RunComplete 记录优化完成
func (l *SchedulerLogger) RunComplete(runID string, duration time.Duration, best, hard, soft float64, cancelled bool) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Float64("best", best).
		Float64("hard", hard).
		Float64("soft", soft).
		Bool("cancelled", cancelled).
		Msg("排班生成完成")
}

// LocalSearch 记录局部搜索精修结果
func (l *SchedulerLogger) LocalSearch(runID string, iterations int, initial, final float64) {
	l.base.Debug().
		Str("run_id", runID).
		Int("iterations", iterations).
		Float64("initial", initial).
		Float64("final", final).
		Msg("局部搜索完成")
}

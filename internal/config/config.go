// Package config 提供配置管理
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/model"
)

// EnvPrefix 环境变量前缀，嵌套键用 __ 分隔，如 GASHIFT_GA__POPULATION_SIZE
const EnvPrefix = "GASHIFT_"

// Config 应用配置
type Config struct {
	Log      logger.Config  `json:"log"`
	GA       model.GAConfig `json:"ga"`
	Run      RunConfig      `json:"run"`
	Database DatabaseConfig `json:"database"`
	Metrics  MetricsConfig  `json:"metrics"`
	// Constraints 为空时由引擎使用默认约束集
	Constraints []model.ConstraintConfig `json:"constraints"`
}

// RunConfig 单次运行配置
type RunConfig struct {
	// Timeout 为 0 表示不限时
	Timeout time.Duration `json:"timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool          `json:"enabled"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Namespace string `json:"namespace"`
	// File 非空时运行结束后以文本格式写出指标
	File string `json:"file"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Log: logger.DefaultConfig(),
		GA:  model.DefaultGAConfig(),
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "gashift",
			User:            "gashift",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Metrics: MetricsConfig{Namespace: "gashift"},
	}
}

// Load 加载配置：默认值 → 配置文件（path 为空时跳过）→ GASHIFT_ 环境变量
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("加载环境变量失败: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey GASHIFT_GA__POPULATION_SIZE → ga.population_size
func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate 检查配置
func (c *Config) Validate() error {
	ve := &errors.ValidationErrors{}
	switch c.Log.Format {
	case "json", "console":
	default:
		ve.Addf("log.format", "不支持的日志格式 %q", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			ve.Add("log.file_path", "输出到文件时必须指定路径")
		}
	default:
		ve.Addf("log.output", "不支持的日志输出 %q", c.Log.Output)
	}
	if c.Run.Timeout < 0 {
		ve.Add("run.timeout", "不能为负数")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			ve.Add("database.host", "不能为空")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			ve.Addf("database.port", "端口 %d 无效", c.Database.Port)
		}
		if c.Database.Name == "" {
			ve.Add("database.name", "不能为空")
		}
	}
	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// LoadInput 从 YAML/JSON 文件读取排班输入
func LoadInput(path string) (*model.ShiftInput, error) {
	k := koanf.New(".")
	if err := loadFile(k, path); err != nil {
		return nil, err
	}
	var in model.ShiftInput
	if err := k.UnmarshalWithConf("", &in, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "解析排班输入失败")
	}
	return &in, nil
}

// LoadConstraints 从 YAML/JSON 文件读取约束配置，文件根键为 constraints
func LoadConstraints(path string) ([]model.ConstraintConfig, error) {
	k := koanf.New(".")
	if err := loadFile(k, path); err != nil {
		return nil, err
	}
	var doc struct {
		Constraints []model.ConstraintConfig `json:"constraints"`
	}
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "解析约束配置失败")
	}
	return doc.Constraints, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("读取 %s 失败", path))
	}
	return nil
}

// parserFor 按扩展名选择解析器
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, errors.New(errors.CodeInvalidInput, fmt.Sprintf("不支持的配置格式: %s", filepath.Ext(path)))
	}
}

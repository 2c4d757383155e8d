// Package cli 实现 gashift 命令行
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/paiban/gashift/internal/config"
	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "gashift",
		Short:         "基于遗传算法的月度排班引擎",
		Version:       fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "配置文件 (yaml/json)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "覆盖配置中的日志级别")

	cmd.AddCommand(newRunCommand(opts), newValidateCommand(opts), newSwapCommand(opts), newTemplatesCommand())
	return cmd
}

// Execute 运行命令行
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig 加载配置并初始化全局日志
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger.Init(cfg.Log)
	return cfg, nil
}

// loadProblem 读取输入与约束；未指定约束文件时使用配置中的约束
func loadProblem(cfg *config.Config, inputPath, constraintsPath string) (*model.ShiftInput, []model.ConstraintConfig, error) {
	in, err := config.LoadInput(inputPath)
	if err != nil {
		return nil, nil, err
	}
	configs := cfg.Constraints
	if constraintsPath != "" {
		if configs, err = config.LoadConstraints(constraintsPath); err != nil {
			return nil, nil, err
		}
	}
	return in, configs, nil
}

// writeJSON 写出缩进 JSON，path 为空时写到 w
func writeJSON(w io.Writer, path string, v interface{}) error {
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("创建输出文件失败: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

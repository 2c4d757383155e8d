package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/paiban/gashift/internal/config"
	"github.com/paiban/gashift/internal/database"
	"github.com/paiban/gashift/internal/metrics"
	"github.com/paiban/gashift/internal/repository"
	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
	"github.com/paiban/gashift/pkg/scheduler/optimizer"
	"github.com/paiban/gashift/pkg/stats"
	"github.com/paiban/gashift/pkg/validator"
)

// metricsFlushInterval 运行期间写出指标文件的间隔
const metricsFlushInterval = 5 * time.Second

type runOptions struct {
	*rootOptions
	input       string
	constraints string
	output      string
	report      string
	metricsFile string
	seed        int64
	timeout     time.Duration
	store       bool
	every       int
}

func newRunCommand(root *rootOptions) *cobra.Command {
	o := &runOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "运行遗传算法生成排班",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "排班输入文件 (yaml/json)")
	f.StringVar(&o.constraints, "constraints", "", "约束配置文件，根键 constraints")
	f.StringVarP(&o.output, "output", "o", "", "结果输出文件，默认标准输出")
	f.StringVar(&o.report, "report", "", "验证报告与统计输出文件")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Prometheus 文本格式指标文件")
	f.Int64Var(&o.seed, "seed", 0, "随机种子")
	f.DurationVar(&o.timeout, "timeout", 0, "运行时限，超时输出当前最优解")
	f.BoolVar(&o.store, "store", false, "把结果归档到 PostgreSQL")
	f.IntVar(&o.every, "progress-every", 0, "每隔多少代输出一条 info 级进度")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (o *runOptions) run(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	in, configs, err := loadProblem(cfg, o.input, o.constraints)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	ga := cfg.GA
	if flags.Changed("seed") {
		ga = ga.WithSeed(o.seed)
	}
	timeout := cfg.Run.Timeout
	if flags.Changed("timeout") {
		timeout = o.timeout
	}
	metricsFile := cfg.Metrics.File
	if o.metricsFile != "" {
		metricsFile = o.metricsFile
	}

	rec, err := metrics.NewRecorder(cfg.Metrics.Namespace, nil)
	if err != nil {
		return fmt.Errorf("注册指标失败: %w", err)
	}
	sl := logger.NewSchedulerLogger()
	sl.SetProgressEvery(o.every)
	engine, err := optimizer.New(in, configs, ga, nil, optimizer.WithRecorder(rec), optimizer.WithLogger(sl))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, runErr := runWithMetrics(runCtx, engine, rec, metricsFile)
	if res == nil {
		return runErr
	}
	if timedOut(runErr) {
		logger.Warn().Dur("timeout", timeout).Msg("运行超时，输出当前最优解")
		runErr = nil
	}

	if err := writeJSON(cmd.OutOrStdout(), o.output, res); err != nil {
		return err
	}
	if err := o.writeReport(cmd.ErrOrStderr(), engine, res); err != nil {
		return err
	}
	if o.store || cfg.Database.Enabled {
		if err := storeRun(context.WithoutCancel(ctx), &cfg.Database, in, res); err != nil {
			return err
		}
	}
	return runErr
}

// timedOut 运行错误是否（可能经包装）来自超时
func timedOut(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// runWithMetrics 运行引擎，同时按间隔写出指标文件
func runWithMetrics(ctx context.Context, engine *optimizer.Engine, rec *metrics.Recorder, path string) (*model.ShiftResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	var (
		res    *model.ShiftResult
		runErr error
	)

	g.Go(func() error {
		defer close(done)
		res, runErr = engine.Run(gctx)
		return nil
	})
	if path != "" {
		g.Go(func() error {
			ticker := time.NewTicker(metricsFlushInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return rec.WriteTextfile(path)
				case <-ticker.C:
					if err := rec.WriteTextfile(path); err != nil {
						return fmt.Errorf("写出指标失败: %w", err)
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, runErr
}

// writeReport 打印验证报告，并按需写出报告与统计
func (o *runOptions) writeReport(w io.Writer, engine *optimizer.Engine, res *model.ShiftResult) error {
	report, err := validator.NewConflictDetector(nil).ValidateResult(engine.Problem(), engine.Manager(), res)
	if err != nil {
		return err
	}
	printReport(w, res, report)

	if o.report == "" {
		return nil
	}
	m, err := matrix.FromCodes(res.BestSchedule)
	if err != nil {
		return err
	}
	return writeJSON(w, o.report, map[string]interface{}{
		"report": report,
		"stats":  stats.Summarize(engine.Problem(), m),
	})
}

func printReport(w io.Writer, res *model.ShiftResult, report *validator.Report) {
	fmt.Fprintf(w, "运行 %s  种子 %d  代数 %d  耗时 %dms\n", res.RunID, res.Seed, res.Generations, res.DurationMS)
	fmt.Fprintf(w, "总惩罚 %.2f  硬约束 %.2f  软约束 %.2f  可行 %t  错误 %d  警告 %d\n",
		report.Total, report.Hard, report.Soft, report.Feasible, report.ErrorCount, report.WarningCount)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "约束\t类别\t惩罚\t违反\t严重程度")
	for _, c := range report.Constraints {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\n", c.ConstraintID, c.Category, c.Penalty, c.Violations, c.Severity)
	}
	tw.Flush()
}

// storeRun 归档运行结果
func storeRun(ctx context.Context, cfg *config.DatabaseConfig, in *model.ShiftInput, res *model.ShiftResult) error {
	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.Create(ctx, repository.NewRun(in, res)); err != nil {
		return err
	}
	logger.Info().Str("run_id", res.RunID).Msg("排班结果已归档")
	return nil
}

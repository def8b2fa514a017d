package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/John-Robertt/organizer/internal/app/run"
	"github.com/John-Robertt/organizer/internal/config"
	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/infra/fsx"
	"github.com/John-Robertt/organizer/internal/logging"
	"github.com/John-Robertt/organizer/internal/memory"
	"github.com/John-Robertt/organizer/internal/nature"
	"github.com/John-Robertt/organizer/internal/ops"
)

// 退出码：0 全部成功（含跳过）；1 有失败条目或运行错误；2 参数错误。
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env 把标准输入输出与全局参数收拢在一起，便于测试时替换。
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath    string
	memoryPath    string
	memoryBackend string
	color         string
	logFile       string
	verbose       bool

	// userConfigDir 为 nil 时使用 os.UserConfigDir。
	userConfigDir func() (string, error)

	code int
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(e)
	if args == nil {
		// nil 会让 cobra 回退到 os.Args。
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n", err)
		return exitUsage
	}
	return e.code
}

func newRootCmd(e *env) *cobra.Command {
	var (
		batch     bool
		doNothing bool
		report    string
	)

	root := &cobra.Command{
		Use:   "organizer [flags] FILE...",
		Short: "把电影、剧集和音乐整理进你的媒体目录",
		Long: `organizer 会猜测每个路径是什么（剧集、电影、专辑……），
在目标目录中模糊匹配已有的文件夹，并记住你的纠正。

默认逐个询问；--batch 只处理目标目录已存在的文件；--do-nothing 只打印将要执行的动作。`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := e.cliArgs()
			cli.Files = args
			cli.Batch, cli.BatchSet = batch, cmd.Flags().Changed("batch")
			cli.DoNothing, cli.DoNothingSet = doNothing, cmd.Flags().Changed("do-nothing")
			cli.Report = report
			e.code = e.organize(cmd.Context(), cli)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "配置文件路径（指定后必须存在）")
	pf.StringVar(&e.memoryPath, "memory", "", "memory 文件路径")
	pf.StringVar(&e.memoryBackend, "memory-backend", "", "memory 后端：json|sqlite")
	pf.StringVar(&e.color, "color", "", "日志着色：auto|always|never")
	pf.StringVar(&e.logFile, "log-file", "", "额外把日志追加写入该文件")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "输出调试日志")

	f := root.Flags()
	f.BoolVarP(&batch, "batch", "b", false, "非交互模式：目标目录不存在的文件一律跳过")
	f.BoolVarP(&doNothing, "do-nothing", "n", false, "只打印将要执行的动作，不移动文件也不保存 memory")
	f.StringVar(&report, "report", "", "把 RunReport JSON 写入该文件")

	root.AddCommand(classifyCmd(e))
	root.AddCommand(memoryCmd(e))
	return root
}

func (e *env) cliArgs() config.CLIArgs {
	return config.CLIArgs{
		ConfigPath:    e.configPath,
		MemoryPath:    e.memoryPath,
		MemoryBackend: e.memoryBackend,
		LogFile:       e.logFile,
		Color:         e.color,
	}
}

func (e *env) loadConfig(cli config.CLIArgs) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("读取当前目录失败：%w", err)
	}
	ucdFn := e.userConfigDir
	if ucdFn == nil {
		ucdFn = os.UserConfigDir
	}
	// 拿不到用户配置目录时不是错误：只要 --memory 给了路径即可。
	ucd, _ := ucdFn()
	return config.LoadEffective(cwd, ucd, cli)
}

func (e *env) organize(ctx context.Context, cli config.CLIArgs) int {
	eff, err := e.loadConfig(cli)
	if err != nil {
		rr := reportForConfigError(err, cli)
		e.emitReport(rr, cli.Batch)
		return exitFail
	}

	// 进度输出只在 stderr 是终端且批量模式下启用；此时日志只写文件，避免同一条结果打两遍。
	progress := eff.Batch && isTTY(e.stderr)
	logOut := e.stderr
	if progress {
		logOut = io.Discard
	}
	log, err := logging.New(logging.Options{Out: logOut, Color: eff.Color, File: eff.LogFile, Verbose: e.verbose})
	if err != nil {
		fmt.Fprintf(e.stderr, "打开日志文件失败：%v\n", err)
		return exitFail
	}
	defer log.Close()

	if eff.ConfigFile != "" {
		log.Debug("配置文件：%s", eff.ConfigFile)
	}
	log.Debug("memory：%s（%s）", eff.MemoryPath, eff.MemoryBackend)

	backend, err := memory.Open(eff.MemoryBackend, eff.MemoryPath, eff.DoNothing)
	if err != nil {
		log.Error("%v", err)
		return exitFail
	}
	table, err := backend.Load()
	if err != nil {
		log.Error("读取 memory 失败：%v", err)
		return exitFail
	}

	opts := run.Options{
		Registry: nature.Default(),
		Memory:   table,
		Operator: ops.FSOperator{},
		DryRun:   eff.DoNothing,
		Log:      log,
	}
	if eff.DoNothing {
		// 批量模式下 stdout 可能承载 JSON：动作预览改走 stderr。
		w := e.stdout
		if eff.Batch {
			w = e.stderr
		}
		opts.Operator = ops.ReportOperator{W: w}
	}

	code := exitOK
	var rr domain.RunReport
	if eff.Batch {
		if progress {
			opts.Observer = newProgressUI(e.stderr)
		}
		rr = run.Batch(ctx, opts, eff.Files)
	} else {
		rr, err = run.Interactive(ctx, opts, eff.Files, e.stdin, e.stdout)
		if err != nil {
			log.Error("%v", err)
			code = exitFail
		}
	}

	if !eff.DoNothing {
		if err := backend.Save(table); err != nil {
			log.Error("保存 memory 失败：%v", err)
			code = exitFail
		}
	}

	if eff.Report != "" {
		if err := writeReportFile(eff.Report, rr); err != nil {
			log.Error("写入 report 失败：%v", err)
			code = exitFail
		}
	}

	e.emitReport(rr, eff.Batch)
	if rr.Summary.Failed > 0 {
		code = exitFail
	}
	return code
}

// emitReport 输出最终结果。
//
// 批量模式且 stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
func (e *env) emitReport(rr domain.RunReport, batch bool) {
	summary := fmt.Sprintf("完成：processed=%d skipped=%d failed=%d\n",
		rr.Summary.Processed, rr.Summary.Skipped, rr.Summary.Failed,
	)
	if batch && !isTTY(e.stdout) {
		enc := json.NewEncoder(e.stdout)
		_ = enc.Encode(rr)
		fmt.Fprint(e.stderr, summary)
		return
	}

	fmt.Fprint(e.stdout, summary)
	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		key := it.Src
		if key == "" {
			key = "<config>"
		}
		fmt.Fprintf(e.stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
	}
}

// reportForConfigError 为配置错误生成只含一条合成条目的 RunReport（src 为空，排在最后）。
func reportForConfigError(err error, cli config.CLIArgs) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		DryRun:     cli.DoNothingSet && cli.DoNothing,
		Batch:      cli.BatchSet && cli.Batch,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		}},
	}
	if rr.Items[0].ErrorCode == "" {
		rr.Items[0].ErrorCode = domain.ErrCodeConfigInvalid
	}
	rr.Finalize()
	return rr
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), b)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

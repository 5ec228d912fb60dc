package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"fortio.org/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/John-Robertt/mergepdf/internal/app/run"
	"github.com/John-Robertt/mergepdf/internal/config"
	"github.com/John-Robertt/mergepdf/internal/domain"
)

func main() {
	os.Exit(execute(os.Args[1:], osEnv()))
}

// env 收拢进程级依赖，便于在测试中替换。
type env struct {
	stdout io.Writer
	stderr io.Writer

	// stdoutTTY 为 false 时 stdout 只输出一个 MergeSummary JSON。
	stdoutTTY bool
	// progress 为 nil 表示没有交互终端可用于进度标记。
	progress io.Writer

	cwd    string
	appDir string
	deps   run.Deps
}

func osEnv() env {
	e := env{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isTTY(os.Stdout),
		deps:      run.DefaultDeps(),
	}
	e.progress, _ = pickProgressWriter()
	if cwd, err := os.Getwd(); err == nil {
		e.cwd = cwd
	}
	if exe, err := os.Executable(); err == nil {
		e.appDir = filepath.Dir(exe)
	}
	return e
}

// flagValues 是 cobra 绑定的原始值；是否显式指定由 Changed 判断。
type flagValues struct {
	configFile string

	debug       bool
	forward     bool
	depth       bool
	optimizeRes bool

	in      string
	out     string
	logName string
	name    string

	splitRegex   string
	splitPartPos int
	extractBegin int
	extractSize  int

	exclude []string
}

// 退出码：0 成功；1 合并失败；2 参数/配置错误。
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func execute(args []string, e env) int {
	var fv flagValues
	code := exitOK

	cmd := &cobra.Command{
		Use:   "mergepdf",
		Short: "把目录中的全部 PDF 合并为一个文件，并记录每个输入的页数",
		Long: `mergepdf 扫描输入目录（默认递归）中的 .pdf 文件，按路径字典序合并为一个 PDF，
同时写出一份日志：每行 "<输入路径>\t<页数>"。

配置来源优先级：命令行 > ` + config.FileName + ` > 内置默认。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, _ []string) error {
			code = runMerge(c, args, fv, e)
			return nil
		},
	}
	if args == nil {
		// cobra 在 args 为 nil 时会回退读取 os.Args。
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVar(&fv.configFile, "config", "", "配置文件路径（默认依次查找当前目录与程序目录下的 "+config.FileName+"）")
	f.BoolVar(&fv.debug, "debug", false, "输出调试日志")
	f.BoolVarP(&fv.forward, "forward", "f", false, "显示进度标记")
	f.BoolVarP(&fv.depth, "depth", "d", false, "不递归搜索子目录")
	f.BoolVarP(&fv.optimizeRes, "optimizeres", "z", false, "合并时优化（去重）字体/图片等共享资源")
	f.StringVarP(&fv.in, "in", "i", "", "输入目录（未在配置文件中给出时必填）")
	f.StringVarP(&fv.out, "out", "o", "", "输出目录（默认与输入目录相同）")
	f.StringVarP(&fv.logName, "log", "l", "", "日志文件名（默认 "+config.DefaultLogName+"）")
	f.StringVarP(&fv.name, "name", "n", "", "输出 PDF 文件名（默认沿用首个输入文件名）")
	f.StringVarP(&fv.splitRegex, "splitregex", "r", "", "按正则切分首个输入文件名来命名")
	f.IntVarP(&fv.splitPartPos, "splitpartpos", "p", 0, "切分后取第几段（从 1 开始）")
	f.IntVarP(&fv.extractBegin, "extractbegin", "b", 0, "从首个输入文件名的第几个字符开始截取（从 1 开始）")
	f.IntVarP(&fv.extractSize, "extractsize", "s", 0, "截取的字符数")
	f.StringArrayVarP(&fv.exclude, "exclude", "x", nil, "排除模式（gitignore 语法，相对输入目录；可重复）")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(e.stderr, "参数错误：%v\n\n", err)
		fmt.Fprint(e.stderr, cmd.UsageString())
		return exitUsage
	}
	return code
}

func runMerge(cmd *cobra.Command, rawArgs []string, fv flagValues, e env) int {
	cli := cliArgs(cmd.Flags(), fv)

	setupLogging(e.stderr, fv.debug)

	eff, err := config.LoadEffective(e.cwd, e.appDir, cli)
	if err != nil {
		log.Errf("配置无效：%v", err)
		printConfigUsage(e, cmd, fv.configFile)
		return exitUsage
	}
	// 配置文件也可能打开 debug。
	setupLogging(e.stderr, eff.Debug)
	logApplicationParameters(e, eff, rawArgs)

	var marks io.Writer
	if eff.Progress && !eff.Debug {
		marks = e.progress
	}
	obs := newProgressUI(marks)

	sum, err := run.Execute(eff, e.deps, obs)

	for _, line := range domain.FormatReport(sum, nil) {
		log.Infof("%s", line)
	}
	emitSummary(e, sum)

	if err != nil {
		log.Errf("合并失败 [%s]：%v", domain.ErrorCode(err), err)
		return exitFailed
	}
	return exitOK
}

// cliArgs 把 flag 值转换为 CLIArgs；是否显式指定以 pflag 的 Changed 为准。
func cliArgs(fs *pflag.FlagSet, fv flagValues) config.CLIArgs {
	changed := fs.Changed
	return config.CLIArgs{
		ConfigFile: fv.configFile,

		Debug: fv.debug, DebugSet: changed("debug"),
		Progress: fv.forward, ProgressSet: changed("forward"),
		NoRecursive: fv.depth, NoRecursiveSet: changed("depth"),
		Optimize: fv.optimizeRes, OptimizeSet: changed("optimizeres"),

		InputDir: fv.in, InputDirSet: changed("in"),
		OutputDir: fv.out, OutputDirSet: changed("out"),
		LogName: fv.logName, LogNameSet: changed("log"),
		PDFName: fv.name, PDFNameSet: changed("name"),

		SplitRegex: fv.splitRegex, SplitRegexSet: changed("splitregex"),
		SplitIndex: fv.splitPartPos, SplitIndexSet: changed("splitpartpos"),
		ExtractFrom: fv.extractBegin, ExtractFromSet: changed("extractbegin"),
		ExtractLength: fv.extractSize, ExtractLengthSet: changed("extractsize"),

		Exclude: fv.exclude, ExcludeSet: changed("exclude"),
	}
}

func setupLogging(w io.Writer, debug bool) {
	log.SetOutput(w)
	log.Config.LogFileAndLine = false
	if debug {
		log.SetLogLevel(log.Debug)
		return
	}
	log.SetLogLevel(log.Info)
}

// logApplicationParameters 在 debug 模式下输出运行环境与最终生效的配置。
func logApplicationParameters(e env, eff config.EffectiveConfig, rawArgs []string) {
	log.Infof("MergePDF %s (%s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if eff.ConfigFile != "" {
		log.Infof("配置文件：%s", eff.ConfigFile)
	} else {
		log.Infof("未找到配置文件，使用命令行参数与内置默认值")
	}

	log.Debugf("程序目录：%s", e.appDir)
	log.Debugf("工作目录：%s", eff.BaseDir)
	log.Debugf("命令行参数：%q", rawArgs)
	for _, kv := range eff.FileValues {
		log.Debugf("配置文件 %s=%s", kv.Key, kv.Value)
	}
	log.Debugf("生效配置：in=%q out=%q recursive=%t optimize=%t progress=%t log=%q naming=%s exclude=%q",
		eff.InputDir, eff.OutputDir, eff.Recursive, eff.Optimize, eff.Progress, eff.LogName, eff.Naming, eff.Exclude)
}

// printConfigUsage 在配置错误时输出用法，并附上配置文件中已有的默认值。
func printConfigUsage(e env, cmd *cobra.Command, explicit string) {
	fmt.Fprintln(e.stderr)
	fmt.Fprint(e.stderr, cmd.UsageString())

	path, err := config.Discover(e.cwd, e.appDir, explicit)
	if err != nil || path == "" {
		return
	}
	fc, err := config.ReadFileConfig(path)
	if err != nil {
		return
	}
	fmt.Fprintf(e.stderr, "\n默认配置（%s）：\n", path)
	for _, kv := range fc.Raw {
		fmt.Fprintf(e.stderr, "  %s=%s\n", kv.Key, kv.Value)
	}
}

// emitSummary：stdout 非 TTY 时必须且仅输出一个 MergeSummary JSON（日志走 stderr）。
func emitSummary(e env, sum domain.MergeSummary) {
	if e.stdoutTTY {
		return
	}
	enc := json.NewEncoder(e.stdout)
	_ = enc.Encode(sum)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度标记只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}

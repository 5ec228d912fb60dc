package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/magiconair/properties"

	"github.com/John-Robertt/mergepdf/internal/domain"
)

const (
	// ErrCodeNotFound 表示 --config 指定的配置文件不存在。
	ErrCodeNotFound = domain.ErrCodeConfigNotFound
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法（ConfigurationError）。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
	// ErrCodeMissingInput 表示 CLI 与配置文件都没有给出输入目录。
	ErrCodeMissingInput = domain.ErrCodeConfigMissingPath
)

const (
	// FileName 是默认配置文件名（与原工具保持一致）。
	FileName = "MergingPDF.properties"
	// DefaultLogName 是合并日志的内置默认名。
	DefaultLogName = "merge.log"
)

// 配置文件中的 key（与原工具保持一致，方便沿用旧的 properties 文件）。
const (
	KeyDebug         = "application.log.debug"
	KeyProgress      = "application.display.progress"
	KeyInputDir      = "paths.input.directory"
	KeyRecursive     = "paths.input.recursive_search"
	KeyExclude       = "paths.input.exclude"
	KeyOutputDir     = "paths.output.directory"
	KeyLogName       = "output.log.name"
	KeyPDFName       = "output.pdf.name"
	KeySplitRegex    = "output.pdf.id.split.regex"
	KeySplitIndex    = "output.pdf.id.split.index"
	KeyExtractFrom   = "output.pdf.id.extract.from"
	KeyExtractLength = "output.pdf.id.extract.len"
	KeyOptimize      = "merge.pdf.res.optimizing"
)

// CLIArgs 保留“是否显式指定”的信息，保证覆盖优先级可实现：
// 例如 --optimizeres=false 必须能覆盖配置文件中的 merge.pdf.res.optimizing=T。
type CLIArgs struct {
	ConfigFile string

	Debug    bool
	DebugSet bool

	Progress    bool
	ProgressSet bool

	// NoRecursive 对应 -d/--depth：显式指定即关闭递归。
	NoRecursive    bool
	NoRecursiveSet bool

	Optimize    bool
	OptimizeSet bool

	InputDir    string
	InputDirSet bool

	OutputDir    string
	OutputDirSet bool

	LogName    string
	LogNameSet bool

	PDFName    string
	PDFNameSet bool

	SplitRegex    string
	SplitRegexSet bool
	SplitIndex    int
	SplitIndexSet bool

	ExtractFrom      int
	ExtractFromSet   bool
	ExtractLength    int
	ExtractLengthSet bool

	Exclude    []string
	ExcludeSet bool
}

// FileConfig 对应 MergingPDF.properties 的解析结构。
// 指针字段为 nil 表示文件中未出现该 key（或值为空）。
type FileConfig struct {
	Debug     *bool
	Progress  *bool
	Recursive *bool
	Optimize  *bool

	InputDir  string
	OutputDir string
	LogName   string
	PDFName   string

	SplitRegex    string
	SplitIndex    *int
	ExtractFrom   *int
	ExtractLength *int

	Exclude []string

	// Raw 是文件中的原始 key=value（已排序），用于 debug 输出与 usage 提示。
	Raw []KeyValue
}

type KeyValue struct {
	Key   string
	Value string
}

// EffectiveConfig 是合并并校验后的最终配置（MergeConfiguration）。
// 构造一次，之后只读；实现层直接消费，不再做二次默认/优先级判断。
type EffectiveConfig struct {
	// BaseDir 用于把相对路径限定为绝对路径（当前工作目录）。
	BaseDir string

	// InputDir/OutputDir 保留用户给出的原值；限定与存在性检查由目录准备阶段完成。
	InputDir  string
	OutputDir string

	Recursive bool
	Optimize  bool
	Progress  bool
	Debug     bool

	// LogName 为空表示由输出 PDF 名推导。
	LogName string
	Naming  domain.NamingStrategy

	Exclude []string

	// ConfigFile 是实际读取的配置文件（未找到时为空）。
	ConfigFile string
	FileValues []KeyValue
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingInput:
		return fmt.Sprintf("%s：未指定输入目录（使用 -i/--in 或配置项 %s）", e.Code, KeyInputDir)
	case ErrCodeInvalid:
		where := e.Path
		if e.Key != "" {
			where = e.Key
		}
		if where != "" && e.Err != nil {
			return fmt.Sprintf("%s：%s 无效：%v", e.Code, where, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s：%s 无效", e.Code, where)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则依次尝试 <cwd>/MergingPDF.properties、<appDir>/MergingPDF.properties（均可选）
//
// 覆盖优先级（固定）：CLI 显式指定 > 配置文件 > 内置默认。
// 命名策略优先级：显式名称 > extract > split > 沿用输入文件名。
func LoadEffective(cwd, appDir string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath, err := discover(cwdAbs, appDir, cli.ConfigFile)
	if err != nil {
		return EffectiveConfig{}, err
	}

	var fc FileConfig
	if cfgPath != "" {
		fc, err = ReadFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, err
		}
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

// Discover 只做配置文件发现（不读取），供 usage 输出复用。
func Discover(cwd, appDir, explicit string) (string, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return "", &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	return discover(cwdAbs, appDir, explicit)
}

func discover(cwdAbs, appDir, explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		p := absCleanFrom(cwdAbs, explicit)
		if !isRegular(p) {
			return "", &Error{Code: ErrCodeNotFound, Path: p, Err: os.ErrNotExist}
		}
		return p, nil
	}

	candidates := []string{filepath.Join(cwdAbs, FileName)}
	if strings.TrimSpace(appDir) != "" {
		candidates = append(candidates, filepath.Join(filepath.Clean(appDir), FileName))
	}
	for _, c := range candidates {
		if isRegular(c) {
			return c, nil
		}
	}
	return "", nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		BaseDir:    cwdAbs,
		Recursive:  true,
		LogName:    DefaultLogName,
		Naming:     domain.DerivedNaming(),
		ConfigFile: cfgPath,
		FileValues: append([]KeyValue(nil), fc.Raw...),
	}

	eff.Debug = pickBool(cli.DebugSet, cli.Debug, fc.Debug, false)
	eff.Progress = pickBool(cli.ProgressSet, cli.Progress, fc.Progress, false)
	eff.Optimize = pickBool(cli.OptimizeSet, cli.Optimize, fc.Optimize, false)
	eff.Recursive = pickBool(cli.NoRecursiveSet, !cli.NoRecursive, fc.Recursive, true)

	// input：CLI > config；两者都缺失是配置错误。
	eff.InputDir = strings.TrimSpace(fc.InputDir)
	if cli.InputDirSet {
		eff.InputDir = strings.TrimSpace(cli.InputDir)
	}
	if eff.InputDir == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingInput, Path: cfgPath}
	}

	// output：为空表示沿用输入目录（由目录准备阶段处理）。
	eff.OutputDir = strings.TrimSpace(fc.OutputDir)
	if cli.OutputDirSet {
		eff.OutputDir = strings.TrimSpace(cli.OutputDir)
	}

	// log：配置文件中的空值不覆盖默认值；CLI 显式给空串表示“由 PDF 名推导”。
	if v := strings.TrimSpace(fc.LogName); v != "" {
		eff.LogName = v
	}
	if cli.LogNameSet {
		eff.LogName = strings.TrimSpace(cli.LogName)
	}
	if eff.LogName != "" && !hasSuffixFold(eff.LogName, domain.LogExt) {
		eff.LogName += domain.LogExt
	}

	eff.Exclude = cleanList(fc.Exclude)
	if cli.ExcludeSet {
		eff.Exclude = cleanList(cli.Exclude)
	}

	naming, err := pickNaming(cli, fc, cfgPath)
	if err != nil {
		return EffectiveConfig{}, err
	}
	eff.Naming = naming
	return eff, nil
}

func pickNaming(cli CLIArgs, fc FileConfig, cfgPath string) (domain.NamingStrategy, error) {
	name := strings.TrimSpace(fc.PDFName)
	if cli.PDFNameSet {
		name = strings.TrimSpace(cli.PDFName)
	}
	if name != "" {
		return domain.ExplicitNaming(name), nil
	}

	from, fromSet := pickInt(cli.ExtractFromSet, cli.ExtractFrom, fc.ExtractFrom)
	if fromSet {
		length, _ := pickInt(cli.ExtractLengthSet, cli.ExtractLength, fc.ExtractLength)
		if from <= 0 {
			return domain.NamingStrategy{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Key: KeyExtractFrom,
				Err: fmt.Errorf("起始字符位置必须 > 0，实际 %d", from)}
		}
		if length <= 0 {
			return domain.NamingStrategy{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Key: KeyExtractLength,
				Err: fmt.Errorf("截取长度必须 > 0，实际 %d", length)}
		}
		return domain.ExtractNaming(from, length), nil
	}

	regex := fc.SplitRegex
	if cli.SplitRegexSet {
		regex = cli.SplitRegex
	}
	if regex != "" || cli.SplitRegexSet {
		index, _ := pickInt(cli.SplitIndexSet, cli.SplitIndex, fc.SplitIndex)
		if regex == "" {
			return domain.NamingStrategy{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Key: KeySplitRegex,
				Err: errors.New("按正则切分命名但未提供正则表达式")}
		}
		if _, err := regexp.Compile(regex); err != nil {
			return domain.NamingStrategy{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Key: KeySplitRegex, Err: err}
		}
		if index <= 0 {
			return domain.NamingStrategy{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Key: KeySplitIndex,
				Err: fmt.Errorf("切分段位置必须 > 0，实际 %d", index)}
		}
		return domain.SplitNaming(regex, index), nil
	}

	return domain.DerivedNaming(), nil
}

// ReadFileConfig 读取并解析 properties 配置文件。
func ReadFileConfig(path string) (FileConfig, error) {
	l := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadFile(path)
	if err != nil {
		return FileConfig{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return parseProperties(path, p)
}

func parseProperties(path string, p *properties.Properties) (FileConfig, error) {
	var fc FileConfig

	get := func(key string) string {
		v, _ := p.Get(key)
		return strings.TrimSpace(v)
	}

	var err error
	boolKeys := []struct {
		key string
		dst **bool
	}{
		{KeyDebug, &fc.Debug},
		{KeyProgress, &fc.Progress},
		{KeyRecursive, &fc.Recursive},
		{KeyOptimize, &fc.Optimize},
	}
	for _, bk := range boolKeys {
		if *bk.dst, err = parseBool(get(bk.key)); err != nil {
			return FileConfig{}, &Error{Code: ErrCodeInvalid, Path: path, Key: bk.key, Err: err}
		}
	}

	intKeys := []struct {
		key string
		dst **int
	}{
		{KeySplitIndex, &fc.SplitIndex},
		{KeyExtractFrom, &fc.ExtractFrom},
		{KeyExtractLength, &fc.ExtractLength},
	}
	for _, ik := range intKeys {
		if *ik.dst, err = parseInt(get(ik.key)); err != nil {
			return FileConfig{}, &Error{Code: ErrCodeInvalid, Path: path, Key: ik.key, Err: err}
		}
	}

	fc.InputDir = get(KeyInputDir)
	fc.OutputDir = get(KeyOutputDir)
	fc.LogName = get(KeyLogName)
	fc.PDFName = get(KeyPDFName)
	// 正则保留原样（前后空白也可能是表达式的一部分）。
	fc.SplitRegex, _ = p.Get(KeySplitRegex)
	if ex := get(KeyExclude); ex != "" {
		fc.Exclude = cleanList(strings.Split(ex, ","))
	}

	keys := p.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := p.Get(k)
		fc.Raw = append(fc.Raw, KeyValue{Key: k, Value: v})
	}
	return fc, nil
}

// parseBool 兼容原工具的 T/F 以及常见写法；空串表示未设置。
func parseBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	var v bool
	switch strings.ToLower(s) {
	case "t", "true", "1", "y", "yes", "on":
		v = true
	case "f", "false", "0", "n", "no", "off":
		v = false
	default:
		return nil, fmt.Errorf("期望 T/F 或 true/false，实际 %q", s)
	}
	return &v, nil
}

func parseInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("期望整数，实际 %q", s)
	}
	return &n, nil
}

func pickBool(cliSet, cliVal bool, fileVal *bool, def bool) bool {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

func pickInt(cliSet bool, cliVal int, fileVal *int) (int, bool) {
	if cliSet {
		return cliVal, true
	}
	if fileVal != nil {
		return *fileVal, true
	}
	return 0, false
}

func cleanList(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

func isRegular(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

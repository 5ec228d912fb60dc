package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/John-Robertt/mergepdf/internal/app"
	"github.com/John-Robertt/mergepdf/internal/app/planner"
	"github.com/John-Robertt/mergepdf/internal/config"
	"github.com/John-Robertt/mergepdf/internal/domain"
	"github.com/John-Robertt/mergepdf/internal/infra/fsx"
	"github.com/John-Robertt/mergepdf/internal/infra/mergelog"
	"github.com/John-Robertt/mergepdf/internal/infra/pdfx"
	"github.com/John-Robertt/mergepdf/internal/scan"
)

// Document 是合并输出文档的最小能力集（由 pdfx 实现；测试可替换）。
type Document interface {
	Append(path string) (int, error)
	Finish() error
	Close() error
}

// Deps 是引擎依赖的外部能力。零值字段由 DefaultDeps 补齐。
type Deps struct {
	FS       afero.Fs
	Open     func(fsys afero.Fs, path string, mode pdfx.Mode) (Document, error)
	Now      func() time.Time
	NewRunID func() string
}

// DefaultDeps 返回基于真实文件系统与 pdfcpu 的依赖。
func DefaultDeps() Deps {
	return Deps{
		FS:       afero.NewOsFs(),
		Open:     openPDF,
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}
}

func openPDF(fsys afero.Fs, path string, mode pdfx.Mode) (Document, error) {
	return pdfx.Create(fsys, path, mode)
}

func (d Deps) withDefaults() Deps {
	def := DefaultDeps()
	if d.FS == nil {
		d.FS = def.FS
	}
	if d.Open == nil {
		d.Open = def.Open
	}
	if d.Now == nil {
		d.Now = def.Now
	}
	if d.NewRunID == nil {
		d.NewRunID = def.NewRunID
	}
	return d
}

// Execute 执行一次合并（MergeEngine），返回对外稳定的 MergeSummary。
//
// 任何 I/O 或 PDF 库错误都会中止整个运行：不重试、不跳过单个文件、不回滚；
// 已写入的部分输出与日志保持原样。失败时返回的 summary 反映中止前的进度。
func Execute(eff config.EffectiveConfig, deps Deps, obs Observer) (sum domain.MergeSummary, err error) {
	deps = deps.withDefaults()

	st := domain.RunState{StartedAt: deps.Now()}
	runID := deps.NewRunID()

	var (
		dirs  domain.Directories
		names domain.OutputNames
	)
	defer func() {
		st.FinishedAt = deps.Now()
		sum = st.Summarize(runID, dirs, names)
		if obs != nil {
			obs.OnDone(sum, err)
		}
	}()

	dirs, err = app.PrepareDirectories(deps.FS, eff)
	if err != nil {
		return sum, err
	}

	opt := scan.Options{Recursive: eff.Recursive, Exclude: eff.Exclude}
	if !dirs.Same && scan.IsUnder(dirs.Output, dirs.Input) {
		// 输出目录位于输入目录内部：跳过它，避免把历史输出再次合并。
		opt.SkipDirs = []string{dirs.Output}
	}
	files, err := scan.ScanPDFs(deps.FS, dirs.Input, opt)
	if err != nil {
		return sum, domain.NewError(domain.ErrCodeFileAccess, dirs.Input, err)
	}
	if obs != nil {
		obs.OnStart(eff, dirs, len(files))
	}

	// 空目录是合法的终态：不创建任何输出文件。
	if len(files) == 0 {
		return sum, nil
	}

	plan, err := planner.Plan(files, dirs, eff.Naming, eff.LogName)
	if err != nil {
		return sum, err
	}
	names = plan.Names
	if obs != nil {
		obs.OnPlan(plan)
	}

	if plan.Guard != nil {
		if err := fsx.RenameNoOverwrite(deps.FS, plan.Guard.SrcAbs, plan.Guard.DstAbs); err != nil {
			return sum, domain.NewError(domain.ErrCodeFileAccess, plan.Guard.SrcAbs, err)
		}
	}

	err = merge(deps, eff, plan, &st, obs)
	return sum, err
}

// merge 打开输出文档与日志并逐个追加输入。
// 关闭顺序固定：日志 -> 文档写出（Finish）-> 输出文件（Close）；任何退出路径都会释放句柄。
func merge(deps Deps, eff config.EffectiveConfig, plan domain.MergePlan, st *domain.RunState, obs Observer) error {
	doc, err := deps.Open(deps.FS, plan.Names.PDFPath, pdfx.ModeFor(eff.Optimize))
	if err != nil {
		return classify(domain.ErrCodeFileAccess, plan.Names.PDFPath, err)
	}
	defer doc.Close()

	lw, err := mergelog.Create(deps.FS, plan.Names.LogPath)
	if err != nil {
		return domain.NewError(domain.ErrCodeFileAccess, plan.Names.LogPath, err)
	}
	defer lw.Close()

	total := len(plan.Inputs)
	for i, in := range plan.Inputs {
		pages, err := doc.Append(in)
		if err != nil {
			return classify(domain.ErrCodeLibrary, in, err)
		}
		if err := lw.Record(in, pages); err != nil {
			return domain.NewError(domain.ErrCodeFileAccess, plan.Names.LogPath, err)
		}
		st.AddFile(pages)
		if obs != nil {
			obs.OnFileMerged(i+1, total, in, pages)
		}
	}

	if err := lw.Close(); err != nil {
		return domain.NewError(domain.ErrCodeFileAccess, plan.Names.LogPath, err)
	}
	if err := doc.Finish(); err != nil {
		return classify(domain.ErrCodeLibrary, plan.Names.PDFPath, err)
	}
	if err := doc.Close(); err != nil {
		return classify(domain.ErrCodeFileAccess, plan.Names.PDFPath, err)
	}
	return nil
}

// classify 保留已有的 error_code；未分类的错误按 fallback 归类。
func classify(fallback, path string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewError(fallback, path, err)
}

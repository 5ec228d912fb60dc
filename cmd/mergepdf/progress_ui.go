package main

import (
	"fmt"
	"io"
	"strconv"

	"fortio.org/log"

	"github.com/John-Robertt/mergepdf/internal/app/run"
	"github.com/John-Robertt/mergepdf/internal/config"
	"github.com/John-Robertt/mergepdf/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 把引擎事件转成日志行，并在 -f 时输出进度标记。
//
// 进度标记规则：每个文件一个 "."，每 10 个中的第 5 个在 "." 前加 "|"，每第 10 个输出累计数。
// 标记只写到交互终端（marks 为 nil 时不输出），不污染 stdout 的 JSON 输出契约。
type progressUI struct {
	marks io.Writer

	printed int
}

func newProgressUI(marks io.Writer) *progressUI {
	return &progressUI{marks: marks}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig, dirs domain.Directories, files int) {
	log.Infof("输入目录：%s（递归：%t）", dirs.Input, eff.Recursive)
	log.Infof("输出目录：%s", dirs.Output)
	log.Infof("发现 %d 个 PDF 文件", files)
}

func (p *progressUI) OnPlan(plan domain.MergePlan) {
	log.Infof("输出 PDF：%s", plan.Names.PDFPath)
	log.Infof("输出日志：%s", plan.Names.LogPath)
	if plan.Guard != nil {
		log.Warnf("输出文件与输入文件同名，先将输入重命名：%s -> %s", plan.Guard.SrcAbs, plan.Guard.DstAbs)
	}
}

func (p *progressUI) OnFileMerged(idx, total int, path string, pages int) {
	log.Debugf("[%d/%d] %s：%d 页", idx, total, path, pages)
	if p.marks == nil {
		return
	}
	fmt.Fprint(p.marks, progressMark(idx))
	p.printed++
}

func (p *progressUI) OnDone(sum domain.MergeSummary, err error) {
	if p.marks != nil && p.printed > 0 {
		fmt.Fprintln(p.marks)
	}
}

// progressMark 返回第 idx 个文件（从 1 开始）对应的进度标记。
func progressMark(idx int) string {
	switch {
	case idx%10 == 0:
		return strconv.Itoa(idx)
	case idx%10 == 5:
		return "|."
	default:
		return "."
	}
}

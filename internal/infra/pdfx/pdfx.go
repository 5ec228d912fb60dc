// Package pdfx 把 pdfcpu 封装为“逐个追加输入、最后一次性写出”的合并文档。
//
// 输入在追加时完整读取并校验；合并结果保存在内存中，Finish 时写出。
package pdfx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/afero"

	"github.com/John-Robertt/mergepdf/internal/domain"
)

// 测试中替换以模拟库内部 panic。
var (
	mergeXRefTables = pdfcpu.MergeXRefTables
	writeContext    = pdfapi.WriteContext
)

// Mode 选择写出方式。
type Mode int

const (
	// Plain：直接拼接，不做跨文档资源去重（快）。
	Plain Mode = iota
	// Optimized：写出前对字体/图片等共享资源去重（更小，更耗 CPU）。
	Optimized
)

func (m Mode) String() string {
	if m == Optimized {
		return "optimized"
	}
	return "plain"
}

// ModeFor 把配置中的开关映射为 Mode。
func ModeFor(optimize bool) Mode {
	if optimize {
		return Optimized
	}
	return Plain
}

// Document 是一次合并的输出文档。必须调用 Close（可 defer）。
type Document struct {
	fsys afero.Fs
	path string
	mode Mode
	conf *model.Configuration

	out  afero.File
	dest *model.Context

	files    int
	finished bool
	closed   bool
}

// Create 创建（或截断）path 处的输出文件，并返回空的合并文档。
func Create(fsys afero.Fs, path string, mode Mode) (*Document, error) {
	out, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, domain.NewError(domain.ErrCodeFileAccess, path, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.Cmd = model.MERGECREATE
	// 目标上下文没有 /Outlines，不合并书签。
	// 目标上下文没有 /Outlines，开启书签合并会在第二个输入时解引用空指针。
	conf.CreateBookmarks = false

	return &Document{
		fsys: fsys,
		path: path,
		mode: mode,
		conf: conf,
		out:  out,
	}, nil
}

// Append 把 src 的全部页面按原顺序追加到文档末尾，返回追加的页数。
// 库内部的 panic 转换为 library_failed。
func (d *Document) Append(src string) (pages int, err error) {
	if d.finished || d.closed {
		return 0, domain.NewError(domain.ErrCodeFileAccess, d.path, os.ErrClosed)
	}
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, libraryPanic(src, r)
		}
	}()

	b, err := afero.ReadFile(d.fsys, src)
	if err != nil {
		return 0, domain.NewError(domain.ErrCodeFileAccess, src, err)
	}

	ctx, err := pdfapi.ReadContext(bytes.NewReader(b), d.conf)
	if err != nil {
		return 0, domain.NewError(domain.ErrCodeLibrary, src, fmt.Errorf("读取 PDF 失败：%w", err))
	}
	if err := pdfapi.ValidateContext(ctx); err != nil {
		return 0, domain.NewError(domain.ErrCodeLibrary, src, fmt.Errorf("校验 PDF 失败：%w", err))
	}
	pages = ctx.PageCount

	if d.dest == nil {
		// 第一个输入直接作为合并目标。
		if ctx.XRefTable.Version() < model.V20 {
			ctx.EnsureVersionForWriting()
		}
		d.dest = ctx
		d.files++
		return pages, nil
	}

	if d.dest.XRefTable.Version() < model.V20 && ctx.XRefTable.Version() == model.V20 {
		return 0, domain.NewError(domain.ErrCodeLibrary, src, fmt.Errorf("合并页面失败：%w", pdfcpu.ErrUnsupportedVersion))
	}

	if err := mergeXRefTables(filepath.Base(src), ctx, d.dest, false, false); err != nil {
		return 0, domain.NewError(domain.ErrCodeLibrary, src, fmt.Errorf("合并页面失败：%w", err))
	}

	d.files++
	return pages, nil
}

// libraryPanic 把 pdfcpu 内部的 panic 转换为 library_failed 错误。
func libraryPanic(path string, r any) error {
	return domain.NewError(domain.ErrCodeLibrary, path, fmt.Errorf("pdfcpu 异常：%v", r))
}

// Finish 把合并结果写入输出文件（Optimized 模式下先去重资源）。只能调用一次。
func (d *Document) Finish() (err error) {
	if d.finished || d.closed {
		return domain.NewError(domain.ErrCodeFileAccess, d.path, os.ErrClosed)
	}
	d.finished = true

	if d.dest == nil {
		return domain.NewError(domain.ErrCodeLibrary, d.path, errors.New("文档中没有任何页面"))
	}
	defer func() {
		if r := recover(); r != nil {
			err = libraryPanic(d.path, r)
		}
	}()

	if d.mode == Optimized {
		if err := pdfapi.OptimizeContext(d.dest); err != nil {
			return domain.NewError(domain.ErrCodeLibrary, d.path, fmt.Errorf("资源优化失败：%w", err))
		}
	}

	w := bufio.NewWriter(d.out)
	if err := writeContext(d.dest, w); err != nil {
		return domain.NewError(domain.ErrCodeLibrary, d.path, fmt.Errorf("写出 PDF 失败：%w", err))
	}
	if err := w.Flush(); err != nil {
		return domain.NewError(domain.ErrCodeFileAccess, d.path, err)
	}
	return nil
}

// Close 释放合并上下文并关闭输出文件；重复调用是安全的。
// 未 Finish 就 Close 会留下空的（或不完整的）输出文件，不做回滚。
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.dest = nil
	if err := d.out.Close(); err != nil {
		return domain.NewError(domain.ErrCodeFileAccess, d.path, err)
	}
	return nil
}

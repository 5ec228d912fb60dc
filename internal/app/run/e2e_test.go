package run

import (
	"bytes"
	"path/filepath"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/afero"

	"github.com/John-Robertt/mergepdf/internal/domain"
	"github.com/John-Robertt/mergepdf/internal/testutil/pdffixture"
)

func TestExecute_E2E_RealPDFs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	pages := map[string]int{"a.pdf": 1, "b.pdf": 2, filepath.Join("sub", "c.pdf"): 3}
	for rel, n := range pages {
		if err := pdffixture.Write(fsys, filepath.Join(root, "in", rel), n); err != nil {
			t.Fatalf("写入 PDF 夹具失败：%v", err)
		}
	}

	eff := effFor("in", "out")
	eff.Naming = domain.ExplicitNaming("all")

	sum, err := Execute(eff, Deps{FS: fsys}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if sum.Files != 3 || sum.Pages != 6 {
		t.Fatalf("期望 3 文件 6 页，实际 %d/%d", sum.Files, sum.Pages)
	}
	if sum.OutputPDF != filepath.Join(root, "out", "all.pdf") {
		t.Fatalf("输出路径不符合预期：%q", sum.OutputPDF)
	}

	b, err := afero.ReadFile(fsys, sum.OutputPDF)
	if err != nil {
		t.Fatalf("读取输出失败：%v", err)
	}
	ctx, err := pdfapi.ReadContext(bytes.NewReader(b), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("输出不是合法 PDF：%v", err)
	}
	if err := pdfapi.ValidateContext(ctx); err != nil {
		t.Fatalf("输出校验失败：%v", err)
	}
	if ctx.PageCount != 6 {
		t.Fatalf("输出期望 6 页，实际 %d", ctx.PageCount)
	}
}

func TestExecute_E2E_IdempotentLog(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for i, n := range []int{2, 1, 3} {
		name := string(rune('a'+i)) + ".pdf"
		if err := pdffixture.Write(fsys, filepath.Join(root, "in", name), n); err != nil {
			t.Fatalf("写入 PDF 夹具失败：%v", err)
		}
	}

	eff := effFor("in", "out")
	var logs [2][]byte
	for i := range logs {
		sum, err := Execute(eff, Deps{FS: fsys}, nil)
		if err != nil {
			t.Fatalf("第 %d 次运行失败：%v", i+1, err)
		}
		logs[i], _ = afero.ReadFile(fsys, sum.OutputLog)
	}
	if len(logs[0]) == 0 || !bytes.Equal(logs[0], logs[1]) {
		t.Fatalf("两次运行日志应完全一致：\n%q\n%q", logs[0], logs[1])
	}
}

func TestExecute_E2E_MalformedInputAborts(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := pdffixture.Write(fsys, filepath.Join(root, "in", "a.pdf"), 1); err != nil {
		t.Fatalf("写入 PDF 夹具失败：%v", err)
	}
	if err := afero.WriteFile(fsys, filepath.Join(root, "in", "b.pdf"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}

	sum, err := Execute(effFor("in", "out"), Deps{FS: fsys}, nil)
	if domain.ErrorCode(err) != domain.ErrCodeLibrary {
		t.Fatalf("期望 %q，实际 err=%v", domain.ErrCodeLibrary, err)
	}
	if sum.Files != 1 {
		t.Fatalf("期望中止前已合并 1 个文件，实际 %d", sum.Files)
	}
}

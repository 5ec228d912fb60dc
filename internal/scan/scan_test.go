package scan

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"github.com/John-Robertt/mergepdf/internal/domain"
)

func TestScanPDFs_RecursiveSortedAndFiltered(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := filepath.Join(string(filepath.Separator), "in")

	touch(t, fsys, filepath.Join(root, "b.pdf"))
	touch(t, fsys, filepath.Join(root, "a.PDF"))
	touch(t, fsys, filepath.Join(root, "notes.txt"))
	touch(t, fsys, filepath.Join(root, "sub", "c.pdf"))
	touch(t, fsys, filepath.Join(root, "sub", "deep", "d.pdf"))

	got, err := ScanPDFs(fsys, root, Options{Recursive: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"a.PDF", "b.pdf", filepath.Join("sub", "c.pdf"), filepath.Join("sub", "deep", "d.pdf")}
	if rels := relPaths(got); !reflect.DeepEqual(rels, want) {
		t.Fatalf("期望 %v，实际 %v", want, rels)
	}
	if got[0].AbsPath != filepath.Join(root, "a.PDF") || got[0].Name != "a.PDF" {
		t.Fatalf("字段不符合预期：%+v", got[0])
	}
}

func TestScanPDFs_NonRecursive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := filepath.Join(string(filepath.Separator), "in")

	touch(t, fsys, filepath.Join(root, "a.pdf"))
	touch(t, fsys, filepath.Join(root, "sub", "b.pdf"))

	got, err := ScanPDFs(fsys, root, Options{Recursive: false})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if rels := relPaths(got); !reflect.DeepEqual(rels, []string{"a.pdf"}) {
		t.Fatalf("非递归只应返回顶层文件，实际 %v", rels)
	}
}

func TestScanPDFs_ExcludePatterns(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := filepath.Join(string(filepath.Separator), "in")

	touch(t, fsys, filepath.Join(root, "keep.pdf"))
	touch(t, fsys, filepath.Join(root, "draft.tmp.pdf"))
	touch(t, fsys, filepath.Join(root, "drafts", "x.pdf"))

	got, err := ScanPDFs(fsys, root, Options{Recursive: true, Exclude: []string{"drafts/", "*.tmp.pdf"}})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if rels := relPaths(got); !reflect.DeepEqual(rels, []string{"keep.pdf"}) {
		t.Fatalf("期望只剩 keep.pdf，实际 %v", rels)
	}
}

func TestScanPDFs_SkipDirs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := filepath.Join(string(filepath.Separator), "in")
	out := filepath.Join(root, "merged")

	touch(t, fsys, filepath.Join(root, "a.pdf"))
	touch(t, fsys, filepath.Join(out, "a.pdf"))

	got, err := ScanPDFs(fsys, root, Options{Recursive: true, SkipDirs: []string{out}})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if rels := relPaths(got); !reflect.DeepEqual(rels, []string{"a.pdf"}) {
		t.Fatalf("输出目录应被跳过，实际 %v", rels)
	}
}

func TestScanPDFs_Empty(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := filepath.Join(string(filepath.Separator), "in")
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	got, err := ScanPDFs(fsys, root, Options{Recursive: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("期望空结果，实际 %v", relPaths(got))
	}
}

func TestIsUnder(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "in")
	if !IsUnder(filepath.Join(base, "x"), base) || !IsUnder(base, base) {
		t.Fatalf("期望位于 base 之下")
	}
	if IsUnder(filepath.Join(string(filepath.Separator), "input"), base) {
		t.Fatalf("前缀相同但不是子目录，不应判定为 under")
	}
}

func touch(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := afero.WriteFile(fsys, path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

func relPaths(files []domain.PDFFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

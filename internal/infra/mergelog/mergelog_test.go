package mergelog

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
)

func TestWriter_RecordsAreFlushedImmediately(t *testing.T) {
	fsys := afero.NewMemMapFs()
	w, err := Create(fsys, "/out/merge.log")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	defer w.Close()

	if err := w.Record("/in/a.pdf", 3); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	// 未 Close 前内容就应可见。
	b, err := afero.ReadFile(fsys, "/out/merge.log")
	if err != nil {
		t.Fatalf("读取日志失败：%v", err)
	}
	if string(b) != "/in/a.pdf\t3\r\n" {
		t.Fatalf("内容不符合预期：%q", b)
	}

	if err := w.Record("/in/b.pdf", 1); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close 失败：%v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("重复 Close 应返回 nil：%v", err)
	}

	b, _ = afero.ReadFile(fsys, "/out/merge.log")
	if string(b) != "/in/a.pdf\t3\r\n/in/b.pdf\t1\r\n" {
		t.Fatalf("内容不符合预期：%q", b)
	}
}

func TestWriter_TruncatesExisting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/out/merge.log", []byte("old content that is long\r\n"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}

	w, err := Create(fsys, "/out/merge.log")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := w.Record("/in/a.pdf", 2); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	_ = w.Close()

	b, _ := afero.ReadFile(fsys, "/out/merge.log")
	if string(b) != "/in/a.pdf\t2\r\n" {
		t.Fatalf("旧内容应被截断：%q", b)
	}
}

func TestWriter_RecordAfterClose(t *testing.T) {
	fsys := afero.NewMemMapFs()
	w, err := Create(fsys, "/merge.log")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	_ = w.Close()

	if err := w.Record("/in/a.pdf", 1); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("期望 os.ErrClosed，实际 %v", err)
	}
}

func TestCreate_Fails(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if _, err := Create(fsys, "/merge.log"); err == nil {
		t.Fatalf("只读文件系统上创建应失败")
	}
}

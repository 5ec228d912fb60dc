package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestEnsureDir_CreatesParents(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := filepath.Join(string(filepath.Separator), "a", "b", "c")

	created, err := EnsureDir(fsys, dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !created {
		t.Fatalf("期望 created=true")
	}
	if ok, _ := IsDir(fsys, dir); !ok {
		t.Fatalf("目录未创建：%q", dir)
	}

	created, err = EnsureDir(fsys, dir)
	if err != nil || created {
		t.Fatalf("已存在目录：期望 (false, nil)，实际 (%v, %v)", created, err)
	}
}

func TestEnsureDir_FileConflict(t *testing.T) {
	fsys := afero.NewMemMapFs()
	p := filepath.Join(string(filepath.Separator), "out")
	if err := afero.WriteFile(fsys, p, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}

	_, err := EnsureDir(fsys, p)
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestEnsureDir_CreateFails(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := EnsureDir(fsys, filepath.Join(string(filepath.Separator), "x"))
	if err == nil {
		t.Fatalf("只读文件系统上创建目录应失败")
	}
	if IsPathTypeConflict(err) {
		t.Fatalf("不应是类型冲突：%v", err)
	}
}

func TestRenameNoOverwrite(t *testing.T) {
	fsys := afero.NewMemMapFs()
	src := filepath.Join(string(filepath.Separator), "d", "a.pdf")
	dst := src + ".old"
	if err := afero.WriteFile(fsys, src, []byte("a"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}

	if err := RenameNoOverwrite(fsys, src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ok, _ := Exists(fsys, src); ok {
		t.Fatalf("源文件应已不存在")
	}
	if ok, _ := Exists(fsys, dst); !ok {
		t.Fatalf("目标文件应存在")
	}

	if err := afero.WriteFile(fsys, src, []byte("b"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	err := RenameNoOverwrite(fsys, src, dst)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("目标已存在：期望 os.ErrExist，实际 %v", err)
	}
	b, _ := afero.ReadFile(fsys, dst)
	if string(b) != "a" {
		t.Fatalf("目标不应被覆盖，实际内容 %q", b)
	}
}

func TestRename_PassThroughError(t *testing.T) {
	old := renameFunc
	renameFunc = func(afero.Fs, string, string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	err := Rename(afero.NewMemMapFs(), "/a", "/b")
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("期望透传原始错误，实际 %v", err)
	}
	if IsCrossDevice(err) {
		t.Fatalf("普通错误不应标记为 EXDEV")
	}
}

func TestQualifyAndSamePath(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "work")
	if got := Qualify(base, "in/../pdfs"); got != filepath.Join(base, "pdfs") {
		t.Fatalf("相对路径限定不符合预期：%q", got)
	}
	abs := filepath.Join(string(filepath.Separator), "data", "in")
	if got := Qualify(base, abs+string(filepath.Separator)); got != abs {
		t.Fatalf("绝对路径应只做 Clean：%q", got)
	}
	if Qualify(base, "  ") != "" {
		t.Fatalf("空路径应返回空串")
	}
	if !SamePath(filepath.Join(base, "PDFs"), filepath.Join(base, "pdfs")) {
		t.Fatalf("路径比较应不区分大小写")
	}
}

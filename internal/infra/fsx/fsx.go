package fsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// 通过可替换的函数指针，让测试能稳定模拟 EXDEV 等错误。
var renameFunc = func(fsys afero.Fs, src, dst string) error { return fsys.Rename(src, dst) }

// PathTypeConflictError 表示路径类型冲突（例如期望目录但实际是文件）。
// 上层可把它映射为 error_code=dir_conflict。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示跨盘（EXDEV）导致的 rename 失败。
// 遇到 EXDEV 直接失败并提示用户，不做 copy+delete。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨盘重命名失败（EXDEV）：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice 判断 err 是否为跨盘（EXDEV）错误。
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename 封装 fsys.Rename，并把 EXDEV 显式标记为 CrossDeviceError。
func Rename(fsys afero.Fs, src, dst string) error {
	if err := renameFunc(fsys, src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// RenameNoOverwrite 与 Rename 相同，但 dst 已存在时返回 os.ErrExist（不覆盖）。
func RenameNoOverwrite(fsys afero.Fs, src, dst string) error {
	ok, err := Exists(fsys, dst)
	if err != nil {
		return err
	}
	if ok {
		return &os.PathError{Op: "rename", Path: dst, Err: os.ErrExist}
	}
	return Rename(fsys, src, dst)
}

// EnsureDir 确保 dir 是一个目录：不存在则连同父目录一起创建。
// dir 已存在但不是目录时返回 PathTypeConflictError。
// created 表示本次调用是否新建了目录。
func EnsureDir(fsys afero.Fs, dir string) (created bool, err error) {
	fi, err := fsys.Stat(dir)
	if err == nil {
		if !fi.IsDir() {
			return false, &PathTypeConflictError{Path: dir, Want: "dir", Got: typeName(fi)}
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, err
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// IsDir 判断 path 是否存在且为目录。不存在返回 (false, nil)。
func IsDir(fsys afero.Fs, path string) (bool, error) {
	fi, err := fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.IsDir(), nil
}

// Exists 判断 path 是否存在（任意类型）。
func Exists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Qualify 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func Qualify(base, p string) string {
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

// SamePath 判断两个 clean 路径是否指向同一位置（不区分大小写）。
func SamePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

func typeName(fi os.FileInfo) string {
	if fi.Mode().IsRegular() {
		return "file"
	}
	return fi.Mode().Type().String()
}

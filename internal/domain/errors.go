package domain

import (
	"errors"
	"fmt"
)

const (
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigMissingPath = "config_missing_input"

	ErrCodeDirNotFound     = "dir_not_found"
	ErrCodeDirConflict     = "dir_conflict"
	ErrCodeDirCreateFailed = "dir_create_failed"

	ErrCodeFileAccess = "file_access_failed"
	ErrCodeLibrary    = "library_failed"
)

// Error 是运行阶段的结构化错误（带 error_code）。
// 所有错误都是致命的：不重试、不跳过单个文件。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s：%q：%v", e.Code, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s：%q", e.Code, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	default:
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError 构造 *Error；err 可以为 nil。
func NewError(code, path string, err error) *Error {
	return &Error{Code: code, Path: path, Err: err}
}

// ErrorCode 从 error 中提取 error_code；若不是 *Error 则返回空串。
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

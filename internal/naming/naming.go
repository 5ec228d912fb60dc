package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/mergepdf/internal/domain"
)

// Resolve 根据首个输入文件名与命名策略，计算输出 PDF 与日志的绝对路径。
//
// 纯函数：不访问文件系统；相同输入必然得到相同输出。
// logName 为空表示日志名由输出 PDF 名推导（去掉 .pdf 再追加 .log）。
func Resolve(firstInput, outputDir string, s domain.NamingStrategy, logName string) (domain.OutputNames, error) {
	base := filepath.Base(firstInput)

	name, err := resolveName(base, s)
	if err != nil {
		return domain.OutputNames{}, err
	}
	if strings.TrimSpace(name) == "" {
		return domain.OutputNames{}, invalid(firstInput, fmt.Errorf("策略 %s 从 %q 得到空文件名", s, base))
	}
	if !hasSuffixFold(name, domain.PDFExt) {
		name += domain.PDFExt
	}

	logName = strings.TrimSpace(logName)
	if logName == "" {
		logName = name[:len(name)-len(domain.PDFExt)]
	}
	if !hasSuffixFold(logName, domain.LogExt) {
		logName += domain.LogExt
	}

	dir := filepath.Clean(outputDir)
	return domain.OutputNames{
		PDFPath: filepath.Join(dir, name),
		LogPath: filepath.Join(dir, logName),
	}, nil
}

func resolveName(base string, s domain.NamingStrategy) (string, error) {
	switch s.Kind {
	case domain.NamingExplicit:
		return s.Name, nil
	case domain.NamingExtract:
		return Extract(base, s.From, s.Length)
	case domain.NamingSplit:
		return Split(base, s.Regex, s.Index)
	default:
		return base, nil
	}
}

// Extract 从 name 中截取第 from 个字符（从 1 开始）起、长度为 length 的子串。
// 按 rune 计数；超出末尾的部分截断到末尾。
func Extract(name string, from, length int) (string, error) {
	runes := []rune(name)
	if from < 1 || from > len(runes) {
		return "", invalid(name, fmt.Errorf("起始位置 %d 超出范围 [1, %d]", from, len(runes)))
	}
	if length <= 0 {
		return "", invalid(name, fmt.Errorf("截取长度必须 > 0，实际 %d", length))
	}
	end := from - 1 + length
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[from-1 : end]), nil
}

// Split 用正则切分 name 并返回第 index 段（从 1 开始）。
// 末尾的空段会被丢弃，例如 "a.b." 按 `\.` 切分得到 [a, b]。
func Split(name, expr string, index int) (string, error) {
	if expr == "" {
		return "", invalid(name, errors.New("未提供切分正则"))
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return "", invalid(name, err)
	}
	parts := re.Split(name, -1)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if index < 1 || index > len(parts) {
		return "", invalid(name, fmt.Errorf("段位置 %d 超出范围 [1, %d]", index, len(parts)))
	}
	return parts[index-1], nil
}

func invalid(path string, err error) error {
	return domain.NewError(domain.ErrCodeConfigInvalid, path, err)
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

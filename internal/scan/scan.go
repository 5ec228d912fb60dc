package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/John-Robertt/mergepdf/internal/domain"
)

// Options 控制一次扫描。
type Options struct {
	// Recursive 为 false 时只看 root 直接包含的文件。
	Recursive bool
	// Exclude 是 gitignore 风格的模式（相对 root）。
	Exclude []string
	// SkipDirs 是必须整体跳过的绝对目录（例如位于输入目录内部的输出目录）。
	SkipDirs []string
}

// ScanPDFs 扫描 root 下的 PDF 文件（扩展名不区分大小写）。
//
// 规则（硬约束）：
// - 结果按 RelPath 字典序排序，保证同一目录树多次扫描结果一致
// - 扫描阶段只做 stat，不读文件内容
func ScanPDFs(fsys afero.Fs, root string, opt Options) ([]domain.PDFFile, error) {
	root = filepath.Clean(root)
	skip := buildSkipped(opt.SkipDirs)

	var matcher *ignore.GitIgnore
	if len(opt.Exclude) > 0 {
		matcher = ignore.CompileIgnoreLines(opt.Exclude...)
	}

	files := make([]domain.PDFFile, 0, 64)
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		path = filepath.Clean(path)
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		slashRel := filepath.ToSlash(rel)

		if info.IsDir() {
			if !opt.Recursive || isSkipped(path, skip) {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(slashRel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || !isPDF(info.Name()) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(slashRel) {
			return nil
		}

		files = append(files, domain.PDFFile{
			AbsPath: path,
			RelPath: rel,
			Name:    info.Name(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool {
		return filepath.ToSlash(files[i].RelPath) < filepath.ToSlash(files[j].RelPath)
	})
	return files, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), domain.PDFExt)
}

func buildSkipped(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		out = append(out, filepath.Clean(d))
	}
	sort.Strings(out)
	return out
}

func isSkipped(path string, skip []string) bool {
	for _, base := range skip {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

// IsUnder 判断 path 是否等于 base 或位于 base 之下（两者都应是 clean 路径）。
func IsUnder(path, base string) bool { return isUnder(path, base) }

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, strings.TrimSuffix(base, sep)+sep)
}

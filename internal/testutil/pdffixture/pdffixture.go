// Package pdffixture 生成测试用的最小合法 PDF（N 个空白页）。
package pdffixture

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Build 返回包含 pages 个空白页（US Letter）的 PDF 1.4 字节。pages 必须 >= 1。
func Build(pages int) []byte {
	return BuildVersion(pages, "1.4")
}

// BuildVersion 与 Build 相同，但文件头使用指定的 PDF 版本（例如 "2.0"）。
func BuildVersion(pages int, version string) []byte {
	if pages < 1 {
		pages = 1
	}

	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-" + version + "\n%\xe2\xe3\xcf\xd3\n")

	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		// 1 = Catalog，2 = Pages，页面从 3 开始。
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xref := buf.Len()
	size := len(offsets) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xref)
	return buf.Bytes()
}

// Write 在 fsys 的 path 处写入 pages 页的 PDF（自动创建父目录）。
func Write(fsys afero.Fs, path string, pages int) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, Build(pages), 0o644)
}

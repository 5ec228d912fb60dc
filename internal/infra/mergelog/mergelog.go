package mergelog

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// LineEnd 是日志记录的行尾（与原工具输出保持一致）。
const LineEnd = "\r\n"

// Writer 按合并顺序记录每个输入文件：<path>\t<pages>\r\n。
// 每条记录写入后立即 flush，保证中途失败时已写入的记录可用于排查。
type Writer struct {
	f      afero.File
	w      *bufio.Writer
	closed bool
}

// Create 创建（或截断）path 处的日志文件。
func Create(fsys afero.Fs, path string) (*Writer, error) {
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Record 追加一条记录并 flush。
func (l *Writer) Record(path string, pages int) error {
	if l.closed {
		return os.ErrClosed
	}
	if _, err := fmt.Fprintf(l.w, "%s\t%d%s", path, pages, LineEnd); err != nil {
		return err
	}
	return l.w.Flush()
}

// Close flush 并关闭文件；重复调用是安全的。
func (l *Writer) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	ferr := l.w.Flush()
	cerr := l.f.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

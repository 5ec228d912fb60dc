package domain

// PDFFile 描述一次扫描得到的 PDF 输入文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - RelPath 相对输入目录，用于稳定排序
type PDFFile struct {
	AbsPath string
	RelPath string
	Name    string // 含扩展名，例如 "invoice123.pdf"
}

// PDFExt 是参与合并的唯一扩展名（比较时不区分大小写）。
const PDFExt = ".pdf"

// LogExt 是合并日志的扩展名（比较时不区分大小写）。
const LogExt = ".log"

// RenamedSuffix 是自覆盖保护重命名首个输入时追加的字面后缀。
const RenamedSuffix = ".old"

package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReportTimeLayout 是报告中开始/结束时间的固定格式（dd/MM/yyyy HH:mm:ss）。
const ReportTimeLayout = "02/01/2006 15:04:05"

// RunState 是单次合并的可变计数器，只由引擎持有，运行结束即丢弃。
type RunState struct {
	Files int
	Pages int

	StartedAt  time.Time
	FinishedAt time.Time
}

// AddFile 记录一个已合并的输入文件。
func (s *RunState) AddFile(pages int) {
	s.Files++
	s.Pages += pages
}

// MergeSummary 是对外稳定输出（日志报告 / stdout JSON）的结构。
type MergeSummary struct {
	RunID string `json:"run_id"`

	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	OutputPDF string `json:"output_pdf"`
	OutputLog string `json:"output_log"`

	Files int `json:"files"`
	Pages int `json:"pages"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	ElapsedMS  int64     `json:"elapsed_ms"`
}

// Summarize 把 RunState 冻结为 MergeSummary。
// 时间统一为 UTC，ElapsedMS 由起止时间计算（负值截为 0）。
func (s RunState) Summarize(runID string, dirs Directories, names OutputNames) MergeSummary {
	elapsed := s.FinishedAt.Sub(s.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return MergeSummary{
		RunID:      runID,
		InputDir:   dirs.Input,
		OutputDir:  dirs.Output,
		OutputPDF:  names.PDFPath,
		OutputLog:  names.LogPath,
		Files:      s.Files,
		Pages:      s.Pages,
		StartedAt:  s.StartedAt.UTC(),
		FinishedAt: s.FinishedAt.UTC(),
		ElapsedMS:  elapsed.Milliseconds(),
	}
}

// Elapsed 返回 ElapsedMS 对应的 time.Duration。
func (m MergeSummary) Elapsed() time.Duration {
	return time.Duration(m.ElapsedMS) * time.Millisecond
}

// FormatReport 生成人类可读的报告行（纯格式化，不做 I/O）。
// 时间按 loc 展示；loc 为 nil 时使用 time.Local。
func FormatReport(m MergeSummary, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	lines := make([]string, 0, 4)
	if m.Files == 0 {
		lines = append(lines, fmt.Sprintf("No PDF file found in '%s'.", m.InputDir))
	} else {
		lines = append(lines, fmt.Sprintf("%d PDF file(s) merged for a total of %d page(s).", m.Files, m.Pages))
	}
	lines = append(lines,
		"MergePDF started at "+m.StartedAt.In(loc).Format(ReportTimeLayout),
		"MergePDF ended at "+m.FinishedAt.In(loc).Format(ReportTimeLayout),
		fmt.Sprintf("Process time : %s (%d milliseconds.)", FormatElapsed(m.Elapsed()), m.ElapsedMS),
	)
	return lines
}

// FormatElapsed 把耗时格式化为 HH:MM:SS（小时不封顶，秒向下取整）。
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (m MergeSummary) MarshalJSON() ([]byte, error) {
	type Alias MergeSummary
	a := Alias(m)
	a.StartedAt = a.StartedAt.UTC()
	a.FinishedAt = a.FinishedAt.UTC()
	return json.Marshal(a)
}

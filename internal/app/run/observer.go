package run

import (
	"github.com/John-Robertt/mergepdf/internal/config"
	"github.com/John-Robertt/mergepdf/internal/domain"
)

// Observer 用于把“运行进度/阶段/结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 事件按顺序在调用 Execute 的 goroutine 中同步触发。
type Observer interface {
	// OnStart 在目录准备与扫描完成后调用。
	OnStart(eff config.EffectiveConfig, dirs domain.Directories, files int)
	// OnPlan 在输出名确定后、任何写入之前调用。
	OnPlan(plan domain.MergePlan)
	// OnFileMerged 在每个输入合并并写入日志后调用（idx 从 1 开始）。
	OnFileMerged(idx, total int, path string, pages int)
	// OnDone 在运行结束时调用（成功或失败都会调用；err 为 nil 表示成功）。
	OnDone(sum domain.MergeSummary, err error)
}

package domain

// MovePlan 规划一次文件重命名（只描述 src/dst）。
type MovePlan struct {
	SrcAbs string
	DstAbs string
}

// Directories 是目录准备阶段的结果（均为 clean + absolute）。
type Directories struct {
	Input  string
	Output string

	// Same 表示输入目录与输出目录相同（不区分大小写比较）。
	Same bool
}

// OutputNames 是一次运行唯一确定的输出路径，确定后不再改变。
type OutputNames struct {
	PDFPath string
	LogPath string
}

// MergePlan 是执行合并前的确定性计划（不做任何写入）。
type MergePlan struct {
	Names OutputNames

	// Inputs 按合并顺序排列；若发生自覆盖保护，对应条目已替换为重命名后的路径。
	Inputs []string

	// Guard 非空表示执行前必须先完成的重命名（自覆盖保护）。
	Guard *MovePlan
}

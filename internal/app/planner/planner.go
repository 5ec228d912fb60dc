package planner

import (
	"errors"

	"github.com/John-Robertt/mergepdf/internal/domain"
	"github.com/John-Robertt/mergepdf/internal/infra/fsx"
	"github.com/John-Robertt/mergepdf/internal/naming"
)

// Plan 基于扫描结果生成确定性的合并计划（不做任何写入/重命名）。
//
// 输出名由首个输入的原始文件名决定。若输出 PDF 路径与某个输入文件相同
// （不区分大小写），该输入必须先重命名为 <path>.old，合并与日志都使用重命名后的路径；
// 否则打开输出文件时会在读取前把它截断。
func Plan(files []domain.PDFFile, dirs domain.Directories, s domain.NamingStrategy, logName string) (domain.MergePlan, error) {
	if len(files) == 0 {
		return domain.MergePlan{}, errors.New("没有可合并的输入文件")
	}

	names, err := naming.Resolve(files[0].AbsPath, dirs.Output, s, logName)
	if err != nil {
		return domain.MergePlan{}, err
	}

	plan := domain.MergePlan{
		Names:  names,
		Inputs: make([]string, 0, len(files)),
	}
	for _, f := range files {
		plan.Inputs = append(plan.Inputs, f.AbsPath)
	}

	for i, in := range plan.Inputs {
		if !fsx.SamePath(in, names.PDFPath) {
			continue
		}
		renamed := in + domain.RenamedSuffix
		plan.Guard = &domain.MovePlan{SrcAbs: in, DstAbs: renamed}
		plan.Inputs[i] = renamed
		break
	}
	return plan, nil
}

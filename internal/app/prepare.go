package app

import (
	"errors"

	"github.com/spf13/afero"

	"github.com/John-Robertt/mergepdf/internal/config"
	"github.com/John-Robertt/mergepdf/internal/domain"
	"github.com/John-Robertt/mergepdf/internal/infra/fsx"
)

// PrepareDirectories 校验并准备输入/输出目录（DirectoryPreparer）。
//
// - 相对路径以 eff.BaseDir 为基准限定为绝对路径
// - 未配置输出目录时沿用输入目录
// - 输出目录不存在则连同父目录一起创建
// - Same 为不区分大小写的路径比较结果
func PrepareDirectories(fsys afero.Fs, eff config.EffectiveConfig) (domain.Directories, error) {
	in := fsx.Qualify(eff.BaseDir, eff.InputDir)
	ok, err := fsx.IsDir(fsys, in)
	if err != nil {
		return domain.Directories{}, domain.NewError(domain.ErrCodeDirNotFound, in, err)
	}
	if !ok {
		return domain.Directories{}, domain.NewError(domain.ErrCodeDirNotFound, in, errors.New("输入目录不存在或不是目录"))
	}

	out := in
	if eff.OutputDir != "" {
		out = fsx.Qualify(eff.BaseDir, eff.OutputDir)
	}
	if _, err := fsx.EnsureDir(fsys, out); err != nil {
		if fsx.IsPathTypeConflict(err) {
			return domain.Directories{}, domain.NewError(domain.ErrCodeDirConflict, out, err)
		}
		return domain.Directories{}, domain.NewError(domain.ErrCodeDirCreateFailed, out, err)
	}

	return domain.Directories{
		Input:  in,
		Output: out,
		Same:   fsx.SamePath(in, out),
	}, nil
}

// Package ops 执行整理动作（建目录、取得属主、移动、删除容器）。
// 路径全部由 assistant/planner 计算好；这里不做重试，也不做额外的存在性判断之外的“聪明”处理。
package ops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/John-Robertt/organizer/internal/infra/fsx"
)

type Operator interface {
	CreateDirectories(dir string) error
	TakeOwnership(path string) error
	MoveFile(src, dst string) error
	Remove(path string) error
}

// FSOperator 直接操作本地文件系统。
type FSOperator struct{}

func (FSOperator) CreateDirectories(dir string) error {
	return fsx.EnsureDir(dir)
}

func (FSOperator) TakeOwnership(path string) error {
	return fsx.TakeOwnership(path)
}

// MoveFile 移动文件或目录；目标已存在时拒绝覆盖，跨盘时退化为 copy+delete。
func (FSOperator) MoveFile(src, dst string) error {
	return fsx.MoveNoOverwrite(src, dst)
}

// Remove 递归删除 path；path 不存在视为成功。
func (FSOperator) Remove(path string) error {
	if filepath.Clean(path) == string(filepath.Separator) {
		return fmt.Errorf("拒绝删除根目录")
	}
	return os.RemoveAll(path)
}

// ReportOperator 只打印将要执行的动作（dry-run），不触碰磁盘。
type ReportOperator struct {
	W io.Writer
}

func (o ReportOperator) CreateDirectories(dir string) error {
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		return nil
	}
	return o.printf("将创建目录 %s\n", dir)
}

func (o ReportOperator) TakeOwnership(path string) error {
	return o.printf("将取得属主 %s\n", path)
}

func (o ReportOperator) MoveFile(src, dst string) error {
	if err := o.printf("将移动 %s\n     到 %s\n", src, dst); err != nil {
		return err
	}
	if _, err := os.Lstat(dst); err == nil {
		return o.printf("     目标已存在，实际运行时会拒绝覆盖\n")
	}
	return nil
}

func (o ReportOperator) Remove(path string) error {
	return o.printf("将删除 %s\n", path)
}

func (o ReportOperator) printf(format string, args ...any) error {
	if o.W == nil {
		return nil
	}
	_, err := fmt.Fprintf(o.W, format, args...)
	return err
}

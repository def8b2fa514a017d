package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// 通过可替换的函数指针，让测试能稳定模拟 EXDEV 等错误。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径类型冲突（例如期望目录但实际是文件）。
// 上层可把它映射为 error_code=target_conflict。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示跨盘（EXDEV）导致的 rename 失败。
// Rename 只负责把它标记出来；需要跨盘移动的调用方使用 MoveNoOverwrite。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨盘 rename 失败（EXDEV）：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice 判断 err 是否为跨盘（EXDEV）错误。
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename 封装 os.Rename，并把 EXDEV 显式标记为 CrossDeviceError。
func Rename(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// RenameNoOverwrite 与 Rename 相同，但目标已存在时拒绝执行：
// - 目标是文件/目录：返回 os.ErrExist（包装后仍可 errors.Is）
// - 目标的父路径是文件：返回 PathTypeConflictError
//
// 检查与 rename 之间存在竞态窗口；整理工具是单进程串行运行，这里不再加锁。
func RenameNoOverwrite(src, dst string) error {
	if p, ok := fileAncestor(filepath.Dir(dst)); ok {
		return &PathTypeConflictError{Path: p, Want: "dir", Got: "file"}
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("目标已存在，拒绝覆盖：%q：%w", dst, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return err
	}
	return Rename(src, dst)
}

// EnsureDir 确保 dir 是目录（必要时逐级创建）。
// 路径上已存在同名文件时返回 PathTypeConflictError。
func EnsureDir(dir string) error {
	fi, err := os.Stat(dir)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		return &PathTypeConflictError{Path: dir, Want: "dir", Got: "file"}
	}
	if p, ok := fileAncestor(dir); ok {
		return &PathTypeConflictError{Path: p, Want: "dir", Got: "file"}
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// fileAncestor 自 p 向上找第一个已存在的路径；它若不是目录则返回它。
func fileAncestor(p string) (string, bool) {
	for d := filepath.Clean(p); ; {
		if fi, err := os.Stat(d); err == nil {
			if fi.IsDir() {
				return "", false
			}
			return d, true
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", false
		}
		d = parent
	}
}

// WriteFileAtomicReplace 在 dir 下原子写入 name（临时文件 + rename），若目标已存在则覆盖。
//
// - 临时文件必须与目标文件在同目录，以保证 rename 的原子性
// - 对临时文件做 Sync；目录 Sync 采用 best-effort（避免平台差异导致误报失败）
//
// memory/report 等内部状态文件使用该函数。
func WriteFileAtomicReplace(dir, name string, data []byte) error {
	return writeFileAtomic(dir, name, data, 0o644)
}

func writeFileAtomic(dir, name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)

	// 同目录临时文件（前缀带 '.'，分类/模糊匹配都会忽略它）。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := Rename(tmpName, dst); err != nil {
		return err
	}

	_ = syncDirBestEffort(dir)
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

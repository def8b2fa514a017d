package fsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MoveNoOverwrite 把 src（文件或目录）移动到 dst，目标已存在时拒绝覆盖。
//
// 同一文件系统内直接 rename；跨盘（EXDEV）时退化为 copy+delete：
// 先完整复制到 dst 同目录下的隐藏临时目录，再 rename 到 dst，最后删除 src。
// 复制中途失败不会留下半个 dst，src 也保持原样。
func MoveNoOverwrite(src, dst string) error {
	err := RenameNoOverwrite(src, dst)
	if !IsCrossDevice(err) {
		return err
	}

	stage, err := os.MkdirTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".moving-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stage)

	staged := filepath.Join(stage, filepath.Base(dst))
	if err := copyTree(src, staged); err != nil {
		return fmt.Errorf("跨盘复制失败：%q -> %q：%w", src, dst, err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("目标已存在，拒绝覆盖：%q：%w", dst, os.ErrExist)
	}
	// stage 与 dst 同目录，这里一定是同盘 rename。
	if err := os.Rename(staged, dst); err != nil {
		return err
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("已复制到 %q，但删除源失败：%w", dst, err)
	}
	return nil
}

// copyTree 递归复制 src 到 dst（dst 必须不存在）；符号链接按链接本身复制。
func copyTree(src, dst string) error {
	fi, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)

	case fi.IsDir():
		if err := os.Mkdir(dst, 0o700); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
				return err
			}
		}
		if err := os.Chmod(dst, fi.Mode().Perm()); err != nil {
			return err
		}
		return os.Chtimes(dst, fi.ModTime(), fi.ModTime())

	case fi.Mode().IsRegular():
		if err := copyFile(src, dst, fi.Mode().Perm()); err != nil {
			return err
		}
		return os.Chtimes(dst, fi.ModTime(), fi.ModTime())

	default:
		return fmt.Errorf("不支持复制的文件类型：%q（%s）", src, fi.Mode().Type())
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

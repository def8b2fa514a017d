//go:build unix

package fsx

import (
	"io/fs"
	"os"
	"path/filepath"
)

// TakeOwnership 把 path（目录则递归）的属主改为当前用户。
//
// best-effort：遍历不会因单个条目失败而中断，返回遇到的第一个错误。
// 不跟随符号链接（Lchown），避免改到整理范围之外的文件。
func TakeOwnership(path string) error {
	uid, gid := os.Getuid(), os.Getgid()
	var first error
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if first == nil {
				first = err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if e := os.Lchown(p, uid, gid); e != nil && first == nil {
			first = e
		}
		return nil
	})
	return first
}

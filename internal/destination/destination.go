// Package destination 在目标根目录的现有子目录中为一个候选名寻找最相似者。
//
// 目录树可能在两次交互之间被用户改动，所以每次查询都直接读磁盘，不做缓存。
package destination

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// MinRatio 是给出建议的最低相似度。
const MinRatio = 0.5

// junkChars 在对齐时被忽略，用来吸收发布名里的标点噪音（Greys.Anatomy vs Greys Anatomy）。
const junkChars = ". -_"

// Destination 是一个用户选定的目标根目录（绝对路径）。
type Destination struct {
	Root string
}

func New(root string) (Destination, error) {
	if !filepath.IsAbs(root) {
		return Destination{}, fmt.Errorf("目标目录必须是绝对路径：%q", root)
	}
	return Destination{Root: filepath.Clean(root)}, nil
}

// Subdirs 列出 Root/prefix 下的直接子目录名（跟随符号链接，忽略 '.' 开头的项）。
//
// 目录不存在时返回空结果；其它错误（权限、某级路径变成了文件）原样返回。
func (d Destination) Subdirs(prefix string) ([]string, error) {
	dir := d.Root
	if prefix != "" {
		dir = filepath.Join(dir, prefix)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !e.IsDir() {
			if e.Type()&fs.ModeSymlink == 0 {
				continue
			}
			st, err := os.Stat(filepath.Join(dir, name))
			if err != nil || !st.IsDir() {
				// 悬空链接或指向文件：不是候选目录。
				continue
			}
		}
		out = append(out, name)
	}
	return out, nil
}

// GuessBestHint 在 Root/prefix 下找与 hint 最相似的现有子目录名。
//
// 相似度最高者胜；并列时取名字字典序最大的那个（按 (ratio, name) 升序排序后取最后一个）。
// 没有子目录或最佳相似度低于 MinRatio 时 ok=false。
func (d Destination) GuessBestHint(hint, prefix string) (string, bool, error) {
	names, err := d.Subdirs(prefix)
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}

	type scored struct {
		ratio float64
		name  string
	}
	all := make([]scored, 0, len(names))
	for _, n := range names {
		all = append(all, scored{ratio: Ratio(n, hint), name: n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].ratio != all[j].ratio {
			return all[i].ratio < all[j].ratio
		}
		return all[i].name < all[j].name
	})

	best := all[len(all)-1]
	if best.ratio < MinRatio {
		return "", false, nil
	}
	return best.name, true, nil
}

// Ratio 计算 existing 与 hint 的 Ratcliff/Obershelp 相似度（忽略大小写）。
// 参数顺序有意义：junk 只作用于第二个序列（hint）。
func Ratio(existing, hint string) float64 {
	m := difflib.NewMatcherWithJunk(chars(strings.ToLower(existing)), chars(strings.ToLower(hint)), true, isJunk)
	return m.Ratio()
}

func isJunk(s string) bool {
	return len(s) == 1 && strings.Contains(junkChars, s)
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

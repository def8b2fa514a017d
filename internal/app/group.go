package app

import "path/filepath"

// DedupPaths 把输入路径转为 clean 的绝对路径并去重（保留首次出现的顺序）。
// 无法转成绝对路径的输入原样 clean 后保留，由后续分类阶段报告错误。
func DedupPaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}

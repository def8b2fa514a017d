package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// 扫描只看目录项的名字与类型，不读文件内容（分类完全基于文件名/目录形状）。
//
// 规则（硬约束）：
// - 以 '.' 开头的目录项一律忽略
// - 目录不存在/不可读时返回空结果，不报错：分类阶段任何变体都不能因为路径异常而失败
// - 输出按路径排序，保证不同文件系统下结果稳定

// IsVideoExt 判断扩展名（含 '.'，大小写不敏感）是否为视频。
func IsVideoExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".avi", ".mkv", ".mov", ".mp4":
		return true
	default:
		return false
	}
}

// IsMusicExt 判断扩展名（含 '.'，大小写不敏感）是否为音乐。
func IsMusicExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".ogg", ".flac", ".mp3", ".aac", ".m4a":
		return true
	default:
		return false
	}
}

// IsSubtitleExt 判断扩展名（含 '.'，大小写不敏感）是否为字幕。
func IsSubtitleExt(ext string) bool {
	return strings.EqualFold(ext, ".srt")
}

// Videos 返回 folder 直接子项中的视频文件。
func Videos(folder string) []string {
	return filterNames(children(folder), IsVideoExt)
}

// Subtitles 返回 folder 直接子项与下一层中的字幕文件。
func Subtitles(folder string) []string {
	all := children(folder)
	out := filterNames(all, IsSubtitleExt)
	out = append(out, filterNames(grandchildren(all), IsSubtitleExt)...)
	sort.Strings(out)
	return out
}

// MusicFiles 返回 folder 直接子项与下一层中的音乐文件。
func MusicFiles(folder string) []string {
	all := children(folder)
	out := filterNames(all, IsMusicExt)
	out = append(out, filterNames(grandchildren(all), IsMusicExt)...)
	sort.Strings(out)
	return out
}

// children 列出 folder 下的非隐藏目录项（绝对路径）。
func children(folder string) []string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, filepath.Join(folder, e.Name()))
	}
	return out
}

// grandchildren 对 parents 中的每一项再列一层（非目录自然得到空结果）。
func grandchildren(parents []string) []string {
	var out []string
	for _, p := range parents {
		out = append(out, children(p)...)
	}
	return out
}

func filterNames(paths []string, keep func(ext string) bool) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if keep(filepath.Ext(p)) {
			out = append(out, p)
		}
	}
	return out
}

package episode

import (
	"regexp"
	"strings"
)

// 两种被接受的季/集写法（大小写不敏感，按顺序尝试，先匹配者胜）：
// - Name.S08E14 / Name.Season 09 Episode 19 / Name.season 7 Ep 15
// - Name.8x03（集号至少两位，避免把 x264 之类的编码标记误判成集号）
//
// 注意：剧名分组是贪婪的，剧名与季标记之间固定吞掉一个任意字符（通常是 '.' 或空格）。
var patterns = []struct {
	re         *regexp.Regexp
	seasonIdx  int
	episodeIdx int
}{
	{regexp.MustCompile(`(?i)^(.*).S(eason)?[. ]*([0-9]+)\s*E(p(isode)?)?[. ]*([0-9]+)`), 3, 6},
	{regexp.MustCompile(`(?i)^(.*)(.)([0-9]+)x([0-9][0-9]+)`), 3, 4},
}

// Match 是从文件名中解析出的季/集信息。
//
// Season/Episode 保留十进制数字串（去掉前导零），不转成 int：任意长度的数字都能匹配。
type Match struct {
	ShowName string
	Season   string
	Episode  string
}

// SeasonLabel 返回季目录名（不补零），例如 "Season 8"。
func (m Match) SeasonLabel() string {
	return "Season " + m.Season
}

// Parse 从 basename（含扩展名）中解析季/集。
// 解析失败返回 ok=false；它不是错误：大多数电影/音乐文件本来就没有季集信息。
func Parse(basename string) (Match, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(basename)
		if m == nil {
			continue
		}
		return Match{
			ShowName: m[1],
			Season:   number(m[p.seasonIdx]),
			Episode:  number(m[p.episodeIdx]),
		}, true
	}
	return Match{}, false
}

// number 去掉数字串的前导零（"09" -> "9"，"00" -> "0"）。
func number(digits string) string {
	if n := strings.TrimLeft(digits, "0"); n != "" {
		return n
	}
	return "0"
}

package nature

import (
	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/scheme"
)

// SubdirHints 返回默认模板链去掉末尾文件名之后的各级目录片段。
// 电影/音乐等只有一个文件名片段的 nature 返回空切片。
func SubdirHints(n domain.Nature) ([]domain.Fragment, error) {
	frags, err := scheme.Resolve(n, nil)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return frags, nil
	}
	return frags[:len(frags)-1], nil
}

// HintTexts 是 SubdirHints 的纯文本版本。
func HintTexts(frags []domain.Fragment) []string {
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		out = append(out, f.Text)
	}
	return out
}

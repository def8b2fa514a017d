package nature

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/organizer/internal/domain"
)

// ErrNoCandidates 表示注册表里没有任何变体（正常情况下不会发生：Unknown 总是兜底）。
var ErrNoCandidates = errors.New("没有可用的 nature 变体")

// Variant 描述一种 nature：如何给路径打分，以及赢了之后如何构造结果。
//
// Examine 不允许因为路径不存在而失败（返回 0 即可）。
// Build 只会对最终胜出的变体调用；它可以再扫描一次目录，扫描结果与 Examine 时不一致属于文件系统竞态，直接返回错误。
type Variant struct {
	Kind    domain.Kind
	Examine func(path string) float64
	Build   func(path string, confidence float64) (domain.Nature, error)
}

// Registry 是按固定顺序排列的变体列表。
// 顺序即平局时的优先级：先注册者胜。
type Registry struct {
	variants []Variant
}

func NewRegistry(variants ...Variant) (Registry, error) {
	seen := make(map[domain.Kind]bool, len(variants))
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		if v.Kind == "" {
			return Registry{}, fmt.Errorf("variant.Kind 不能为空")
		}
		if v.Examine == nil || v.Build == nil {
			return Registry{}, fmt.Errorf("variant %q 缺少 Examine/Build", v.Kind)
		}
		if seen[v.Kind] {
			return Registry{}, fmt.Errorf("重复的 variant：%q", v.Kind)
		}
		seen[v.Kind] = true
		out = append(out, v)
	}
	return Registry{variants: out}, nil
}

// Default 返回内置的全部变体；这里是唯一枚举它们的地方。
func Default() Registry {
	r, err := NewRegistry(
		tvShowEpisode(),
		tvShowContainer(),
		tvShowFolder(),
		movieFile(),
		movieFolder(),
		musicAlbum(),
		musicCompilation(),
		unknown(),
	)
	if err != nil {
		// 内置列表是静态的，出错只可能是代码写错。
		panic(err)
	}
	return r
}

// Kinds 按优先级顺序返回已注册的 Kind。
func (r Registry) Kinds() []domain.Kind {
	out := make([]domain.Kind, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v.Kind)
	}
	return out
}

// Classify 对 path 逐个变体打分，只构造得分严格最高的那个。
func (r Registry) Classify(path string) (domain.Nature, error) {
	if len(r.variants) == 0 {
		return domain.Nature{}, ErrNoCandidates
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Nature{}, fmt.Errorf("解析绝对路径失败：%w", err)
	}

	best := -1
	bestScore := 0.0
	for i, v := range r.variants {
		s := clamp(v.Examine(abs))
		if best < 0 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	return r.variants[best].Build(abs, bestScore)
}

// Scores 返回每个变体的得分（按注册顺序），供 classify 子命令展示。
func (r Registry) Scores(path string) map[domain.Kind]float64 {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	out := make(map[domain.Kind]float64, len(r.variants))
	for _, v := range r.variants {
		out[v.Kind] = clamp(v.Examine(abs))
	}
	return out
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

package assistant

import "github.com/John-Robertt/organizer/internal/memory"

// Decision 是最终路径中的一级目录。
//
// 渲染优先级：用户覆盖 > 目标目录 hint（经 memory 替换）> nature hint（经 memory 替换）。
// 任何一项被清空都会回落到下一项；三项都空时渲染为空串。
type Decision struct {
	NatureHint      string
	DestinationHint string
	Override        string

	// Exact 表示 nature hint 来自 exact 模板（只用于展示）。
	Exact bool
}

func (d Decision) Render(mem memory.Memory) string {
	if d.Override != "" {
		return d.Override
	}
	if d.DestinationHint != "" {
		return substitute(mem, d.DestinationHint)
	}
	if d.NatureHint != "" {
		return substitute(mem, d.NatureHint)
	}
	return ""
}

func substitute(mem memory.Memory, raw string) string {
	if v, ok := mem.RecallHint(raw); ok && v != "" {
		return v
	}
	return raw
}

// persist 记录本级的纠正：用户覆盖与某个 hint 相同时删除旧的替换，不同时记住它。
func (d Decision) persist(mem memory.Memory) {
	if d.Override == "" {
		return
	}
	if d.DestinationHint != "" {
		if d.Override == d.DestinationHint {
			mem.RememberHint(d.DestinationHint, "")
		} else {
			mem.RememberHint(d.DestinationHint, d.Override)
		}
	}
	if d.NatureHint != "" {
		if d.Override == d.NatureHint {
			mem.RememberHint(d.NatureHint, "")
		} else {
			mem.RememberHint(d.NatureHint, d.Override)
		}
	}
}

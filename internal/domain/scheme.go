package domain

// RenderMode 决定一段模板渲染后是否允许被目标目录的现状“纠正”。
type RenderMode int

const (
	// ModeExact：按字面使用，不与磁盘比对。
	ModeExact RenderMode = iota
	// ModeSpeculative：渲染后允许被目标目录中已有的相似目录名覆盖。
	ModeSpeculative
)

func (m RenderMode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeSpeculative:
		return "speculative"
	default:
		return "unknown"
	}
}

// Scheme 是一段路径模板，占位符形如 {{ showname }}。
type Scheme struct {
	Template string
	Mode     RenderMode
}

// Fragment 是 Scheme 渲染后的结果。
type Fragment struct {
	Exact bool
	Text  string
}

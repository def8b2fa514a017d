package domain

// Nature 是一次分类的结果：某个路径“是什么”，以及据此可渲染的属性与模板。
//
// 不变量（实现必须遵守）：
// - Path / PathToOrganize 必须是 clean + absolute
// - Confidence ∈ [0, 1]
// - PathToOrganize 与 Path 不同 => 移动完成后必须删除 Path（容器）
// - 每个字段都由构造它的变体显式初始化，不共享任何默认值
type Nature struct {
	Kind           Kind
	Path           string
	PathToOrganize string
	Confidence     float64

	Properties map[string]string
	Schemes    []Scheme
}

// NeedsContainerRemoval 表示移动 PathToOrganize 之后是否还要删除原始容器。
func (n Nature) NeedsContainerRemoval() bool {
	return n.PathToOrganize != "" && n.PathToOrganize != n.Path
}

// Property 读取属性；不存在时 ok=false。
func (n Nature) Property(name string) (string, bool) {
	v, ok := n.Properties[name]
	return v, ok
}

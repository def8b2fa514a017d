package domain

// MovePlan 规划一次整理动作（只描述路径；真正执行由 operator 完成，移动永远是最后一步）。
type MovePlan struct {
	Src string
	Dst string

	// Container 是 Dst 所在目录（执行前必须存在或被创建）。
	Container string

	// RemoveAfter 非空时：移动成功后删除该路径（单集容器目录）。
	RemoveAfter string
}

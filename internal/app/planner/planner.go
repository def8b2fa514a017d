package planner

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/organizer/internal/domain"
)

var (
	// ErrUnknownDestination 表示还没有目标目录，无法得到最终路径。
	ErrUnknownDestination = errors.New("目标目录未知")
	// ErrAlreadyOrganized 表示源路径已经就是最终路径（重复运行时应跳过）。
	ErrAlreadyOrganized = errors.New("已经整理过")
)

// InsideContainerError 表示最终路径落在即将被删除的容器内部。
type InsideContainerError struct {
	Dst       string
	Container string
}

func (e *InsideContainerError) Error() string {
	return fmt.Sprintf("目标 %q 位于移动后会被删除的容器 %q 之内", e.Dst, e.Container)
}

// Proposal 是 PlanMove 需要的最小信息（*assistant.Assistant 满足它）。
type Proposal interface {
	Nature() domain.Nature
	FinalPath() (string, bool)
}

// PlanMove 基于分类结果与最终路径生成确定性的移动计划（不做任何写入/移动）。
func PlanMove(p Proposal) (domain.MovePlan, error) {
	dst, ok := p.FinalPath()
	if !ok {
		return domain.MovePlan{}, ErrUnknownDestination
	}
	n := p.Nature()
	src := filepath.Clean(n.PathToOrganize)
	dst = filepath.Clean(dst)
	if src == dst {
		return domain.MovePlan{}, ErrAlreadyOrganized
	}

	plan := domain.MovePlan{
		Src:       src,
		Dst:       dst,
		Container: filepath.Dir(dst),
	}
	if n.NeedsContainerRemoval() {
		container := filepath.Clean(n.Path)
		if within(dst, container) {
			return domain.MovePlan{}, &InsideContainerError{Dst: dst, Container: container}
		}
		plan.RemoveAfter = container
	}
	return plan, nil
}

func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Package assistant 为单个待整理路径组装最终目标路径。
//
// 一个 Assistant 对应一个文件的一次会话：Begin 之后可以反复修改目标目录或某一级目录，
// 每次修改都会从头重算所有层级；确认后由调用方执行移动，再调用 Persist 把学到的纠正写回 memory。
package assistant

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/John-Robertt/organizer/internal/destination"
	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/memory"
	"github.com/John-Robertt/organizer/internal/nature"
)

// ErrNotBegun 表示在 Begin 之前调用了依赖分类结果的操作。
var ErrNotBegun = errors.New("assistant: 尚未调用 Begin")

type Assistant struct {
	reg  nature.Registry
	mem  memory.Memory
	path string

	begun     bool
	nature    domain.Nature
	hints     []domain.Fragment
	dest      *destination.Destination
	decisions []Decision
}

// New 创建会话；path 会被 clean 并转成绝对路径。mem 为 nil 时使用 NoMemory。
func New(reg nature.Registry, mem memory.Memory, path string) (*Assistant, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("解析绝对路径失败：%w", err)
	}
	if mem == nil {
		mem = memory.NoMemory{}
	}
	return &Assistant{reg: reg, mem: mem, path: abs}, nil
}

// Begin 分类、计算 nature hints，并用 memory 中该 kind 上次的目标目录初始化。
// 即使没有记住的目标目录也会重算一次：nature hints 本身就能填充各级目录。
func (a *Assistant) Begin() error {
	n, err := a.reg.Classify(a.path)
	if err != nil {
		return err
	}
	hints, err := nature.SubdirHints(n)
	if err != nil {
		return err
	}
	a.nature = n
	a.hints = hints
	a.begun = true

	dest, _ := a.mem.RecallDestination(n.Kind)
	return a.ChangeDestination(dest)
}

// ChangeDestination 替换目标根目录（"" 表示清空）并重算所有层级。
func (a *Assistant) ChangeDestination(dest string) error {
	if !a.begun {
		return ErrNotBegun
	}
	if dest == "" {
		a.dest = nil
		return a.recompute()
	}
	if !filepath.IsAbs(dest) {
		return memory.ErrRelativeDestination
	}
	d, err := destination.New(dest)
	if err != nil {
		return err
	}
	a.dest = &d
	return a.recompute()
}

// ChangeSubdir 设置第 i 级（从 0 开始）的用户覆盖（"" 表示清除），必要时补齐空层级。
func (a *Assistant) ChangeSubdir(i int, value string) error {
	if !a.begun {
		return ErrNotBegun
	}
	if i < 0 {
		return fmt.Errorf("目录层级不能为负数：%d", i)
	}
	for len(a.decisions) < i+1 {
		a.decisions = append(a.decisions, Decision{})
	}
	a.decisions[i].Override = value
	return a.recompute()
}

// recompute 逐级重算：推测层级用“当前渲染值”去目标目录中模糊匹配，
// 查找位置由前面各级的渲染值拼接而成（前面的替换会影响后面的查找）。
// 精确层级（例如 "Season 8"）按字面使用，从不拿磁盘上的目录去替换它。
func (a *Assistant) recompute() error {
	k := max(len(a.decisions), len(a.hints))
	decisions := make([]Decision, k)
	copy(decisions, a.decisions)

	prefix := ""
	for i := range decisions {
		d := &decisions[i]
		if i < len(a.hints) {
			d.NatureHint = a.hints[i].Text
			d.Exact = a.hints[i].Exact
		} else {
			d.NatureHint = ""
			d.Exact = false
		}

		if a.dest != nil && !d.Exact {
			guess, _, err := a.dest.GuessBestHint(d.Render(a.mem), prefix)
			if err != nil {
				return err
			}
			d.DestinationHint = guess
		} else {
			d.DestinationHint = ""
		}

		prefix = filepath.Join(prefix, d.Render(a.mem))
	}
	a.decisions = decisions
	return nil
}

// Path 返回会话的源路径（绝对路径）。
func (a *Assistant) Path() string { return a.path }

func (a *Assistant) Nature() domain.Nature { return a.nature }

// Destination 返回当前目标根目录；未设置时 ok=false。
func (a *Assistant) Destination() (string, bool) {
	if a.dest == nil {
		return "", false
	}
	return a.dest.Root, true
}

// Decisions 返回各级目录决策的副本。
func (a *Assistant) Decisions() []Decision {
	out := make([]Decision, len(a.decisions))
	copy(out, a.decisions)
	return out
}

// Rendered 返回各级目录的渲染值。
func (a *Assistant) Rendered() []string {
	out := make([]string, 0, len(a.decisions))
	for _, d := range a.decisions {
		out = append(out, d.Render(a.mem))
	}
	return out
}

// FinalPath = 目标根目录 + 各级渲染值 + PathToOrganize 的文件名；没有目标目录时 ok=false。
func (a *Assistant) FinalPath() (string, bool) {
	if a.dest == nil || !a.begun {
		return "", false
	}
	parts := append([]string{a.dest.Root}, a.Rendered()...)
	parts = append(parts, filepath.Base(a.nature.PathToOrganize))
	return filepath.Join(parts...), true
}

// ContainerOfFinalPath 返回 FinalPath 所在目录。
func (a *Assistant) ContainerOfFinalPath() (string, bool) {
	p, ok := a.FinalPath()
	if !ok {
		return "", false
	}
	return filepath.Dir(p), true
}

// ContainerExists 表示 FinalPath 所在目录当前是否存在（批量模式据此决定是否跳过）。
func (a *Assistant) ContainerExists() bool {
	c, ok := a.ContainerOfFinalPath()
	if !ok {
		return false
	}
	fi, err := os.Stat(c)
	return err == nil && fi.IsDir()
}

// Persist 把本次会话学到的东西写回 memory：
// 先记住该 kind 的目标目录（没有目标目录时跳过），再逐级记录 hint 替换。
func (a *Assistant) Persist() error {
	if !a.begun {
		return ErrNotBegun
	}
	if a.dest != nil {
		if err := a.mem.RememberDestination(a.nature.Kind, a.dest.Root); err != nil {
			return err
		}
	}
	for _, d := range a.decisions {
		d.persist(a.mem)
	}
	return nil
}

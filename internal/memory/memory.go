// Package memory 记住用户的纠正：每种 nature 上次选的目标目录，以及原始 hint 到用户替换值的映射。
package memory

import (
	"errors"
	"path/filepath"
	"sort"

	"github.com/John-Robertt/organizer/internal/domain"
)

// ErrRelativeDestination 表示试图记住一个相对路径的目标目录。
var ErrRelativeDestination = errors.New("memory: 目标目录必须是绝对路径")

// Memory 是 assistant 依赖的四个操作。
//
// 空字符串表示“删除”：Remember*(k, "") 会忘掉 k 上已有的记录。
type Memory interface {
	RecallDestination(kind domain.Kind) (string, bool)
	RecallHint(raw string) (string, bool)
	RememberDestination(kind domain.Kind, dest string) error
	RememberHint(raw, substitution string)
}

func validateDestination(dest string) error {
	if dest != "" && !filepath.IsAbs(dest) {
		return ErrRelativeDestination
	}
	return nil
}

// NoMemory 什么都不记得；写入只做校验。
type NoMemory struct{}

func (NoMemory) RecallDestination(domain.Kind) (string, bool) { return "", false }
func (NoMemory) RecallHint(string) (string, bool)             { return "", false }
func (NoMemory) RememberHint(string, string)                  {}

func (NoMemory) RememberDestination(_ domain.Kind, dest string) error {
	return validateDestination(dest)
}

// Table 是进程内的 Memory 实现；由 Backend 负责加载与保存。
//
// 不加锁：同一时刻只有一个 assistant 会话在使用它。
type Table struct {
	destinations map[domain.Kind]string
	hints        map[string]string
}

func NewTable() *Table {
	return &Table{
		destinations: map[domain.Kind]string{},
		hints:        map[string]string{},
	}
}

func (t *Table) RecallDestination(kind domain.Kind) (string, bool) {
	v, ok := t.destinations[kind]
	return v, ok
}

func (t *Table) RecallHint(raw string) (string, bool) {
	v, ok := t.hints[raw]
	return v, ok
}

func (t *Table) RememberDestination(kind domain.Kind, dest string) error {
	if err := validateDestination(dest); err != nil {
		return err
	}
	if dest == "" {
		delete(t.destinations, kind)
		return nil
	}
	t.destinations[kind] = filepath.Clean(dest)
	return nil
}

func (t *Table) RememberHint(raw, substitution string) {
	if substitution == "" {
		delete(t.hints, raw)
		return
	}
	t.hints[raw] = substitution
}

// Destinations 返回目标目录映射的快照（按 kind 排序）。
func (t *Table) Destinations() []Entry {
	out := make([]Entry, 0, len(t.destinations))
	for k, v := range t.destinations {
		out = append(out, Entry{Key: string(k), Value: v})
	}
	sortEntries(out)
	return out
}

// Hints 返回 hint 替换映射的快照（按原始 hint 排序）。
func (t *Table) Hints() []Entry {
	out := make([]Entry, 0, len(t.hints))
	for k, v := range t.hints {
		out = append(out, Entry{Key: k, Value: v})
	}
	sortEntries(out)
	return out
}

// Len 返回两个映射的条目总数。
func (t *Table) Len() int {
	return len(t.destinations) + len(t.hints)
}

// Entry 是一条 key→value 记录（用于展示与序列化）。
type Entry struct {
	Key   string
	Value string
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool { return es[i].Key < es[j].Key })
}

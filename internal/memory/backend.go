package memory

import (
	"errors"
	"fmt"
	"strings"
)

// Backend 负责把 Table 整体加载/保存到持久化介质。
// 进程启动时 Load 一次，运行结束时 Save 一次。
type Backend interface {
	Load() (*Table, error)
	Save(*Table) error
}

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ErrReadOnly 表示在只读（dry-run）模式下试图保存。
var ErrReadOnly = errors.New("memory: read-only")

// Open 按名字选择后端；kind 为空时使用 json。
func Open(kind, path string, readOnly bool) (Backend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("memory 路径不能为空")
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendJSON:
		return NewJSONFile(path, readOnly), nil
	case BackendSQLite:
		return NewSQLite(path, readOnly), nil
	default:
		return nil, fmt.Errorf("未知的 memory 后端：%q（可选 json|sqlite）", kind)
	}
}

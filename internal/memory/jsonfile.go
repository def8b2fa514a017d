package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/infra/fsx"
)

// JSONFile 把 memory 存成一个 JSON 文件。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - 写入走 fsx 的原子替换（临时文件 + rename），中途失败不会留下半个文件
type JSONFile struct {
	Path     string
	ReadOnly bool
}

type jsonDoc struct {
	Destinations map[string]string `json:"destinations"`
	Hints        map[string]string `json:"hints"`
}

func NewJSONFile(path string, readOnly bool) JSONFile {
	return JSONFile{
		Path:     filepath.Clean(strings.TrimSpace(path)),
		ReadOnly: readOnly,
	}
}

// Load 读取文件；文件不存在时返回空表。
func (s JSONFile) Load() (*Table, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewTable(), nil
		}
		return nil, err
	}

	var doc jsonDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("解析 memory 文件失败：%s：%w", s.Path, err)
	}

	t := NewTable()
	for k, v := range doc.Destinations {
		kind, ok := domain.ParseKind(k)
		if !ok {
			// 旧版本留下的未知 kind：跳过，不让整个 memory 作废。
			continue
		}
		if err := t.RememberDestination(kind, v); err != nil {
			return nil, fmt.Errorf("memory 文件中 %q 的目标目录无效：%w", k, err)
		}
	}
	for k, v := range doc.Hints {
		t.RememberHint(k, v)
	}
	return t, nil
}

func (s JSONFile) Save(t *Table) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	doc := jsonDoc{
		Destinations: map[string]string{},
		Hints:        map[string]string{},
	}
	for _, e := range t.Destinations() {
		doc.Destinations[e.Key] = e.Value
	}
	for _, e := range t.Hints() {
		doc.Hints[e.Key] = e.Value
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(s.Path), filepath.Base(s.Path), b)
}

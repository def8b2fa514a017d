// Package scheme 把 nature 的路径模板渲染成路径片段。
//
// 模板语法只有一种：{{ name }}（花括号内空白可选）。不支持循环/条件，也不打算支持。
package scheme

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/John-Robertt/organizer/internal/domain"
)

var placeholderRE = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// BindingError 表示模板引用了 nature 没有提供的属性。
// 这是调用方（模板与变体不匹配）的逻辑错误：绝不能静默渲染成空串。
type BindingError struct {
	Template string
	Property string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("模板 %q 引用了不存在的属性 %q", e.Template, e.Property)
}

// IsBindingError 判断 err 是否为 BindingError。
func IsBindingError(err error) bool {
	var e *BindingError
	return errors.As(err, &e)
}

// Render 用 props 替换 template 中的占位符。
func Render(template string, props map[string]string) (string, error) {
	var missing string
	out := placeholderRE.ReplaceAllStringFunc(template, func(ph string) string {
		name := placeholderRE.FindStringSubmatch(ph)[1]
		v, ok := props[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return ""
		}
		return v
	})
	if missing != "" {
		return "", &BindingError{Template: template, Property: missing}
	}
	return out, nil
}

// Resolve 按顺序渲染 schemes；schemes 为 nil 时使用 n.Schemes。
// 任一片段绑定失败，整个调用失败（不返回部分结果）。
func Resolve(n domain.Nature, schemes []domain.Scheme) ([]domain.Fragment, error) {
	if schemes == nil {
		schemes = n.Schemes
	}
	out := make([]domain.Fragment, 0, len(schemes))
	for _, s := range schemes {
		text, err := Render(s.Template, n.Properties)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Fragment{
			Exact: s.Mode == domain.ModeExact,
			Text:  text,
		})
	}
	return out, nil
}

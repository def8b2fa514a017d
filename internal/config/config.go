package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ErrCodeNotFound 表示 --config 指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是默认配置文件名（位于 <UserConfigDir>/organizer/ 下）。
	FileName = "organizer.json"
	// AppDir 是 <UserConfigDir> 下本工具的目录名。
	AppDir = "organizer"

	DefaultMemoryBackend = "json"
	DefaultColor         = ColorAuto
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// CLIArgs 保留“是否显式指定”的信息，保证覆盖优先级可实现：
// 例如 --batch=false 必须能覆盖 config.batch=true。
type CLIArgs struct {
	// ConfigPath 非空时配置文件变为必选。
	ConfigPath string

	Files []string

	Batch    bool
	BatchSet bool

	DoNothing    bool
	DoNothingSet bool

	MemoryPath    string
	MemoryBackend string

	Report  string
	LogFile string
	Color   string
}

// FileConfig 对应 organizer.json 的解析结构。
type FileConfig struct {
	Memory    *MemoryConfig `json:"memory"`
	Batch     *bool         `json:"batch"`
	DoNothing *bool         `json:"do_nothing"`
	LogFile   string        `json:"log_file"`
	Color     string        `json:"color"`
	Report    string        `json:"report"`
}

type MemoryConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// ConfigFile 是实际读取到的配置文件；未读取时为空。
	ConfigFile string

	Files []string

	Batch     bool
	DoNothing bool

	MemoryBackend string
	MemoryPath    string

	Report  string
	LogFile string
	Color   string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <userConfigDir>/organizer/organizer.json（可选）
//
// 覆盖优先级（固定）：CLI > 配置文件 > 内置默认。
// 路径字段：CLI 中的相对路径以 cwd 为基准；配置文件中的相对路径以配置文件所在目录为基准。
func LoadEffective(cwd, userConfigDir string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	appDir := filepath.Join(userConfigDir, AppDir)

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else if strings.TrimSpace(userConfigDir) != "" {
		cfgPath = filepath.Join(appDir, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	eff, err := merge(cwdAbs, appDir, cli, fc, cfgPath)
	if err != nil {
		return EffectiveConfig{}, err
	}
	if exists {
		eff.ConfigFile = cfgPath
	}
	return eff, nil
}

func merge(cwdAbs, appDir string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	cfgDir := filepath.Dir(cfgPath)

	batch := false
	if cli.BatchSet {
		batch = cli.Batch
	} else if fc.Batch != nil {
		batch = *fc.Batch
	}

	doNothing := false
	if cli.DoNothingSet {
		doNothing = cli.DoNothing
	} else if fc.DoNothing != nil {
		doNothing = *fc.DoNothing
	}

	// memory.backend：CLI > config > json
	backend := DefaultMemoryBackend
	if strings.TrimSpace(cli.MemoryBackend) != "" {
		backend = cli.MemoryBackend
	} else if fc.Memory != nil && strings.TrimSpace(fc.Memory.Backend) != "" {
		backend = fc.Memory.Backend
	}
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != "json" && backend != "sqlite" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("memory.backend 只能是 json 或 sqlite，实际是 %q", backend)}
	}

	// memory.path：CLI > config > <appDir>/memory.{json,db}
	memPath := ""
	switch {
	case strings.TrimSpace(cli.MemoryPath) != "":
		memPath = absCleanFrom(cwdAbs, cli.MemoryPath)
	case fc.Memory != nil && strings.TrimSpace(fc.Memory.Path) != "":
		memPath = absCleanFrom(cfgDir, fc.Memory.Path)
	default:
		if backend == "sqlite" {
			memPath = filepath.Join(appDir, "memory.db")
		} else {
			memPath = filepath.Join(appDir, "memory.json")
		}
	}
	if !filepath.IsAbs(memPath) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("无法确定 memory 路径（UserConfigDir 不可用？请使用 --memory 指定）")}
	}

	color := DefaultColor
	if strings.TrimSpace(cli.Color) != "" {
		color = cli.Color
	} else if strings.TrimSpace(fc.Color) != "" {
		color = fc.Color
	}
	color = strings.ToLower(strings.TrimSpace(color))
	switch color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("color 只能是 auto|always|never，实际是 %q", color)}
	}

	report := pickPath(cwdAbs, cli.Report, cfgDir, fc.Report)
	logFile := pickPath(cwdAbs, cli.LogFile, cfgDir, fc.LogFile)

	files := make([]string, 0, len(cli.Files))
	for _, f := range cli.Files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		files = append(files, absCleanFrom(cwdAbs, f))
	}

	return EffectiveConfig{
		Files:         files,
		Batch:         batch,
		DoNothing:     doNothing,
		MemoryBackend: backend,
		MemoryPath:    memPath,
		Report:        report,
		LogFile:       logFile,
		Color:         color,
	}, nil
}

// pickPath：CLI 值优先（相对 cwd），否则使用配置文件值（相对配置文件目录）。
func pickPath(cwdAbs, cliVal, cfgDir, fileVal string) string {
	if strings.TrimSpace(cliVal) != "" {
		return absCleanFrom(cwdAbs, cliVal)
	}
	if strings.TrimSpace(fileVal) != "" {
		return absCleanFrom(cfgDir, fileVal)
	}
	return ""
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

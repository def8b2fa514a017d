// Package logging 提供分级、可选着色、可选追加写文件的日志。
//
// 日志一律写 stderr：stdout 留给 RunReport JSON（非 TTY 时）和交互提示。
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/John-Robertt/organizer/internal/config"
)

const (
	red    = "\033[1;91m"
	green  = "\033[1;92m"
	yellow = "\033[1;93m"
	blue   = "\033[1;94m"
	cyan   = "\033[1;96m"
	reset  = "\033[0m"
)

type Options struct {
	// Out 为 nil 时使用 os.Stderr。
	Out     io.Writer
	Color   string // config.ColorAuto|ColorAlways|ColorNever
	File    string
	Verbose bool
}

type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	color   bool
	verbose bool
	file    *os.File

	now func() time.Time
}

// New 按 opts 初始化；设置了 File 时调用方需要 Close。
func New(opts Options) (*Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	l := &Logger{
		out:     out,
		color:   colorEnabled(opts.Color, out),
		verbose: opts.Verbose,
		now:     time.Now,
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// Discard 返回一个什么都不输出的 Logger（测试与库调用方使用）。
func Discard() *Logger {
	return &Logger{out: io.Discard, now: time.Now}
}

func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		f, ok := out.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return false
		}
		return os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, color, text string) {
	if l == nil {
		return
	}
	ts := l.now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + level + "] " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.color {
		_, _ = io.WriteString(l.out, ts+" "+color+"["+level+"]"+reset+" "+text+"\n")
	} else {
		_, _ = io.WriteString(l.out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.line("INFO", blue, fmt.Sprintf(format, args...))
}

// Success 用于“已移动”等结果行。
func (l *Logger) Success(format string, args ...any) {
	l.line("OK", green, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.line("WARN", yellow, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.line("ERROR", red, fmt.Sprintf(format, args...))
}

// Debug 只在 Verbose 时输出。
func (l *Logger) Debug(format string, args ...any) {
	if l == nil || !l.verbose {
		return
	}
	l.line("DEBUG", cyan, fmt.Sprintf(format, args...))
}

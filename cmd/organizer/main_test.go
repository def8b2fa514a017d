package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/organizer/internal/domain"
)

func touch(t *testing.T, p string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll 失败：%v", err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile 失败：%v", err)
	}
}

func writeJSON(t *testing.T, p string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal 失败：%v", err)
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("WriteFile 失败：%v", err)
	}
}

type result struct {
	code   int
	stdout string
	stderr string
}

// cli 在进程内执行一次命令；用户配置目录指向临时目录，避免读到本机配置。
func cli(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// fixture 准备一个待整理的剧集文件、一个已有剧集目录的媒体库，以及记住了目标目录的 memory 文件。
func fixture(t *testing.T) (src, lib, mem string) {
	t.Helper()
	root := t.TempDir()
	src = filepath.Join(root, "in", "GIGOLO.MARK.S01E02.avi")
	lib = filepath.Join(root, "lib")
	mem = filepath.Join(root, "memory.json")

	touch(t, src)
	touch(t, filepath.Join(lib, "Gigolo Mark", "Season 1", "mark"))
	writeJSON(t, mem, map[string]any{
		"destinations": map[string]string{"tv_show_episode": lib},
		"hints":        map[string]string{},
	})
	return src, lib, mem
}

func TestCLI_BatchNoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	src, lib, mem := fixture(t)

	r := cli(t, "", "--memory", mem, "-b", src)
	if r.code != exitOK {
		t.Fatalf("退出码应为 0，实际 %d\nstderr=%s", r.code, r.stderr)
	}

	var rr domain.RunReport
	if err := json.Unmarshal([]byte(r.stdout), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, r.stdout)
	}
	want := filepath.Join(lib, "Gigolo Mark", "Season 1", "GIGOLO.MARK.S01E02.avi")
	if len(rr.Items) != 1 || rr.Items[0].Dst != want || rr.Summary.Processed != 1 {
		t.Fatalf("RunReport 不符合预期：%+v", rr)
	}
	if rr.RunID == "" || !rr.Batch || rr.DryRun {
		t.Fatalf("RunReport 头部字段不符合预期：%+v", rr)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("文件应已移动：%v", err)
	}
	if !strings.Contains(r.stderr, "完成：processed=1") {
		t.Fatalf("stderr 缺少完成摘要：%q", r.stderr)
	}
}

func TestCLI_DoNothingTouchesNothing(t *testing.T) {
	src, _, _ := fixture(t)
	mem := filepath.Join(t.TempDir(), "sub", "memory.json")

	r := cli(t, "", "--memory", mem, "-b", "-n", src)
	if r.code != exitOK {
		t.Fatalf("退出码应为 0，实际 %d\nstderr=%s", r.code, r.stderr)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dry-run 不应移动文件：%v", err)
	}
	if _, err := os.Stat(mem); !os.IsNotExist(err) {
		t.Fatalf("dry-run 不应保存 memory：%v", err)
	}

	var rr domain.RunReport
	if err := json.Unmarshal([]byte(r.stdout), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, r.stdout)
	}
	if !rr.DryRun || rr.Summary.Skipped != 1 {
		t.Fatalf("没有记住目标目录时应跳过：%+v", rr)
	}
}

func TestCLI_DryRunPreviewGoesToStderr(t *testing.T) {
	src, _, mem := fixture(t)

	r := cli(t, "", "--memory", mem, "-b", "-n", src)
	if r.code != exitOK {
		t.Fatalf("退出码应为 0，实际 %d\nstderr=%s", r.code, r.stderr)
	}
	if !strings.Contains(r.stderr, "将移动 "+src) {
		t.Fatalf("动作预览应写到 stderr：%q", r.stderr)
	}
	if strings.Contains(r.stdout, "将移动") {
		t.Fatalf("stdout 只能包含 JSON：%q", r.stdout)
	}
}

func TestCLI_ConfigNotFound(t *testing.T) {
	src, _, mem := fixture(t)

	r := cli(t, "", "--config", filepath.Join(t.TempDir(), "missing.json"), "--memory", mem, "-b", src)
	if r.code != exitFail {
		t.Fatalf("退出码应为 1，实际 %d", r.code)
	}
	var rr domain.RunReport
	if err := json.Unmarshal([]byte(r.stdout), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, r.stdout)
	}
	if len(rr.Items) != 1 || rr.Items[0].ErrorCode != domain.ErrCodeConfigNotFound {
		t.Fatalf("应报告 config_not_found：%+v", rr.Items)
	}
}

func TestCLI_WritesReportFile(t *testing.T) {
	src, _, mem := fixture(t)
	report := filepath.Join(t.TempDir(), "out", "report.json")

	r := cli(t, "", "--memory", mem, "--report", report, "-b", src)
	if r.code != exitOK {
		t.Fatalf("退出码应为 0，实际 %d\nstderr=%s", r.code, r.stderr)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("应写出 report 文件：%v", err)
	}
	var rr domain.RunReport
	if err := json.Unmarshal(b, &rr); err != nil || rr.Summary.Processed != 1 {
		t.Fatalf("report 内容不符合预期：err=%v rr=%+v", err, rr)
	}
}

func TestCLI_InteractiveQuit(t *testing.T) {
	src, _, mem := fixture(t)

	r := cli(t, "q\n", "--memory", mem, src)
	if r.code != exitOK {
		t.Fatalf("退出码应为 0，实际 %d\nstderr=%s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "Gigolo Mark") || !strings.Contains(r.stdout, ">>> ") {
		t.Fatalf("交互模式应展示猜测并提示输入：%q", r.stdout)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("退出时不应移动文件：%v", err)
	}
}

func TestCLI_UsageError(t *testing.T) {
	r := cli(t, "")
	if r.code != exitUsage {
		t.Fatalf("缺少参数时退出码应为 2，实际 %d", r.code)
	}
	r = cli(t, "", "--no-such-flag", "a.avi")
	if r.code != exitUsage {
		t.Fatalf("未知参数时退出码应为 2，实际 %d", r.code)
	}
}

func TestCLI_Classify(t *testing.T) {
	src, _, _ := fixture(t)

	r := cli(t, "", "classify", "--scores", src)
	if r.code != exitOK {
		t.Fatalf("退出码应为 0，实际 %d\nstderr=%s", r.code, r.stderr)
	}
	for _, want := range []string{"tv_show_episode", "GIGOLO.MARK / Season 1", "movie_file"} {
		if !strings.Contains(r.stdout, want) {
			t.Fatalf("输出缺少 %q：%q", want, r.stdout)
		}
	}
}

func TestCLI_MemoryShowAndForget(t *testing.T) {
	_, lib, mem := fixture(t)
	writeJSON(t, mem, map[string]any{
		"destinations": map[string]string{"tv_show_episode": lib},
		"hints":        map[string]string{"GIGOLO.MARK": "Gigolo Mark"},
	})

	r := cli(t, "", "--memory", mem, "memory", "show")
	if r.code != exitOK || !strings.Contains(r.stdout, "GIGOLO.MARK => Gigolo Mark") || !strings.Contains(r.stdout, lib) {
		t.Fatalf("memory show 输出不符合预期（code=%d）：%q", r.code, r.stdout)
	}

	r = cli(t, "", "--memory", mem, "memory", "forget-hint", "GIGOLO.MARK")
	if r.code != exitOK {
		t.Fatalf("forget-hint 失败（code=%d）：%s", r.code, r.stderr)
	}
	r = cli(t, "", "--memory", mem, "memory", "forget-destination", "tv_show_episode")
	if r.code != exitOK {
		t.Fatalf("forget-destination 失败（code=%d）：%s", r.code, r.stderr)
	}

	r = cli(t, "", "--memory", mem, "memory", "show")
	if !strings.Contains(r.stdout, "memory 为空") {
		t.Fatalf("忘记后 memory 应为空：%q", r.stdout)
	}

	r = cli(t, "", "--memory", mem, "memory", "forget-destination", "bogus")
	if r.code != exitUsage {
		t.Fatalf("未知类型应报参数错误，实际 %d", r.code)
	}
}

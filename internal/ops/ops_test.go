package ops

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
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

func TestFSOperator_OrganizeContainer(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	container := filepath.Join(in, "Bones X")
	video := filepath.Join(container, "Bones S08E02.avi")
	touch(t, video)
	touch(t, filepath.Join(container, "sample.txt"))

	var op Operator = FSOperator{}
	dstDir := filepath.Join(out, "Bones", "Season 8")
	dst := filepath.Join(dstDir, "Bones S08E02.avi")

	if err := op.TakeOwnership(container); err != nil {
		t.Fatalf("TakeOwnership 失败：%v", err)
	}
	if err := op.CreateDirectories(dstDir); err != nil {
		t.Fatalf("CreateDirectories 失败：%v", err)
	}
	if err := op.MoveFile(video, dst); err != nil {
		t.Fatalf("MoveFile 失败：%v", err)
	}
	if err := op.Remove(container); err != nil {
		t.Fatalf("Remove 失败：%v", err)
	}

	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("目标文件不存在：%v", err)
	}
	if _, err := os.Stat(container); !os.IsNotExist(err) {
		t.Fatalf("容器应被删除：%v", err)
	}
}

func TestFSOperator_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.avi")
	dst := filepath.Join(dir, "out", "a.avi")
	touch(t, src)
	touch(t, dst)

	err := FSOperator{}.MoveFile(src, dst)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("期望 os.ErrExist，实际：%v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("源文件不应被移动：%v", err)
	}
}

func TestFSOperator_RemoveRoot(t *testing.T) {
	if err := (FSOperator{}).Remove(string(filepath.Separator)); err == nil {
		t.Fatalf("删除根目录应被拒绝")
	}
}

func TestReportOperator_TouchesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.avi")
	touch(t, src)
	dstDir := filepath.Join(dir, "Movies")
	dst := filepath.Join(dstDir, "a.avi")

	var buf bytes.Buffer
	var op Operator = ReportOperator{W: &buf}
	if err := op.CreateDirectories(dstDir); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := op.TakeOwnership(src); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := op.MoveFile(src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := op.Remove(src); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if _, err := os.Stat(dstDir); !os.IsNotExist(err) {
		t.Fatalf("dry-run 不应创建目录：%v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dry-run 不应移动/删除：%v", err)
	}
	out := buf.String()
	for _, want := range []string{"将创建目录 " + dstDir, "将移动 " + src, "到 " + dst, "将删除 " + src} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
}

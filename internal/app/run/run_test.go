package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/memory"
	"github.com/John-Robertt/organizer/internal/nature"
	"github.com/John-Robertt/organizer/internal/ops"
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

func dirtree(t *testing.T, paths ...string) string {
	t.Helper()
	d := t.TempDir()
	for _, p := range paths {
		touch(t, filepath.Join(d, filepath.FromSlash(p)))
	}
	return d
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func remembering(t *testing.T, kind domain.Kind, dest string) *memory.Table {
	t.Helper()
	mem := memory.NewTable()
	if err := mem.RememberDestination(kind, dest); err != nil {
		t.Fatalf("RememberDestination 失败：%v", err)
	}
	return mem
}

func onlyItem(t *testing.T, rr domain.RunReport) domain.ItemResult {
	t.Helper()
	if len(rr.Items) != 1 {
		t.Fatalf("期望 1 条结果，实际 %d：%+v", len(rr.Items), rr.Items)
	}
	return rr.Items[0]
}

type recorder struct {
	started  []StartInfo
	done     []int
	finished int
}

func (r *recorder) OnStart(info StartInfo) { r.started = append(r.started, info) }
func (r *recorder) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	r.done = append(r.done, idx)
}
func (r *recorder) OnFinish(rr domain.RunReport) { r.finished++ }

func TestBatch_MovesIntoExistingTree(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	dst := dirtree(t, "Gigolo Mark/Season 1/mark", "Gigolo Mark/Season 2/mark")
	src := filepath.Join(org, "GIGOLO.MARK.S01E02.avi")

	rec := &recorder{}
	rr := Batch(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   remembering(t, domain.KindTVShowEpisode, dst),
		Operator: ops.FSOperator{},
		Observer: rec,
	}, []string{src, src})

	it := onlyItem(t, rr)
	want := filepath.Join(dst, "Gigolo Mark", "Season 1", "GIGOLO.MARK.S01E02.avi")
	if it.Status != domain.StatusProcessed || it.Dst != want {
		t.Fatalf("结果不符合预期：%+v", it)
	}
	if it.Nature != string(domain.KindTVShowEpisode) || it.Confidence <= 0 {
		t.Fatalf("应记录分类结果：%+v", it)
	}
	if exists(src) || !exists(want) {
		t.Fatalf("文件应已移动到 %q", want)
	}
	if rr.RunID == "" || !rr.Batch || rr.Summary.Processed != 1 {
		t.Fatalf("RunReport 不符合预期：%+v", rr)
	}
	if len(rec.started) != 1 || rec.started[0].Total != 1 || len(rec.done) != 1 || rec.finished != 1 {
		t.Fatalf("observer 事件不符合预期：%+v", rec)
	}
}

func TestBatch_DryRunTouchesNothing(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	dst := dirtree(t, "Gigolo Mark/Season 1/mark")
	src := filepath.Join(org, "GIGOLO.MARK.S01E02.avi")

	var buf bytes.Buffer
	rr := Batch(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   remembering(t, domain.KindTVShowEpisode, dst),
		Operator: ops.ReportOperator{W: &buf},
		DryRun:   true,
	}, []string{src})

	it := onlyItem(t, rr)
	if it.Status != domain.StatusProcessed {
		t.Fatalf("dry-run 也应报告为 processed：%+v", it)
	}
	if !rr.DryRun {
		t.Fatalf("RunReport 应标记 dry_run")
	}
	if !exists(src) || exists(it.Dst) {
		t.Fatalf("dry-run 不应移动文件")
	}
	if !strings.Contains(buf.String(), "将移动 "+src) {
		t.Fatalf("dry-run 应打印将要执行的动作：%q", buf.String())
	}
}

func TestBatch_SkipsUnknownDestination(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	src := filepath.Join(org, "GIGOLO.MARK.S01E02.avi")

	rr := Batch(context.Background(), Options{
		Registry: nature.Default(),
		Operator: ops.FSOperator{},
	}, []string{src})

	it := onlyItem(t, rr)
	if it.Status != domain.StatusSkipped || it.ErrorCode != domain.ErrCodeUnknownDestination || it.Dst != "" {
		t.Fatalf("没有目标目录时应跳过：%+v", it)
	}
	if !exists(src) {
		t.Fatalf("跳过的文件不应被移动")
	}
}

func TestBatch_NeverCreatesDirectories(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	dst := dirtree(t, "unrelated")
	src := filepath.Join(org, "GIGOLO.MARK.S01E02.avi")

	rr := Batch(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   remembering(t, domain.KindTVShowEpisode, dst),
		Operator: ops.FSOperator{},
	}, []string{src})

	it := onlyItem(t, rr)
	if it.Status != domain.StatusSkipped || it.ErrorCode != domain.ErrCodeUnknownDestination {
		t.Fatalf("目标容器不存在时应跳过：%+v", it)
	}
	if it.Dst != filepath.Join(dst, "GIGOLO.MARK", "Season 1", "GIGOLO.MARK.S01E02.avi") {
		t.Fatalf("跳过时仍应给出推测的目标路径：%q", it.Dst)
	}
	if exists(filepath.Join(dst, "GIGOLO.MARK")) {
		t.Fatalf("批量模式不应创建目录")
	}
}

func TestBatch_AlreadyOrganized(t *testing.T) {
	dst := dirtree(t, "Gigolo Mark/Season 1/GIGOLO.MARK.S01E02.avi")
	src := filepath.Join(dst, "Gigolo Mark", "Season 1", "GIGOLO.MARK.S01E02.avi")

	rr := Batch(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   remembering(t, domain.KindTVShowEpisode, dst),
		Operator: ops.FSOperator{},
	}, []string{src})

	it := onlyItem(t, rr)
	if it.Status != domain.StatusSkipped || it.ErrorCode != domain.ErrCodeAlreadyOrganized {
		t.Fatalf("重复运行应跳过：%+v", it)
	}
	if !exists(src) {
		t.Fatalf("文件不应被改动")
	}
}

func TestBatch_RemovesEpisodeContainer(t *testing.T) {
	org := dirtree(t, "Sample/Bones S01E01.avi")
	dst := dirtree(t, "Bones/Season 1/other.avi")

	rr := Batch(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   remembering(t, domain.KindTVShowContainer, dst),
		Operator: ops.FSOperator{},
	}, []string{filepath.Join(org, "Sample")})

	it := onlyItem(t, rr)
	want := filepath.Join(dst, "Bones", "Season 1", "Bones S01E01.avi")
	if it.Status != domain.StatusProcessed || it.Dst != want {
		t.Fatalf("结果不符合预期：%+v", it)
	}
	if !exists(want) {
		t.Fatalf("内部视频应已移动")
	}
	if exists(filepath.Join(org, "Sample")) {
		t.Fatalf("原容器应在移动后删除")
	}
}

func TestBatch_TargetExistsIsConflict(t *testing.T) {
	org := dirtree(t, "Sample/movie.avi")
	dst := dirtree(t, "Sample/movie.avi")

	rr := Batch(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   remembering(t, domain.KindMovieFolder, dst),
		Operator: ops.FSOperator{},
	}, []string{filepath.Join(org, "Sample")})

	it := onlyItem(t, rr)
	if it.Status != domain.StatusFailed || it.ErrorCode != domain.ErrCodeTargetConflict {
		t.Fatalf("目标已存在时应失败为 target_conflict：%+v", it)
	}
	if !exists(filepath.Join(org, "Sample", "movie.avi")) {
		t.Fatalf("冲突时源文件不应被改动")
	}
}

func TestBatch_StopsWhenCanceled(t *testing.T) {
	org := dirtree(t, "a.avi", "b.avi")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	rr := Batch(ctx, Options{Registry: nature.Default(), Observer: rec},
		[]string{filepath.Join(org, "a.avi"), filepath.Join(org, "b.avi")})
	if len(rr.Items) != 0 || rec.finished != 1 {
		t.Fatalf("取消后不应再处理文件：%+v", rr.Items)
	}
}

func TestInteractive_SetDestinationAndProceed(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	dst := dirtree(t, "Gigolo Mark/Season 1/mark")
	src := filepath.Join(org, "GIGOLO.MARK.S01E02.avi")
	mem := memory.NewTable()

	var out bytes.Buffer
	in := strings.NewReader("x\nd\n" + dst + "\n\n")
	rr, err := Interactive(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   mem,
		Operator: ops.FSOperator{},
	}, []string{src}, in, &out)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	it := onlyItem(t, rr)
	want := filepath.Join(dst, "Gigolo Mark", "Season 1", "GIGOLO.MARK.S01E02.avi")
	if it.Status != domain.StatusProcessed || it.Dst != want || !exists(want) {
		t.Fatalf("结果不符合预期：%+v", it)
	}
	if !strings.Contains(out.String(), "无效的选择") {
		t.Fatalf("无效输入应提示后重新询问：%q", out.String())
	}
	if got, _ := mem.RecallDestination(domain.KindTVShowEpisode); got != dst {
		t.Fatalf("应记住该类型的目标目录：%q", got)
	}
}

func TestInteractive_OverrideIsRemembered(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	dst := dirtree(t, "unrelated")
	src := filepath.Join(org, "GIGOLO.MARK.S01E02.avi")
	mem := remembering(t, domain.KindTVShowEpisode, dst)

	in := strings.NewReader("1\nGigolo Mark\n\n")
	rr, err := Interactive(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   mem,
		Operator: ops.FSOperator{},
	}, []string{src}, in, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	it := onlyItem(t, rr)
	want := filepath.Join(dst, "Gigolo Mark", "Season 1", "GIGOLO.MARK.S01E02.avi")
	if it.Status != domain.StatusProcessed || it.Dst != want || !exists(want) {
		t.Fatalf("交互模式应按需创建目录并移动：%+v", it)
	}
	if got, _ := mem.RecallHint("GIGOLO.MARK"); got != "Gigolo Mark" {
		t.Fatalf("应记住 hint 替换：%q", got)
	}
}

func TestInteractive_QuitStopsEverything(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi", "Bones.S01E01.avi")
	dst := dirtree(t, "unrelated")
	mem := remembering(t, domain.KindTVShowEpisode, dst)

	in := strings.NewReader("1\nGigolo Mark\nq\n")
	rr, err := Interactive(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   mem,
		Operator: ops.FSOperator{},
	}, []string{filepath.Join(org, "GIGOLO.MARK.S01E02.avi"), filepath.Join(org, "Bones.S01E01.avi")}, in, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(rr.Items) != 0 {
		t.Fatalf("退出后不应产生结果：%+v", rr.Items)
	}
	if _, ok := mem.RecallHint("GIGOLO.MARK"); ok {
		t.Fatalf("退出时不应写 memory")
	}
	if !exists(filepath.Join(org, "GIGOLO.MARK.S01E02.avi")) || !exists(filepath.Join(org, "Bones.S01E01.avi")) {
		t.Fatalf("退出时不应移动任何文件")
	}
}

func TestInteractive_ProceedWithoutDestinationSkips(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	src := filepath.Join(org, "GIGOLO.MARK.S01E02.avi")

	rr, err := Interactive(context.Background(), Options{
		Registry: nature.Default(),
		Operator: ops.FSOperator{},
	}, []string{src}, strings.NewReader("\n"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	it := onlyItem(t, rr)
	if it.Status != domain.StatusSkipped || it.ErrorCode != domain.ErrCodeUserSkipped {
		t.Fatalf("没有目标目录时应跳过：%+v", it)
	}
	if !exists(src) {
		t.Fatalf("跳过的文件不应被移动")
	}
}

func TestInteractive_EOFIsQuit(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")

	rr, err := Interactive(context.Background(), Options{Registry: nature.Default()},
		[]string{filepath.Join(org, "GIGOLO.MARK.S01E02.avi")}, strings.NewReader(""), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("输入结束应视为退出：%v", err)
	}
	if len(rr.Items) != 0 {
		t.Fatalf("不应产生结果：%+v", rr.Items)
	}
}

func TestInteractive_DryRunLearnsNothing(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi", "GIGOLO.MARK.S01E03.avi")
	dst := dirtree(t, "unrelated")
	mem := memory.NewTable()

	// 第一个文件：设置目标目录并覆盖剧名后继续；第二个文件：直接继续。
	in := strings.NewReader("d\n" + dst + "\n1\nGigolo Mark\n\n\n")
	rr, err := Interactive(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   mem,
		Operator: ops.ReportOperator{W: &bytes.Buffer{}},
		DryRun:   true,
	}, []string{filepath.Join(org, "GIGOLO.MARK.S01E02.avi"), filepath.Join(org, "GIGOLO.MARK.S01E03.avi")}, in, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(rr.Items) != 2 {
		t.Fatalf("期望 2 条结果：%+v", rr.Items)
	}

	first, second := rr.Items[0], rr.Items[1]
	if first.Status != domain.StatusProcessed || first.Dst != filepath.Join(dst, "Gigolo Mark", "Season 1", "GIGOLO.MARK.S01E02.avi") {
		t.Fatalf("第一个文件的预览不符合预期：%+v", first)
	}
	if second.Status != domain.StatusSkipped || second.ErrorCode != domain.ErrCodeUserSkipped {
		t.Fatalf("dry-run 中第一个文件的选择不应影响第二个文件：%+v", second)
	}
	if mem.Len() != 0 {
		t.Fatalf("dry-run 不应写 memory：%v %v", mem.Destinations(), mem.Hints())
	}
}

func TestInteractive_ValuesAreKeptVerbatim(t *testing.T) {
	org := dirtree(t, "GIGOLO.MARK.S01E02.avi")
	dst := dirtree(t, "unrelated")
	mem := remembering(t, domain.KindTVShowEpisode, dst)

	// 菜单选择可以带空白；目录名按输入原样使用。
	in := strings.NewReader("  1 \n Gigolo Mark \n\n")
	rr, err := Interactive(context.Background(), Options{
		Registry: nature.Default(),
		Memory:   mem,
		Operator: ops.ReportOperator{W: &bytes.Buffer{}},
		DryRun:   true,
	}, []string{filepath.Join(org, "GIGOLO.MARK.S01E02.avi")}, in, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	it := onlyItem(t, rr)
	if it.Dst != filepath.Join(dst, " Gigolo Mark ", "Season 1", "GIGOLO.MARK.S01E02.avi") {
		t.Fatalf("目录名应按原样使用：%q", it.Dst)
	}
}

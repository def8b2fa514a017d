package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/organizer/internal/app/run"
	"github.com/John-Robertt/organizer/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是批量模式下的简洁终端进度输出。
//
// 所有内容写到 stderr，不污染 stdout 的 JSON 输出契约；run 层只发事件，这里决定如何展示。
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time
	now       func() time.Time
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w, now: time.Now}
}

func (p *progressUI) OnStart(info run.StartInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = p.now()
	mode := "move"
	if info.DryRun {
		mode = "dry-run (不移动/不保存 memory)"
	}
	fmt.Fprintf(p.w, "[%s] organizer 批量整理 %d 个路径 (%s)\n", p.startedAt.Format("15:04:05"), info.Total, mode)
	fmt.Fprintf(p.w, "  run_id: %s\n\n", info.RunID)
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch res.Status {
	case domain.StatusProcessed:
		fmt.Fprintf(p.w, "[%d/%d] OK %s -> %s (%s)\n",
			idx, total, res.Src, res.Dst, formatShortDuration(dur),
		)
	case domain.StatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] SKIP %s: %s (%s)\n",
			idx, total, res.Src, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	default:
		fmt.Fprintf(p.w, "[%d/%d] FAIL %s %s: %s (%s)\n",
			idx, total, res.Src, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	}
}

func (p *progressUI) OnFinish(rr domain.RunReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\n用时 %s\n", formatElapsed(p.now().Sub(p.startedAt)))
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

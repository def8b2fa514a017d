package run

import (
	"context"
	"fmt"
	"time"

	"github.com/John-Robertt/organizer/internal/app"
	"github.com/John-Robertt/organizer/internal/domain"
)

// Batch 非交互地整理 files，并返回对外稳定的 RunReport。
//
// 批量模式从不创建新的目录层级：最终路径所在目录不存在（或目标目录未知）的文件一律跳过。
// 单个文件的错误只会让该文件失败；ctx 取消后在两个文件之间停止。
func Batch(ctx context.Context, opts Options, files []string) domain.RunReport {
	o := opts.withDefaults()
	files = app.DedupPaths(files)

	rr := newReport(o, true, len(files))
	if o.Observer != nil {
		o.Observer.OnStart(StartInfo{RunID: o.RunID, Total: len(files), DryRun: o.DryRun, Batch: true})
	}

	for i, f := range files {
		if ctx.Err() != nil {
			o.Log.Warn("已取消：剩余 %d 个文件未处理", len(files)-i)
			break
		}
		started := time.Now()
		res := batchOne(o, f)
		rr.Items = append(rr.Items, res)
		logResult(o, res)
		if o.Observer != nil {
			o.Observer.OnItemDone(i+1, len(files), res, time.Since(started))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	if o.Observer != nil {
		o.Observer.OnFinish(rr)
	}
	return rr
}

func batchOne(o Options, path string) domain.ItemResult {
	a, res, ok := begin(o, path)
	if !ok {
		return res
	}

	if dst, ok := a.FinalPath(); ok {
		res.Dst = dst
	}
	if !a.ContainerExists() {
		if res.Dst == "" {
			skip(&res, domain.ErrCodeUnknownDestination, "目标目录未知，跳过")
		} else {
			c, _ := a.ContainerOfFinalPath()
			skip(&res, domain.ErrCodeUnknownDestination, fmt.Sprintf("目标目录 %s 不存在，跳过", c))
		}
		return res
	}

	commit(o, a, &res)
	return res
}

func logResult(o Options, res domain.ItemResult) {
	switch res.Status {
	case domain.StatusProcessed:
		o.Log.Success("%s -> %s", res.Src, res.Dst)
	case domain.StatusSkipped:
		o.Log.Info("跳过 %s：%s", res.Src, res.ErrorMsg)
	case domain.StatusFailed:
		o.Log.Error("%s：%s（%s）", res.Src, res.ErrorMsg, res.ErrorCode)
	}
}

package run

import (
	"time"

	"github.com/John-Robertt/organizer/internal/domain"
)

// StartInfo 描述一次运行的基本信息（OnStart 时给出）。
type StartInfo struct {
	RunID  string
	Total  int
	DryRun bool
	Batch  bool
}

// Observer 用于把“运行进度/条目结果”从核心执行流程中解耦出来。
//
// 约束：run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
type Observer interface {
	// OnStart 在处理第一个文件之前调用。
	OnStart(info StartInfo)
	// OnItemDone 在某个文件处理完成时调用（用于每条结果的一行输出）。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
	// OnFinish 在 RunReport Finalize 之后调用。
	OnFinish(rr domain.RunReport)
}

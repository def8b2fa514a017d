package run

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/organizer/internal/app/planner"
	"github.com/John-Robertt/organizer/internal/assistant"
	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/infra/fsx"
	"github.com/John-Robertt/organizer/internal/logging"
	"github.com/John-Robertt/organizer/internal/memory"
	"github.com/John-Robertt/organizer/internal/nature"
	"github.com/John-Robertt/organizer/internal/ops"
	"github.com/John-Robertt/organizer/internal/scheme"
)

// Options 是 Batch/Interactive 共用的依赖。
type Options struct {
	Registry nature.Registry
	Memory   memory.Memory
	Operator ops.Operator

	// DryRun 只写入 RunReport；真正的“不落盘”由 Operator（ReportOperator）与 memory 后端的只读模式保证。
	DryRun bool

	Log      *logging.Logger
	Observer Observer

	// RunID 为空时自动生成。
	RunID string
}

func (o Options) withDefaults() Options {
	if o.Memory == nil {
		o.Memory = memory.NoMemory{}
	}
	if o.Operator == nil {
		o.Operator = ops.ReportOperator{}
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	return o
}

func newReport(o Options, batch bool, capacity int) domain.RunReport {
	return domain.RunReport{
		RunID:     o.RunID,
		DryRun:    o.DryRun,
		Batch:     batch,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, capacity),
	}
}

// begin 创建并启动一个 assistant 会话；失败时返回已填好错误信息的 ItemResult。
func begin(o Options, path string) (*assistant.Assistant, domain.ItemResult, bool) {
	res := domain.ItemResult{Src: path, Status: domain.StatusProcessed}

	a, err := assistant.New(o.Registry, o.Memory, path)
	if err != nil {
		fail(&res, domain.ErrCodeClassifyFailed, err)
		return nil, res, false
	}
	if err := a.Begin(); err != nil {
		// Begin 失败时分类结果可能已经有了（例如记住的目标目录失效），尽量带上。
		fillNature(&res, a)
		fail(&res, errorCode(err, domain.ErrCodeClassifyFailed), err)
		return nil, res, false
	}
	fillNature(&res, a)
	return a, res, true
}

func fillNature(res *domain.ItemResult, a *assistant.Assistant) {
	n := a.Nature()
	if n.Kind == "" {
		return
	}
	res.Nature = string(n.Kind)
	res.Confidence = n.Confidence
}

// commit 规划并执行一次移动，成功后把会话学到的东西写回 memory。
//
// 执行顺序固定：取得属主 → 建目录 → 移动 → 删除旧容器 → 写 memory。
// 任一步失败都只影响当前文件；memory 只在真正移动成功后写入（dry-run 从不写入）。
func commit(o Options, a *assistant.Assistant, res *domain.ItemResult) {
	plan, err := planner.PlanMove(a)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrUnknownDestination):
			skip(res, domain.ErrCodeUnknownDestination, "目标目录未知，跳过")
		case errors.Is(err, planner.ErrAlreadyOrganized):
			res.Dst = res.Src
			skip(res, domain.ErrCodeAlreadyOrganized, "已在目标位置，跳过")
		default:
			fail(res, domain.ErrCodeTargetConflict, err)
		}
		return
	}
	res.Dst = plan.Dst

	if err := o.Operator.TakeOwnership(plan.Src); err != nil {
		// best-effort：取得属主失败不阻止移动（没有权限时移动本身会失败）。
		o.Log.Warn("取得属主失败：%s：%v", plan.Src, err)
	}
	if err := o.Operator.CreateDirectories(plan.Container); err != nil {
		fail(res, errorCode(err, domain.ErrCodeIOFailed), fmt.Errorf("创建目录失败：%w", err))
		return
	}
	if err := o.Operator.MoveFile(plan.Src, plan.Dst); err != nil {
		fail(res, errorCode(err, domain.ErrCodeMoveFailed), err)
		return
	}

	if plan.RemoveAfter != "" {
		if err := o.Operator.Remove(plan.RemoveAfter); err != nil {
			// 文件已经移走：仍然记住本次选择，但把条目标记为失败以便用户手动清理。
			fail(res, domain.ErrCodeIOFailed, fmt.Errorf("已移动，但删除原容器失败：%w", err))
		}
	}

	// dry-run 没有真正移动：学到的东西也不能影响同一次运行中后面的文件。
	if o.DryRun {
		return
	}
	if err := a.Persist(); err != nil {
		fail(res, errorCode(err, domain.ErrCodeInvalidMemoryWrite), err)
	}
}

func skip(res *domain.ItemResult, code, msg string) {
	res.Status = domain.StatusSkipped
	res.ErrorCode = code
	res.ErrorMsg = msg
}

func fail(res *domain.ItemResult, code string, err error) {
	res.Status = domain.StatusFailed
	res.ErrorCode = code
	res.ErrorMsg = err.Error()
}

// errorCode 把已知错误映射为稳定的 error_code；无法识别时返回 fallback。
func errorCode(err error, fallback string) string {
	switch {
	case scheme.IsBindingError(err):
		return domain.ErrCodeTemplateBinding
	case errors.Is(err, memory.ErrRelativeDestination):
		return domain.ErrCodeInvalidMemoryWrite
	case fsx.IsPathTypeConflict(err), errors.Is(err, os.ErrExist):
		return domain.ErrCodeTargetConflict
	case fsx.IsCrossDevice(err):
		return domain.ErrCodeMoveFailed
	default:
		return fallback
	}
}

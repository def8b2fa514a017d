package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

const (
	ErrCodeUnknownDestination = "unknown_destination"
	ErrCodeAlreadyOrganized   = "already_organized"
	ErrCodeClassifyFailed     = "classify_failed"
	ErrCodeTemplateBinding    = "template_binding"
	ErrCodeInvalidMemoryWrite = "invalid_memory_write"
	ErrCodeTargetConflict     = "target_conflict"
	ErrCodeIOFailed           = "io_failed"
	ErrCodeMoveFailed         = "move_failed"
	ErrCodeUserSkipped        = "user_skipped"
	ErrCodeConfigNotFound     = "config_not_found"
	ErrCodeConfigInvalid      = "config_invalid"
)

// RunReport 是对外稳定输出（--report 文件 / 非 TTY 的 stdout JSON）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	DryRun bool   `json:"dry_run"`
	Batch  bool   `json:"batch"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ItemResult 对应一个输入路径的整理结果。
type ItemResult struct {
	Src        string  `json:"src"`
	Dst        string  `json:"dst"`
	Nature     string  `json:"nature"`
	Confidence float64 `json:"confidence"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 src 字典序；src=="" 的合成条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Items == nil {
		r.Items = []ItemResult{}
	}

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Src
		b := r.Items[j].Src
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}

// Package statushttp 暴露运行状态的只读 HTTP 面板：健康检查、
// 执行计数与最近若干次执行的摘要。
package statushttp

import (
	"sync"
	"time"

	"sigbridge/internal/executor/bracket"
)

const recentCapacity = 50

// ExecutionRecord 是单次执行的摘要，供 /api/status 返回。
type ExecutionRecord struct {
	Time      time.Time `json:"time"`
	Pair      string    `json:"pair"`
	Direction string    `json:"direction"`
	Symbol    string    `json:"symbol,omitempty"`
	DryRun    bool      `json:"dry_run,omitempty"`
	Partial   bool      `json:"partial,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Counters 按结果分类累计执行次数。
type Counters struct {
	Total   int64 `json:"total"`
	Filled  int64 `json:"filled"`
	Partial int64 `json:"partial"`
	Failed  int64 `json:"failed"`
	DryRun  int64 `json:"dry_run"`
}

// Tracker 线程安全地累积执行结果，保留最近 N 条摘要。
type Tracker struct {
	mu        sync.Mutex
	startedAt time.Time
	counters  Counters
	recent    []ExecutionRecord
}

func NewTracker() *Tracker {
	return &Tracker{startedAt: time.Now()}
}

// Record 实现执行结果回调。err 非空表示致命失败（res 可能为 nil）。
func (t *Tracker) Record(res *bracket.BracketResult, err error) {
	rec := ExecutionRecord{Time: time.Now()}
	if res != nil {
		rec.Pair = res.Signal.Pair
		rec.Direction = string(res.Signal.Direction)
		rec.Symbol = res.Intent.Symbol
		rec.DryRun = res.DryRun
		rec.Partial = res.PartialFailure()
	}
	if err != nil {
		rec.Error = err.Error()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.counters.Total++
	switch {
	case err != nil:
		t.counters.Failed++
	case res != nil && res.DryRun:
		t.counters.DryRun++
	case res != nil && res.PartialFailure():
		t.counters.Partial++
	default:
		t.counters.Filled++
	}
	t.recent = append(t.recent, rec)
	if len(t.recent) > recentCapacity {
		t.recent = t.recent[len(t.recent)-recentCapacity:]
	}
}

// Snapshot 返回计数与最近记录的副本（最新在前）。
func (t *Tracker) Snapshot() (Counters, []ExecutionRecord, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ExecutionRecord, len(t.recent))
	for i, rec := range t.recent {
		out[len(t.recent)-1-i] = rec
	}
	return t.counters, out, t.startedAt
}

package service

import (
	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/offline"
)

// ConnectivitySignal 连通性信号来源
type ConnectivitySignal interface {
	Online() bool
	ReportFailure(err error)
	ReportSuccess()
}

// OfflineQueue 离线同步队列写入端
type OfflineQueue interface {
	EnqueueSync(entryType, action string, payload interface{}) (*localstore.SyncEntry, error)
}

// MutationResult 乐观变更结果
type MutationResult struct {
	Queued  bool // 变更进入离线队列等待回放
	EntryID uint // 队列条目 ID，Queued 为 false 时为 0
}

// applyOptimistic 统一的乐观变更路径：在线时直接写主库，
// 离线或命中网络错误时把变更写入同步队列。业务错误原样上抛。
func applyOptimistic(signal ConnectivitySignal, queue OfflineQueue, entryType, action string, payload interface{}, mutate func() error) (MutationResult, error) {
	enqueue := func() (MutationResult, error) {
		if queue == nil {
			return MutationResult{}, ErrOfflineUnavailable
		}
		entry, err := queue.EnqueueSync(entryType, action, payload)
		if err != nil {
			return MutationResult{}, err
		}
		logger.Infow("mutation_queued_offline",
			"type", entryType,
			"action", action,
			"entry_id", entry.ID)
		return MutationResult{Queued: true, EntryID: entry.ID}, nil
	}

	if signal != nil && !signal.Online() {
		return enqueue()
	}

	err := mutate()
	if err == nil {
		if signal != nil {
			signal.ReportSuccess()
		}
		return MutationResult{}, nil
	}
	if offline.IsNetError(err) {
		if signal != nil {
			signal.ReportFailure(err)
		}
		return enqueue()
	}
	return MutationResult{}, err
}

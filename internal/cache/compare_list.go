package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/velo-shop/internal/constants"
)

const compareListTTL = 7 * 24 * time.Hour

// CompareList 对比清单快照
// 商品 ID 按加入顺序保存，容量上限由调用方校验
type CompareList struct {
	SessionID  string `json:"session_id"`
	ProductIDs []uint `json:"product_ids"`
	UpdatedAt  int64  `json:"updated_at"`
}

func compareListKey(sessionID string) string {
	return fmt.Sprintf("compare:%s", sessionID)
}

// Redis 未启用时退化为进程内存储，供开发与测试环境使用
var (
	compareFallbackMu sync.RWMutex
	compareFallback   = map[string]*CompareList{}
)

// GetCompareList 获取对比清单，不存在时返回空清单
func GetCompareList(ctx context.Context, sessionID string) (*CompareList, error) {
	if sessionID == "" {
		return &CompareList{}, nil
	}
	if !Enabled() {
		compareFallbackMu.RLock()
		defer compareFallbackMu.RUnlock()
		if list, ok := compareFallback[sessionID]; ok {
			clone := *list
			clone.ProductIDs = append([]uint(nil), list.ProductIDs...)
			return &clone, nil
		}
		return &CompareList{SessionID: sessionID}, nil
	}
	var list CompareList
	hit, err := GetJSON(ctx, compareListKey(sessionID), &list)
	if err != nil {
		return nil, err
	}
	if !hit {
		return &CompareList{SessionID: sessionID}, nil
	}
	return &list, nil
}

// SetCompareList 写入对比清单
func SetCompareList(ctx context.Context, list *CompareList) error {
	if list == nil || list.SessionID == "" {
		return nil
	}
	if len(list.ProductIDs) > constants.CompareLimit {
		list.ProductIDs = list.ProductIDs[:constants.CompareLimit]
	}
	list.UpdatedAt = time.Now().Unix()
	if !Enabled() {
		compareFallbackMu.Lock()
		defer compareFallbackMu.Unlock()
		clone := *list
		clone.ProductIDs = append([]uint(nil), list.ProductIDs...)
		compareFallback[list.SessionID] = &clone
		return nil
	}
	return SetJSON(ctx, compareListKey(list.SessionID), list, compareListTTL)
}

// DelCompareList 清空对比清单
func DelCompareList(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if !Enabled() {
		compareFallbackMu.Lock()
		defer compareFallbackMu.Unlock()
		delete(compareFallback, sessionID)
		return nil
	}
	return Del(ctx, compareListKey(sessionID))
}

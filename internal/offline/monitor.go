package offline

import (
	"context"
	"sync"
	"time"

	"github.com/velo-shop/internal/logger"

	"gorm.io/gorm"
)

// Pinger 连通性探测目标
type Pinger interface {
	Ping(ctx context.Context) error
}

// DBPinger 基于主库连接的探测实现
type DBPinger struct {
	db *gorm.DB
}

// NewDBPinger 创建主库探测器
func NewDBPinger(db *gorm.DB) *DBPinger {
	return &DBPinger{db: db}
}

// Ping 探测主库连通性
func (p *DBPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return Classify("db_handle", err)
	}
	return Classify("db_ping", sqlDB.PingContext(ctx))
}

// Monitor 周期探测主库并维护显式的在线/离线信号。
// 状态变化时通知订阅者；业务层通过 Online() 决定走主库还是边缘缓存。
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration

	mu          sync.RWMutex
	online      bool
	subscribers []func(online bool)

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewMonitor 创建连通性监视器，初始视为在线
func NewMonitor(pinger Pinger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		timeout:  5 * time.Second,
		online:   true,
		stopped:  make(chan struct{}),
	}
}

// Name 服务名称
func (m *Monitor) Name() string {
	return "offline-monitor"
}

// Start 周期探测直到上下文取消
func (m *Monitor) Start(ctx context.Context) error {
	m.probe(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stopped:
			return nil
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// Stop 停止探测
func (m *Monitor) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopped) })
	return nil
}

// Online 当前连通性信号
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe 注册状态变化回调，回调在状态翻转时同步触发
func (m *Monitor) Subscribe(fn func(online bool)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// ReportFailure 业务请求命中网络错误时主动上报，立即转为离线
func (m *Monitor) ReportFailure(err error) {
	if !IsNetError(err) {
		return
	}
	m.setOnline(false)
}

// ReportSuccess 业务请求成功后上报，立即转为在线
func (m *Monitor) ReportSuccess() {
	m.setOnline(true)
}

func (m *Monitor) probe(ctx context.Context) {
	if m.pinger == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	err := m.pinger.Ping(probeCtx)
	m.setOnline(err == nil)
}

func (m *Monitor) setOnline(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	subscribers := make([]func(bool), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	if !changed {
		return
	}
	if online {
		logger.Infow("connectivity_restored")
	} else {
		logger.Warnw("connectivity_lost")
	}
	for _, fn := range subscribers {
		fn(online)
	}
}

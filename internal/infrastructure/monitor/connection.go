package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PingFunc probes one dependency.
type PingFunc func(ctx context.Context) error

type Monitor struct {
	database PingFunc
	sessions PingFunc

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(database, sessions PingFunc, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		database: database,
		sessions: sessions,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh probes every dependency once and records the outcome.
func (m *Monitor) Refresh() Status {
	status := Status{
		Database:     m.check("database", m.database, 3*time.Second),
		SessionStore: m.check("session_store", m.sessions, 2*time.Second),
		LastCheck:    time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if previous.Healthy() && !status.Healthy() {
		m.logger.Warn("dependency went offline",
			zap.Bool("database", status.Database),
			zap.Bool("session_store", status.SessionStore))
	}
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) check(name string, ping PingFunc, timeout time.Duration) bool {
	if ping == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := ping(ctx); err != nil {
		m.logger.Debug("health probe failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}

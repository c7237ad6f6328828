// Package health runs component health checks for the HTTP API.
package health

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "HEALTHY"
	StatusDegraded  Status = "DEGRADED"
	StatusUnhealthy Status = "UNHEALTHY"
)

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Name      string                 `json:"name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	LastCheck time.Time              `json:"last_check"`
	Latency   time.Duration          `json:"latency_ns"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Check reports the health of one component.
type Check func(ctx context.Context) ComponentHealth

// Config holds monitor thresholds.
type Config struct {
	Timeout            time.Duration
	MemoryThresholdMB  uint64
	GoroutineThreshold int
}

// DefaultConfig returns default thresholds.
func DefaultConfig() Config {
	return Config{
		Timeout:            5 * time.Second,
		MemoryThresholdMB:  500,
		GoroutineThreshold: 1000,
	}
}

// Monitor runs registered checks plus memory and goroutine checks.
type Monitor struct {
	mu         sync.RWMutex
	cfg        Config
	startTime  time.Time
	components map[string]Check

	totalChecks     int64
	failedChecks    int64
	panicRecoveries int64
}

// NewMonitor creates a new health monitor.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{
		cfg:        cfg,
		startTime:  time.Now(),
		components: make(map[string]Check),
	}
}

// Register adds a component check.
func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = check
}

// Run executes every check concurrently and returns the combined result.
func (m *Monitor) Run(ctx context.Context) SystemHealth {
	m.mu.RLock()
	checks := make(map[string]Check, len(m.components))
	for k, v := range m.components {
		checks[k] = v
	}
	m.mu.RUnlock()

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	var wg sync.WaitGroup
	results := make(chan ComponentHealth, len(checks)+2)

	for name, check := range checks {
		wg.Add(1)
		go func(n string, c Check) {
			defer wg.Done()
			results <- m.runCheck(ctx, n, c)
		}(name, check)
	}
	results <- m.checkMemory()
	results <- m.checkGoroutines()

	wg.Wait()
	close(results)

	components := make([]ComponentHealth, 0, len(checks)+2)
	overall := StatusHealthy
	failed := int64(0)
	for h := range results {
		components = append(components, h)
		switch h.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
			failed++
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	m.mu.Lock()
	m.totalChecks++
	m.failedChecks += failed
	total, failedTotal, panics := m.totalChecks, m.failedChecks, m.panicRecoveries
	m.mu.Unlock()

	return SystemHealth{
		Status:          overall,
		Uptime:          time.Since(m.startTime),
		StartTime:       m.startTime,
		Components:      components,
		TotalChecks:     total,
		FailedChecks:    failedTotal,
		PanicRecoveries: panics,
	}
}

func (m *Monitor) runCheck(ctx context.Context, name string, check Check) (health ComponentHealth) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			m.mu.Lock()
			m.panicRecoveries++
			m.mu.Unlock()
			health = ComponentHealth{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("Panic recovered: %v", r),
			}
		}
		health.Name = name
		health.LastCheck = time.Now()
		health.Latency = time.Since(start)
	}()
	return check(ctx)
}

func (m *Monitor) checkMemory() ComponentHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	allocMB := memStats.Alloc / 1024 / 1024

	health := ComponentHealth{
		Name:      "memory",
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("Memory usage: %d MB", allocMB),
		LastCheck: time.Now(),
		Details: map[string]interface{}{
			"alloc_mb": allocMB,
			"sys_mb":   memStats.Sys / 1024 / 1024,
			"num_gc":   memStats.NumGC,
		},
	}
	if m.cfg.MemoryThresholdMB > 0 && allocMB > m.cfg.MemoryThresholdMB {
		health.Status = StatusDegraded
		health.Message = fmt.Sprintf("Memory usage high: %d MB", allocMB)
	}
	return health
}

func (m *Monitor) checkGoroutines() ComponentHealth {
	n := runtime.NumGoroutine()

	health := ComponentHealth{
		Name:      "goroutines",
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("Goroutine count: %d", n),
		LastCheck: time.Now(),
		Details:   map[string]interface{}{"count": n},
	}
	if m.cfg.GoroutineThreshold > 0 && n > m.cfg.GoroutineThreshold {
		health.Status = StatusDegraded
		health.Message = fmt.Sprintf("High goroutine count: %d", n)
	}
	return health
}

// SystemHealth represents overall system health.
type SystemHealth struct {
	Status          Status            `json:"status"`
	Uptime          time.Duration     `json:"uptime_ns"`
	StartTime       time.Time         `json:"start_time"`
	Components      []ComponentHealth `json:"components"`
	TotalChecks     int64             `json:"total_checks"`
	FailedChecks    int64             `json:"failed_checks"`
	PanicRecoveries int64             `json:"panic_recoveries"`
}

// Component returns the named component result.
func (h SystemHealth) Component(name string) (ComponentHealth, bool) {
	for _, c := range h.Components {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentHealth{}, false
}

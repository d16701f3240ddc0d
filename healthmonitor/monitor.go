package healthmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// healthCheckInterval defines interval between relayer health checks
	healthCheckInterval = 30 * time.Second
	// recheckTimeout defines delay between rechecks after a failed health check
	recheckTimeout = 5 * time.Second
	// maxRecheckAttempts defines maximum number of rechecks before reporting unhealthy
	maxRecheckAttempts = 3
)

// HealthMonitor represents relayer health monitoring interface
type HealthMonitor interface {
	// Start starts health monitoring
	Start(ctx context.Context) error
	// Stop stops health monitoring
	Stop()
	// Healthy returns the last observed relayer health state
	Healthy() bool
}

// HealthChecker represents the relayer health endpoint
type HealthChecker interface {
	// Health checks the relayer service health
	Health(ctx context.Context) (*relayer.HealthResponse, error)
}

// StatusHandler is invoked when the observed health state flips.
type StatusHandler func(chainName string, healthy bool)

type healthMonitor struct {
	checker      HealthChecker
	logger       *logrus.Logger
	chainName    string
	onStatus     StatusHandler
	stopChan     chan struct{}
	isMonitoring bool
	monitorMutex sync.RWMutex
	healthy      bool
	healthyMutex sync.RWMutex
}

// NewHealthMonitor creates a new relayer health monitor instance.
//
// Parameters:
// - checker: the relayer client to monitor.
// - logger: the logger for logging purposes.
// - chainName: the name of the blockchain chain the relayer serves.
// - onStatus: an optional callback invoked when the health state changes.
//
// Returns:
// - HealthMonitor: the new health monitor instance.
func NewHealthMonitor(
	checker HealthChecker,
	logger *logrus.Logger,
	chainName string,
	onStatus StatusHandler,
) HealthMonitor {
	return &healthMonitor{
		checker:      checker,
		logger:       logger,
		chainName:    chainName,
		onStatus:     onStatus,
		stopChan:     make(chan struct{}),
		isMonitoring: false,
		healthy:      true,
	}
}

// Start starts health monitoring.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if the health monitor is already running.
func (m *healthMonitor) Start(ctx context.Context) error {
	m.monitorMutex.Lock()
	if m.isMonitoring {
		m.monitorMutex.Unlock()
		return errors.Errorf("health monitor is already running for chain %s", m.chainName)
	}
	// A fresh channel per run, so the monitor can be restarted after Stop
	// closed the previous one.
	m.stopChan = make(chan struct{})
	stopChan := m.stopChan
	m.isMonitoring = true
	m.monitorMutex.Unlock()

	go m.monitorHealth(ctx, stopChan)
	return nil
}

// Stop stops health monitoring.
func (m *healthMonitor) Stop() {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if !m.isMonitoring {
		return
	}

	close(m.stopChan)
	m.isMonitoring = false
}

// Healthy returns the last observed relayer health state.
func (m *healthMonitor) Healthy() bool {
	m.healthyMutex.RLock()
	defer m.healthyMutex.RUnlock()

	return m.healthy
}

// monitorHealth polls the relayer health endpoint until stopped.
//
// Parameters:
// - ctx: the context for managing the request.
// - stopChan: the stop channel of the run this goroutine belongs to.
func (m *healthMonitor) monitorHealth(ctx context.Context, stopChan <-chan struct{}) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("chain", m.chainName).Info("Health monitoring stopped due to context cancellation")
			return

		case <-stopChan:
			m.logger.WithField("chain", m.chainName).Info("Health monitoring stopped")
			return

		case <-ticker.C:
			m.setHealthy(m.checkWithRetries(ctx, stopChan))
		}
	}
}

// checkWithRetries checks the relayer health and rechecks a few times
// before declaring it unhealthy.
//
// Parameters:
// - ctx: the context for managing the request.
// - stopChan: the stop channel of the run this check belongs to.
//
// Returns:
// - bool: true if the relayer reported a healthy status.
func (m *healthMonitor) checkWithRetries(ctx context.Context, stopChan <-chan struct{}) bool {
	for attempt := 1; attempt <= maxRecheckAttempts; attempt++ {
		resp, err := m.checker.Health(ctx)
		if err == nil && resp.Healthy() {
			if attempt > 1 {
				m.logger.WithFields(logrus.Fields{
					"chain":   m.chainName,
					"attempt": attempt,
				}).Info("Relayer recovered")
			}
			return true
		}

		m.logger.WithFields(logrus.Fields{
			"chain":   m.chainName,
			"attempt": attempt,
			"error":   err,
		}).Warn("Relayer health check failed")

		if attempt == maxRecheckAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return false
		case <-stopChan:
			return false
		case <-time.After(recheckTimeout):
		}
	}

	return false
}

// setHealthy records the observed state and fires the status callback on change.
func (m *healthMonitor) setHealthy(healthy bool) {
	m.healthyMutex.Lock()
	changed := m.healthy != healthy
	m.healthy = healthy
	m.healthyMutex.Unlock()

	if changed {
		m.logger.WithFields(logrus.Fields{
			"chain":   m.chainName,
			"healthy": healthy,
		}).Info("Relayer health state changed")

		if m.onStatus != nil {
			m.onStatus(m.chainName, healthy)
		}
	}
}

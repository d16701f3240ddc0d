package healthmonitor

import (
	"context"
	"testing"

	"github.com/relaymesh/gasless-lib/relayer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	resp *relayer.HealthResponse
	err  error
}

func (f *fakeChecker) Health(ctx context.Context) (*relayer.HealthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestMonitor(checker HealthChecker, onStatus StatusHandler) *healthMonitor {
	return NewHealthMonitor(checker, testLogger(), "testchain", onStatus).(*healthMonitor)
}

func TestStartRejectsDoubleStart(t *testing.T) {
	monitor := newTestMonitor(&fakeChecker{resp: &relayer.HealthResponse{Status: "ok"}}, nil)
	defer monitor.Stop()

	require.NoError(t, monitor.Start(context.Background()))
	assert.Error(t, monitor.Start(context.Background()))
}

func TestStopIsIdempotent(t *testing.T) {
	monitor := newTestMonitor(&fakeChecker{resp: &relayer.HealthResponse{Status: "ok"}}, nil)

	require.NoError(t, monitor.Start(context.Background()))
	monitor.Stop()
	assert.NotPanics(t, monitor.Stop)
}

func TestHealthyDefaultsToTrue(t *testing.T) {
	monitor := newTestMonitor(&fakeChecker{}, nil)
	assert.True(t, monitor.Healthy())
}

func TestCheckWithRetriesHealthy(t *testing.T) {
	monitor := newTestMonitor(&fakeChecker{resp: &relayer.HealthResponse{Status: "ok"}}, nil)
	assert.True(t, monitor.checkWithRetries(context.Background(), monitor.stopChan))
}

func TestCheckWithRetriesHonorsCancelledContext(t *testing.T) {
	monitor := newTestMonitor(&fakeChecker{err: errors.New("relayer down")}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, monitor.checkWithRetries(ctx, monitor.stopChan))
}

func TestRestartAfterStop(t *testing.T) {
	monitor := newTestMonitor(&fakeChecker{resp: &relayer.HealthResponse{Status: "ok"}}, nil)

	require.NoError(t, monitor.Start(context.Background()))
	monitor.Stop()

	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	// The restarted run must get a fresh stop channel, not the closed one.
	select {
	case <-monitor.stopChan:
		t.Fatal("restarted monitor reuses the closed stop channel")
	default:
	}
}

func TestSetHealthyFiresStatusHandlerOnChange(t *testing.T) {
	var flips []bool
	monitor := newTestMonitor(&fakeChecker{}, func(chainName string, healthy bool) {
		assert.Equal(t, "testchain", chainName)
		flips = append(flips, healthy)
	})

	monitor.setHealthy(true) // no change, no callback
	monitor.setHealthy(false)
	monitor.setHealthy(false) // no change, no callback
	monitor.setHealthy(true)

	assert.Equal(t, []bool{false, true}, flips)
	assert.True(t, monitor.Healthy())
}

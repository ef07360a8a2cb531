package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingService runs until Stop is called, recording the order of stops.
type blockingService struct {
	name    string
	started atomic.Bool
	done    chan struct{}
	once    sync.Once
	order   *[]string
	mu      *sync.Mutex
}

func newBlockingService(name string, order *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{name: name, done: make(chan struct{}), order: order, mu: mu}
}

func (s *blockingService) Start() error {
	s.started.Store(true)
	<-s.done
	return nil
}

func (s *blockingService) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		*s.order = append(*s.order, s.name)
		s.mu.Unlock()
		close(s.done)
	})
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var order []string
	var mu sync.Mutex
	first := newBlockingService("telnet", &order, &mu)
	second := newBlockingService("scripts", &order, &mu)
	lc.Add("telnet", first)
	lc.Add("scripts", second)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	require.Eventually(t, func() bool {
		return first.started.Load() && second.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"scripts", "telnet"}, order)
}

func TestLifecycleServiceFailureStopsOthers(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var order []string
	var mu sync.Mutex
	healthy := newBlockingService("healthy", &order, &mu)
	boom := errors.New("bind failed")

	lc.Add("healthy", healthy)
	lc.Add("broken", &FuncService{
		StartFn: func() error { return boom },
		StopFn:  func() {},
	})

	select {
	case err := <-runAsync(lc, context.Background()):
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "service broken")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down after a failure")
	}
	assert.Equal(t, []string{"healthy"}, order)
}

func TestLifecycleReturnsWhenServicesFinish(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var stopped atomic.Bool
	lc.Add("oneshot", &FuncService{
		StartFn: func() error { return nil },
		StopFn:  func() { stopped.Store(true) },
	})

	select {
	case err := <-runAsync(lc, context.Background()):
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not return after its only service finished")
	}
	assert.True(t, stopped.Load())
}

func TestFuncService(t *testing.T) {
	started, stopped := false, false
	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() { stopped = true },
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)
}

// Package server runs the process's long-lived services: it starts them,
// waits for a termination signal or a failure, and stops them in reverse order.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until the service stops or
// fails; Stop makes a running Start return.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

type namedService struct {
	name    string
	service Service
}

// Lifecycle owns a set of named services.
type Lifecycle struct {
	logger *zap.Logger

	mu       sync.Mutex
	services []namedService
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers svc under name. Services start in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until SIGINT, SIGTERM, ctx cancellation,
// a service failure, or every service returning on its own.
//
// Postcondition: Every service has been stopped and every Start has returned.
// Returns the first service failure, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	start := time.Now()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	errCh := make(chan error, len(services))
	var running sync.WaitGroup
	for _, ns := range services {
		running.Add(1)
		go func() {
			defer running.Done()
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.service.Start(); err != nil {
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}

	allReturned := make(chan struct{})
	go func() {
		running.Wait()
		close(allReturned)
	}()

	var failure error
	select {
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	case failure = <-errCh:
		l.logger.Error("service failed, shutting down", zap.Error(failure))
	case <-allReturned:
		l.logger.Info("all services returned")
	}

	l.stop(services)
	<-allReturned

	// A service may have failed while others were stopping.
	close(errCh)
	for err := range errCh {
		failure = errors.Join(failure, err)
	}

	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return failure
}

func (l *Lifecycle) stop(services []namedService) {
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		begin := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(begin)),
		)
	}
}

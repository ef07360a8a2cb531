package telnet

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/config"
)

// SessionHandler runs the input loop for one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for Telnet connections and hands each one to a SessionHandler
// on its own goroutine. It satisfies server.Service.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ready chan struct{}
	quit  chan struct{}
	wg    sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
}

// NewAcceptor creates a Telnet acceptor with the given configuration.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with Start.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ready:   make(chan struct{}),
		quit:    make(chan struct{}),
	}
}

// Start listens on the configured address and accepts connections until Stop
// is called.
//
// Precondition: Start must be called at most once.
// Postcondition: Returns nil after Stop, or the listen error.
func (a *Acceptor) Start() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		listener.Close()
		return nil
	}
	a.listener = listener
	a.mu.Unlock()
	close(a.ready)

	a.logger.Info("telnet acceptor listening", zap.String("addr", listener.Addr().String()))

	for {
		raw, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}

		a.wg.Add(1)
		go a.serve(raw)
	}
}

func (a *Acceptor) serve(raw net.Conn) {
	defer a.wg.Done()
	start := time.Now()
	addr := raw.RemoteAddr().String()
	a.logger.Info("client connected", zap.String("remote_addr", addr))

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	if err := conn.Negotiate(); err != nil {
		a.logger.Warn("telnet negotiation failed", zap.String("remote_addr", addr), zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := a.handler.HandleSession(ctx, conn)
	a.logger.Info("session ended",
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
		zap.NamedError("reason", err),
	)
}

// Stop closes the listener, cancels every session context and waits for the
// session goroutines to return. It is safe to call more than once.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	close(a.quit)
	if a.listener != nil {
		a.listener.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Ready is closed once the listener is bound.
func (a *Acceptor) Ready() <-chan struct{} {
	return a.ready
}

// Addr returns the bound listen address, or "" before Start has bound it.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marga/uploader-devserver/internal/logging"
)

// HTTPServer serves Config.BaseDir with CORS headers on every response.
type HTTPServer struct {
	Config ServerConfig
	Logger logging.Logger

	// Handler overrides the default router when set before Start.
	Handler http.Handler

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	done   chan struct{}
	closed bool

	stopOnce sync.Once
	stopErr  error
}

func NewHTTPServer(cfg ServerConfig, logger logging.Logger) *HTTPServer {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &HTTPServer{Config: cfg, Logger: logger, done: make(chan struct{})}
}

// Start binds the listener and serves on a background goroutine. A bind
// failure is returned as *BindError. Cancelling ctx stops the server.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	handler := s.Handler
	if handler == nil {
		handler = NewRouter(s.Config, s.Logger)
	}

	addr := s.Config.ListenAddr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return newBindError(addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.Logger.Infof("http", "serving %s on %s", s.Config.BaseDir, ln.Addr())

	srv := s.srv
	done := s.done
	go func() {
		defer close(done)
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.Logger.Errorf("http", "serve: %v", err)
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-done:
		}
	}()

	return nil
}

// Addr is the bound listener address, or the configured address before
// Start.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.Config.ListenAddr()
}

// URL is the browsable address of the running server.
func (s *HTTPServer) URL() string {
	return URLForAddr(s.Addr())
}

// Done is closed once the serve loop has returned.
func (s *HTTPServer) Done() <-chan struct{} {
	return s.done
}

// Stop stops accepting connections and waits for in-flight responses. A
// zero Config.ShutdownTimeout waits without limit; otherwise Stop gives up
// after the timeout and returns context.DeadlineExceeded, leaving the
// remaining connections open. Concurrent and repeated calls all return once
// the first one has finished.
func (s *HTTPServer) Stop() error {
	s.stopOnce.Do(func() { s.stopErr = s.shutdown() })
	return s.stopErr
}

func (s *HTTPServer) shutdown() error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		close(s.done)
		return nil
	}

	ctx := context.Background()
	if timeout := s.Config.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := srv.Shutdown(ctx)
	<-s.done
	if err != nil {
		s.Logger.Errorf("http", "shutdown: %v", err)
		return err
	}
	s.Logger.Infof("http", "stopped")
	return nil
}

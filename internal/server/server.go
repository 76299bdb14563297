package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"syshealth/internal/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatusProvider отдает состояние планировщика для /health
type StatusProvider interface {
	GetStats() map[string]interface{}
}

// Options параметры HTTP сервера
type Options struct {
	Addr           string
	Header         snapshot.ReportHeader
	WSPollInterval time.Duration
}

// Server отдает текущий снимок по HTTP. Только читает хранилище
type Server struct {
	opts       Options
	reader     snapshot.Reader
	status     StatusProvider
	logger     *zap.Logger
	router     chi.Router
	registry   *prometheus.Registry
	upgrader   websocket.Upgrader
	httpServer *http.Server

	// closing закрывается при Shutdown, websocket потоки завершаются
	closing   chan struct{}
	closeOnce sync.Once
	streams   sync.WaitGroup
}

// New создает сервер и регистрирует маршруты
func New(opts Options, reader snapshot.Reader, status StatusProvider, logger *zap.Logger) *Server {
	if opts.WSPollInterval <= 0 {
		opts.WSPollInterval = time.Second
	}

	s := &Server{
		opts:     opts,
		reader:   reader,
		status:   status,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		closing:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.registry.MustRegister(
		newSnapshotCollector(reader),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/sys_health", s.handleReport)
	r.Get("/sys_health.json", s.handleJSON)
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger),
		Registry: s.registry,
	}))

	s.router = r
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Debug("Server configured",
		zap.String("addr", opts.Addr),
		zap.Strings("middleware", []string{"RequestID", "RealIP", "Recoverer", "requestLogger"}))

	return s
}

// Mount подключает дополнительный обработчик, например pprof. Вызывать до Start
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

// Handler возвращает корневой обработчик
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start занимает адрес и обслуживает запросы в фоне.
// Ошибка прослушивания возвращается сразу
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", zap.Error(err))
		}
	}()

	return ln.Addr(), nil
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	s.closeOnce.Do(func() { close(s.closing) })

	err := s.httpServer.Shutdown(ctx)
	s.streams.Wait()

	if err != nil {
		s.logger.Error("Server shutdown error", zap.Error(err))
	} else {
		s.logger.Info("Server shutdown complete")
	}
	return err
}

package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"token-guard/internal/server/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type MetricsServer struct {
	cfg    config.MonitorConfig
	tl     *zap.Logger
	server *http.Server
}

func NewMetricsServer(cfg config.MonitorConfig, tl *zap.Logger) *MetricsServer {
	if !cfg.Enable || cfg.PrometheusAddr == "" {
		return &MetricsServer{cfg: cfg, tl: tl}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	// pprof 只挂在内部指标端口
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &MetricsServer{
		cfg: cfg,
		tl:  tl,
		server: &http.Server{
			Addr:              cfg.PrometheusAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run 启动指标暴露服务
func (s *MetricsServer) Run() {
	if s.server == nil {
		return // disabled
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.tl.Error("metrics server exited", zap.Error(err))
		}
	}()
}

// Stop 优雅关闭 HTTP 服务
func (s *MetricsServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil // disabled
	}

	s.server.SetKeepAlivesEnabled(false)
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// ObserveUpstream 记录一次外部调用
func ObserveUpstream(source, method string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	UpstreamRequests.WithLabelValues(source, method, result).Inc()
	UpstreamDuration.WithLabelValues(source, method).Observe(time.Since(start).Seconds())
}

package handler

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"token-guard/internal/server/monitor"
	"token-guard/pkg/logger"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	defaultClientKey = "127.0.0.1"
	tracerName       = "token-guard/handler"
)

type errorBody struct {
	Error string `json:"error"`
}

// NewRouter 注册全部路由，每个路由带 trace 和指标
func NewRouter(tl *zap.Logger, check *CheckHandler, balance *BalanceHandler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/check/{mint}", instrument("/check/{mint}", check))
	mux.Handle("/balance", instrument("/balance", balance))
	mux.Handle("/healthz", instrument("/healthz", http.HandlerFunc(health)))
	return mux
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := logger.StartSpanWithRequest(r, tracerName, route)
		defer span.End()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		monitor.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		monitor.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// clientKey X-Forwarded-For 第一个地址 > X-Real-IP > RemoteAddr
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return defaultClientKey
}

func methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

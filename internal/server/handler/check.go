package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"token-guard/internal/server/model"
	"token-guard/internal/server/service"
	"token-guard/pkg/logger"

	"go.uber.org/zap"
)

// ReportChecker /check 的业务流程
type ReportChecker interface {
	Check(ctx context.Context, clientKey, rawMint string) (service.CheckResult, error)
}

type CheckHandler struct {
	logger  *zap.Logger
	checker ReportChecker
}

func NewCheckHandler(logger *zap.Logger, checker ReportChecker) *CheckHandler {
	return &CheckHandler{logger: logger, checker: checker}
}

// ServeHTTP GET /check/{mint}
func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	ctx := r.Context()
	tl := logger.NewLoggerWithTrace(ctx, h.logger)
	mint := r.PathValue("mint")
	start := time.Now()

	res, err := h.checker.Check(ctx, clientKey(r), mint)

	// 429 和放行的请求都带限流头
	if res.Decision.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Decision.Remaining))
	}

	var limited *model.RateLimitedError
	switch {
	case err == nil:
		tl.Debug("report served", zap.String("mint", res.Report.Mint.String()), zap.Bool("cached", res.Cached),
			zap.Float64("cost", time.Since(start).Seconds()))
		writeJSON(w, http.StatusOK, res.Report)
	case errors.As(err, &limited):
		writeError(w, http.StatusTooManyRequests, "Too many requests")
	case errors.Is(err, model.ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, "Invalid mint address")
	default:
		tl.Error("Error fetching report", zap.String("mint", mint), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch token report.")
	}
}

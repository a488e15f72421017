package model

import (
	"errors"
	"fmt"
)

const (
	SourceAssetIndex = "asset-index"
	SourceMarketData = "market-data"
)

var ErrInvalidIdentifier = errors.New("invalid token identifier")

// UpstreamError 必需数据源失败，对外统一 500
type UpstreamError struct {
	Source string
	Cause  error
}

func NewUpstreamError(source string, cause error) *UpstreamError {
	return &UpstreamError{Source: source, Cause: cause}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Source, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// RateLimitedError 客户端被限流
type RateLimitedError struct {
	Limit     int
	Remaining int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: limit %d, remaining %d", e.Limit, e.Remaining)
}
